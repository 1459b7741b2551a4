// Package decay holds the precomputed decay tables and the
// subpurpose->purpose lookup used to turn raw travel time into a scored
// accessibility contribution, plus the pure time-of-day selector that
// picks which of the four tables applies to a departure time.
package decay

import (
	"fmt"

	"github.com/azybler/floodfill_pt/pkg/model"
)

// TableCount is the number of time-of-day decay tables (one each for the
// up-to-10:00, 10:00-16:00, 16:00-19:00 and after-19:00 buckets selected
// by SelectTimeOfDay).
const TableCount = 4

// Table is a flat decay multiplier table for one time-of-day bucket,
// indexed as Table[purpose*model.MaxDecayIndex + timeSoFar].
type Table []int32

// Store holds the four time-of-day tables and the subpurpose->purpose
// lookup, all immutable for the process lifetime and shared read-only
// across requests.
type Store struct {
	Tables                   [TableCount]Table
	SubpurposePurposeLookup  [model.SubpurposeCount]int8
}

// NewStore builds a Store from loaded tables and the lookup array. It
// validates the shapes spec.md §3 requires so a malformed artifact fails
// fast at load time rather than during a flood-fill.
func NewStore(tables [TableCount]Table, lookup [model.SubpurposeCount]int8) (*Store, error) {
	maxPurpose := int8(0)
	for _, p := range lookup {
		if p > maxPurpose {
			maxPurpose = p
		}
	}
	wantLen := (int(maxPurpose) + 1) * model.MaxDecayIndex
	for i, t := range tables {
		if len(t) < wantLen {
			return nil, &ShapeError{TableIndex: i, Got: len(t), Want: wantLen}
		}
	}
	return &Store{Tables: tables, SubpurposePurposeLookup: lookup}, nil
}

// ShapeError reports a decay table too short for the purposes the lookup
// array references.
type ShapeError struct {
	TableIndex int
	Got, Want  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("decay: table %d has length %d, need at least %d", e.TableIndex, e.Got, e.Want)
}

// Table returns the decay table for the given time-of-day index, which
// must be in [0, TableCount).
func (s *Store) Table(timeOfDayIndex int) Table {
	return s.Tables[timeOfDayIndex]
}

// SelectTimeOfDay maps a departure time (seconds since midnight) to the
// decay-table index, per spec.md §4.2. Boundaries are strictly
// greater-than, so a trip starting exactly at a boundary falls into the
// earlier bucket.
func SelectTimeOfDay(tripStartSeconds int32) int {
	const (
		hour   = 3600
		tenAM  = 10 * hour
		fourPM = 16 * hour
		sevenPM = 19 * hour
	)
	switch {
	case tripStartSeconds <= tenAM:
		return 0
	case tripStartSeconds <= fourPM:
		return 1
	case tripStartSeconds <= sevenPM:
		return 2
	default:
		return 3
	}
}
