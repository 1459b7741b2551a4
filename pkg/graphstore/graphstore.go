// Package graphstore holds the immutable base graph and value tables
// loaded from persisted artifacts (spec.md §2 item 2, "Graph Store"),
// and provides the read-only views shared across requests.
//
// A Store is safe for concurrent read access from any number of
// goroutines once constructed; nothing in this package mutates a Store
// after ReadBinary returns it. Per-request overlays (package
// overlay) own a private copy and never touch the base Store's slices.
package graphstore

import (
	"fmt"

	"github.com/azybler/floodfill_pt/pkg/model"
)

// Store is the in-memory form of one year's multimodal graph: the walk
// and PT adjacency (header-slot convention per spec.md §3) and the flat
// node value table.
type Store struct {
	Walk []model.WalkAdjacency // len == NumNodes
	PT   []model.PTAdjacency   // len == NumNodes

	// Values is the flat NodeValues1D array: row n occupies
	// Values[32n : 32n+32].
	Values []int32

	// PaddingRowCount is P: node ids below this have no destination value.
	PaddingRowCount uint32
	// OriginalNodeCount is O: node ids at or above this (up to NumNodes)
	// are ephemeral, request-added nodes.
	OriginalNodeCount uint32
}

// NumNodes returns |V|, the shared length of Walk, PT, and Values/32.
func (s *Store) NumNodes() uint32 {
	return uint32(len(s.Walk))
}

// WalkAdjacency, PTAdjacency, and Values implement pkg/floodfill's Graph
// interface, so a Store (base or overlay) can be traversed directly.

func (s *Store) WalkAdjacency(id model.NodeID) model.WalkAdjacency {
	return s.Walk[id]
}

func (s *Store) PTAdjacency(id model.NodeID) model.PTAdjacency {
	return s.PT[id]
}

func (s *Store) Values(id model.NodeID) []int32 {
	base := int(id) * model.SubpurposeCount
	return s.Values[base : base+model.SubpurposeCount]
}

// Validate checks the structural invariants spec.md §3 requires of a
// graph: equal-length Walk/PT/Values, and PT tails sorted by leavetime.
// Load paths call this once per artifact so a corrupt file is reported
// as a load-time NotFound/Internal error rather than surfacing later as
// an out-of-range index during a flood-fill.
func Validate(s *Store) error {
	n := len(s.Walk)
	if len(s.PT) != n {
		return fmt.Errorf("graphstore: len(PT)=%d != len(Walk)=%d", len(s.PT), n)
	}
	if len(s.Values) != n*model.SubpurposeCount {
		return fmt.Errorf("graphstore: len(Values)=%d != len(Walk)*%d=%d", len(s.Values), model.SubpurposeCount, n*model.SubpurposeCount)
	}
	for id, adj := range s.PT {
		deps := adj.Departures()
		for i := 1; i < len(deps); i++ {
			if deps[i].Leavetime < deps[i-1].Leavetime {
				return fmt.Errorf("graphstore: node %d PT tail not sorted by leavetime at index %d", id, i)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of s, owned exclusively by the caller. Used
// by package overlay to build a per-request mutable working copy; the
// base Store it was cloned from is never modified.
func (s *Store) Clone() *Store {
	walk := make([]model.WalkAdjacency, len(s.Walk))
	for i, a := range s.Walk {
		// Extra capacity leaves room for one in-place append (the walk
		// edge update path, spec.md §4.3 step 5) without risking
		// aliasing into a neighboring node's backing array.
		cp := make(model.WalkAdjacency, len(a), len(a)+4)
		copy(cp, a)
		walk[i] = cp
	}
	pt := make([]model.PTAdjacency, len(s.PT))
	for i, a := range s.PT {
		cp := make(model.PTAdjacency, len(a))
		copy(cp, a)
		pt[i] = cp
	}
	values := make([]int32, len(s.Values))
	copy(values, s.Values)

	return &Store{
		Walk:              walk,
		PT:                pt,
		Values:            values,
		PaddingRowCount:   s.PaddingRowCount,
		OriginalNodeCount: s.OriginalNodeCount,
	}
}
