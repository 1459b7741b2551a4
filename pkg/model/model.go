// Package model holds the core data types shared across the flood-fill
// service: node ids, edge shapes, and the graph size constants that
// parameterize the three contiguous node-id ranges (padding, original,
// ephemeral).
package model

// NodeID identifies a node in the combined walk + public-transport graph.
type NodeID uint32

// Cost is a non-negative travel time in seconds. 16 bits is enough for the
// 3600s time budget; kept as the wire type for target arrival times.
type Cost uint16

// LeavingTime is seconds-past-midnight, absolute.
type LeavingTime uint32

const (
	// TimeLimit is the hard travel-time budget for a flood-fill, in seconds.
	TimeLimit = 3600
	// SubpurposeCount is the width of the per-node value vector and the
	// output score vector.
	SubpurposeCount = 32
	// MaxDecayIndex bounds time_so_far when indexing a decay table: each
	// purpose's slice within a decay table has this many entries.
	MaxDecayIndex = 4105
)

// EdgeWalk is a walk-graph adjacency entry: a neighbor and the cost to
// reach it on foot.
type EdgeWalk struct {
	To   NodeID
	Cost Cost
}

// EdgePT is a PT-graph adjacency entry: a scheduled departure. Cost is
// ride duration; Leavetime is the absolute departure time of the service.
type EdgePT struct {
	Leavetime LeavingTime
	Cost      Cost
}

// WalkAdjacency is one node's walk-graph adjacency, header-slot
// convention included: element 0 is a marker (its Cost field is 1 if the
// node has an associated PT timetable, 0 otherwise); elements 1..end are
// real walk edges.
//
// A plain slice is used rather than a fixed-capacity inline array: Go
// slices already avoid the allocation-per-append cost a SmallVec buys in
// the original Rust source, and no example in the reference pack ships an
// inline-vector type, so there is no ecosystem type to reach for here.
type WalkAdjacency []EdgeWalk

// HasPT reports whether this node's header marker declares a PT timetable.
func (a WalkAdjacency) HasPT() bool {
	return len(a) > 0 && a[0].Cost == 1
}

// Edges returns the real walk edges, skipping the header slot.
func (a WalkAdjacency) Edges() []EdgeWalk {
	if len(a) == 0 {
		return nil
	}
	return a[1:]
}

// PTAdjacency is one node's PT-graph adjacency, header-slot convention
// included: element 0 is a marker whose Leavetime field holds the
// destination NodeID reached by boarding here; elements 1..end are
// scheduled departures sorted by Leavetime ascending.
type PTAdjacency []EdgePT

// Destination returns the NodeID encoded in the header slot.
func (a PTAdjacency) Destination() NodeID {
	return NodeID(a[0].Leavetime)
}

// Departures returns the scheduled departures, skipping the header slot.
func (a PTAdjacency) Departures() []EdgePT {
	if len(a) == 0 {
		return nil
	}
	return a[1:]
}
