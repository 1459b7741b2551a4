// Package overlay implements the Request Mutator (spec.md §4.3): it
// builds a per-request mutable copy of the base graph and applies the
// ephemeral additions/updates a single request describes, without ever
// touching the base graphstore.Store shared across requests.
package overlay

import (
	"fmt"

	"github.com/azybler/floodfill_pt/pkg/graphstore"
	"github.com/azybler/floodfill_pt/pkg/model"
)

// WalkUpdate appends Edges to the existing walk adjacency at node Key,
// preserving its header slot (spec.md §4.3 step 5).
type WalkUpdate struct {
	Key   model.NodeID
	Edges []model.EdgeWalk
}

// NewBuildIncrement is a value increment applied to NodeValues1D at
// Node*32 + Column (spec.md §4.3 step 7).
type NewBuildIncrement struct {
	Value  int32
	Node   model.NodeID
	Column int
}

// Mutations bundles every list the Request Mutator consumes, mirroring
// spec.md §4.3's "Inputs" paragraph and the wire fields in spec.md §6.
type Mutations struct {
	GraphWalkAdditions []model.WalkAdjacency // each entry is one new node's full adjacency, header slot included
	GraphPTAdditions   []model.PTAdjacency   // each entry is one new node's full adjacency, header slot included
	WalkUpdates        []WalkUpdate
	NewBuildAdditions  []NewBuildIncrement
	NewNodesCount       int
}

// IsEmpty reports whether every mutation list is empty, in which case
// the coordinator should skip the mutator entirely and run directly on
// the immutable base (spec.md §4.3, final paragraph).
func (m Mutations) IsEmpty() bool {
	return len(m.GraphWalkAdditions) == 0 &&
		len(m.GraphPTAdditions) == 0 &&
		len(m.WalkUpdates) == 0 &&
		len(m.NewBuildAdditions) == 0
}

// Apply builds a per-request overlay of base with the given mutations,
// per spec.md §4.3 steps 1-7. The returned Store is exclusively owned by
// the caller; base is never modified.
func Apply(base *graphstore.Store, m Mutations) (*graphstore.Store, error) {
	if len(m.GraphWalkAdditions) != m.NewNodesCount {
		return nil, fmt.Errorf("overlay: len(graph_walk_additions)=%d != new_nodes_count=%d", len(m.GraphWalkAdditions), m.NewNodesCount)
	}
	if len(m.GraphPTAdditions) != m.NewNodesCount {
		return nil, fmt.Errorf("overlay: len(graph_pt_additions)=%d != new_nodes_count=%d", len(m.GraphPTAdditions), m.NewNodesCount)
	}

	overlay := base.Clone()
	baseLen := len(overlay.Walk)

	// Steps 2-3: append new nodes' full adjacency.
	for _, adj := range m.GraphWalkAdditions {
		overlay.Walk = append(overlay.Walk, append(model.WalkAdjacency{}, adj...))
	}
	for _, adj := range m.GraphPTAdditions {
		overlay.PT = append(overlay.PT, append(model.PTAdjacency{}, adj...))
	}

	// Step 4: length assertions.
	if len(overlay.Walk) != baseLen+m.NewNodesCount {
		return nil, fmt.Errorf("overlay: len(GraphWalk)=%d != base(%d)+new_nodes_count(%d)", len(overlay.Walk), baseLen, m.NewNodesCount)
	}
	if len(overlay.PT) != baseLen+m.NewNodesCount {
		return nil, fmt.Errorf("overlay: len(GraphPT)=%d != base(%d)+new_nodes_count(%d)", len(overlay.PT), baseLen, m.NewNodesCount)
	}

	// Step 5: append edges to existing adjacency, preserving the header slot.
	for _, u := range m.WalkUpdates {
		if int(u.Key) >= len(overlay.Walk) {
			return nil, fmt.Errorf("overlay: walk update key %d out of range [0, %d)", u.Key, len(overlay.Walk))
		}
		overlay.Walk[u.Key] = append(overlay.Walk[u.Key], u.Edges...)
	}

	// Step 6: extend NodeValues1D by 32 zeros per new walk-addition.
	overlay.Values = append(overlay.Values, make([]int32, len(m.GraphWalkAdditions)*model.SubpurposeCount)...)
	if len(overlay.Values) != len(overlay.Walk)*model.SubpurposeCount {
		return nil, fmt.Errorf("overlay: len(NodeValues1D)=%d != len(GraphWalk)*%d=%d", len(overlay.Values), model.SubpurposeCount, len(overlay.Walk)*model.SubpurposeCount)
	}

	// Step 7: apply new-building increments.
	for _, nb := range m.NewBuildAdditions {
		idx := int(nb.Node)*model.SubpurposeCount + nb.Column
		if idx < 0 || idx >= len(overlay.Values) {
			return nil, fmt.Errorf("overlay: new-build index %d out of range [0, %d)", idx, len(overlay.Values))
		}
		overlay.Values[idx] += nb.Value
	}

	return overlay, nil
}
