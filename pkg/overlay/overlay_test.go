package overlay

import (
	"testing"

	"github.com/azybler/floodfill_pt/pkg/graphstore"
	"github.com/azybler/floodfill_pt/pkg/model"
)

func baseStore() *graphstore.Store {
	return &graphstore.Store{
		Walk: []model.WalkAdjacency{
			{{Cost: 0}, {To: 1, Cost: 10}},
			{{Cost: 0}, {To: 0, Cost: 10}},
		},
		PT: []model.PTAdjacency{
			{{}},
			{{}},
		},
		Values:            make([]int32, 2*model.SubpurposeCount),
		PaddingRowCount:   0,
		OriginalNodeCount: 2,
	}
}

func TestApply_EmptyMutationsMatchesBase(t *testing.T) {
	base := baseStore()
	overlay, err := Apply(base, Mutations{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if overlay.NumNodes() != base.NumNodes() {
		t.Fatalf("NumNodes = %d, want %d", overlay.NumNodes(), base.NumNodes())
	}
	for i := range base.Walk {
		if len(overlay.Walk[i]) != len(base.Walk[i]) {
			t.Errorf("node %d: walk adjacency length changed", i)
		}
	}
}

func TestApply_NewNodeCounts(t *testing.T) {
	base := baseStore()
	m := Mutations{
		GraphWalkAdditions: []model.WalkAdjacency{
			{{Cost: 0}, {To: 0, Cost: 20}},
		},
		GraphPTAdditions: []model.PTAdjacency{
			{{}},
		},
		NewNodesCount: 1,
	}
	overlay, err := Apply(base, m)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if overlay.NumNodes() != base.NumNodes()+1 {
		t.Fatalf("NumNodes = %d, want %d", overlay.NumNodes(), base.NumNodes()+1)
	}
	if len(overlay.Values) != int(overlay.NumNodes())*model.SubpurposeCount {
		t.Fatalf("Values length = %d, want %d", len(overlay.Values), int(overlay.NumNodes())*model.SubpurposeCount)
	}
	// Base graph must be untouched.
	if base.NumNodes() != 2 {
		t.Fatalf("base NumNodes mutated: %d", base.NumNodes())
	}
}

func TestApply_MismatchedNewNodesCountFails(t *testing.T) {
	base := baseStore()
	m := Mutations{
		GraphWalkAdditions: []model.WalkAdjacency{{{Cost: 0}}},
		GraphPTAdditions:   []model.PTAdjacency{{{}}},
		NewNodesCount:      2,
	}
	if _, err := Apply(base, m); err == nil {
		t.Fatal("Apply: want error on new_nodes_count mismatch")
	}
}

func TestApply_WalkUpdatePreservesHeader(t *testing.T) {
	base := baseStore()
	m := Mutations{
		WalkUpdates: []WalkUpdate{
			{Key: 0, Edges: []model.EdgeWalk{{To: 1, Cost: 999}}},
		},
	}
	overlay, err := Apply(base, m)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	adj := overlay.Walk[0]
	if adj[0].Cost != 0 {
		t.Fatalf("header slot changed: %+v", adj[0])
	}
	if len(adj) != 3 {
		t.Fatalf("adjacency length = %d, want 3", len(adj))
	}
	if adj[2].To != 1 || adj[2].Cost != 999 {
		t.Fatalf("appended edge wrong: %+v", adj[2])
	}
	// Base node 0 untouched.
	if len(base.Walk[0]) != 2 {
		t.Fatalf("base walk adjacency mutated: %+v", base.Walk[0])
	}
}

func TestApply_NewBuildIncrement(t *testing.T) {
	base := baseStore()
	m := Mutations{
		NewBuildAdditions: []NewBuildIncrement{
			{Value: 10, Node: 0, Column: 5},
		},
	}
	overlay, err := Apply(base, m)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := overlay.Values[0*model.SubpurposeCount+5]; got != 10 {
		t.Fatalf("Values[5] = %d, want 10", got)
	}
	for i, v := range base.Values {
		if v != 0 {
			t.Fatalf("base Values mutated at %d: %d", i, v)
		}
	}
}

// Overlay isolation (spec.md §8 property 7): two overlays built from the
// same base with different mutations each see only their own mutation.
func TestApply_Isolation(t *testing.T) {
	base := baseStore()

	overlayA, err := Apply(base, Mutations{
		NewBuildAdditions: []NewBuildIncrement{{Value: 5, Node: 0, Column: 0}},
	})
	if err != nil {
		t.Fatalf("Apply A: %v", err)
	}
	overlayB, err := Apply(base, Mutations{
		NewBuildAdditions: []NewBuildIncrement{{Value: 7, Node: 1, Column: 0}},
	})
	if err != nil {
		t.Fatalf("Apply B: %v", err)
	}

	if overlayA.Values[0] != 5 {
		t.Fatalf("overlayA.Values[0] = %d, want 5", overlayA.Values[0])
	}
	if overlayA.Values[model.SubpurposeCount] != 0 {
		t.Fatalf("overlayA leaked overlayB's mutation")
	}
	if overlayB.Values[model.SubpurposeCount] != 7 {
		t.Fatalf("overlayB.Values[32] = %d, want 7", overlayB.Values[model.SubpurposeCount])
	}
	if overlayB.Values[0] != 0 {
		t.Fatalf("overlayB leaked overlayA's mutation")
	}
}
