package api

import (
	"context"
	"fmt"

	"github.com/azybler/floodfill_pt/pkg/apierr"
	"github.com/azybler/floodfill_pt/pkg/decay"
	"github.com/azybler/floodfill_pt/pkg/dispatch"
	"github.com/azybler/floodfill_pt/pkg/floodfill"
	"github.com/azybler/floodfill_pt/pkg/graphstore"
	"github.com/azybler/floodfill_pt/pkg/metrics"
	"github.com/azybler/floodfill_pt/pkg/model"
	"github.com/azybler/floodfill_pt/pkg/overlay"
)

// Coordinator implements the Query Coordinator (spec.md §4.6): it routes a
// decoded request to the fast path or the mutation path, selects the
// decay table, invokes the dispatcher, and returns results ready for
// serialization.
type Coordinator struct {
	Graphs  *graphstore.Cache
	Decay   *decay.Store
	Metrics *metrics.Registry
}

// NewCoordinator wires the cache, decay store, and metrics registry a
// running server needs.
func NewCoordinator(graphs *graphstore.Cache, decayStore *decay.Store, reg *metrics.Registry) *Coordinator {
	return &Coordinator{Graphs: graphs, Decay: decayStore, Metrics: reg}
}

// requestMutations builds the overlay.Mutations for Apply from req's
// mutation lists; hasMutations reports whether any of the five lists
// spec.md §4.3's final paragraph checks is non-empty.
func requestMutations(req *FloodfillRequest) overlay.Mutations {
	m := overlay.Mutations{NewNodesCount: req.NewNodesCount}

	for _, block := range req.GraphWalkAdditions {
		adj := make(model.WalkAdjacency, 0, len(block))
		for _, pair := range block {
			adj = append(adj, model.EdgeWalk{Cost: model.Cost(pair[0]), To: model.NodeID(pair[1])})
		}
		m.GraphWalkAdditions = append(m.GraphWalkAdditions, adj)
	}

	for _, block := range req.GraphPTAdditions {
		adj := make(model.PTAdjacency, 0, len(block))
		for _, pair := range block {
			adj = append(adj, model.EdgePT{Leavetime: model.LeavingTime(pair[0]), Cost: model.Cost(pair[1])})
		}
		m.GraphPTAdditions = append(m.GraphPTAdditions, adj)
	}

	for i, key := range req.GraphWalkUpdatesKeys {
		var edges []model.EdgeWalk
		if i < len(req.GraphWalkUpdatesAdditions) {
			for _, pair := range req.GraphWalkUpdatesAdditions[i] {
				edges = append(edges, model.EdgeWalk{Cost: model.Cost(pair[0]), To: model.NodeID(pair[1])})
			}
		}
		m.WalkUpdates = append(m.WalkUpdates, overlay.WalkUpdate{Key: model.NodeID(key), Edges: edges})
	}

	for _, nb := range req.NewBuildAdditions {
		m.NewBuildAdditions = append(m.NewBuildAdditions, overlay.NewBuildIncrement{
			Value:  int32(nb[0]),
			Node:   model.NodeID(nb[1]),
			Column: int(nb[2]),
		})
	}

	return m
}

func hasMutations(req *FloodfillRequest) bool {
	return len(req.GraphWalkAdditions) > 0 ||
		len(req.GraphPTAdditions) > 0 ||
		len(req.GraphWalkUpdatesKeys) > 0 ||
		len(req.GraphWalkUpdatesAdditions) > 0 ||
		len(req.NewBuildAdditions) > 0
}

// Handle runs the full coordinator pipeline (spec.md §4.6 steps 1-5) and
// returns one OriginResult per origin, in input order.
func (c *Coordinator) Handle(ctx context.Context, req *FloodfillRequest) ([]OriginResult, error) {
	// Step 1: year constraint (spec.md §4.3 step 8).
	if req.Year < 2022 && len(req.GraphWalkAdditions) > 0 {
		return nil, fmt.Errorf("%w: graph_walk_additions must be empty when year < 2022", apierr.ErrInvalidInput)
	}
	if len(req.StartNodesUserInput) != len(req.InitTravelTimesUserInput) {
		return nil, fmt.Errorf("%w: start_nodes_user_input and init_travel_times_user_input length mismatch", apierr.ErrInvalidInput)
	}

	base, err := c.Graphs.Get(req.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apierr.ErrNotFound, err)
	}

	// Step 2-4: fast path vs. mutation path; build or reuse graph view.
	var g floodfill.Graph = base
	if hasMutations(req) {
		m := requestMutations(req)
		overlaid, err := overlay.Apply(base, m)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apierr.ErrInvalidInput, err)
		}
		g = overlaid
	}

	numNodes := g.NumNodes()

	// Step 3: decay-table selection (spec.md §4.2).
	timeOfDayIx := decay.SelectTimeOfDay(req.TripStartSeconds)
	decayTable := c.Decay.Table(timeOfDayIx)

	origins := make([]dispatch.Origin, len(req.StartNodesUserInput))
	for i, start := range req.StartNodesUserInput {
		origins[i] = dispatch.Origin{
			Start:          model.NodeID(start),
			InitTravelTime: model.Cost(req.InitTravelTimesUserInput[i]),
		}
	}

	targets := make([]model.NodeID, len(req.TargetDestinations))
	for i, t := range req.TargetDestinations {
		targets[i] = model.NodeID(t)
	}

	common := dispatch.CommonInput{
		TripStartSeconds:          req.TripStartSeconds,
		CountOriginalNodes:        numNodes,
		NodeValuesPaddingRowCount: base.PaddingRowCount,
		TargetDestinations:        targets,
	}

	// Step 5: dispatch.
	results, err := dispatch.Run(ctx, g, origins, common, decayTable, c.Decay.SubpurposePurposeLookup)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", apierr.ErrTransient, err)
		}
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	out := make([]OriginResult, len(results))
	for i, r := range results {
		out[i] = OriginResult{
			TotalIters:         r.TotalIters,
			StartNodeID:        r.StartNodeID,
			Scores:             r.Scores,
			TargetNodesReached: r.TargetNodesReached,
			TargetTimesReached: r.TargetTimesReached,
		}
	}
	return out, nil
}
