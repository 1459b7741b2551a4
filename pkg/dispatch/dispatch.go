// Package dispatch implements the Parallel Dispatcher (spec.md §4.5):
// it maps N origins to N flood-fills executed in parallel over a
// work-stealing goroutine pool and gathers results preserving input
// order.
package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/floodfill_pt/pkg/decay"
	"github.com/azybler/floodfill_pt/pkg/floodfill"
	"github.com/azybler/floodfill_pt/pkg/model"
)

// Origin is one requested origin: a start node paired with its initial
// travel-time offset, per spec.md §6 ("start_nodes_user_input" and
// "init_travel_times_user_input" are parallel lists).
type Origin struct {
	Start          model.NodeID
	InitTravelTime model.Cost
}

// Run executes floodfill.Run for every origin in parallel and returns
// results in the same order as origins. Each flood-fill only reads g; no
// synchronization is needed beyond the shared read-only references
// (spec.md §5), so goroutines run without locks on the hot path.
//
// Go's scheduler is itself work-stealing across Ps, which is the
// primitive spec.md §4.5 and §5 call for ("a pool of OS threads exposed
// to a work-stealing data-parallel primitive"); errgroup.Group is used
// here purely to bound concurrency and propagate the first error,
// without a bespoke channel-based pool, since the runtime scheduler
// already provides it.
func Run(ctx context.Context, g floodfill.Graph, origins []Origin, common CommonInput, decayTable decay.Table, lookup [model.SubpurposeCount]int8) ([]floodfill.Result, error) {
	results := make([]floodfill.Result, len(origins))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrency())

	for i, origin := range origins {
		i, origin := i, origin
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := floodfill.Input{
				Start:                     origin.Start,
				InitTravelTime:            origin.InitTravelTime,
				TripStartSeconds:          common.TripStartSeconds,
				CountOriginalNodes:        common.CountOriginalNodes,
				NodeValuesPaddingRowCount: common.NodeValuesPaddingRowCount,
				TargetDestinations:        common.TargetDestinations,
			}
			res, err := floodfill.Run(g, in, decayTable, lookup)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CommonInput bundles the per-request parameters shared by every origin
// in a batch (everything in floodfill.Input except the origin itself).
type CommonInput struct {
	TripStartSeconds          int32
	CountOriginalNodes        uint32
	NodeValuesPaddingRowCount uint32
	TargetDestinations        []model.NodeID
}

// maxConcurrency bounds the number of simultaneously running flood-fills
// to the number of available Ps.
func maxConcurrency() int {
	n := numCPU()
	if n < 1 {
		return 1
	}
	return n
}
