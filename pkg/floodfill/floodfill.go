// Package floodfill implements the per-origin time-expanded
// shortest-path flood-fill over the combined walk + PT graph: spec.md
// §4.4, the centerpiece of this service.
package floodfill

import (
	"fmt"

	"github.com/azybler/floodfill_pt/pkg/decay"
	"github.com/azybler/floodfill_pt/pkg/model"
)

// Graph is the read-only view a flood-fill traverses: either the
// immutable base graphstore.Store or a per-request overlay, accessed
// through this narrow interface so the engine doesn't depend on
// graphstore's mutation machinery.
type Graph interface {
	WalkAdjacency(id model.NodeID) model.WalkAdjacency
	PTAdjacency(id model.NodeID) model.PTAdjacency
	Values(id model.NodeID) []int32
	NumNodes() uint32
}

// Input bundles one origin's parameters, per spec.md §4.4 "Inputs per
// origin".
type Input struct {
	Start          model.NodeID
	InitTravelTime model.Cost

	TripStartSeconds int32

	CountOriginalNodes      uint32 // O
	NodeValuesPaddingRowCount uint32 // P

	TargetDestinations []model.NodeID
}

// Result is the per-origin output, per spec.md §4.4 "Outputs".
type Result struct {
	TotalIters         int32
	StartNodeID        uint32
	Scores             [model.SubpurposeCount]int64
	TargetNodesReached []uint32
	TargetTimesReached []uint16
}

// Run executes one flood-fill. g is either the shared base graph or a
// request-private overlay; decayTable and lookup select which time-of-day
// decay curve applies. Run never mutates g and allocates its own
// scratch heap/visited-set, so concurrent calls against the same g (from
// package dispatch) are safe.
func Run(g Graph, in Input, decayTable decay.Table, lookup [model.SubpurposeCount]int8) (Result, error) {
	result := Result{StartNodeID: uint32(in.Start)}

	// Fast exit: spec.md §4.4 step 2.
	if in.InitTravelTime >= model.TimeLimit {
		return result, nil
	}

	numNodes := g.NumNodes()
	if uint32(in.Start) >= numNodes {
		return Result{}, fmt.Errorf("floodfill: start node %d out of range [0, %d)", in.Start, numNodes)
	}

	visited := newVisitedSet(int(numNodes))
	touched := make([]uint32, 0, 64)

	heap := &minHeap{items: make([]pqElement, 0, 64)}
	heap.Push(pqElement{cost: in.InitTravelTime, node: in.Start})

	targetSet := make(map[model.NodeID]struct{}, len(in.TargetDestinations))
	for _, t := range in.TargetDestinations {
		targetSet[t] = struct{}{}
	}

	var iters int32
	for heap.Len() > 0 {
		cur := heap.Pop()

		if visited.has(uint32(cur.node)) {
			continue
		}
		visited.set(uint32(cur.node))
		touched = append(touched, uint32(cur.node))

		// Scoring condition: spec.md §4.4 step 3c. The double-inclusive
		// comparison (P <= node <= O) is preserved as specified; see
		// spec.md §9 on the O admission being a possible off-by-one.
		if in.NodeValuesPaddingRowCount <= uint32(cur.node) && uint32(cur.node) <= in.CountOriginalNodes {
			if err := accumulateScore(g, cur.node, uint16(cur.cost), decayTable, lookup, &result.Scores); err != nil {
				return Result{}, err
			}
		}

		// Target capture: spec.md §4.4 step 3d, first-pop-is-shortest.
		if _, ok := targetSet[cur.node]; ok {
			result.TargetNodesReached = append(result.TargetNodesReached, uint32(cur.node))
			result.TargetTimesReached = append(result.TargetTimesReached, uint16(cur.cost))
		}

		walkAdj := g.WalkAdjacency(cur.node)
		for _, edge := range walkAdj.Edges() {
			newCost := cur.cost + edge.Cost
			if newCost < model.TimeLimit {
				heap.Push(pqElement{cost: newCost, node: edge.To})
			}
		}

		if walkAdj.HasPT() {
			expandPT(g, cur.node, uint16(cur.cost), in.TripStartSeconds, heap)
		}

		iters++
	}

	visited.reset(touched)
	result.TotalIters = iters
	return result, nil
}

// expandPT is the PT connector, spec.md §4.4.2: finds the next
// departure at node arriving at-or-after the current arrival time and
// pushes the resulting connection, or does nothing if no service remains
// in the node's tail ("missed last bus").
func expandPT(g Graph, node model.NodeID, timeSoFar uint16, tripStartSeconds int32, heap *minHeap) {
	ptAdj := g.PTAdjacency(node)
	arrivalAbs := tripStartSeconds + int32(timeSoFar)

	for _, edge := range ptAdj.Departures() {
		if int32(edge.Leavetime) >= arrivalAbs {
			wait := int32(edge.Leavetime) - arrivalAbs
			arrivalNext := int32(timeSoFar) + wait + int32(edge.Cost)
			if arrivalNext < model.TimeLimit {
				heap.Push(pqElement{
					cost: model.Cost(arrivalNext),
					node: ptAdj.Destination(),
				})
			}
			return
		}
	}
}

// accumulateScore is the score accumulator, spec.md §4.4.1.
func accumulateScore(g Graph, node model.NodeID, timeSoFar uint16, decayTable decay.Table, lookup [model.SubpurposeCount]int8, scores *[model.SubpurposeCount]int64) error {
	if int(timeSoFar) >= model.MaxDecayIndex {
		return fmt.Errorf("floodfill: time_so_far %d at node %d exceeds decay table bound %d", timeSoFar, node, model.MaxDecayIndex)
	}

	values := g.Values(node)
	for i := 0; i < model.SubpurposeCount; i++ {
		purpose := int32(lookup[i])
		decayIdx := purpose*model.MaxDecayIndex + int32(timeSoFar)
		if decayIdx < 0 || int(decayIdx) >= len(decayTable) {
			return fmt.Errorf("floodfill: decay index %d out of range for table of length %d", decayIdx, len(decayTable))
		}
		multiplier := decayTable[decayIdx]
		scores[i] += int64(values[i]) * int64(multiplier)
	}
	return nil
}
