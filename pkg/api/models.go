package api

import "encoding/json"

// FloodfillRequest is the JSON body for POST /floodfill_pt/.
type FloodfillRequest struct {
	Year                       int         `json:"year" validate:"required"`
	StartNodesUserInput        []uint32    `json:"start_nodes_user_input" validate:"required,min=1"`
	InitTravelTimesUserInput   []uint16    `json:"init_travel_times_user_input" validate:"required"`
	TripStartSeconds           int32       `json:"trip_start_seconds"`
	GraphWalkAdditions         [][][2]int32 `json:"graph_walk_additions"`
	GraphPTAdditions           [][][2]int64 `json:"graph_pt_additions"`
	GraphWalkUpdatesKeys       []uint32    `json:"graph_walk_updates_keys"`
	GraphWalkUpdatesAdditions  [][][2]int32 `json:"graph_walk_updates_additions"`
	NewNodesCount              int         `json:"new_nodes_count"`
	NewBuildAdditions          [][3]int64  `json:"new_build_additions"`
	TargetDestinations         []uint32    `json:"target_destinations"`

	// Reserved fields, decoded and ignored (spec §9 open question).
	P1Additions json.RawMessage `json:"p1_additions,omitempty"`
	P2Additions json.RawMessage `json:"p2_additions,omitempty"`
}

// OriginResult is one origin's result tuple, encoded as a JSON array
// per spec.md §6: [iters, start_id, scores[32], target_ids, target_times].
type OriginResult struct {
	TotalIters         int32
	StartNodeID        uint32
	Scores             [32]int64
	TargetNodesReached []uint32
	TargetTimesReached []uint16
}

// MarshalJSON encodes an OriginResult as a 5-element JSON array tuple,
// matching the wire shape spec.md §6 requires rather than the field names
// an ordinary struct tag would produce.
func (r OriginResult) MarshalJSON() ([]byte, error) {
	targetIDs := r.TargetNodesReached
	if targetIDs == nil {
		targetIDs = []uint32{}
	}
	targetTimes := r.TargetTimesReached
	if targetTimes == nil {
		targetTimes = []uint16{}
	}
	tuple := []interface{}{
		r.TotalIters,
		r.StartNodeID,
		r.Scores[:],
		targetIDs,
		targetTimes,
	}
	return json.Marshal(tuple)
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
