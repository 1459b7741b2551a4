package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azybler/floodfill_pt/pkg/decay"
	"github.com/azybler/floodfill_pt/pkg/graphstore"
	"github.com/azybler/floodfill_pt/pkg/metrics"
	"github.com/azybler/floodfill_pt/pkg/model"
)

func testStore() *graphstore.Store {
	return &graphstore.Store{
		Walk: []model.WalkAdjacency{
			{{Cost: 0}, {To: 1, Cost: 10}},
			{{Cost: 0}},
		},
		PT: []model.PTAdjacency{
			{{}},
			{{}},
		},
		Values:            make([]int32, 2*model.SubpurposeCount),
		PaddingRowCount:    0,
		OriginalNodeCount:  2,
	}
}

func testCoordinator(t *testing.T, dir string, year int) *Coordinator {
	t.Helper()
	store := testStore()
	if err := graphstore.WriteBinary(fmt.Sprintf("%s/graph_%d.bin", dir, year), store); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	cache := graphstore.NewCache(dir)

	var tables [decay.TableCount]decay.Table
	for i := range tables {
		row := make(decay.Table, model.MaxDecayIndex)
		for j := range row {
			row[j] = 1
		}
		tables[i] = row
	}
	var lookup [model.SubpurposeCount]int8
	decayStore, err := decay.NewStore(tables, lookup)
	if err != nil {
		t.Fatalf("decay.NewStore: %v", err)
	}

	return NewCoordinator(cache, decayStore, metrics.NewRegistry())
}

func TestHandleFloodfillPT_FastPath(t *testing.T) {
	dir := t.TempDir()
	coord := testCoordinator(t, dir, 2022)
	h := NewHandlers(coord, metrics.NewRegistry(), 2022)

	body := `{
		"year": 2022,
		"start_nodes_user_input": [0],
		"init_travel_times_user_input": [0],
		"trip_start_seconds": 0
	}`
	req := httptest.NewRequest("POST", "/floodfill_pt/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleFloodfillPT(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var results []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	var tuple []json.RawMessage
	if err := json.Unmarshal(results[0], &tuple); err != nil {
		t.Fatalf("decode tuple: %v", err)
	}
	if len(tuple) != 5 {
		t.Fatalf("tuple length = %d, want 5", len(tuple))
	}
}

func TestHandleFloodfillPT_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	coord := testCoordinator(t, dir, 2022)
	h := NewHandlers(coord, metrics.NewRegistry(), 2022)

	req := httptest.NewRequest("POST", "/floodfill_pt/", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleFloodfillPT(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleFloodfillPT_NewNodesCountMismatch(t *testing.T) {
	dir := t.TempDir()
	coord := testCoordinator(t, dir, 2022)
	h := NewHandlers(coord, metrics.NewRegistry(), 2022)

	body := `{
		"year": 2022,
		"start_nodes_user_input": [0],
		"init_travel_times_user_input": [0],
		"new_nodes_count": 1,
		"graph_walk_additions": []
	}`
	req := httptest.NewRequest("POST", "/floodfill_pt/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleFloodfillPT(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleFloodfillPT_YearTooOldWithAdditions(t *testing.T) {
	dir := t.TempDir()
	coord := testCoordinator(t, dir, 2020)
	h := NewHandlers(coord, metrics.NewRegistry(), 2020)

	body := `{
		"year": 2020,
		"start_nodes_user_input": [0],
		"init_travel_times_user_input": [0],
		"new_nodes_count": 1,
		"graph_walk_additions": [[[0, 0]]],
		"graph_pt_additions": [[[0, 0]]]
	}`
	req := httptest.NewRequest("POST", "/floodfill_pt/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleFloodfillPT(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body: %s", w.Code, w.Body.String())
	}
}

func TestHandleNodeIDCount(t *testing.T) {
	dir := t.TempDir()
	coord := testCoordinator(t, dir, 2022)
	h := NewHandlers(coord, metrics.NewRegistry(), 2022)

	req := httptest.NewRequest("GET", "/get_node_id_count/?year=2022", nil)
	w := httptest.NewRecorder()

	h.HandleNodeIDCount(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var count uint32
	if err := json.Unmarshal(w.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestHandleIndex(t *testing.T) {
	h := NewHandlers(nil, metrics.NewRegistry(), 2022)
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	h.HandleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "App is listening" {
		t.Errorf("body = %q", w.Body.String())
	}
}
