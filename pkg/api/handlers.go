package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/azybler/floodfill_pt/pkg/apierr"
	"github.com/azybler/floodfill_pt/pkg/metrics"
)

var validate = validator.New()

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	coord       *Coordinator
	metrics     *metrics.Registry
	defaultYear int
}

// NewHandlers creates handlers wired to the given coordinator.
func NewHandlers(coord *Coordinator, reg *metrics.Registry, defaultYear int) *Handlers {
	return &Handlers{coord: coord, metrics: reg, defaultYear: defaultYear}
}

// HandleIndex handles GET /.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("App is listening"))
}

// HandleNodeIDCount handles GET /get_node_id_count/.
func (h *Handlers) HandleNodeIDCount(w http.ResponseWriter, r *http.Request) {
	year := h.defaultYear
	if q := r.URL.Query().Get("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_year", "year")
			return
		}
		year = parsed
	}

	store, err := h.coord.Graphs.Get(year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "artifact_not_found", "year")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(store.NumNodes())
}

// HandleFloodfillPT handles POST /floodfill_pt/.
func (h *Handlers) HandleFloodfillPT(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "" && mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req FloodfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationField(err))
		return
	}
	if len(req.GraphWalkAdditions) != req.NewNodesCount || len(req.GraphPTAdditions) != req.NewNodesCount {
		writeError(w, http.StatusBadRequest, "new_nodes_count_mismatch", "new_nodes_count")
		return
	}

	results, err := h.coord.Handle(r.Context(), &req)
	status := "ok"
	if err != nil {
		status = "error"
		h.recordFloodfill(status, start, len(req.StartNodesUserInput), nil)
		writeAPIError(w, err)
		return
	}

	iters := make([]int32, len(results))
	for i, res := range results {
		iters[i] = res.TotalIters
	}
	h.recordFloodfill(status, start, len(req.StartNodesUserInput), iters)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (h *Handlers) recordFloodfill(status string, start time.Time, originCount int, iters []int32) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordFloodfillBatch(status, time.Since(start), originCount, iters)
}

func validationField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}

func writeAPIError(w http.ResponseWriter, err error) {
	switch apierr.ClassifyKind(err) {
	case apierr.KindInvalidInput:
		writeError(w, http.StatusBadRequest, "invalid_input", "")
	case apierr.KindNotFound:
		writeError(w, http.StatusInternalServerError, "artifact_not_found", "")
	case apierr.KindTransient:
		writeError(w, http.StatusServiceUnavailable, "transient_failure", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
