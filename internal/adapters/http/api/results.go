package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/slicktrace/internal/adapters/export"
)

// ResultsHandler serves the tables and layers of stored analyses.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleTable handles GET /analyses/{id}/tables/{name}. With ?format=csv
// the table is sent as a CSV attachment, otherwise as JSON.
func (h *ResultsHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	name := r.PathValue("name")
	tbl, err := a.Table(name)
	if err != nil {
		writeFailure(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, tbl)
	case "csv":
		file, _ := export.FileName(name)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
		w.WriteHeader(http.StatusOK)
		_ = export.WriteCSV(w, tbl)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: format must be csv or json", ErrBadRequest))
	}
}

// HandleLayer handles GET /analyses/{id}/geojson/{layer}.
func (h *ResultsHandler) HandleLayer(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	fc, err := a.Layers().Layer(r.PathValue("layer"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(fc)
}
