// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/slicktrace/internal/adapters/export"
	"github.com/okian/slicktrace/internal/adapters/ingest"
	service "github.com/okian/slicktrace/internal/app"
	"github.com/okian/slicktrace/internal/domain/normalize"
	"github.com/okian/slicktrace/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the pipeline implementation.
type Dependencies interface {
	Analyze(ctx context.Context, req service.Request) (*service.Analysis, error)
	Reanalyze(ctx context.Context, id string, windowHours int) (*service.Analysis, error)
	Get(ctx context.Context, id string) (*service.Analysis, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analysesHandler *AnalysesHandler
	resultsHandler  *ResultsHandler
}

// Option configures the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	logger         logger.Logger
}

// WithMaxUploadBytes caps the multipart body of POST /analyses.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analysesHandler: NewAnalysesHandler(deps, cfg.maxUploadBytes, cfg.logger),
		resultsHandler:  NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /analyses", MetricsMiddleware(s.analysesHandler.HandleCreate, "analyses"))
	mux.HandleFunc("GET /analyses/{id}", MetricsMiddleware(s.analysesHandler.HandleGet, "analysis"))
	mux.HandleFunc("POST /analyses/{id}/window", MetricsMiddleware(s.analysesHandler.HandleWindow, "analysis_window"))
	mux.HandleFunc("GET /analyses/{id}/tables/{name}", MetricsMiddleware(s.resultsHandler.HandleTable, "analysis_table"))
	mux.HandleFunc("GET /analyses/{id}/geojson/{layer}", MetricsMiddleware(s.resultsHandler.HandleLayer, "analysis_layer"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps pipeline errors to a status and error code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, service.ErrInvalidWindow):
		return http.StatusBadRequest, "invalid_window"
	case errors.Is(err, service.ErrEmptyInput), errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingFile), errors.Is(err, ingest.ErrUnknownFormat):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, export.ErrUnknownTable), errors.Is(err, export.ErrUnknownLayer):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, normalize.ErrSchema):
		return http.StatusUnprocessableEntity, "schema_error"
	case errors.Is(err, normalize.ErrEmptyDataset):
		return http.StatusUnprocessableEntity, "empty_dataset"
	case errors.Is(err, normalize.ErrCRS):
		return http.StatusUnprocessableEntity, "crs_error"
	case errors.Is(err, ingest.ErrDecode):
		return http.StatusUnprocessableEntity, "decode_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
