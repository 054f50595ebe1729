package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/slicktrace/internal/adapters/ingest"
	service "github.com/okian/slicktrace/internal/app"
	"github.com/okian/slicktrace/pkg/logger"
)

const (
	defaultMaxUploadBytes = 256 << 20
	multipartMemory       = 32 << 20
)

// AnalysesHandler runs and recomputes analyses.
type AnalysesHandler struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         logger.Logger
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps Dependencies, maxUploadBytes int64, l logger.Logger) *AnalysesHandler {
	return &AnalysesHandler{deps: deps, maxUploadBytes: maxUploadBytes, logger: l}
}

// HandleCreate handles POST /analyses with a multipart body carrying the
// spills and tracks files plus optional window_hours and tracks_format.
func (h *AnalysesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeFailure(w, wrapUploadErr(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	hours, err := parseHours(r.FormValue("window_hours"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	format, err := ingest.ParseFormat(r.FormValue("tracks_format"))
	if err != nil {
		writeFailure(w, err)
		return
	}

	spills, _, err := readFile(r, "spills")
	if err != nil {
		writeFailure(w, err)
		return
	}
	tracks, name, err := readFile(r, "tracks")
	if err != nil {
		writeFailure(w, err)
		return
	}
	if format == "" {
		format = ingest.FormatFromName(name)
	}

	a, err := h.deps.Analyze(r.Context(), service.Request{
		Spills:       spills,
		Tracks:       tracks,
		TracksFormat: format,
		WindowHours:  hours,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.logger.Debug(r.Context(), "analysis created", logger.String("id", a.ID))
	writeJSON(w, http.StatusCreated, a.Summary())
}

// HandleGet handles GET /analyses/{id}.
func (h *AnalysesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Summary())
}

// HandleWindow handles POST /analyses/{id}/window?hours=N.
func (h *AnalysesHandler) HandleWindow(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing hours", ErrBadRequest))
		return
	}
	hours, err := parseHours(raw)
	if err != nil {
		writeFailure(w, err)
		return
	}
	a, err := h.deps.Reanalyze(r.Context(), r.PathValue("id"), hours)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Summary())
}

func parseHours(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: window hours %q is not an integer", service.ErrInvalidWindow, raw)
	}
	if h == 0 {
		return 0, fmt.Errorf("%w: window hours must be at least 1", service.ErrInvalidWindow)
	}
	return h, nil
}

func readFile(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrMissingFile, field)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", wrapUploadErr(err)
	}
	return data, hdr.Filename, nil
}

func wrapUploadErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}
