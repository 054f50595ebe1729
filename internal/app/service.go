// Package service runs the spill correlation pipeline and keeps recent
// analyses for retrieval by the HTTP API and the batch runner.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/slicktrace/internal/adapters/ingest"
	"github.com/okian/slicktrace/internal/adapters/repository"
	"github.com/okian/slicktrace/internal/domain/analytics"
	"github.com/okian/slicktrace/internal/domain/dedupe"
	"github.com/okian/slicktrace/internal/domain/match"
	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/okian/slicktrace/internal/domain/normalize"
	"github.com/okian/slicktrace/internal/domain/tracks"
	"github.com/okian/slicktrace/pkg/logger"
	"github.com/okian/slicktrace/pkg/metrics"
)

// Store names used in metrics.
const (
	storeAnalyses = "analyses"
	storeDatasets = "datasets"
)

// Request carries the raw inputs of one run.
type Request struct {
	Spills       []byte        // GeoJSON FeatureCollection
	Tracks       []byte        // CSV or JSON records
	TracksFormat ingest.Format // empty means detect
	WindowHours  int           // 0 means the configured default
}

// Service implements the API dependencies for the analysis pipeline.
type Service struct {
	results  repository.Store[string, *Analysis]
	datasets repository.Store[uint64, *dataset]

	// Configuration
	defaultWindow    int
	resultCacheSize  int
	datasetCacheSize int
	spillFields      normalize.SpillFields
	trackColumns     normalize.TrackColumns
	now              func() time.Time

	// Counters
	runs     atomic.Int64
	failures atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultWindow:    model.DefaultWindowHours,
		resultCacheSize:  32,
		datasetCacheSize: 16,
		spillFields:      normalize.DefaultSpillFields(),
		trackColumns:     normalize.DefaultTrackColumns(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("analysis")
	}

	s.results = repository.NewLRU[string, *Analysis](
		repository.WithCapacity(s.resultCacheSize),
		repository.WithName(storeAnalyses),
	)
	s.datasets = repository.NewLRU[uint64, *dataset](
		repository.WithCapacity(s.datasetCacheSize),
		repository.WithName(storeDatasets),
	)
	return s
}

// DefaultWindowHours returns the window applied when a request names none.
func (s *Service) DefaultWindowHours() int { return s.defaultWindow }

// ResolveWindow validates a requested window, mapping 0 to the default.
func (s *Service) ResolveWindow(hours int) (int, error) {
	if hours == 0 {
		return s.defaultWindow, nil
	}
	if hours < model.MinWindowHours || hours > model.MaxWindowHours {
		return 0, fmt.Errorf("%w: %d hours, want %d..%d", ErrInvalidWindow, hours, model.MinWindowHours, model.MaxWindowHours)
	}
	return hours, nil
}

// Analyze normalizes both inputs, matches them, derives every table and
// stores the result.
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	start := time.Now()
	s.runs.Add(1)

	hours, err := s.ResolveWindow(req.WindowHours)
	if err != nil {
		return nil, s.fail(ctx, "window", err)
	}
	if len(req.Spills) == 0 || len(req.Tracks) == 0 {
		return nil, s.fail(ctx, "input", fmt.Errorf("%w: both spills and tracks are required", ErrEmptyInput))
	}

	spills, err := s.spillDataset(ctx, req.Spills)
	if err != nil {
		return nil, s.fail(ctx, "normalize", fmt.Errorf("spills: %w", err))
	}
	trackSet, err := s.trackDataset(ctx, req.Tracks, req.TracksFormat)
	if err != nil {
		return nil, s.fail(ctx, "normalize", fmt.Errorf("tracks: %w", err))
	}

	stageStart := time.Now()
	index := match.NewIndex(spills.spills)
	metrics.RecordStageDuration("index", msSince(stageStart))

	id := uuid.NewString()
	log := s.logger.With(logger.String("id", id))

	a := &Analysis{
		ID:         id,
		CreatedAt:  s.now().UTC(),
		Spills:     spills.spills,
		SpillDrops: spills.spillDrops,
		Tracks:     trackSet.tracks,
		TrackDrops: trackSet.trackDrops,
		index:      index,
	}
	s.compute(ctx, log, a, hours)
	s.results.Put(ctx, a.ID, a)

	metrics.RecordPipelineRun("ok")
	metrics.RecordPipelineDuration(msSince(start))
	log.Info(ctx, "analysis completed",
		logger.Int("window_hours", hours),
		logger.Int("spills", len(a.Spills)),
		logger.Int("track_points", a.Tracks.Len()),
		logger.Int("candidates", len(a.Candidates)),
		logger.Int("unique_incidents", len(a.Unique)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return a, nil
}

// Reanalyze recomputes a stored analysis with a new window. The normalized
// inputs and spatial index are reused; the stored entry is replaced.
func (s *Service) Reanalyze(ctx context.Context, id string, windowHours int) (*Analysis, error) {
	start := time.Now()
	s.runs.Add(1)

	hours, err := s.ResolveWindow(windowHours)
	if err != nil {
		return nil, s.fail(ctx, "window", err)
	}
	prev, err := s.Get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "lookup", err)
	}

	log := s.logger.With(logger.String("id", prev.ID))

	a := &Analysis{
		ID:         prev.ID,
		CreatedAt:  s.now().UTC(),
		Spills:     prev.Spills,
		SpillDrops: prev.SpillDrops,
		Tracks:     prev.Tracks,
		TrackDrops: prev.TrackDrops,
		index:      prev.index,
	}
	s.compute(ctx, log, a, hours)
	s.results.Put(ctx, a.ID, a)

	metrics.RecordPipelineRun("ok")
	metrics.RecordPipelineDuration(msSince(start))
	log.Info(ctx, "analysis recomputed",
		logger.Int("window_hours", hours),
		logger.Int("previous_window_hours", prev.WindowHours),
		logger.Int("candidates", len(a.Candidates)),
	)
	return a, nil
}

// Get returns a stored analysis.
func (s *Service) Get(ctx context.Context, id string) (*Analysis, error) {
	a, err := s.results.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	return map[string]interface{}{
		"analyses":           s.results.Len(ctx),
		"datasets":           s.datasets.Len(ctx),
		"resultCacheSize":    s.resultCacheSize,
		"datasetCacheSize":   s.datasetCacheSize,
		"defaultWindowHours": s.defaultWindow,
		"runs":               s.runs.Load(),
		"failures":           s.failures.Load(),
	}
}

// compute fills the window dependent parts of a.
func (s *Service) compute(ctx context.Context, log logger.Logger, a *Analysis, hours int) {
	a.WindowHours = hours

	stageStart := time.Now()
	a.Candidates = a.index.Match(a.Tracks.Points, model.Window(hours))
	metrics.RecordStageDuration("match", msSince(stageStart))

	stageStart = time.Now()
	a.Unique = dedupe.Unique(a.Candidates)
	a.Tables = analytics.Compute(a.Spills, a.Candidates, a.Unique, a.Tracks.HasVesselType)
	metrics.RecordStageDuration("analytics", msSince(stageStart))

	stageStart = time.Now()
	a.VesselTracks = tracks.For(tracks.Vessels(a.Unique), a.Tracks.Points)
	metrics.RecordStageDuration("tracks", msSince(stageStart))

	metrics.UpdateLastRun(hours, len(a.Candidates), len(a.Unique), len(a.Tables.PrimeSuspects))
	log.Debug(ctx, "window applied",
		logger.Int("window_hours", hours),
		logger.Int("candidates", len(a.Candidates)),
		logger.Int("vessel_tracks", len(a.VesselTracks)),
	)
}

func (s *Service) fail(ctx context.Context, stage string, err error) error {
	s.failures.Add(1)
	metrics.RecordPipelineRun("error")
	metrics.RecordErrorByComponent("pipeline", errorKind(err))
	s.logger.Warn(ctx, "analysis failed", logger.String("stage", stage), logger.Error(err))
	return err
}

// errorKind maps an error to a metrics label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, normalize.ErrSchema):
		return "schema"
	case errors.Is(err, normalize.ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, normalize.ErrCRS):
		return "crs"
	case errors.Is(err, ingest.ErrDecode), errors.Is(err, ingest.ErrUnknownFormat):
		return "decode"
	case errors.Is(err, ErrInvalidWindow):
		return "window"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	}
	return "internal"
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
