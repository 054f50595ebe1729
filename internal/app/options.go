package service

import (
	"time"

	"github.com/okian/slicktrace/internal/config"
	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/okian/slicktrace/internal/domain/normalize"
	"github.com/okian/slicktrace/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultWindowHours sets the window used when a request names none.
func WithDefaultWindowHours(h int) Option {
	return func(s *Service) {
		if h >= model.MinWindowHours && h <= model.MaxWindowHours {
			s.defaultWindow = h
		}
	}
}

// WithResultCacheSize bounds how many analyses are kept.
func WithResultCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.resultCacheSize = n
		}
	}
}

// WithDatasetCacheSize bounds the normalization memo.
func WithDatasetCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.datasetCacheSize = n
		}
	}
}

// WithSpillFields sets the spill property names.
func WithSpillFields(f normalize.SpillFields) Option {
	return func(s *Service) { s.spillFields = f }
}

// WithTrackColumns sets the AIS column names.
func WithTrackColumns(c normalize.TrackColumns) Option {
	return func(s *Service) { s.trackColumns = c }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// FromConfig translates loaded configuration into service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithDefaultWindowHours(cfg.DefaultWindowHours),
		WithResultCacheSize(cfg.ResultCacheSize),
		WithDatasetCacheSize(cfg.DatasetCacheSize),
		WithSpillFields(normalize.SpillFields(cfg.Spills)),
		WithTrackColumns(normalize.TrackColumns(cfg.Tracks)),
	}
}
