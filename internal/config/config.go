// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/slicktrace/internal/domain/model"
)

// Window bounds in hours accepted for the causal time window.
const (
	MinWindowHours = model.MinWindowHours
	MaxWindowHours = model.MaxWindowHours
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultWindowHours is used when a request does not name a window.
	DefaultWindowHours int `koanf:"default_window_hours"`

	// MaxUploadBytes caps a multipart analysis upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// ResultCacheSize bounds how many analyses are kept for retrieval.
	ResultCacheSize int `koanf:"result_cache_size"`
	// DatasetCacheSize bounds the normalization memo.
	DatasetCacheSize int `koanf:"dataset_cache_size"`

	Spills  SpillFields   `koanf:"spills"`
	Tracks  TrackColumns  `koanf:"tracks"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// MetricsConfig tunes the Prometheus collectors.
type MetricsConfig struct {
	Enabled         bool              `koanf:"enabled"`
	Namespace       string            `koanf:"namespace"`
	RefreshInterval time.Duration     `koanf:"refresh_interval"`
	Labels          map[string]string `koanf:"labels"`
	// HTTPBucketsMS overrides the request latency buckets.
	HTTPBucketsMS   []float64         `koanf:"http_buckets_ms"`
}

// SpillFields names the feature properties read from spill collections.
type SpillFields struct {
	ID   string `koanf:"id_field"`
	Area string `koanf:"area_field"`
	Date string `koanf:"date_field"`
	Time string `koanf:"time_field"`
}

// TrackColumns names the columns read from AIS tables.
type TrackColumns struct {
	MMSI      string `koanf:"mmsi_column"`
	Latitude  string `koanf:"latitude_column"`
	Longitude string `koanf:"longitude_column"`
	Timestamp string `koanf:"timestamp_column"`
	Name      string `koanf:"name_column"`
	Type      string `koanf:"type_column"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DefaultWindowHours: model.DefaultWindowHours,
		MaxUploadBytes:     256 << 20,
		ResultCacheSize:    32,
		DatasetCacheSize:   16,
		Spills: SpillFields{
			ID:   "slick_name",
			Area: "area_sys",
			Date: "date",
			Time: "time",
		},
		Tracks: TrackColumns{
			MMSI:      "mmsi",
			Latitude:  "latitude",
			Longitude: "longitude",
			Timestamp: "BaseDateTime",
			Name:      "vessel_name",
			Type:      "VesselType",
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			Namespace:       "slicktrace",
			RefreshInterval: 10 * time.Second,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultWindowHours < MinWindowHours || c.DefaultWindowHours > MaxWindowHours:
		return fmt.Errorf("%w: default_window_hours must be in [%d, %d], got %d",
			ErrInvalidConfig, MinWindowHours, MaxWindowHours, c.DefaultWindowHours)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.ResultCacheSize < 1:
		return fmt.Errorf("%w: result_cache_size must be at least 1", ErrInvalidConfig)
	case c.Spills.ID == "" || c.Spills.Area == "":
		return fmt.Errorf("%w: spill id and area fields must be named", ErrInvalidConfig)
	case c.Tracks.MMSI == "" || c.Tracks.Latitude == "" || c.Tracks.Longitude == "" || c.Tracks.Timestamp == "":
		return fmt.Errorf("%w: track mmsi, latitude, longitude and timestamp columns must be named", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
