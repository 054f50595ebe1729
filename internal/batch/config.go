// Package batch runs one analysis over files on disk and writes every
// result table and the vessel track layer to an output directory.
package batch

import (
	"errors"
	"time"

	"github.com/okian/slicktrace/internal/adapters/ingest"
)

// Error constants.
var (
	ErrMissingInput = errors.New("input path is required")
	ErrRead         = errors.New("read input failed")
	ErrWrite        = errors.New("write output failed")
)

// TracksFile is the name of the vessel track layer written next to the tables.
const TracksFile = "vessel_tracks.geojson"

// Config holds configuration for a batch run.
type Config struct {
	SpillsPath   string        // GeoJSON spill collection
	TracksPath   string        // AIS table, CSV or JSON records
	TracksFormat ingest.Format // empty infers from the extension, then content
	WindowHours  int           // 0 uses the service default
	OutDir       string        // created if missing
}

// Stats summarizes a batch run.
type Stats struct {
	AnalysisID    string
	WindowHours   int
	SpillsKept    int
	SpillsDropped int
	TracksKept    int
	TracksDropped int
	Candidates    int
	Incidents     int
	Suspects      int
	Files         []string
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
