package batch

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/slicktrace/pkg/logger"
)

// SetupLogging initializes the global logger at the given level, writing
// to stderr so stdout stays free for the run summary.
func SetupLogging(level string, jsonFormat bool) error {
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithJSON(jsonFormat)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		return err
	}
	return nil
}

// PrintStats writes a human readable run summary.
func PrintStats(w io.Writer, s *Stats) {
	fmt.Fprintf(w, "analysis %s (window %dh)\n", s.AnalysisID, s.WindowHours)
	fmt.Fprintf(w, "  spills:     %d kept, %d dropped\n", s.SpillsKept, s.SpillsDropped)
	fmt.Fprintf(w, "  tracks:     %d kept, %d dropped\n", s.TracksKept, s.TracksDropped)
	fmt.Fprintf(w, "  candidates: %d (%d unique)\n", s.Candidates, s.Incidents)
	fmt.Fprintf(w, "  suspects:   %d\n", s.Suspects)
	for _, f := range s.Files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	fmt.Fprintf(w, "  took %s\n", s.Duration)
}

// ShowHelp prints usage information for the analyze tool.
func ShowHelp() {
	os.Stdout.WriteString(`slicktrace analyze
==================

Matches AIS positions against spill polygons and writes the result tables.

Usage:
  analyze -spills slicks.geojson -tracks ais.csv [options]

Options:
  -spills string
        GeoJSON FeatureCollection of spill polygons (required)
  -tracks string
        AIS positions, CSV or a JSON array of records (required)
  -format string
        Track format: csv or json (default: from extension, then content)
  -window int
        Causal time window in hours, 1..168 (default 24)
  -out string
        Output directory (default ".")
  -config string
        Optional YAML config naming the input fields and columns
  -log-level string
        debug, info, warn or error (default "info")
  -help
        Show this help message

Outputs:
  candidate_vessels_report.csv, ship_incident_counts.csv, ship_area_sum.csv,
  spill_candidate_counts.csv, prime_suspects_report.csv, hotspots.csv,
  vessel_type_analysis.csv (when the tracks carry a type column),
  vessel_tracks.geojson
`)
}
