package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/slicktrace/internal/adapters/export"
	"github.com/okian/slicktrace/internal/adapters/ingest"
	service "github.com/okian/slicktrace/internal/app"
	"github.com/okian/slicktrace/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run analyzes the configured inputs and writes the results to OutDir.
func Run(ctx context.Context, cfg *Config, opts ...service.Option) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if cfg.SpillsPath == "" || cfg.TracksPath == "" {
		return nil, ErrMissingInput
	}

	log := logger.Named("batch")
	log.Info(ctx, "starting batch analysis",
		logger.String("spills", cfg.SpillsPath),
		logger.String("tracks", cfg.TracksPath),
		logger.Int("windowHours", cfg.WindowHours),
		logger.String("out", cfg.OutDir))

	spills, err := readInput(cfg.SpillsPath)
	if err != nil {
		return nil, err
	}
	tracks, err := readInput(cfg.TracksPath)
	if err != nil {
		return nil, err
	}
	format := cfg.TracksFormat
	if format == "" {
		format = ingest.FormatFromName(cfg.TracksPath)
	}

	svc := service.New(opts...)
	a, err := svc.Analyze(ctx, service.Request{
		Spills:       spills,
		Tracks:       tracks,
		TracksFormat: format,
		WindowHours:  cfg.WindowHours,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	files, err := writeResults(cfg.OutDir, a)
	if err != nil {
		return nil, err
	}

	stats.AnalysisID = a.ID
	stats.WindowHours = a.WindowHours
	stats.SpillsKept, stats.SpillsDropped = a.SpillDrops.Kept(), a.SpillDrops.Dropped
	stats.TracksKept, stats.TracksDropped = a.TrackDrops.Kept(), a.TrackDrops.Dropped
	stats.Candidates = len(a.Candidates)
	stats.Incidents = len(a.Unique)
	stats.Suspects = len(a.Tables.PrimeSuspects)
	stats.Files = files
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "batch analysis completed",
		logger.String("id", stats.AnalysisID),
		logger.Int("candidates", stats.Candidates),
		logger.Int("incidents", stats.Incidents),
		logger.Int("suspects", stats.Suspects),
		logger.Int("files", len(files)),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return data, nil
}

// writeResults writes every table as CSV plus the vessel track layer. The
// vessel type table is skipped when the tracks carried no type column.
func writeResults(dir string, a *service.Analysis) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	var files []string
	for _, name := range export.TableNames() {
		if name == export.TableVesselTypes && !a.Tables.HasVesselTypes {
			continue
		}
		tbl, err := a.Table(name)
		if err != nil {
			return nil, err
		}
		file, err := export.FileName(name)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, file)
		if err := writeCSV(path, tbl); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	data, err := json.Marshal(export.TracksLayer(a.VesselTracks))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	path := filepath.Join(dir, TracksFile)
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return append(files, path), nil
}

func writeCSV(path string, tbl export.Table) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWrite, cerr)
		}
	}()
	if err := export.WriteCSV(f, tbl); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
