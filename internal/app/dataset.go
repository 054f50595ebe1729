package service

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/okian/slicktrace/internal/adapters/ingest"
	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/okian/slicktrace/internal/domain/normalize"
	"github.com/okian/slicktrace/pkg/logger"
	"github.com/okian/slicktrace/pkg/metrics"
)

// dataset is a memoized normalization result. Only one side is set.
type dataset struct {
	spills     []model.SpillRecord
	spillDrops normalize.DropReport
	tracks     model.TrackSet
	trackDrops normalize.DropReport
}

// datasetKey hashes the raw bytes together with how they are read.
func datasetKey(kind string, format ingest.Format, data []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(kind)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(string(format))
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(data)
	return d.Sum64()
}

func (s *Service) spillDataset(ctx context.Context, data []byte) (*dataset, error) {
	key := datasetKey(normalize.DatasetSpills, "geojson", data)
	if ds, err := s.datasets.Get(ctx, key); err == nil {
		s.logDrops(ctx, ds.spillDrops)
		return ds, nil
	}

	start := time.Now()
	fc, err := ingest.DecodeFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	spills, report, err := normalize.Spills(fc.Features, fc.CRS, s.spillFields)
	metrics.RecordStageDuration("normalize_spills", msSince(start))
	if err != nil {
		return nil, err
	}
	s.logDrops(ctx, report)

	ds := &dataset{spills: spills, spillDrops: report}
	s.datasets.Put(ctx, key, ds)
	return ds, nil
}

func (s *Service) trackDataset(ctx context.Context, data []byte, format ingest.Format) (*dataset, error) {
	if format == "" {
		format = ingest.Sniff(data)
	}
	key := datasetKey(normalize.DatasetTracks, format, data)
	if ds, err := s.datasets.Get(ctx, key); err == nil {
		s.logDrops(ctx, ds.trackDrops)
		return ds, nil
	}

	start := time.Now()
	tbl, err := ingest.DecodeTable(data, format)
	if err != nil {
		return nil, err
	}
	set, report, err := normalize.Tracks(tbl, s.trackColumns)
	metrics.RecordStageDuration("normalize_tracks", msSince(start))
	if err != nil {
		return nil, err
	}
	s.logDrops(ctx, report)

	ds := &dataset{tracks: set, trackDrops: report}
	s.datasets.Put(ctx, key, ds)
	return ds, nil
}

// logDrops reports a run's drops, whether or not normalization was memoized.
func (s *Service) logDrops(ctx context.Context, r normalize.DropReport) {
	metrics.RecordRecords(r.Dataset, r.Kept(), r.Dropped)
	if r.Dropped == 0 {
		return
	}
	fields := []logger.Field{
		logger.String("dataset", r.Dataset),
		logger.Int("dropped", r.Dropped),
		logger.Int("total", r.Total),
	}
	if len(r.Samples) > 0 {
		fields = append(fields, logger.String("first", r.Samples[0].Error()))
	}
	s.logger.Warn(ctx, "records dropped during normalization", fields...)
}
