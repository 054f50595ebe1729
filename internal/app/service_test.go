package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/slicktrace/internal/adapters/export"
	"github.com/okian/slicktrace/internal/adapters/ingest"
	service "github.com/okian/slicktrace/internal/app"
	"github.com/okian/slicktrace/internal/config"
	"github.com/okian/slicktrace/internal/domain/normalize"
	"github.com/okian/slicktrace/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const spillsJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"slick_name":"2024-01-01_10:00:00","area_sys":5.0},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`

const tracksCSV = "mmsi,latitude,longitude,BaseDateTime,vessel_name,VesselType\n" +
	"123,0.5,0.5,2024-01-01 09:00:00,ALPHA,70\n" +
	"123,2.0,2.0,2024-01-01 08:00:00,ALPHA,70\n" +
	"456,0.25,0.75,2023-12-30 09:00:00,BRAVO,80\n"

func request(hours int) service.Request {
	return service.Request{Spills: []byte(spillsJSON), Tracks: []byte(tracksCSV), WindowHours: hours}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.DefaultWindowHours(), ShouldEqual, 24)
			stats := svc.GetStats()
			So(stats["analyses"], ShouldEqual, 0)
			So(stats["resultCacheSize"], ShouldEqual, 32)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDefaultWindowHours(48),
			service.WithResultCacheSize(2),
			service.WithDatasetCacheSize(2),
			service.WithSpillFields(normalize.DefaultSpillFields()),
			service.WithTrackColumns(normalize.DefaultTrackColumns()),
			service.WithLogger(logger.Named("test")),
			service.WithClock(func() time.Time { return time.Unix(0, 0) }),
		)

		Convey("Then options are applied", func() {
			So(svc.DefaultWindowHours(), ShouldEqual, 48)
			So(svc.GetStats()["datasetCacheSize"], ShouldEqual, 2)
		})
	})
}

func TestService_ResolveWindow(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("Then zero maps to the default and bounds are inclusive", func() {
			h, err := svc.ResolveWindow(0)
			So(err, ShouldBeNil)
			So(h, ShouldEqual, 24)

			h, err = svc.ResolveWindow(1)
			So(err, ShouldBeNil)
			So(h, ShouldEqual, 1)

			h, err = svc.ResolveWindow(168)
			So(err, ShouldBeNil)
			So(h, ShouldEqual, 168)
		})

		Convey("Then out of range windows are rejected", func() {
			for _, h := range []int{-1, 169, 1000} {
				_, err := svc.ResolveWindow(h)
				So(errors.Is(err, service.ErrInvalidWindow), ShouldBeTrue)
			}
		})
	})
}

func TestService_Analyze(t *testing.T) {
	ctx := context.Background()

	Convey("Given one spill and a vessel inside it an hour before detection", t, func() {
		svc := service.New()

		a, err := svc.Analyze(ctx, request(24))

		Convey("Then exactly the inside point is a candidate", func() {
			So(err, ShouldBeNil)
			So(a.ID, ShouldNotBeEmpty)
			So(a.WindowHours, ShouldEqual, 24)
			So(a.Candidates, ShouldHaveLength, 1)
			So(a.Candidates[0].Track.MMSI, ShouldEqual, "123")
			So(a.Candidates[0].TimeToDetection, ShouldEqual, time.Hour)
		})

		Convey("Then the vessel is the prime suspect", func() {
			So(a.Tables.PrimeSuspects, ShouldHaveLength, 1)
			So(a.Tables.PrimeSuspects[0].SpillID, ShouldEqual, "2024-01-01_10:00:00")
			So(a.Tables.PrimeSuspects[0].MMSI, ShouldEqual, "123")
		})

		Convey("Then its full track is reconstructed", func() {
			So(a.VesselTracks, ShouldHaveLength, 1)
			So(a.VesselTracks[0].Label, ShouldEqual, "ALPHA")
			So(a.VesselTracks[0].PointCount, ShouldEqual, 2)
		})

		Convey("Then the summary and tables are available", func() {
			sum := a.Summary()
			So(sum.Candidates, ShouldEqual, 1)
			So(sum.Tracks.Total, ShouldEqual, 3)
			So(sum.HasVesselTypes, ShouldBeTrue)
			tbl, err := a.Table(export.TableVesselTypes)
			So(err, ShouldBeNil)
			So(tbl.Rows, ShouldResemble, [][]string{{"70", "1", "5"}})
		})

		Convey("Then the analysis can be fetched by id", func() {
			got, err := svc.Get(ctx, a.ID)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, a)
		})
	})

	Convey("Given a stored analysis", t, func() {
		svc := service.New()
		a, err := svc.Analyze(ctx, request(24))
		So(err, ShouldBeNil)

		Convey("When the window is widened", func() {
			wide, err := svc.Reanalyze(ctx, a.ID, 72)

			Convey("Then the earlier visit of the second vessel is included", func() {
				So(err, ShouldBeNil)
				So(wide.ID, ShouldEqual, a.ID)
				So(wide.WindowHours, ShouldEqual, 72)
				So(len(wide.Candidates), ShouldBeGreaterThanOrEqualTo, len(a.Candidates))
				So(wide.Candidates, ShouldHaveLength, 2)

				stored, _ := svc.Get(ctx, a.ID)
				So(stored.WindowHours, ShouldEqual, 72)
			})
		})

		Convey("When an unknown id is recomputed", func() {
			_, err := svc.Reanalyze(ctx, "missing", 24)

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an invalid window is requested", func() {
			_, err := svc.Reanalyze(ctx, a.ID, 500)

			Convey("Then ErrInvalidWindow is returned", func() {
				So(errors.Is(err, service.ErrInvalidWindow), ShouldBeTrue)
			})
		})
	})

	Convey("Given the same inputs analysed twice", t, func() {
		svc := service.New()
		first, err1 := svc.Analyze(ctx, request(24))
		second, err2 := svc.Analyze(ctx, request(48))

		Convey("Then normalization is memoized and ids differ", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(first.ID, ShouldNotEqual, second.ID)
			stats := svc.GetStats()
			So(stats["datasets"], ShouldEqual, 2)
			So(stats["analyses"], ShouldEqual, 2)
		})
	})

	Convey("Given JSON tracks with numeric mmsi", t, func() {
		svc := service.New()
		req := request(24)
		req.Tracks = []byte(`[{"mmsi":123,"latitude":0.5,"longitude":0.5,"BaseDateTime":"2024-01-01T09:00:00"},
			{"mmsi":"123","latitude":0.6,"longitude":0.6,"BaseDateTime":"2024-01-01T09:30:00"}]`)
		req.TracksFormat = ingest.FormatJSON

		a, err := svc.Analyze(ctx, req)

		Convey("Then both spellings collapse to one vessel", func() {
			So(err, ShouldBeNil)
			So(a.Candidates, ShouldHaveLength, 2)
			So(a.Unique, ShouldHaveLength, 1)
			So(a.Tables.VesselCounts[0].IncidentCount, ShouldEqual, 1)
			So(a.Tables.VesselTypes, ShouldBeNil)
		})
	})

	Convey("Given invalid inputs", t, func() {
		svc := service.New()

		Convey("Then missing inputs are rejected", func() {
			_, err := svc.Analyze(ctx, service.Request{Spills: []byte(spillsJSON)})
			So(errors.Is(err, service.ErrEmptyInput), ShouldBeTrue)
		})

		Convey("Then a schema error aborts the run", func() {
			req := request(24)
			req.Tracks = []byte("mmsi,lat,lon\n1,0,0\n")
			_, err := svc.Analyze(ctx, req)
			var se *normalize.SchemaError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Missing, ShouldResemble, []string{"latitude", "longitude", "BaseDateTime"})
		})

		Convey("Then malformed GeoJSON is a decode error", func() {
			req := request(24)
			req.Spills = []byte("{")
			_, err := svc.Analyze(ctx, req)
			So(errors.Is(err, ingest.ErrDecode), ShouldBeTrue)
		})

		Convey("Then an unsupported CRS aborts the run", func() {
			req := request(24)
			req.Spills = []byte(`{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:32633"}},"features":[
				{"type":"Feature","properties":{"slick_name":"2024-01-01_10:00:00","area_sys":1},
				"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`)
			_, err := svc.Analyze(ctx, req)
			So(errors.Is(err, normalize.ErrCRS), ShouldBeTrue)
		})

		Convey("Then the failures are counted", func() {
			_, _ = svc.Analyze(ctx, request(0))
			_, _ = svc.Analyze(ctx, request(-5))
			So(svc.GetStats()["failures"], ShouldEqual, int64(1))
		})
	})
}

func TestService_FromConfig(t *testing.T) {
	Convey("Given configuration naming custom columns", t, func() {
		cfg := config.New()
		cfg.DefaultWindowHours = 48
		cfg.Tracks.MMSI = "ship"

		svc := service.New(service.FromConfig(cfg)...)

		Convey("Then the default window follows the config", func() {
			So(svc.DefaultWindowHours(), ShouldEqual, 48)
		})

		Convey("Then tracks are read from the configured columns", func() {
			tracks := "ship,latitude,longitude,BaseDateTime\n123,0.5,0.5,2024-01-01 09:00:00\n"
			a, err := svc.Analyze(context.Background(), service.Request{Spills: []byte(spillsJSON), Tracks: []byte(tracks)})
			So(err, ShouldBeNil)
			So(a.WindowHours, ShouldEqual, 48)
			So(a.Candidates, ShouldHaveLength, 1)
		})
	})
}

func TestService_RunLogging(t *testing.T) {
	Convey("Given a service logging to a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		log := logger.Named("analysis")
		So(logger.Init(), ShouldBeNil)

		svc := service.New(service.WithLogger(log))

		Convey("When an analysis runs and is recomputed", func() {
			a, err := svc.Analyze(context.Background(), request(24))
			So(err, ShouldBeNil)
			_, err = svc.Reanalyze(context.Background(), a.ID, 48)
			So(err, ShouldBeNil)

			Convey("Then both run logs carry the analysis id", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "analysis completed")
				So(out, ShouldContainSubstring, "analysis recomputed")
				So(strings.Count(out, "id="+a.ID), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})
}

func TestService_MemoizedDrops(t *testing.T) {
	Convey("Given tracks with an unusable row", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		log := logger.Named("analysis")
		So(logger.Init(), ShouldBeNil)

		svc := service.New(service.WithLogger(log))
		req := service.Request{
			Spills: []byte(spillsJSON),
			Tracks: []byte(tracksCSV + "789,not-a-lat,0.5,2024-01-01 09:00:00,CHARLIE,70\n"),
		}

		Convey("When the same upload is analyzed twice", func() {
			first, err := svc.Analyze(context.Background(), req)
			So(err, ShouldBeNil)
			second, err := svc.Analyze(context.Background(), req)
			So(err, ShouldBeNil)

			Convey("Then the drop is reported for both runs", func() {
				So(svc.GetStats()["datasets"], ShouldEqual, 2)
				So(first.TrackDrops.Dropped, ShouldEqual, 1)
				So(second.TrackDrops.Dropped, ShouldEqual, 1)
				So(strings.Count(buf.String(), "records dropped during normalization"), ShouldEqual, 2)
			})
		})
	})
}
