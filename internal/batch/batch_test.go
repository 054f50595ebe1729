package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/slicktrace/internal/batch"
	"github.com/okian/slicktrace/internal/domain/normalize"
	"github.com/okian/slicktrace/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const spillsJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"slick_name":"2024-01-01_10:00:00","area_sys":5.0},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`

const tracksCSV = "mmsi,latitude,longitude,BaseDateTime,vessel_name\n" +
	"123,0.5,0.5,2024-01-01 09:00:00,ALPHA\n" +
	"123,0.6,0.6,2024-01-01 09:30:00,ALPHA\n" +
	"123,2.0,2.0,2024-01-01 08:00:00,ALPHA\n"

func writeInputs(t *testing.T, spills, tracks, tracksName string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	sp := filepath.Join(dir, "slicks.geojson")
	tp := filepath.Join(dir, tracksName)
	if err := os.WriteFile(sp, []byte(spills), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tp, []byte(tracks), 0o600); err != nil {
		t.Fatal(err)
	}
	return sp, tp
}

func TestRun(t *testing.T) {
	Convey("Given spill and track files", t, func() {
		sp, tp := writeInputs(t, spillsJSON, tracksCSV, "ais.csv")
		out := filepath.Join(t.TempDir(), "results")

		Convey("When the batch runs", func() {
			stats, err := batch.Run(context.Background(), &batch.Config{
				SpillsPath: sp, TracksPath: tp, WindowHours: 24, OutDir: out,
			})

			Convey("Then the run succeeds", func() {
				So(err, ShouldBeNil)
				So(stats.Candidates, ShouldEqual, 2)
				So(stats.Incidents, ShouldEqual, 1)
				So(stats.Suspects, ShouldEqual, 1)
				So(stats.TracksKept, ShouldEqual, 3)
			})

			Convey("Then every table except vessel types is written", func() {
				So(stats.Files, ShouldHaveLength, 7)
				_, err := os.Stat(filepath.Join(out, "vessel_type_analysis.csv"))
				So(os.IsNotExist(err), ShouldBeTrue)

				data, err := os.ReadFile(filepath.Join(out, "ship_incident_counts.csv"))
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "rank,mmsi,vessel_name,incident_count\n1,123,ALPHA,1\n")
			})

			Convey("Then the track layer holds the matched vessel", func() {
				data, err := os.ReadFile(filepath.Join(out, batch.TracksFile))
				So(err, ShouldBeNil)
				var fc struct {
					Type     string `json:"type"`
					Features []struct {
						Geometry struct {
							Type string `json:"type"`
						} `json:"geometry"`
					} `json:"features"`
				}
				So(json.Unmarshal(data, &fc), ShouldBeNil)
				So(fc.Type, ShouldEqual, "FeatureCollection")
				So(fc.Features, ShouldHaveLength, 1)
				So(fc.Features[0].Geometry.Type, ShouldEqual, "LineString")
			})

			Convey("Then the summary prints", func() {
				var buf bytes.Buffer
				batch.PrintStats(&buf, stats)
				So(buf.String(), ShouldContainSubstring, "candidates: 2 (1 unique)")
				So(buf.String(), ShouldContainSubstring, batch.TracksFile)
			})
		})
	})

	Convey("Given tracks with a type column", t, func() {
		tracks := "mmsi,latitude,longitude,BaseDateTime,VesselType\n123,0.5,0.5,2024-01-01 09:00:00,70\n"
		sp, tp := writeInputs(t, spillsJSON, tracks, "ais.csv")
		out := t.TempDir()

		stats, err := batch.Run(context.Background(), &batch.Config{SpillsPath: sp, TracksPath: tp, OutDir: out})

		Convey("Then the vessel type table is written too", func() {
			So(err, ShouldBeNil)
			So(stats.Files, ShouldHaveLength, 8)
			So(stats.WindowHours, ShouldEqual, 24)
			_, err := os.Stat(filepath.Join(out, "vessel_type_analysis.csv"))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given JSON tracks without a telling extension", t, func() {
		tracks := `[{"mmsi":"123","latitude":0.5,"longitude":0.5,"BaseDateTime":"2024-01-01 09:00:00"}]`
		sp, tp := writeInputs(t, spillsJSON, tracks, "ais.dat")

		stats, err := batch.Run(context.Background(), &batch.Config{SpillsPath: sp, TracksPath: tp, OutDir: t.TempDir()})

		Convey("Then the content decides the format", func() {
			So(err, ShouldBeNil)
			So(stats.Incidents, ShouldEqual, 1)
		})
	})

	Convey("Given bad inputs", t, func() {
		Convey("When a path is missing", func() {
			_, err := batch.Run(context.Background(), &batch.Config{SpillsPath: "x.geojson"})
			So(errors.Is(err, batch.ErrMissingInput), ShouldBeTrue)
		})

		Convey("When a file does not exist", func() {
			_, err := batch.Run(context.Background(), &batch.Config{
				SpillsPath: filepath.Join(t.TempDir(), "nope.geojson"), TracksPath: "nope.csv",
			})
			So(errors.Is(err, batch.ErrRead), ShouldBeTrue)
		})

		Convey("When the tracks lack required columns", func() {
			sp, tp := writeInputs(t, spillsJSON, "mmsi,lat\n1,2\n", "ais.csv")
			_, err := batch.Run(context.Background(), &batch.Config{SpillsPath: sp, TracksPath: tp, OutDir: t.TempDir()})

			var schema *normalize.SchemaError
			So(errors.As(err, &schema), ShouldBeTrue)
			So(schema.Dataset, ShouldEqual, normalize.DatasetTracks)
		})
	})
}
