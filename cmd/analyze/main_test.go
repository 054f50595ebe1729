package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const spillsJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"slick_name":"2024-01-01_10:00:00","area_sys":5.0},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`

const tracksCSV = "mmsi,latitude,longitude,BaseDateTime\n123,0.5,0.5,2024-01-01 09:00:00\n"

func TestRun(t *testing.T) {
	Convey("Given input files", t, func() {
		dir := t.TempDir()
		sp := filepath.Join(dir, "slicks.geojson")
		tp := filepath.Join(dir, "ais.csv")
		So(os.WriteFile(sp, []byte(spillsJSON), 0o600), ShouldBeNil)
		So(os.WriteFile(tp, []byte(tracksCSV), 0o600), ShouldBeNil)
		out := filepath.Join(dir, "out")

		Convey("When the tool runs", func() {
			code := run([]string{"-spills", sp, "-tracks", tp, "-window", "12", "-out", out, "-log-level", "error"})

			Convey("Then it exits cleanly and writes the report", func() {
				So(code, ShouldEqual, 0)
				_, err := os.Stat(filepath.Join(out, "candidate_vessels_report.csv"))
				So(err, ShouldBeNil)
			})
		})

		Convey("When the window is out of range", func() {
			code := run([]string{"-spills", sp, "-tracks", tp, "-window", "500", "-out", out, "-log-level", "error"})

			Convey("Then it fails", func() {
				So(code, ShouldEqual, 1)
			})
		})

		Convey("When the format is unknown", func() {
			code := run([]string{"-spills", sp, "-tracks", tp, "-format", "xml", "-log-level", "error"})

			Convey("Then it is a usage error", func() {
				So(code, ShouldEqual, 2)
			})
		})

		Convey("When help is requested", func() {
			So(run([]string{"-help"}), ShouldEqual, 0)
		})
	})
}
