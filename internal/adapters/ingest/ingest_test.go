package ingest_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/okian/slicktrace/internal/adapters/ingest"
	"github.com/paulmach/orb"
	. "github.com/smartystreets/goconvey/convey"
)

const square = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3857"}},
  "features": [{
    "type": "Feature",
    "properties": {"slick_name": "2024-01-01_10:00:00", "area_sys": 5.0},
    "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
  }]
}`

func TestDecodeFeatureCollection(t *testing.T) {
	Convey("Given a feature collection with a named CRS", t, func() {
		fc, err := ingest.DecodeFeatureCollection([]byte(square))

		Convey("Then features and CRS are decoded", func() {
			So(err, ShouldBeNil)
			So(fc.CRS, ShouldEqual, "urn:ogc:def:crs:EPSG::3857")
			So(fc.Features, ShouldHaveLength, 1)
			So(fc.Features[0].Properties["slick_name"], ShouldEqual, "2024-01-01_10:00:00")
			_, ok := fc.Features[0].Geometry.(orb.Polygon)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a collection without a CRS", t, func() {
		fc, err := ingest.DecodeFeatureCollection([]byte(`{"type":"FeatureCollection","features":[]}`))

		Convey("Then the CRS is empty", func() {
			So(err, ShouldBeNil)
			So(fc.CRS, ShouldBeEmpty)
			So(fc.Features, ShouldBeEmpty)
		})
	})

	Convey("Given malformed input", t, func() {
		_, err := ingest.DecodeFeatureCollection([]byte(`{"type":`))

		Convey("Then a decode error is returned", func() {
			So(errors.Is(err, ingest.ErrDecode), ShouldBeTrue)
		})
	})
}

func TestDecodeTable(t *testing.T) {
	Convey("Given a CSV table with a BOM and a short row", t, func() {
		data := "\xEF\xBB\xBFmmsi, latitude,longitude,BaseDateTime\n123,0.5,0.5,2024-01-01T09:00:00\n456,1\n"
		tbl, err := ingest.DecodeTable([]byte(data), "")

		Convey("Then header names are cleaned and cells kept as strings", func() {
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"mmsi", "latitude", "longitude", "BaseDateTime"})
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Has("latitude"), ShouldBeTrue)
			So(tbl.Has("VesselType"), ShouldBeFalse)

			v, ok := tbl.Value(0, "mmsi")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "123")

			_, ok = tbl.Value(1, "longitude")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an empty CSV", t, func() {
		tbl, err := ingest.DecodeCSV(strings.NewReader(""))

		Convey("Then an empty table is returned", func() {
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 0)
			So(tbl.Columns, ShouldBeEmpty)
		})
	})

	Convey("Given JSON records", t, func() {
		data := `[{"mmsi": 123, "latitude": 0.5}, {"mmsi": "456", "longitude": 1, "BaseDateTime": "x"}]`
		tbl, err := ingest.DecodeTable([]byte(data), "")

		Convey("Then columns are the key union and numbers stay exact", func() {
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"latitude", "mmsi", "BaseDateTime", "longitude"})
			v, _ := tbl.Value(0, "mmsi")
			So(v, ShouldEqual, json.Number("123"))
		})
	})

	Convey("Given a JSON object instead of an array", t, func() {
		_, err := ingest.DecodeTable([]byte(`{"mmsi": 1}`), ingest.FormatJSON)

		Convey("Then a decode error is returned", func() {
			So(errors.Is(err, ingest.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given format names", t, func() {
		Convey("Then known names resolve and others fail", func() {
			f, err := ingest.ParseFormat(" JSON ")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, ingest.FormatJSON)

			f, err = ingest.ParseFormat("")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, ingest.Format(""))

			_, err = ingest.ParseFormat("parquet")
			So(errors.Is(err, ingest.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestFormatDetection(t *testing.T) {
	Convey("Given track uploads", t, func() {
		Convey("Then extensions decide the format", func() {
			So(ingest.FormatFromName("ais.CSV"), ShouldEqual, ingest.FormatCSV)
			So(ingest.FormatFromName("dir/ais.json"), ShouldEqual, ingest.FormatJSON)
			So(ingest.FormatFromName("ais.txt"), ShouldEqual, ingest.Format(""))
		})

		Convey("Then content is sniffed when the name says nothing", func() {
			So(ingest.Sniff([]byte("\xEF\xBB\xBF  [{}]")), ShouldEqual, ingest.FormatJSON)
			So(ingest.Sniff([]byte("mmsi,latitude\n")), ShouldEqual, ingest.FormatCSV)
		})

		Convey("Then format names are validated", func() {
			_, err := ingest.ParseFormat("xml")
			So(errors.Is(err, ingest.ErrUnknownFormat), ShouldBeTrue)
			f, err := ingest.ParseFormat(" JSON ")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, ingest.FormatJSON)
		})
	})
}
