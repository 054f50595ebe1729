package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// SpillFields names the feature properties read from spill collections.
type SpillFields struct {
	ID   string
	Area string
	Date string
	Time string
}

// DefaultSpillFields returns the property names of the usual slick export.
func DefaultSpillFields() SpillFields {
	return SpillFields{ID: "slick_name", Area: "area_sys", Date: "date", Time: "time"}
}

func (f SpillFields) withDefaults() SpillFields {
	d := DefaultSpillFields()
	if f.ID == "" {
		f.ID = d.ID
	}
	if f.Area == "" {
		f.Area = d.Area
	}
	if f.Date == "" {
		f.Date = d.Date
	}
	if f.Time == "" {
		f.Time = d.Time
	}
	return f
}

// Spills validates features into spill records in input order.
//
// A property counts as present when any feature carries it. Detection time
// comes from the date and time properties when both are present, otherwise
// from the identifier. Geometry in a declared web mercator CRS is reprojected
// to WGS84.
func Spills(features []*geojson.Feature, crs string, fields SpillFields) ([]model.SpillRecord, DropReport, error) {
	fields = fields.withDefaults()
	report := DropReport{Dataset: DatasetSpills, Total: len(features)}

	if len(features) == 0 {
		return nil, report, &EmptyDatasetError{Dataset: DatasetSpills}
	}

	present := make(map[string]bool)
	for _, f := range features {
		if f == nil {
			continue
		}
		for k := range f.Properties {
			present[k] = true
		}
	}
	var missing []string
	for _, name := range []string{fields.ID, fields.Area} {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, report, &SchemaError{Dataset: DatasetSpills, Missing: missing}
	}

	proj, err := resolveCRS(crs)
	if err != nil {
		return nil, report, err
	}
	useDateTime := present[fields.Date] && present[fields.Time]

	out := make([]model.SpillRecord, 0, len(features))
	for i, f := range features {
		rec, perr := spillRecord(i, f, fields, useDateTime, proj)
		if perr != nil {
			report.drop(perr)
			continue
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, report, &EmptyDatasetError{Dataset: DatasetSpills, Total: report.Total, Dropped: report.Dropped}
	}
	return out, report, nil
}

func spillRecord(i int, f *geojson.Feature, fields SpillFields, useDateTime bool, proj orb.Projection) (model.SpillRecord, *ParseError) {
	fail := func(field, value, reason string) (model.SpillRecord, *ParseError) {
		return model.SpillRecord{}, &ParseError{Dataset: DatasetSpills, Record: i, Field: field, Value: value, Reason: reason}
	}
	if f == nil {
		return fail("", "", "null feature")
	}

	id := ID(f.Properties[fields.ID])
	if id == "" {
		return fail(fields.ID, "", "missing identifier")
	}

	rawArea := f.Properties[fields.Area]
	area, ok := number(rawArea)
	if !ok {
		return fail(fields.Area, text(rawArea), "not a number")
	}
	if area < 0 {
		return fail(fields.Area, text(rawArea), "negative area")
	}

	var detected time.Time
	if useDateTime {
		date, clock := text(f.Properties[fields.Date]), text(f.Properties[fields.Time])
		raw := strings.TrimSpace(date + " " + clock)
		if date == "" || clock == "" {
			return fail(fields.Date+"+"+fields.Time, raw, "missing date or time")
		}
		t, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return fail(fields.Date+"+"+fields.Time, raw, "unparseable timestamp")
		}
		detected = t.UTC()
	} else {
		t, err := time.ParseInLocation(model.SpillIDLayout, id, time.UTC)
		if err != nil {
			return fail(fields.ID, id, "identifier does not embed a "+model.SpillIDLayout+" timestamp")
		}
		detected = t
	}

	geom, reason := spillGeometry(f.Geometry, proj)
	if reason != "" {
		return fail("geometry", "", reason)
	}

	return model.SpillRecord{
		SpillID:       id,
		AreaSqKm:      area,
		DetectionDate: detected,
		Geometry:      geom,
		Seq:           i,
	}, nil
}

func spillGeometry(g orb.Geometry, proj orb.Projection) (orb.Geometry, string) {
	switch v := g.(type) {
	case orb.Polygon:
		if !validPolygon(v) {
			return nil, "empty or degenerate polygon"
		}
	case orb.MultiPolygon:
		if len(v) == 0 {
			return nil, "empty multipolygon"
		}
		for _, p := range v {
			if !validPolygon(p) {
				return nil, "empty or degenerate polygon"
			}
		}
	case nil:
		return nil, "missing geometry"
	default:
		return nil, "geometry is a " + g.GeoJSONType() + ", not a polygon"
	}

	if proj != nil {
		g = project.Geometry(orb.Clone(g), proj)
	}
	b := g.Bound()
	if b.Min[0] < -180 || b.Max[0] > 180 || b.Min[1] < -90 || b.Max[1] > 90 {
		return nil, "coordinates outside WGS84 range"
	}
	return g, ""
}

func validPolygon(p orb.Polygon) bool {
	return len(p) > 0 && len(p[0]) >= 4
}
