package normalize

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/okian/slicktrace/internal/domain/model"
)

// Table is a decoded record table.
type Table interface {
	Has(col string) bool
	Len() int
	Value(row int, col string) (any, bool)
}

// TrackColumns names the columns read from AIS tables.
type TrackColumns struct {
	MMSI      string
	Latitude  string
	Longitude string
	Timestamp string
	Name      string
	Type      string
}

// DefaultTrackColumns returns the column names of the usual AIS export.
func DefaultTrackColumns() TrackColumns {
	return TrackColumns{
		MMSI:      "mmsi",
		Latitude:  "latitude",
		Longitude: "longitude",
		Timestamp: "BaseDateTime",
		Name:      "vessel_name",
		Type:      "VesselType",
	}
}

func (c TrackColumns) withDefaults() TrackColumns {
	d := DefaultTrackColumns()
	if c.MMSI == "" {
		c.MMSI = d.MMSI
	}
	if c.Latitude == "" {
		c.Latitude = d.Latitude
	}
	if c.Longitude == "" {
		c.Longitude = d.Longitude
	}
	if c.Timestamp == "" {
		c.Timestamp = d.Timestamp
	}
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Type == "" {
		c.Type = d.Type
	}
	return c
}

// Tracks validates table rows into track points in input order.
func Tracks(t Table, cols TrackColumns) (model.TrackSet, DropReport, error) {
	cols = cols.withDefaults()
	report := DropReport{Dataset: DatasetTracks, Total: t.Len()}

	if t.Len() == 0 {
		return model.TrackSet{}, report, &EmptyDatasetError{Dataset: DatasetTracks}
	}

	var missing []string
	for _, name := range []string{cols.MMSI, cols.Latitude, cols.Longitude, cols.Timestamp} {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return model.TrackSet{}, report, &SchemaError{Dataset: DatasetTracks, Missing: missing}
	}

	set := model.TrackSet{
		Points:        make([]model.TrackPoint, 0, t.Len()),
		HasVesselName: t.Has(cols.Name),
		HasVesselType: t.Has(cols.Type),
	}
	for i := 0; i < t.Len(); i++ {
		p, perr := trackPoint(t, i, cols, set.HasVesselName, set.HasVesselType)
		if perr != nil {
			report.drop(perr)
			continue
		}
		set.Points = append(set.Points, p)
	}

	if len(set.Points) == 0 {
		return model.TrackSet{}, report, &EmptyDatasetError{Dataset: DatasetTracks, Total: report.Total, Dropped: report.Dropped}
	}
	return set, report, nil
}

func trackPoint(t Table, i int, cols TrackColumns, hasName, hasType bool) (model.TrackPoint, *ParseError) {
	fail := func(field, value, reason string) (model.TrackPoint, *ParseError) {
		return model.TrackPoint{}, &ParseError{Dataset: DatasetTracks, Record: i, Field: field, Value: value, Reason: reason}
	}
	cell := func(col string) any {
		v, _ := t.Value(i, col)
		return v
	}

	mmsi := ID(cell(cols.MMSI))
	if mmsi == "" {
		return fail(cols.MMSI, "", "missing vessel id")
	}

	rawLat, rawLon := cell(cols.Latitude), cell(cols.Longitude)
	lat, ok := number(rawLat)
	if !ok || lat < -90 || lat > 90 {
		return fail(cols.Latitude, text(rawLat), "missing or invalid latitude")
	}
	lon, ok := number(rawLon)
	if !ok || lon < -180 || lon > 180 {
		return fail(cols.Longitude, text(rawLon), "missing or invalid longitude")
	}

	raw := text(cell(cols.Timestamp))
	if raw == "" {
		return fail(cols.Timestamp, "", "missing timestamp")
	}
	ts, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return fail(cols.Timestamp, raw, "unparseable timestamp")
	}

	p := model.TrackPoint{
		MMSI:      mmsi,
		Timestamp: ts.UTC(),
		Latitude:  lat,
		Longitude: lon,
		Seq:       i,
	}
	if hasName {
		p.VesselName = text(cell(cols.Name))
	}
	if hasType {
		p.VesselType = text(cell(cols.Type))
	}
	return p, nil
}
