package export

import (
	"fmt"

	"github.com/okian/slicktrace/internal/domain/analytics"
	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer names.
const (
	LayerSpills     = "spills"
	LayerCandidates = "candidates"
	LayerTracks     = "tracks"
	LayerHotspots   = "hotspots"
)

// Layers holds the geometry sources of one analysis.
type Layers struct {
	Spills     []model.SpillRecord
	Candidates []model.UniqueIncident
	Tracks     []model.VesselTrack
	Hotspots   []analytics.Hotspot
}

// LayerNames lists the layer names.
func LayerNames() []string {
	return []string{LayerSpills, LayerCandidates, LayerTracks, LayerHotspots}
}

// Layer renders the named layer.
func (l Layers) Layer(name string) (*geojson.FeatureCollection, error) {
	switch name {
	case LayerSpills:
		return SpillsLayer(l.Spills), nil
	case LayerCandidates:
		return CandidatesLayer(l.Candidates), nil
	case LayerTracks:
		return TracksLayer(l.Tracks), nil
	case LayerHotspots:
		return HotspotsLayer(l.Hotspots), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// SpillsLayer renders spill polygons.
func SpillsLayer(spills []model.SpillRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range spills {
		f := geojson.NewFeature(s.Geometry)
		f.Properties["spill_id"] = s.SpillID
		f.Properties["area_sq_km"] = s.AreaSqKm
		f.Properties["detection_date"] = formatTime(s.DetectionDate)
		fc.Append(f)
	}
	return fc
}

// CandidatesLayer renders the track point of each unique incident.
func CandidatesLayer(unique []model.UniqueIncident) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, u := range unique {
		f := geojson.NewFeature(u.Track.Point())
		f.Properties["spill_id"] = u.Spill.SpillID
		f.Properties["mmsi"] = u.Track.MMSI
		f.Properties["vessel_name"] = u.Track.VesselName
		f.Properties["timestamp"] = formatTime(u.Track.Timestamp)
		f.Properties["time_to_detection"] = u.TimeToDetection.String()
		fc.Append(f)
	}
	return fc
}

// TracksLayer renders vessel polylines.
func TracksLayer(tracks []model.VesselTrack) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range tracks {
		f := geojson.NewFeature(t.Line)
		f.Properties["mmsi"] = t.MMSI
		f.Properties["label"] = t.Label
		f.Properties["start"] = formatTime(t.Start)
		f.Properties["end"] = formatTime(t.End)
		f.Properties["point_count"] = t.PointCount
		fc.Append(f)
	}
	return fc
}

// HotspotsLayer renders heat points.
func HotspotsLayer(hs []analytics.Hotspot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, h := range hs {
		f := geojson.NewFeature(orb.Point{h.Longitude, h.Latitude})
		f.Properties["spill_id"] = h.SpillID
		f.Properties["weight"] = h.Weight
		fc.Append(f)
	}
	return fc
}
