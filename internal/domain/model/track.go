package model

import (
	"time"

	"github.com/paulmach/orb"
)

// TrackPoint is a single timestamped vessel position.
type TrackPoint struct {
	MMSI       string
	VesselName string // empty when absent
	VesselType string // empty when absent
	Timestamp  time.Time
	Latitude   float64
	Longitude  float64
	Seq        int // position in the source table
}

// Point returns the WGS84 position as lon/lat.
func (p TrackPoint) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// TrackSet is a normalized track table. Optional column presence is
// resolved once at normalization.
type TrackSet struct {
	Points        []TrackPoint
	HasVesselName bool
	HasVesselType bool
}

// Len returns the number of points.
func (t TrackSet) Len() int { return len(t.Points) }

// VesselTrack is the ordered polyline of one vessel.
type VesselTrack struct {
	MMSI       string
	Label      string
	Start      time.Time
	End        time.Time
	Line       orb.LineString
	PointCount int
}
