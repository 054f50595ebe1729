// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/paulmach/orb"
)

// SpillIDLayout is the layout of identifiers that embed the detection time.
const SpillIDLayout = "2006-01-02_15:04:05"

// SpillRecord is a normalized contamination polygon.
type SpillRecord struct {
	SpillID       string       // always a string, whatever the source typing
	AreaSqKm      float64      // non-negative
	DetectionDate time.Time    // UTC
	Geometry      orb.Geometry // orb.Polygon or orb.MultiPolygon in WGS84
	Seq           int          // position in the source collection
}

// Bound returns the bounding box of the spill geometry.
func (s SpillRecord) Bound() orb.Bound {
	if s.Geometry == nil {
		return orb.Bound{}
	}
	return s.Geometry.Bound()
}

// Polygons flattens the geometry into its member polygons.
func (s SpillRecord) Polygons() []orb.Polygon {
	switch g := s.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	}
	return nil
}
