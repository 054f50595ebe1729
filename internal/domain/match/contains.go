package match

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// collinearEpsilon absorbs float noise when testing a point against an edge.
const collinearEpsilon = 1e-12

// Within reports whether p lies strictly inside g. Points on any ring edge,
// outer or hole, are not within; points inside a hole are not within.
func Within(g orb.Geometry, p orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return !onPolygonBoundary(v, p) && planar.PolygonContains(v, p)
	case orb.MultiPolygon:
		for _, poly := range v {
			if onPolygonBoundary(poly, p) {
				return false
			}
		}
		return planar.MultiPolygonContains(v, p)
	}
	return false
}

func onPolygonBoundary(poly orb.Polygon, p orb.Point) bool {
	for _, ring := range poly {
		if onRing(ring, p) {
			return true
		}
	}
	return false
}

func onRing(r orb.Ring, p orb.Point) bool {
	n := len(r)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if onSegment(a, b, p) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	if p[0] < math.Min(a[0], b[0]) || p[0] > math.Max(a[0], b[0]) ||
		p[1] < math.Min(a[1], b[1]) || p[1] > math.Max(a[1], b[1]) {
		return false
	}
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	return math.Abs(cross) <= collinearEpsilon
}
