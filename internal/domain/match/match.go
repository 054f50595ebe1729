// Package match joins track points against spill polygons under a causal
// time window.
package match

import (
	"sort"
	"time"

	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/tidwall/rtree"
)

// Index is an R-tree over spill bounding boxes. It is immutable once built
// and may be queried for any number of windows.
type Index struct {
	spills []model.SpillRecord
	tree   rtree.RTreeG[int]
}

// NewIndex indexes spills by bounding box.
func NewIndex(spills []model.SpillRecord) *Index {
	ix := &Index{spills: spills}
	for i, s := range spills {
		b := s.Bound()
		ix.tree.Insert([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}, i)
	}
	return ix
}

// Len returns the number of indexed spills.
func (ix *Index) Len() int { return len(ix.spills) }

// Match returns every (point, spill) pair where the point lies strictly
// within the spill and DetectionDate-window <= Timestamp <= DetectionDate.
// Results are ordered by point order, then spill order.
func (ix *Index) Match(points []model.TrackPoint, window time.Duration) []model.IncidentCandidate {
	if len(ix.spills) == 0 || len(points) == 0 {
		return nil
	}

	var (
		out  []model.IncidentCandidate
		hits []int
	)
	for _, p := range points {
		pt := p.Point()
		hits = hits[:0]
		ix.tree.Search(pt, pt, func(_, _ [2]float64, i int) bool {
			hits = append(hits, i)
			return true
		})
		if len(hits) == 0 {
			continue
		}
		sort.Ints(hits)

		for _, i := range hits {
			s := ix.spills[i]
			if !inWindow(p.Timestamp, s.DetectionDate, window) {
				continue
			}
			if !Within(s.Geometry, pt) {
				continue
			}
			out = append(out, model.NewCandidate(s, p))
		}
	}
	return out
}

// Match is a one-shot join of points against spills.
func Match(spills []model.SpillRecord, points []model.TrackPoint, window time.Duration) []model.IncidentCandidate {
	return NewIndex(spills).Match(points, window)
}

func inWindow(ts, detected time.Time, window time.Duration) bool {
	return !ts.After(detected) && !ts.Before(detected.Add(-window))
}
