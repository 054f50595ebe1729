// Package tracks rebuilds movement polylines for matched vessels.
package tracks

import (
	"sort"

	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/paulmach/orb"
)

// Vessels returns the set of vessels present in the incidents.
func Vessels(unique []model.UniqueIncident) map[string]struct{} {
	set := make(map[string]struct{}, len(unique))
	for _, u := range unique {
		set[u.Track.MMSI] = struct{}{}
	}
	return set
}

// For builds one track per vessel in vessels from every point of that
// vessel, sorted by time. Vessels with fewer than two points are omitted.
// Tracks are ordered by mmsi.
func For(vessels map[string]struct{}, points []model.TrackPoint) []model.VesselTrack {
	byVessel := make(map[string][]model.TrackPoint, len(vessels))
	for _, p := range points {
		if _, ok := vessels[p.MMSI]; ok {
			byVessel[p.MMSI] = append(byVessel[p.MMSI], p)
		}
	}

	out := make([]model.VesselTrack, 0, len(byVessel))
	for mmsi, pts := range byVessel {
		if len(pts) < 2 {
			continue
		}
		sort.SliceStable(pts, func(i, j int) bool {
			return pts[i].Timestamp.Before(pts[j].Timestamp)
		})

		line := make(orb.LineString, len(pts))
		label := ""
		for i, p := range pts {
			line[i] = p.Point()
			if label == "" {
				label = p.VesselName
			}
		}
		if label == "" {
			label = "MMSI " + mmsi
		}

		out = append(out, model.VesselTrack{
			MMSI:       mmsi,
			Label:      label,
			Start:      pts[0].Timestamp,
			End:        pts[len(pts)-1].Timestamp,
			Line:       line,
			PointCount: len(pts),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MMSI < out[j].MMSI })
	return out
}
