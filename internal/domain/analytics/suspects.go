package analytics

import (
	"sort"
	"time"

	"github.com/okian/slicktrace/internal/domain/model"
)

// PrimeSuspect is the closest-in-time candidate for one spill.
type PrimeSuspect struct {
	SpillID         string
	AreaSqKm        float64
	DetectionDate   time.Time
	MMSI            string
	VesselName      string
	VesselType      string
	Timestamp       time.Time
	Latitude        float64
	Longitude       float64
	TimeToDetection time.Duration
}

// betterSuspect orders candidates of one spill: shortest time to detection,
// then lowest mmsi, then earliest track point.
func betterSuspect(a, b model.IncidentCandidate) bool {
	if a.TimeToDetection != b.TimeToDetection {
		return a.TimeToDetection < b.TimeToDetection
	}
	if a.Track.MMSI != b.Track.MMSI {
		return a.Track.MMSI < b.Track.MMSI
	}
	return a.Track.Seq < b.Track.Seq
}

// PrimeSuspects selects one candidate per spill. Rows are ordered by spill
// area descending, then spill id.
func PrimeSuspects(candidates []model.IncidentCandidate) []PrimeSuspect {
	best := make(map[string]model.IncidentCandidate)
	for _, c := range candidates {
		cur, ok := best[c.Spill.SpillID]
		if !ok || betterSuspect(c, cur) {
			best[c.Spill.SpillID] = c
		}
	}

	rows := make([]PrimeSuspect, 0, len(best))
	for _, c := range best {
		rows = append(rows, PrimeSuspect{
			SpillID:         c.Spill.SpillID,
			AreaSqKm:        c.Spill.AreaSqKm,
			DetectionDate:   c.Spill.DetectionDate,
			MMSI:            c.Track.MMSI,
			VesselName:      c.Track.VesselName,
			VesselType:      c.Track.VesselType,
			Timestamp:       c.Track.Timestamp,
			Latitude:        c.Track.Latitude,
			Longitude:       c.Track.Longitude,
			TimeToDetection: c.TimeToDetection,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AreaSqKm != rows[j].AreaSqKm {
			return rows[i].AreaSqKm > rows[j].AreaSqKm
		}
		return rows[i].SpillID < rows[j].SpillID
	})
	return rows
}
