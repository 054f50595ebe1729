package analytics

import (
	"sort"
	"time"

	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/paulmach/orb/planar"
)

// ReportRow is one line of the candidate vessel report.
type ReportRow struct {
	SpillID         string
	MMSI            string
	VesselName      string
	VesselType      string
	Timestamp       time.Time
	DetectionDate   time.Time
	AreaSqKm        float64
	TimeToDetection time.Duration
}

// CandidateReport lists unique incidents, most recent detection first.
func CandidateReport(unique []model.UniqueIncident) []ReportRow {
	rows := make([]ReportRow, len(unique))
	for i, u := range unique {
		rows[i] = ReportRow{
			SpillID:         u.Spill.SpillID,
			MMSI:            u.Track.MMSI,
			VesselName:      u.Track.VesselName,
			VesselType:      u.Track.VesselType,
			Timestamp:       u.Track.Timestamp,
			DetectionDate:   u.Spill.DetectionDate,
			AreaSqKm:        u.Spill.AreaSqKm,
			TimeToDetection: u.TimeToDetection,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].DetectionDate.Equal(rows[j].DetectionDate) {
			return rows[i].DetectionDate.After(rows[j].DetectionDate)
		}
		if rows[i].SpillID != rows[j].SpillID {
			return rows[i].SpillID < rows[j].SpillID
		}
		return rows[i].MMSI < rows[j].MMSI
	})
	return rows
}

// Hotspot is a heat point at a spill centroid weighted by area.
type Hotspot struct {
	SpillID   string
	Latitude  float64
	Longitude float64
	Weight    float64
}

// Hotspots returns one heat point per spill, in spill order.
func Hotspots(spills []model.SpillRecord) []Hotspot {
	out := make([]Hotspot, 0, len(spills))
	for _, s := range spills {
		if s.Geometry == nil {
			continue
		}
		c, _ := planar.CentroidArea(s.Geometry)
		out = append(out, Hotspot{
			SpillID:   s.SpillID,
			Latitude:  c[1],
			Longitude: c[0],
			Weight:    s.AreaSqKm,
		})
	}
	return out
}
