// Package analytics derives ranked views from matched incidents. Every
// function is pure and leaves its inputs untouched.
package analytics

import (
	"sort"

	"github.com/okian/slicktrace/internal/domain/model"
)

// VesselCount is a row of the vessel leaderboard by incident count.
type VesselCount struct {
	Rank          int
	MMSI          string
	VesselName    string
	IncidentCount int
}

// VesselArea is a row of the vessel leaderboard by cumulative area.
type VesselArea struct {
	Rank          int
	MMSI          string
	VesselName    string
	TotalAreaSqKm float64
}

// SpillCount is a row of the spill leaderboard by distinct vessels.
type SpillCount struct {
	Rank           int
	SpillID        string
	CandidateCount int
}

// vesselNames maps each mmsi to its first non-empty name in incident order.
func vesselNames(unique []model.UniqueIncident) map[string]string {
	names := make(map[string]string)
	for _, u := range unique {
		if _, ok := names[u.Track.MMSI]; ok {
			continue
		}
		if u.Track.VesselName != "" {
			names[u.Track.MMSI] = u.Track.VesselName
		}
	}
	return names
}

// VesselIncidentCounts counts unique incidents per vessel.
func VesselIncidentCounts(unique []model.UniqueIncident) []VesselCount {
	names := vesselNames(unique)
	idx := make(map[string]int)
	var rows []VesselCount
	for _, u := range unique {
		i, ok := idx[u.Track.MMSI]
		if !ok {
			i = len(rows)
			idx[u.Track.MMSI] = i
			rows = append(rows, VesselCount{MMSI: u.Track.MMSI, VesselName: names[u.Track.MMSI]})
		}
		rows[i].IncidentCount++
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].IncidentCount != rows[j].IncidentCount {
			return rows[i].IncidentCount > rows[j].IncidentCount
		}
		return rows[i].MMSI < rows[j].MMSI
	})
	assignDenseRanks(rows,
		func(r VesselCount) float64 { return float64(r.IncidentCount) },
		func(r *VesselCount, rank int) { r.Rank = rank })
	return rows
}

// VesselAreaTotals sums spill area over each vessel's unique incidents.
func VesselAreaTotals(unique []model.UniqueIncident) []VesselArea {
	names := vesselNames(unique)
	idx := make(map[string]int)
	var rows []VesselArea
	for _, u := range unique {
		i, ok := idx[u.Track.MMSI]
		if !ok {
			i = len(rows)
			idx[u.Track.MMSI] = i
			rows = append(rows, VesselArea{MMSI: u.Track.MMSI, VesselName: names[u.Track.MMSI]})
		}
		rows[i].TotalAreaSqKm += u.Spill.AreaSqKm
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalAreaSqKm != rows[j].TotalAreaSqKm {
			return rows[i].TotalAreaSqKm > rows[j].TotalAreaSqKm
		}
		return rows[i].MMSI < rows[j].MMSI
	})
	assignDenseRanks(rows,
		func(r VesselArea) float64 { return r.TotalAreaSqKm },
		func(r *VesselArea, rank int) { r.Rank = rank })
	return rows
}

// SpillCandidateCounts counts distinct vessels per spill.
func SpillCandidateCounts(candidates []model.IncidentCandidate) []SpillCount {
	idx := make(map[string]int)
	seen := make(map[model.IncidentKey]struct{})
	var rows []SpillCount
	for _, c := range candidates {
		i, ok := idx[c.Spill.SpillID]
		if !ok {
			i = len(rows)
			idx[c.Spill.SpillID] = i
			rows = append(rows, SpillCount{SpillID: c.Spill.SpillID})
		}
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		seen[c.Key()] = struct{}{}
		rows[i].CandidateCount++
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CandidateCount != rows[j].CandidateCount {
			return rows[i].CandidateCount > rows[j].CandidateCount
		}
		return rows[i].SpillID < rows[j].SpillID
	})
	assignDenseRanks(rows,
		func(r SpillCount) float64 { return float64(r.CandidateCount) },
		func(r *SpillCount, rank int) { r.Rank = rank })
	return rows
}
