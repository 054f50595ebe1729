package analytics

import "github.com/okian/slicktrace/internal/domain/model"

// Tables bundles every derived view of one run.
type Tables struct {
	Report         []ReportRow
	VesselCounts   []VesselCount
	VesselAreas    []VesselArea
	SpillCounts    []SpillCount
	PrimeSuspects  []PrimeSuspect
	VesselTypes    []VesselTypeRow // nil when tracks had no type column
	Hotspots       []Hotspot
	HasVesselTypes bool
}

// Compute derives all tables from one run's candidates.
func Compute(spills []model.SpillRecord, candidates []model.IncidentCandidate, unique []model.UniqueIncident, hasType bool) Tables {
	return Tables{
		Report:         CandidateReport(unique),
		VesselCounts:   VesselIncidentCounts(unique),
		VesselAreas:    VesselAreaTotals(unique),
		SpillCounts:    SpillCandidateCounts(candidates),
		PrimeSuspects:  PrimeSuspects(candidates),
		VesselTypes:    VesselTypeRollup(unique, hasType),
		Hotspots:       Hotspots(spills),
		HasVesselTypes: hasType,
	}
}
