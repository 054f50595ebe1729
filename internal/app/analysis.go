package service

import (
	"time"

	"github.com/okian/slicktrace/internal/adapters/export"
	"github.com/okian/slicktrace/internal/domain/analytics"
	"github.com/okian/slicktrace/internal/domain/match"
	"github.com/okian/slicktrace/internal/domain/model"
	"github.com/okian/slicktrace/internal/domain/normalize"
)

// Analysis is the immutable result of one pipeline run.
type Analysis struct {
	ID          string
	CreatedAt   time.Time
	WindowHours int

	Spills     []model.SpillRecord
	Tracks     model.TrackSet
	SpillDrops normalize.DropReport
	TrackDrops normalize.DropReport

	Candidates   []model.IncidentCandidate
	Unique       []model.UniqueIncident
	Tables       analytics.Tables
	VesselTracks []model.VesselTrack

	index *match.Index
}

// Layers returns the geometry layers of the analysis.
func (a *Analysis) Layers() export.Layers {
	return export.Layers{
		Spills:     a.Spills,
		Candidates: a.Unique,
		Tracks:     a.VesselTracks,
		Hotspots:   a.Tables.Hotspots,
	}
}

// Table renders the named table.
func (a *Analysis) Table(name string) (export.Table, error) {
	return export.Build(name, a.Tables)
}

// DatasetSummary describes one normalized input.
type DatasetSummary struct {
	Total   int      `json:"total"`
	Kept    int      `json:"kept"`
	Dropped int      `json:"dropped"`
	Samples []string `json:"drop_samples,omitempty"`
}

// Summary is the JSON view of an analysis.
type Summary struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	WindowHours     int            `json:"window_hours"`
	Spills          DatasetSummary `json:"spills"`
	Tracks          DatasetSummary `json:"tracks"`
	Candidates      int            `json:"candidates"`
	UniqueIncidents int            `json:"unique_incidents"`
	Vessels         int            `json:"vessels"`
	PrimeSuspects   int            `json:"prime_suspects"`
	VesselTracks    int            `json:"vessel_tracks"`
	HasVesselTypes  bool           `json:"has_vessel_types"`
	Tables          []string       `json:"tables"`
	Layers          []string       `json:"layers"`
}

func datasetSummary(r normalize.DropReport) DatasetSummary {
	ds := DatasetSummary{Total: r.Total, Kept: r.Kept(), Dropped: r.Dropped}
	for _, e := range r.Samples {
		ds.Samples = append(ds.Samples, e.Error())
	}
	return ds
}

// Summary returns the JSON view of the analysis.
func (a *Analysis) Summary() Summary {
	return Summary{
		ID:              a.ID,
		CreatedAt:       a.CreatedAt,
		WindowHours:     a.WindowHours,
		Spills:          datasetSummary(a.SpillDrops),
		Tracks:          datasetSummary(a.TrackDrops),
		Candidates:      len(a.Candidates),
		UniqueIncidents: len(a.Unique),
		Vessels:         len(a.Tables.VesselCounts),
		PrimeSuspects:   len(a.Tables.PrimeSuspects),
		VesselTracks:    len(a.VesselTracks),
		HasVesselTypes:  a.Tables.HasVesselTypes,
		Tables:          export.TableNames(),
		Layers:          export.LayerNames(),
	}
}
