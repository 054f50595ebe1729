// Package export renders analysis results as flat delimited tables and
// GeoJSON feature collections.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/slicktrace/internal/domain/analytics"
)

// Table names.
const (
	TableCandidates    = "candidates"
	TableVesselCounts  = "vessel_counts"
	TableVesselAreas   = "vessel_areas"
	TableSpillCounts   = "spill_counts"
	TablePrimeSuspects = "prime_suspects"
	TableVesselTypes   = "vessel_types"
	TableHotspots      = "hotspots"
)

// Table is a rendered table with a fixed column order.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type tableDef struct {
	name  string
	file  string
	build func(analytics.Tables) Table
}

var tableDefs = []tableDef{
	{TableCandidates, "candidate_vessels_report.csv", func(t analytics.Tables) Table { return Candidates(t.Report) }},
	{TableVesselCounts, "ship_incident_counts.csv", func(t analytics.Tables) Table { return VesselCounts(t.VesselCounts) }},
	{TableVesselAreas, "ship_area_sum.csv", func(t analytics.Tables) Table { return VesselAreas(t.VesselAreas) }},
	{TableSpillCounts, "spill_candidate_counts.csv", func(t analytics.Tables) Table { return SpillCounts(t.SpillCounts) }},
	{TablePrimeSuspects, "prime_suspects_report.csv", func(t analytics.Tables) Table { return PrimeSuspects(t.PrimeSuspects) }},
	{TableVesselTypes, "vessel_type_analysis.csv", func(t analytics.Tables) Table { return VesselTypes(t.VesselTypes) }},
	{TableHotspots, "hotspots.csv", func(t analytics.Tables) Table { return Hotspots(t.Hotspots) }},
}

// TableNames lists the table names in export order.
func TableNames() []string {
	names := make([]string, len(tableDefs))
	for i, d := range tableDefs {
		names[i] = d.name
	}
	return names
}

// FileName returns the CSV file name used for a table.
func FileName(name string) (string, error) {
	for _, d := range tableDefs {
		if d.name == name {
			return d.file, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

// Build renders the named table.
func Build(name string, t analytics.Tables) (Table, error) {
	for _, d := range tableDefs {
		if d.name == name {
			return d.build(t), nil
		}
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

// WriteCSV writes t as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Candidates renders the candidate vessel report.
func Candidates(rows []analytics.ReportRow) Table {
	t := Table{
		Name:    TableCandidates,
		Columns: []string{"spill_id", "mmsi", "vessel_name", "vessel_type", "timestamp", "detection_date", "area_sq_km", "time_to_detection"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.SpillID, r.MMSI, r.VesselName, r.VesselType,
			formatTime(r.Timestamp), formatTime(r.DetectionDate),
			formatFloat(r.AreaSqKm), r.TimeToDetection.String(),
		})
	}
	return t
}

// VesselCounts renders the vessel leaderboard by incident count.
func VesselCounts(rows []analytics.VesselCount) Table {
	t := Table{
		Name:    TableVesselCounts,
		Columns: []string{"rank", "mmsi", "vessel_name", "incident_count"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Rank), r.MMSI, r.VesselName, strconv.Itoa(r.IncidentCount)})
	}
	return t
}

// VesselAreas renders the vessel leaderboard by cumulative area.
func VesselAreas(rows []analytics.VesselArea) Table {
	t := Table{
		Name:    TableVesselAreas,
		Columns: []string{"rank", "mmsi", "vessel_name", "total_area_sq_km"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Rank), r.MMSI, r.VesselName, formatFloat(r.TotalAreaSqKm)})
	}
	return t
}

// SpillCounts renders the spill leaderboard by distinct vessels.
func SpillCounts(rows []analytics.SpillCount) Table {
	t := Table{
		Name:    TableSpillCounts,
		Columns: []string{"rank", "spill_id", "candidate_count"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Rank), r.SpillID, strconv.Itoa(r.CandidateCount)})
	}
	return t
}

// PrimeSuspects renders one suspect per spill.
func PrimeSuspects(rows []analytics.PrimeSuspect) Table {
	t := Table{
		Name: TablePrimeSuspects,
		Columns: []string{"spill_id", "area_sq_km", "detection_date", "mmsi", "vessel_name", "vessel_type",
			"timestamp", "latitude", "longitude", "time_to_detection"},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.SpillID, formatFloat(r.AreaSqKm), formatTime(r.DetectionDate),
			r.MMSI, r.VesselName, r.VesselType, formatTime(r.Timestamp),
			formatFloat(r.Latitude), formatFloat(r.Longitude), r.TimeToDetection.String(),
		})
	}
	return t
}

// VesselTypes renders the vessel type rollup.
func VesselTypes(rows []analytics.VesselTypeRow) Table {
	t := Table{
		Name:    TableVesselTypes,
		Columns: []string{"vessel_type", "incident_count", "total_area_sq_km"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.VesselType, strconv.Itoa(r.IncidentCount), formatFloat(r.TotalAreaSqKm)})
	}
	return t
}

// Hotspots renders spill heat points.
func Hotspots(rows []analytics.Hotspot) Table {
	t := Table{
		Name:    TableHotspots,
		Columns: []string{"spill_id", "latitude", "longitude", "weight"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.SpillID, formatFloat(r.Latitude), formatFloat(r.Longitude), formatFloat(r.Weight)})
	}
	return t
}
