package analytics

import (
	"sort"

	"github.com/okian/slicktrace/internal/domain/model"
)

// VesselTypeRow aggregates unique incidents by vessel type.
type VesselTypeRow struct {
	VesselType    string
	IncidentCount int
	TotalAreaSqKm float64
}

// VesselTypeRollup groups unique incidents by vessel type. It returns nil
// when the source tracks carried no type column. Incidents with an empty
// type are skipped.
func VesselTypeRollup(unique []model.UniqueIncident, hasType bool) []VesselTypeRow {
	if !hasType {
		return nil
	}
	idx := make(map[string]int)
	rows := []VesselTypeRow{}
	for _, u := range unique {
		vt := u.Track.VesselType
		if vt == "" {
			continue
		}
		i, ok := idx[vt]
		if !ok {
			i = len(rows)
			idx[vt] = i
			rows = append(rows, VesselTypeRow{VesselType: vt})
		}
		rows[i].IncidentCount++
		rows[i].TotalAreaSqKm += u.Spill.AreaSqKm
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].IncidentCount != rows[j].IncidentCount {
			return rows[i].IncidentCount > rows[j].IncidentCount
		}
		return rows[i].VesselType < rows[j].VesselType
	})
	return rows
}
