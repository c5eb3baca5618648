package analytics

import (
	"sort"

	"github.com/dkalnina/garagelog/internal/models"
)

// RecomputeEfficiencies re-derives every entry's MPG deterministically from
// the full chronology: entries are sorted by (vehicle, date) ascending and
// walked once per vehicle carrying the last seen entry. This is the
// authoritative repair for efficiencies left stale by single-entry edits.
// The input is not modified; the result holds recomputed copies in sorted
// order.
func RecomputeEfficiencies(vehicles []models.Vehicle, entries []models.FuelEntry) []models.FuelEntry {
	types := make(map[string]models.VehicleType, len(vehicles))
	for _, v := range vehicles {
		types[v.ID] = v.Type
	}

	out := append([]models.FuelEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VehicleID != out[j].VehicleID {
			return out[i].VehicleID < out[j].VehicleID
		}
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	var last *models.FuelEntry
	for i := range out {
		e := &out[i]
		if last == nil || last.VehicleID != e.VehicleID {
			last = nil
		}

		e.MPG = nil
		if types[e.VehicleID] != models.VehicleTypeElectric &&
			last != nil && e.Mileage > last.Mileage && e.Quantity > 0 {
			mpg := float64(e.Mileage-last.Mileage) / e.Quantity
			e.MPG = &mpg
		}

		last = e
	}
	return out
}
