package analytics

import (
	"sort"
	"time"

	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/units"
)

// Summary aggregates a set of fuel entries.
type Summary struct {
	EntryCount    int
	TotalSpent    float64
	TotalQuantity float64
	AvgPrice      float64
	// AvgMPG averages only entries with a computed efficiency.
	AvgMPG    float64
	CostTrend TrendResult
}

// Summarize computes totals, averages and the spend trend over the entries.
func Summarize(entries []models.FuelEntry) Summary {
	s := Summary{EntryCount: len(entries)}
	if len(entries) == 0 {
		return s
	}

	byDate := sortByDate(entries)

	var prices, amounts, mpgs []float64
	for _, e := range byDate {
		s.TotalSpent += e.Amount
		s.TotalQuantity += e.Quantity
		prices = append(prices, e.PricePerUnit)
		amounts = append(amounts, e.Amount)
		if e.MPG != nil {
			mpgs = append(mpgs, *e.MPG)
		}
	}
	s.TotalSpent = units.Round2(s.TotalSpent)
	s.AvgPrice = Mean(prices)
	s.AvgMPG = Mean(mpgs)
	s.CostTrend = Trend(amounts)
	return s
}

// MonthlyStat aggregates one calendar month.
type MonthlyStat struct {
	Month         string // "2006-01"
	EntryCount    int
	TotalAmount   float64
	TotalQuantity float64
	AvgPrice      float64
}

// MonthlyTrends groups entries by month ascending; months > 0 keeps only the
// most recent n months that have data.
func MonthlyTrends(entries []models.FuelEntry, months int) []MonthlyStat {
	byMonth := make(map[string][]models.FuelEntry)
	for _, e := range entries {
		if len(e.Date) < 7 {
			continue
		}
		m := e.Date[:7]
		byMonth[m] = append(byMonth[m], e)
	}

	keys := make([]string, 0, len(byMonth))
	for m := range byMonth {
		keys = append(keys, m)
	}
	sort.Strings(keys)
	if months > 0 && len(keys) > months {
		keys = keys[len(keys)-months:]
	}

	out := make([]MonthlyStat, 0, len(keys))
	for _, m := range keys {
		group := byMonth[m]
		stat := MonthlyStat{Month: m, EntryCount: len(group)}
		var prices []float64
		for _, e := range group {
			stat.TotalAmount += e.Amount
			stat.TotalQuantity += e.Quantity
			prices = append(prices, e.PricePerUnit)
		}
		stat.TotalAmount = units.Round2(stat.TotalAmount)
		stat.AvgPrice = Mean(prices)
		out = append(out, stat)
	}
	return out
}

// VehicleComparison aggregates one vehicle's entries for fleet comparison.
type VehicleComparison struct {
	VehicleID     string
	Name          string
	Type          models.VehicleType
	EntryCount    int
	TotalSpent    float64
	TotalQuantity float64
	AvgMPG        float64
	// CostPerMile is total spend over odometer distance covered by the
	// entries; zero when fewer than two entries.
	CostPerMile float64
}

// CompareVehicles aggregates entries per vehicle, in vehicle-name order.
// Vehicles without entries are included with zero stats.
func CompareVehicles(vehicles []models.Vehicle, entries []models.FuelEntry) []VehicleComparison {
	byVehicle := make(map[string][]models.FuelEntry)
	for _, e := range entries {
		byVehicle[e.VehicleID] = append(byVehicle[e.VehicleID], e)
	}

	sorted := append([]models.Vehicle(nil), vehicles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	out := make([]VehicleComparison, 0, len(sorted))
	for _, v := range sorted {
		group := byVehicle[v.ID]
		c := VehicleComparison{
			VehicleID:  v.ID,
			Name:       v.Name,
			Type:       v.Type,
			EntryCount: len(group),
		}
		var mpgs []float64
		minMileage, maxMileage := int64(0), int64(0)
		for i, e := range group {
			c.TotalSpent += e.Amount
			c.TotalQuantity += e.Quantity
			if e.MPG != nil {
				mpgs = append(mpgs, *e.MPG)
			}
			if i == 0 || e.Mileage < minMileage {
				minMileage = e.Mileage
			}
			if i == 0 || e.Mileage > maxMileage {
				maxMileage = e.Mileage
			}
		}
		c.TotalSpent = units.Round2(c.TotalSpent)
		c.AvgMPG = Mean(mpgs)
		if miles := maxMileage - minMileage; miles > 0 {
			c.CostPerMile = c.TotalSpent / float64(miles)
		}
		out = append(out, c)
	}
	return out
}

// SeasonStat aggregates entries falling in one meteorological season.
type SeasonStat struct {
	Season     string // winter, spring, summer, fall
	EntryCount int
	AvgAmount  float64
	AvgPrice   float64
}

var seasonOrder = []string{"winter", "spring", "summer", "fall"}

// SeasonalPattern groups entries by season of their date.
func SeasonalPattern(entries []models.FuelEntry) []SeasonStat {
	amounts := make(map[string][]float64)
	prices := make(map[string][]float64)
	for _, e := range entries {
		d, err := time.Parse(models.DateLayout, e.Date)
		if err != nil {
			continue
		}
		s := seasonOf(d.Month())
		amounts[s] = append(amounts[s], e.Amount)
		prices[s] = append(prices[s], e.PricePerUnit)
	}

	out := make([]SeasonStat, 0, len(seasonOrder))
	for _, s := range seasonOrder {
		if len(amounts[s]) == 0 {
			continue
		}
		out = append(out, SeasonStat{
			Season:     s,
			EntryCount: len(amounts[s]),
			AvgAmount:  Mean(amounts[s]),
			AvgPrice:   Mean(prices[s]),
		})
	}
	return out
}

func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

// WeekdayStat aggregates entries falling on one day of the week.
type WeekdayStat struct {
	Weekday    time.Weekday
	EntryCount int
	AvgAmount  float64
}

// WeeklyPattern groups entries by weekday, Sunday first. Days without
// entries are omitted.
func WeeklyPattern(entries []models.FuelEntry) []WeekdayStat {
	amounts := make(map[time.Weekday][]float64)
	for _, e := range entries {
		d, err := time.Parse(models.DateLayout, e.Date)
		if err != nil {
			continue
		}
		amounts[d.Weekday()] = append(amounts[d.Weekday()], e.Amount)
	}

	var out []WeekdayStat
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if len(amounts[wd]) == 0 {
			continue
		}
		out = append(out, WeekdayStat{
			Weekday:    wd,
			EntryCount: len(amounts[wd]),
			AvgAmount:  Mean(amounts[wd]),
		})
	}
	return out
}

// ProjectMonthlySpend extrapolates the monthly-total trend one month past the
// observed series. Negative projections clamp to zero; fewer than two months
// of data projects the mean.
func ProjectMonthlySpend(entries []models.FuelEntry) float64 {
	monthly := MonthlyTrends(entries, 0)
	totals := make([]float64, len(monthly))
	for i, m := range monthly {
		totals[i] = m.TotalAmount
	}
	if len(totals) == 0 {
		return 0
	}
	mean := Mean(totals)
	if len(totals) < 2 {
		return units.Round2(mean)
	}

	t := Trend(totals)
	// mean sits at index (n-1)/2; extend the fitted line to index n.
	projected := mean + t.Slope*(float64(len(totals))-float64(len(totals)-1)/2)
	if projected < 0 {
		projected = 0
	}
	return units.Round2(projected)
}

func sortByDate(entries []models.FuelEntry) []models.FuelEntry {
	out := append([]models.FuelEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
