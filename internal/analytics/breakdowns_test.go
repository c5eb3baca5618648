package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalnina/garagelog/internal/models"
)

func spend(vehicleID, date string, amount, quantity, price float64, mileage int64) models.FuelEntry {
	return models.FuelEntry{
		VehicleID: vehicleID, Date: date,
		Amount: amount, Quantity: quantity, PricePerUnit: price, Mileage: mileage,
	}
}

func TestSummarize(t *testing.T) {
	mpg := 25.0
	entries := []models.FuelEntry{
		spend("v1", "2024-01-10", 30, 10, 3.0, 1000),
		spend("v1", "2024-02-10", 40, 10, 4.0, 1250),
	}
	entries[1].MPG = &mpg

	s := Summarize(entries)
	assert.Equal(t, 2, s.EntryCount)
	assert.InDelta(t, 70.0, s.TotalSpent, 1e-9)
	assert.InDelta(t, 20.0, s.TotalQuantity, 1e-9)
	assert.InDelta(t, 3.5, s.AvgPrice, 1e-9)
	assert.InDelta(t, 25.0, s.AvgMPG, 1e-9, "only entries with efficiency count")
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.EntryCount)
	assert.Zero(t, s.TotalSpent)
	assert.Zero(t, s.AvgMPG)
}

func TestMonthlyTrends(t *testing.T) {
	entries := []models.FuelEntry{
		spend("v1", "2024-01-05", 30, 10, 3.0, 1000),
		spend("v1", "2024-01-25", 35, 10, 3.5, 1200),
		spend("v1", "2024-03-10", 40, 10, 4.0, 1500),
	}

	stats := MonthlyTrends(entries, 0)
	require.Len(t, stats, 2, "months without entries are absent")

	assert.Equal(t, "2024-01", stats[0].Month)
	assert.Equal(t, 2, stats[0].EntryCount)
	assert.InDelta(t, 65.0, stats[0].TotalAmount, 1e-9)
	assert.InDelta(t, 3.25, stats[0].AvgPrice, 1e-9)

	assert.Equal(t, "2024-03", stats[1].Month)
	assert.InDelta(t, 40.0, stats[1].TotalAmount, 1e-9)
}

func TestMonthlyTrends_WindowKeepsMostRecent(t *testing.T) {
	entries := []models.FuelEntry{
		spend("v1", "2024-01-05", 10, 5, 2.0, 1000),
		spend("v1", "2024-02-05", 20, 5, 4.0, 1100),
		spend("v1", "2024-03-05", 30, 5, 6.0, 1200),
	}

	stats := MonthlyTrends(entries, 2)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024-02", stats[0].Month)
	assert.Equal(t, "2024-03", stats[1].Month)
}

func TestCompareVehicles(t *testing.T) {
	vehicles := []models.Vehicle{
		{ID: "v2", Name: "Bravo", Type: models.VehicleTypeGas},
		{ID: "v1", Name: "Alpha", Type: models.VehicleTypeGas},
		{ID: "v3", Name: "Idle", Type: models.VehicleTypeElectric},
	}
	mpg := 30.0
	entries := []models.FuelEntry{
		spend("v1", "2024-01-01", 30, 10, 3.0, 1000),
		spend("v1", "2024-02-01", 30, 10, 3.0, 1300),
		spend("v2", "2024-01-15", 50, 12, 4.0, 5000),
	}
	entries[1].MPG = &mpg

	out := CompareVehicles(vehicles, entries)
	require.Len(t, out, 3)

	assert.Equal(t, "Alpha", out[0].Name)
	assert.Equal(t, 2, out[0].EntryCount)
	assert.InDelta(t, 60.0, out[0].TotalSpent, 1e-9)
	assert.InDelta(t, 30.0, out[0].AvgMPG, 1e-9)
	assert.InDelta(t, 0.2, out[0].CostPerMile, 1e-9, "60 spent over 300 miles")

	assert.Equal(t, "Bravo", out[1].Name)
	assert.Zero(t, out[1].CostPerMile, "single entry covers no distance")

	assert.Equal(t, "Idle", out[2].Name)
	assert.Equal(t, 0, out[2].EntryCount, "vehicles without entries keep zero stats")
}

func TestSeasonalPattern(t *testing.T) {
	entries := []models.FuelEntry{
		spend("v1", "2024-01-10", 30, 10, 3.0, 1000), // winter
		spend("v1", "2024-12-10", 50, 10, 5.0, 2000), // winter
		spend("v1", "2024-07-10", 40, 10, 4.0, 1500), // summer
	}

	out := SeasonalPattern(entries)
	require.Len(t, out, 2)

	assert.Equal(t, "winter", out[0].Season)
	assert.Equal(t, 2, out[0].EntryCount)
	assert.InDelta(t, 40.0, out[0].AvgAmount, 1e-9)

	assert.Equal(t, "summer", out[1].Season)
	assert.Equal(t, 1, out[1].EntryCount)
}

func TestWeeklyPattern(t *testing.T) {
	// 2024-01-06 is a Saturday, 2024-01-07 a Sunday.
	entries := []models.FuelEntry{
		spend("v1", "2024-01-06", 30, 10, 3.0, 1000),
		spend("v1", "2024-01-07", 40, 10, 4.0, 1200),
		spend("v1", "2024-01-13", 50, 10, 5.0, 1400),
	}

	out := WeeklyPattern(entries)
	require.Len(t, out, 2)

	assert.Equal(t, time.Sunday, out[0].Weekday)
	assert.Equal(t, 1, out[0].EntryCount)

	assert.Equal(t, time.Saturday, out[1].Weekday)
	assert.Equal(t, 2, out[1].EntryCount)
	assert.InDelta(t, 40.0, out[1].AvgAmount, 1e-9)
}

func TestProjectMonthlySpend(t *testing.T) {
	entries := []models.FuelEntry{
		spend("v1", "2024-01-05", 10, 5, 2.0, 1000),
		spend("v1", "2024-02-05", 20, 5, 4.0, 1100),
		spend("v1", "2024-03-05", 30, 5, 6.0, 1200),
	}

	// Totals 10, 20, 30: slope 10, mean 20, next point 40.
	assert.InDelta(t, 40.0, ProjectMonthlySpend(entries), 1e-9)
}

func TestProjectMonthlySpend_Degenerate(t *testing.T) {
	assert.Zero(t, ProjectMonthlySpend(nil))

	one := []models.FuelEntry{spend("v1", "2024-01-05", 25, 5, 5.0, 1000)}
	assert.InDelta(t, 25.0, ProjectMonthlySpend(one), 1e-9, "single month projects the mean")
}

func TestProjectMonthlySpend_ClampsNegative(t *testing.T) {
	entries := []models.FuelEntry{
		spend("v1", "2024-01-05", 100, 5, 2.0, 1000),
		spend("v1", "2024-02-05", 40, 5, 4.0, 1100),
		spend("v1", "2024-03-05", 5, 5, 6.0, 1200),
	}

	assert.Zero(t, ProjectMonthlySpend(entries))
}
