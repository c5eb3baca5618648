package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe_BasicScenario(t *testing.T) {
	s := Describe([]float64{10, 20, 20, 30, 40})

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 24.0, s.Mean, 1e-9)
	assert.InDelta(t, 20.0, s.Median, 1e-9)
	assert.InDelta(t, 20.0, s.Mode, 1e-9)
	assert.InDelta(t, 10.0, s.Min, 1e-9)
	assert.InDelta(t, 40.0, s.Max, 1e-9)
}

func TestDescribe_Empty(t *testing.T) {
	s := Describe(nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Mean)
}

func TestMedian_EvenCount(t *testing.T) {
	assert.InDelta(t, 15.0, Median([]float64{10, 20}), 1e-9)
}

func TestMode_TiePicksSmallest(t *testing.T) {
	s := Describe([]float64{1, 1, 2, 2, 3})
	assert.InDelta(t, 1.0, s.Mode, 1e-9)
}

func TestDescribe_VarianceAndStdDev(t *testing.T) {
	s := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 4.0, s.Variance, 1e-9)
	assert.InDelta(t, 2.0, s.StdDev, 1e-9)
}

func TestDescribe_QuartilesAndOutliers(t *testing.T) {
	s := Describe([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	assert.InDelta(t, 2.5, s.Q1, 1e-9)
	assert.InDelta(t, 7.5, s.Q3, 1e-9)
	assert.InDelta(t, 5.0, s.IQR, 1e-9)
	assert.Equal(t, []float64{100}, s.Outliers)
}

func TestTrend_Increasing(t *testing.T) {
	r := Trend([]float64{10, 20, 20, 30, 40})
	assert.Equal(t, TrendIncreasing, r.Direction)
	assert.InDelta(t, 7.0, r.Slope, 1e-9)
	assert.Greater(t, r.Confidence, 90.0)
}

func TestTrend_Decreasing(t *testing.T) {
	r := Trend([]float64{40, 30, 20, 10})
	assert.Equal(t, TrendDecreasing, r.Direction)
	assert.Less(t, r.Slope, 0.0)
}

func TestTrend_StableWithinThreshold(t *testing.T) {
	r := Trend([]float64{10, 10.05, 10.02, 10.08})
	assert.Equal(t, TrendStable, r.Direction)
}

func TestTrend_TooFewPoints(t *testing.T) {
	r := Trend([]float64{42})
	assert.Equal(t, TrendStable, r.Direction)
	assert.Zero(t, r.Confidence)
}

func TestTrend_ConstantSeries(t *testing.T) {
	r := Trend([]float64{5, 5, 5, 5})
	assert.Equal(t, TrendStable, r.Direction)
	assert.Zero(t, r.Slope)
}
