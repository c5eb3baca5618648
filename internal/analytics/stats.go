// Package analytics derives aggregate statistics from already-fetched fuel
// entries and vehicles. It never touches the store: every function is pure
// over its inputs, so the same code serves both store backends.
package analytics

import (
	"math"
	"sort"
)

// Stats is a descriptive-statistics summary of a numeric sample.
type Stats struct {
	Count    int
	Mean     float64
	Median   float64
	Mode     float64
	Min      float64
	Max      float64
	Variance float64
	StdDev   float64
	Q1       float64
	Q3       float64
	IQR      float64
	Outliers []float64
}

// Describe computes the full summary. An empty sample yields zero values.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Stats{
		Count:  len(sorted),
		Mean:   Mean(sorted),
		Median: medianSorted(sorted),
		Mode:   modeSorted(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	s.Variance = variance(sorted, s.Mean)
	s.StdDev = math.Sqrt(s.Variance)
	s.Q1, s.Q3 = quartilesSorted(sorted)
	s.IQR = s.Q3 - s.Q1

	lo := s.Q1 - 1.5*s.IQR
	hi := s.Q3 + 1.5*s.IQR
	for _, v := range sorted {
		if v < lo || v > hi {
			s.Outliers = append(s.Outliers, v)
		}
	}
	return s
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return medianSorted(sorted)
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeSorted returns the most frequent value; ties resolve to the smallest.
func modeSorted(sorted []float64) float64 {
	best, bestCount := sorted[0], 0
	cur, curCount := sorted[0], 0
	for _, v := range sorted {
		if v == cur {
			curCount++
		} else {
			cur, curCount = v, 1
		}
		if curCount > bestCount {
			best, bestCount = cur, curCount
		}
	}
	return best
}

// variance is the population variance; record counts are small and the whole
// history is the population of interest.
func variance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// quartilesSorted uses the median-of-halves method, excluding the median
// itself for odd-length samples.
func quartilesSorted(sorted []float64) (q1, q3 float64) {
	n := len(sorted)
	if n < 2 {
		return sorted[0], sorted[0]
	}
	half := n / 2
	q1 = medianSorted(sorted[:half])
	if n%2 == 0 {
		q3 = medianSorted(sorted[half:])
	} else {
		q3 = medianSorted(sorted[half+1:])
	}
	return q1, q3
}
