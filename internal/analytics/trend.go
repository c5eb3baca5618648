package analytics

import "math"

// TrendDirection classifies an ordinary-least-squares slope.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// slopeThreshold is the slope magnitude below which a series counts as
// stable.
const slopeThreshold = 0.1

// TrendResult is the fitted trend of an index-vs-value series.
type TrendResult struct {
	Direction TrendDirection
	Slope     float64
	// Confidence is |Pearson r| scaled to percent.
	Confidence float64
}

// Trend fits y = slope·i + b over the values in order and classifies the
// slope. Fewer than two points is stable with zero confidence.
func Trend(values []float64) TrendResult {
	n := len(values)
	if n < 2 {
		return TrendResult{Direction: TrendStable}
	}

	meanX := float64(n-1) / 2
	meanY := Mean(values)

	var covXY, varX, varY float64
	for i, y := range values {
		dx := float64(i) - meanX
		dy := y - meanY
		covXY += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	slope := covXY / varX

	var confidence float64
	if varY > 0 {
		confidence = math.Abs(covXY/math.Sqrt(varX*varY)) * 100
	}

	direction := TrendStable
	switch {
	case slope > slopeThreshold:
		direction = TrendIncreasing
	case slope < -slopeThreshold:
		direction = TrendDecreasing
	}

	return TrendResult{Direction: direction, Slope: slope, Confidence: confidence}
}
