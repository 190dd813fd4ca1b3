package calc

import "math"

// Direction classifies total growth across a series.
type Direction string

const (
	StrongGrowth       Direction = "strong_growth"
	ModerateGrowth     Direction = "moderate_growth"
	Decline            Direction = "decline"
	SignificantDecline Direction = "significant_decline"
	InsufficientData   Direction = "insufficient_data"
)

// Growth above StrongGrowthThreshold is strong; growth below
// -SignificantDeclineThreshold is a significant decline.
const (
	StrongGrowthThreshold       = 0.05
	SignificantDeclineThreshold = 0.05
)

// TrendAnalysis describes how a series moved from its first to its last
// period. Rates are fractions, not percentages.
type TrendAnalysis struct {
	Direction Direction

	// Growth is (last - first) / |first|.
	Growth    float64
	HasGrowth bool

	// Volatility is the coefficient of variation (sample std dev / mean).
	Volatility    float64
	HasVolatility bool

	// Consistency is 1 minus the std dev of period-over-period growth,
	// floored at 0. Steady growth scores close to 1.
	Consistency    float64
	HasConsistency bool
}

// Trend analyses a series of at least two periods.
func Trend(values []float64) TrendAnalysis {
	t := TrendAnalysis{Direction: InsufficientData}
	if len(values) < 2 {
		return t
	}

	first, last := values[0], values[len(values)-1]
	t.Growth, t.HasGrowth = safeDiv(last-first, math.Abs(first))
	if t.HasGrowth {
		switch {
		case t.Growth > StrongGrowthThreshold:
			t.Direction = StrongGrowth
		case t.Growth > 0:
			t.Direction = ModerateGrowth
		case t.Growth > -SignificantDeclineThreshold:
			t.Direction = Decline
		default:
			t.Direction = SignificantDecline
		}
	}

	if mean := Mean(values); mean > 0 {
		t.Volatility, t.HasVolatility = safeDiv(StdDev(values), mean)
	}

	var periodGrowth []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			periodGrowth = append(periodGrowth, (values[i]-values[i-1])/values[i-1])
		}
	}
	if len(periodGrowth) > 0 {
		t.Consistency = math.Max(0, 1-StdDev(periodGrowth))
		t.HasConsistency = true
	}
	return t
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation, 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
