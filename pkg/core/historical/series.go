package historical

import (
	"company_historicals/pkg/core/calc"
	"company_historicals/pkg/core/validate"
)

// Values wraps every observation as a defined Value.
func Values(xs []float64) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Of(x)
	}
	return out
}

// RatioSeries divides num by den period by period. A zero denominator
// yields Undefined for that period.
func RatioSeries(num, den []float64) []Value {
	out := make([]Value, len(num))
	for i := range num {
		out[i] = Ratio(num[i], den[i])
	}
	return out
}

// MulSeries multiplies two value series element-wise.
func MulSeries(a, b []Value) []Value {
	out := make([]Value, len(a))
	for i := range a {
		out[i] = a[i].Mul(b[i])
	}
	return out
}

// DivSeries divides two value series element-wise.
func DivSeries(a, b []Value) []Value {
	out := make([]Value, len(a))
	for i := range a {
		out[i] = a[i].Div(b[i])
	}
	return out
}

// ScaleSeries multiplies every defined value by k.
func ScaleSeries(a []Value, k float64) []Value {
	out := make([]Value, len(a))
	for i := range a {
		out[i] = a[i].Scale(k)
	}
	return out
}

// GrowthSeries returns period-over-period growth as a fraction.
// The first period and periods after a zero are undefined.
func GrowthSeries(xs []float64) []Value {
	out := make([]Value, len(xs))
	for i := 1; i < len(xs); i++ {
		if g, ok := validate.GrowthRate(xs[i], xs[i-1]); ok {
			out[i] = Of(g)
		}
	}
	return out
}

// CAGR is the compound growth rate from the first to the last observation.
func CAGR(xs []float64) Value {
	if len(xs) < 2 {
		return Undefined
	}
	if c, ok := validate.CalculateCAGR(xs[0], xs[len(xs)-1], len(xs)-1); ok {
		return Of(c)
	}
	return Undefined
}

// Last returns the final element of xs, or 0 for an empty slice.
func Last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

// RatioMetrics are the balance-sheet and return ratios every company type
// reports. Returns and turnover use average balances; liquidity and
// solvency ratios use closing balances.
var RatioMetrics = []string{
	"return_on_assets",
	"return_on_equity",
	"asset_turnover",
	"financial_leverage",
	"current_ratio",
	"quick_ratio",
	"debt_to_equity",
	"interest_coverage",
}

// CommonMetrics computes the profitability, growth and ratio metrics shared
// by all company types. The engine keeps only those a type declares as
// supported.
func CommonMetrics(s Summary) map[string]Metric {
	avgAssets := calc.AverageBalances(s.TotalAssets)
	avgEquity := calc.AverageBalances(s.TotalEquity)
	n := len(s.Revenue)
	ratio := func(f func(i int) (float64, bool)) Metric {
		out := make([]Value, n)
		for i := range out {
			if v, ok := f(i); ok {
				out[i] = Of(v)
			}
		}
		return SeriesMetric(out)
	}

	return map[string]Metric{
		"return_on_assets":   ratio(func(i int) (float64, bool) { return calc.ROA(s.NetIncome[i], avgAssets[i]) }),
		"return_on_equity":   ratio(func(i int) (float64, bool) { return calc.ROE(s.NetIncome[i], avgEquity[i]) }),
		"asset_turnover":     ratio(func(i int) (float64, bool) { return calc.AssetTurnover(s.Revenue[i], avgAssets[i]) }),
		"financial_leverage": ratio(func(i int) (float64, bool) { return calc.FinancialLeverage(avgAssets[i], avgEquity[i]) }),
		"current_ratio":      ratio(func(i int) (float64, bool) { return calc.CurrentRatio(s.CurrentAssets[i], s.CurrentLiabilities[i]) }),
		"quick_ratio": ratio(func(i int) (float64, bool) {
			return calc.QuickRatio(s.EndingCash[i], s.Receivables[i], s.CurrentLiabilities[i])
		}),
		"debt_to_equity":    ratio(func(i int) (float64, bool) { return calc.DebtToEquity(s.TotalLiabilities[i], s.TotalEquity[i]) }),
		"interest_coverage": ratio(func(i int) (float64, bool) { return calc.InterestCoverage(s.EBIT[i], s.InterestExpense[i]) }),

		"gross_margin":        SeriesMetric(RatioSeries(s.GrossProfit, s.Revenue)),
		"operating_margin":    SeriesMetric(RatioSeries(s.OperatingIncome, s.Revenue)),
		"ebitda_margin":       SeriesMetric(RatioSeries(s.EBITDA, s.Revenue)),
		"profit_margin":       SeriesMetric(RatioSeries(s.NetIncome, s.Revenue)),
		"free_cash_flow":      SeriesMetric(Values(s.FreeCashFlow)),
		"revenue_growth_rate": SeriesMetric(GrowthSeries(s.Revenue)),
		"revenue_cagr":        ScalarMetric(CAGR(s.Revenue)),
	}
}
