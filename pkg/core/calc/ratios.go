// Package calc holds balance-sheet ratios and trend statistics computed from
// statement series. Every function reports ok == false instead of dividing by
// zero, so callers can tell an undefined ratio from a zero one.
package calc

import "math"

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func safeDiv(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	r := numerator / denominator
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// AverageBalances averages each period's closing balance with the prior
// period's. The first period has no opening balance and uses its closing one.
func AverageBalances(closing []float64) []float64 {
	out := make([]float64, len(closing))
	for i, v := range closing {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = (closing[i-1] + v) / 2
	}
	return out
}

// =============================================================================
// PROFITABILITY (DuPont)
// =============================================================================

// ROA = Net Income / Average Total Assets
func ROA(netIncome, avgTotalAssets float64) (float64, bool) {
	return safeDiv(netIncome, avgTotalAssets)
}

// ROE = Net Income / Average Equity
func ROE(netIncome, avgEquity float64) (float64, bool) {
	return safeDiv(netIncome, avgEquity)
}

// AssetTurnover = Revenue / Average Total Assets
func AssetTurnover(revenue, avgTotalAssets float64) (float64, bool) {
	return safeDiv(revenue, avgTotalAssets)
}

// FinancialLeverage = Average Total Assets / Average Equity
func FinancialLeverage(avgTotalAssets, avgEquity float64) (float64, bool) {
	return safeDiv(avgTotalAssets, avgEquity)
}

// =============================================================================
// LIQUIDITY & SOLVENCY
// =============================================================================

func CurrentRatio(currentAssets, currentLiabilities float64) (float64, bool) {
	return safeDiv(currentAssets, currentLiabilities)
}

// QuickRatio leaves inventory out of current assets.
func QuickRatio(cash, receivables, currentLiabilities float64) (float64, bool) {
	return safeDiv(cash+receivables, currentLiabilities)
}

func DebtToEquity(totalLiabilities, totalEquity float64) (float64, bool) {
	return safeDiv(totalLiabilities, totalEquity)
}

// InterestCoverage = EBIT / |Interest Expense|
func InterestCoverage(ebit, interestExpense float64) (float64, bool) {
	return safeDiv(ebit, math.Abs(interestExpense))
}
