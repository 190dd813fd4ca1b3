// Package validate provides reusable financial validation utilities.
// These functions are called by the statement builder, the calculators and tests
// to verify data integrity and calculate growth figures.
package validate

import (
	"fmt"
	"math"
)

// =============================================================================
// GROWTH CALCULATIONS
// =============================================================================

// GrowthRate returns (current - prior) / prior as a fraction.
// ok is false when prior is zero: growth from nothing has no defined rate.
func GrowthRate(current, prior float64) (rate float64, ok bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / math.Abs(prior), true
}

// CalculateCAGR calculates compound growth per period as a fraction.
// CAGR = ((EndValue / StartValue) ^ (1/periods)) - 1
// ok is false for a non-positive start, a negative end or fewer than one period.
func CalculateCAGR(startValue, endValue float64, periods int) (cagr float64, ok bool) {
	if startValue <= 0 || endValue < 0 || periods <= 0 {
		return 0, false
	}
	return math.Pow(endValue/startValue, 1.0/float64(periods)) - 1, true
}

// =============================================================================
// BALANCE SHEET VALIDATION
// =============================================================================

// BalanceCheck verifies Assets = Liabilities + Equity.
type BalanceCheck struct {
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	TotalEquity      float64 `json:"total_equity"`
	ComputedAssets   float64 `json:"computed_assets"` // L + E
	Difference       float64 `json:"difference"`
	IsBalanced       bool    `json:"is_balanced"`
	Tolerance        float64 `json:"tolerance"`
}

// CheckBalanceEquation validates A = L + E within tolerance.
func CheckBalanceEquation(assets, liabilities, equity, tolerance float64) *BalanceCheck {
	computed := liabilities + equity
	diff := assets - computed

	return &BalanceCheck{
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		TotalEquity:      equity,
		ComputedAssets:   computed,
		Difference:       diff,
		IsBalanced:       math.Abs(diff) <= tolerance,
		Tolerance:        tolerance,
	}
}

// =============================================================================
// CASH FLOW VALIDATION
// =============================================================================

// CashFlowCheck verifies CFO + CFI + CFF = Net Change in Cash.
type CashFlowCheck struct {
	CFO           float64 `json:"cfo"`
	CFI           float64 `json:"cfi"`
	CFF           float64 `json:"cff"`
	ComputedTotal float64 `json:"computed_total"`
	ReportedTotal float64 `json:"reported_total"`
	Difference    float64 `json:"difference"`
	IsBalanced    bool    `json:"is_balanced"`
	Tolerance     float64 `json:"tolerance"`
}

// CheckCashFlowEquation validates CFO + CFI + CFF = Net Change.
func CheckCashFlowEquation(cfo, cfi, cff, reportedNetChange, tolerance float64) *CashFlowCheck {
	computed := cfo + cfi + cff
	diff := reportedNetChange - computed

	return &CashFlowCheck{
		CFO:           cfo,
		CFI:           cfi,
		CFF:           cff,
		ComputedTotal: computed,
		ReportedTotal: reportedNetChange,
		Difference:    diff,
		IsBalanced:    math.Abs(diff) <= tolerance,
		Tolerance:     tolerance,
	}
}

// =============================================================================
// OUTLIER DETECTION
// =============================================================================

// OutlierCheck identifies suspicious period-over-period swings.
type OutlierCheck struct {
	Item       string
	Value      float64
	PriorValue float64
	Change     float64 // fraction, 0 when prior is zero
	IsOutlier  bool
	Reason     string
	Threshold  float64
}

// CheckForOutlier flags a change larger than threshold (a fraction, 3.0 = 300%)
// or a drop to zero from a positive value.
func CheckForOutlier(item string, current, prior, threshold float64) *OutlierCheck {
	change, _ := GrowthRate(current, prior)

	check := &OutlierCheck{
		Item:       item,
		Value:      current,
		PriorValue: prior,
		Change:     change,
		Threshold:  threshold,
	}

	if current == 0 && prior > 0 {
		check.IsOutlier = true
		check.Reason = "value dropped to zero"
		return check
	}

	if math.Abs(change) > threshold {
		check.IsOutlier = true
		check.Reason = fmt.Sprintf("change of %.1f%% exceeds threshold of %.1f%%", change*100, threshold*100)
	}

	return check
}

// =============================================================================
// FREE CASH FLOW
// =============================================================================

// CalculateFCF computes Free Cash Flow = CFO + CFI's capital expenditure leg
// (capex is passed as the negative cash-flow figure).
func CalculateFCF(cfo, capex float64) float64 {
	return cfo + capex
}
