package validate

import (
	"fmt"
	"math"
)

// =============================================================================
// CROSS-STATEMENT LINKAGE VALIDATION
// =============================================================================

// StatementTotals are the per-period figures the three statements must agree on.
// Every slice is indexed by period and must have the same length.
type StatementTotals struct {
	ISNetIncome      []float64
	CFNetIncome      []float64
	TotalAssets      []float64
	TotalLiabilities []float64
	TotalEquity      []float64
	BSCash           []float64
	CFBeginningCash  []float64
	CFEndingCash     []float64
	NetChangeInCash  []float64
	CFO              []float64
	CFI              []float64
	CFF              []float64
}

// LinkageReport contains all cross-statement validation results.
type LinkageReport struct {
	Periods      []PeriodLinkage `json:"periods"`
	AllPassed    bool            `json:"all_passed"`
	FailedChecks []string        `json:"failed_checks,omitempty"`
}

// PeriodLinkage is the set of checks for one period.
type PeriodLinkage struct {
	Period   string            `json:"period"`
	ISToCF   *NetIncomeLinkage `json:"is_to_cf"`
	CFToBS   *CashLinkage      `json:"cf_to_bs"`
	Balance  *BalanceCheck     `json:"balance"`
	CashFlow *CashFlowCheck    `json:"cash_flow"`
}

// NetIncomeLinkage validates: IS Net Income == CF Net Income Start
type NetIncomeLinkage struct {
	ISNetIncome   float64 `json:"is_net_income"`
	CFNetIncStart float64 `json:"cf_net_income_start"`
	Difference    float64 `json:"difference"`
	IsLinked      bool    `json:"is_linked"`
	Tolerance     float64 `json:"tolerance"`
}

// CashLinkage validates: CF Cash Ending == BS Cash, and CF Net Change == BS Cash change
type CashLinkage struct {
	CFCashEnding   float64 `json:"cf_cash_ending"`
	BSCash         float64 `json:"bs_cash"`
	DifferenceCash float64 `json:"difference_cash"`

	CFNetChange  float64 `json:"cf_net_change"`
	BSCashChange float64 `json:"bs_cash_change"` // this period - prior period (prior = CF beginning cash for the first period)
	DifferenceNC float64 `json:"difference_net_change"`

	IsLinked  bool    `json:"is_linked"`
	Tolerance float64 `json:"tolerance"`
}

// ValidateLinkages performs all cross-statement validations for every period.
func ValidateLinkages(t StatementTotals, labels []string, tolerance float64) LinkageReport {
	report := LinkageReport{AllPassed: true}

	for i := range t.ISNetIncome {
		label := fmt.Sprintf("P%d", i+1)
		if i < len(labels) {
			label = labels[i]
		}

		p := PeriodLinkage{Period: label}

		// 1. IS -> CF: Net Income
		niDiff := t.ISNetIncome[i] - t.CFNetIncome[i]
		p.ISToCF = &NetIncomeLinkage{
			ISNetIncome:   t.ISNetIncome[i],
			CFNetIncStart: t.CFNetIncome[i],
			Difference:    niDiff,
			IsLinked:      math.Abs(niDiff) <= tolerance,
			Tolerance:     tolerance,
		}

		// 2. CF -> BS: Cash
		priorCash := t.CFBeginningCash[i]
		if i > 0 {
			priorCash = t.BSCash[i-1]
		}
		bsChange := t.BSCash[i] - priorCash
		p.CFToBS = &CashLinkage{
			CFCashEnding:   t.CFEndingCash[i],
			BSCash:         t.BSCash[i],
			DifferenceCash: t.CFEndingCash[i] - t.BSCash[i],
			CFNetChange:    t.NetChangeInCash[i],
			BSCashChange:   bsChange,
			DifferenceNC:   t.NetChangeInCash[i] - bsChange,
			Tolerance:      tolerance,
		}
		p.CFToBS.IsLinked = math.Abs(p.CFToBS.DifferenceCash) <= tolerance &&
			math.Abs(p.CFToBS.DifferenceNC) <= tolerance

		// 3. A = L + E
		p.Balance = CheckBalanceEquation(t.TotalAssets[i], t.TotalLiabilities[i], t.TotalEquity[i], tolerance)

		// 4. CFO + CFI + CFF = net change
		p.CashFlow = CheckCashFlowEquation(t.CFO[i], t.CFI[i], t.CFF[i], t.NetChangeInCash[i], tolerance)

		if !p.ISToCF.IsLinked {
			report.FailedChecks = append(report.FailedChecks, label+": IS Net Income -> CF Net Income Start")
		}
		if !p.CFToBS.IsLinked {
			report.FailedChecks = append(report.FailedChecks, label+": CF Cash Ending -> BS Cash")
		}
		if !p.Balance.IsBalanced {
			report.FailedChecks = append(report.FailedChecks, label+": Assets = Liabilities + Equity")
		}
		if !p.CashFlow.IsBalanced {
			report.FailedChecks = append(report.FailedChecks, label+": CFO + CFI + CFF = Net Change")
		}

		report.Periods = append(report.Periods, p)
	}

	report.AllPassed = len(report.FailedChecks) == 0
	return report
}
