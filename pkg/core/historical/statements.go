package historical

import (
	"company_historicals/pkg/core/validate"
)

// =============================================================================
// STATEMENT SHAPES
// =============================================================================

// LineKind classifies a statement row for rendering.
type LineKind string

const (
	KindHeader LineKind = "header"
	KindItem   LineKind = "item"
	KindTotal  LineKind = "total"
	KindSpacer LineKind = "spacer"
)

// LineItem is one row of a statement. Headers and spacers carry no values.
type LineItem struct {
	Key    string    `json:"key,omitempty"`
	Label  string    `json:"label"`
	Kind   LineKind  `json:"kind"`
	Values []float64 `json:"values,omitempty"`
}

// Statement is an ordered list of rows over the historical periods.
type Statement struct {
	Title   string     `json:"title"`
	Periods []string   `json:"periods"`
	Lines   []LineItem `json:"line_items"`
}

// Line returns the values of the row with the given key.
func (s Statement) Line(key string) ([]float64, bool) {
	for _, l := range s.Lines {
		if l.Key == key && l.Kind != KindHeader && l.Kind != KindSpacer {
			return l.Values, true
		}
	}
	return nil, false
}

// Statements groups the three historical statements.
type Statements struct {
	IncomeStatement Statement `json:"income_statement"`
	BalanceSheet    Statement `json:"balance_sheet"`
	CashFlow        Statement `json:"cash_flow"`
}

// =============================================================================
// DRIVERS
// =============================================================================

// Line is a named input row supplied by a company type.
type Line struct {
	Key    string
	Label  string
	Values []float64
}

// StatementDrivers are the per-period inputs statements are built from.
// Every slice has one entry per period; nil slices read as zero.
type StatementDrivers struct {
	RevenueLines      []Line
	CostOfSales       []Line
	OperatingExpenses []Line

	Depreciation    []float64
	OtherIncome     []float64
	InterestExpense []float64
	OwnerDrawings   []float64

	// Period-end balances.
	AccountsReceivable []float64
	Inventory          []float64
	AccountsPayable    []float64
	DeferredRevenue    []float64
	Debt               []float64

	// Period flows.
	CapitalExpenditures []float64
	OwnerContributions  []float64
}

// SharedOptionalFields are input fields every company type accepts.
var SharedOptionalFields = []string{
	"depreciation",
	"other_income",
	"interest_expense",
	"owner_drawings",
	"owner_contributions",
	"capital_expenditures",
	"accounts_receivable",
	"accounts_payable",
	"debt",
}

// BaseDrivers fills the shared optional drivers from data.
// Company types add their revenue, cost and type-specific balance lines.
func BaseDrivers(data HistoricalDataSet, periods int) StatementDrivers {
	return StatementDrivers{
		Depreciation:        data.Series("depreciation", periods),
		OtherIncome:         data.Series("other_income", periods),
		InterestExpense:     data.Series("interest_expense", periods),
		OwnerDrawings:       data.Series("owner_drawings", periods),
		OwnerContributions:  data.Series("owner_contributions", periods),
		CapitalExpenditures: data.Series("capital_expenditures", periods),
		AccountsReceivable:  data.Series("accounts_receivable", periods),
		AccountsPayable:     data.Series("accounts_payable", periods),
		Debt:                data.Series("debt", periods),
	}
}

// StatementOptions are the scalar inputs to BuildStatements.
type StatementOptions struct {
	Periods     int
	Labels      []string
	TaxRate     float64
	OpeningCash float64
}

// Summary holds the key series metrics are computed from.
type Summary struct {
	Revenue            []float64
	CostOfSales        []float64
	GrossProfit        []float64
	OperatingExpenses  []float64
	OperatingIncome    []float64
	EBITDA             []float64
	Depreciation       []float64
	EBIT               []float64
	InterestExpense    []float64
	EBT                []float64
	Taxes              []float64
	NetIncome          []float64
	CashFromOperations []float64
	FreeCashFlow       []float64
	EndingCash         []float64

	// Closing balance-sheet positions.
	Receivables        []float64
	CurrentAssets      []float64
	TotalAssets        []float64
	CurrentLiabilities []float64
	TotalLiabilities   []float64
	TotalEquity        []float64
}

// =============================================================================
// BUILDER
// =============================================================================

// BuildStatements assembles the income statement, balance sheet and cash flow.
// The balance sheet balances by construction: cash is the cash-flow ending
// balance, PP&E is cumulative capex less cumulative depreciation, and equity is
// opening cash plus contributions plus retained earnings.
func BuildStatements(d StatementDrivers, opts StatementOptions) (Statements, Summary, validate.StatementTotals) {
	n := opts.Periods
	col := func(s []float64) []float64 {
		out := make([]float64, n)
		copy(out, s)
		return out
	}

	// ---- Income statement ----
	revenue := sumLines(d.RevenueLines, n)
	cos := sumLines(d.CostOfSales, n)
	opex := sumLines(d.OperatingExpenses, n)
	dep := col(d.Depreciation)
	other := col(d.OtherIncome)
	interest := col(d.InterestExpense)
	drawings := col(d.OwnerDrawings)

	gross := make([]float64, n)
	opIncome := make([]float64, n)
	ebitda := make([]float64, n)
	ebit := make([]float64, n)
	ebt := make([]float64, n)
	for i := 0; i < n; i++ {
		gross[i] = revenue[i] - cos[i]
		opIncome[i] = gross[i] - opex[i] - dep[i]
		ebitda[i] = gross[i] - opex[i] + other[i]
		ebit[i] = ebitda[i] - dep[i]
		ebt[i] = ebit[i] - interest[i]
	}
	taxes := TaxWithCarryforward(ebt, opts.TaxRate)
	netIncome := make([]float64, n)
	toOwner := make([]float64, n)
	for i := 0; i < n; i++ {
		netIncome[i] = ebt[i] - taxes[i]
		toOwner[i] = netIncome[i] - drawings[i]
	}

	is := Statement{Title: "Income Statement", Periods: opts.Labels}
	is.header("REVENUE")
	is.items(d.RevenueLines, n)
	is.total("total_revenue", "TOTAL REVENUE", revenue)
	is.spacer()
	is.header("COST OF SALES")
	is.items(d.CostOfSales, n)
	is.total("total_cost_of_sales", "TOTAL COST OF SALES", cos)
	is.spacer()
	is.total("gross_profit", "GROSS PROFIT", gross)
	is.spacer()
	is.header("OPERATING EXPENSES")
	is.items(d.OperatingExpenses, n)
	is.total("total_operating_expenses", "TOTAL OPERATING EXPENSES", opex)
	is.spacer()
	is.item("other_income", "Other Operating Income", other)
	is.total("ebitda", "EBITDA", ebitda)
	is.item("depreciation", "Depreciation & Amortization", dep)
	is.total("ebit", "EBIT", ebit)
	is.spacer()
	is.item("interest_expense", "Interest Expense", interest)
	is.total("ebt", "EARNINGS BEFORE TAXES (EBT)", ebt)
	is.item("taxes", "Tax Provision (with Loss Carryforward)", taxes)
	is.total("net_income", "NET INCOME", netIncome)
	is.spacer()
	is.item("owner_drawings", "Owner Drawings", drawings)
	is.total("cash_available_to_owner", "CASH AVAILABLE TO OWNER", toOwner)

	// ---- Cash flow (indirect) ----
	ar := col(d.AccountsReceivable)
	inv := col(d.Inventory)
	ap := col(d.AccountsPayable)
	deferred := col(d.DeferredRevenue)
	debt := col(d.Debt)
	capex := col(d.CapitalExpenditures)
	contrib := col(d.OwnerContributions)

	chAR := negate(delta(ar))
	chInv := negate(delta(inv))
	chAP := delta(ap)
	chDeferred := delta(deferred)
	chDebt := delta(debt)

	cfo := make([]float64, n)
	cfi := make([]float64, n)
	cff := make([]float64, n)
	netChange := make([]float64, n)
	beginCash := make([]float64, n)
	endCash := make([]float64, n)
	fcf := make([]float64, n)
	cash := opts.OpeningCash
	for i := 0; i < n; i++ {
		cfo[i] = netIncome[i] + dep[i] + chAR[i] + chInv[i] + chAP[i] + chDeferred[i]
		cfi[i] = -capex[i]
		cff[i] = chDebt[i] + contrib[i] - drawings[i]
		netChange[i] = cfo[i] + cfi[i] + cff[i]
		beginCash[i] = cash
		cash += netChange[i]
		endCash[i] = cash
		fcf[i] = validate.CalculateFCF(cfo[i], cfi[i])
	}

	cf := Statement{Title: "Cash Flow Statement", Periods: opts.Labels}
	cf.header("OPERATING ACTIVITIES")
	cf.item("net_income", "Net Income", netIncome)
	cf.item("depreciation", "Depreciation & Amortization", dep)
	cf.item("change_in_receivables", "Change in Accounts Receivable", chAR)
	cf.item("change_in_inventory", "Change in Inventory", chInv)
	cf.item("change_in_payables", "Change in Accounts Payable", chAP)
	cf.item("change_in_deferred_revenue", "Change in Deferred Revenue", chDeferred)
	cf.total("cash_from_operations", "CASH FROM OPERATING ACTIVITIES", cfo)
	cf.spacer()
	cf.header("INVESTING ACTIVITIES")
	cf.item("capital_expenditures", "Capital Expenditures", negate(capex))
	cf.total("cash_from_investing", "CASH FROM INVESTING ACTIVITIES", cfi)
	cf.spacer()
	cf.header("FINANCING ACTIVITIES")
	cf.item("change_in_debt", "Net Borrowing (Repayment)", chDebt)
	cf.item("owner_contributions", "Owner Contributions", contrib)
	cf.item("owner_drawings", "Owner Drawings", negate(drawings))
	cf.total("cash_from_financing", "CASH FROM FINANCING ACTIVITIES", cff)
	cf.spacer()
	cf.total("net_change_in_cash", "NET CHANGE IN CASH", netChange)
	cf.item("beginning_cash", "Cash at Beginning of Period", beginCash)
	cf.total("ending_cash", "CASH AT END OF PERIOD", endCash)

	// ---- Balance sheet ----
	ppeGross := cumulative(capex)
	accumDep := negate(cumulative(dep))
	paidIn := make([]float64, n)
	retained := make([]float64, n)
	cumContrib := cumulative(contrib)
	re := 0.0
	for i := 0; i < n; i++ {
		paidIn[i] = opts.OpeningCash + cumContrib[i]
		re += netIncome[i] - drawings[i]
		retained[i] = re
	}

	ppeNet := add(ppeGross, accumDep)
	currentAssets := add(endCash, ar, inv)
	totalAssets := add(currentAssets, ppeNet)
	currentLiab := add(ap, deferred)
	totalLiab := add(currentLiab, debt)
	totalEquity := add(paidIn, retained)
	totalLE := add(totalLiab, totalEquity)

	bs := Statement{Title: "Balance Sheet", Periods: opts.Labels}
	bs.header("ASSETS")
	bs.item("cash", "Cash", endCash)
	bs.item("accounts_receivable", "Accounts Receivable", ar)
	bs.item("inventory", "Inventory", inv)
	bs.total("total_current_assets", "Total Current Assets", currentAssets)
	bs.item("ppe_gross", "Property & Equipment (Gross)", ppeGross)
	bs.item("accumulated_depreciation", "Less: Accumulated Depreciation", accumDep)
	bs.total("ppe_net", "Net Property & Equipment", ppeNet)
	bs.total("total_assets", "TOTAL ASSETS", totalAssets)
	bs.spacer()
	bs.header("LIABILITIES")
	bs.item("accounts_payable", "Accounts Payable", ap)
	bs.item("deferred_revenue", "Deferred Revenue", deferred)
	bs.total("total_current_liabilities", "Total Current Liabilities", currentLiab)
	bs.item("debt", "Debt", debt)
	bs.total("total_liabilities", "TOTAL LIABILITIES", totalLiab)
	bs.spacer()
	bs.header("EQUITY")
	bs.item("paid_in_capital", "Paid-in Capital", paidIn)
	bs.item("retained_earnings", "Retained Earnings", retained)
	bs.total("total_equity", "TOTAL EQUITY", totalEquity)
	bs.total("total_liabilities_and_equity", "TOTAL LIABILITIES & EQUITY", totalLE)

	summary := Summary{
		Revenue:            revenue,
		CostOfSales:        cos,
		GrossProfit:        gross,
		OperatingExpenses:  opex,
		OperatingIncome:    opIncome,
		EBITDA:             ebitda,
		Depreciation:       dep,
		EBIT:               ebit,
		InterestExpense:    interest,
		EBT:                ebt,
		Taxes:              taxes,
		NetIncome:          netIncome,
		CashFromOperations: cfo,
		FreeCashFlow:       fcf,
		EndingCash:         endCash,
		Receivables:        ar,
		CurrentAssets:      currentAssets,
		TotalAssets:        totalAssets,
		CurrentLiabilities: currentLiab,
		TotalLiabilities:   totalLiab,
		TotalEquity:        totalEquity,
	}

	totals := validate.StatementTotals{
		ISNetIncome:      netIncome,
		CFNetIncome:      netIncome,
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiab,
		TotalEquity:      totalEquity,
		BSCash:           endCash,
		CFBeginningCash:  beginCash,
		CFEndingCash:     endCash,
		NetChangeInCash:  netChange,
		CFO:              cfo,
		CFI:              cfi,
		CFF:              cff,
	}

	return Statements{IncomeStatement: is, BalanceSheet: bs, CashFlow: cf}, summary, totals
}

// TaxWithCarryforward applies rate to earnings before tax. Losses pay no tax
// and accumulate; later profits are reduced by the accumulated loss first.
func TaxWithCarryforward(ebt []float64, rate float64) []float64 {
	taxes := make([]float64, len(ebt))
	losses := 0.0
	for i, e := range ebt {
		if e < 0 {
			losses += -e
			continue
		}
		offset := min(losses, e)
		losses -= offset
		taxes[i] = (e - offset) * rate
	}
	return taxes
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Statement) header(label string) {
	s.Lines = append(s.Lines, LineItem{Label: label, Kind: KindHeader})
}

func (s *Statement) spacer() {
	s.Lines = append(s.Lines, LineItem{Kind: KindSpacer})
}

func (s *Statement) item(key, label string, values []float64) {
	s.Lines = append(s.Lines, LineItem{Key: key, Label: label, Kind: KindItem, Values: values})
}

func (s *Statement) total(key, label string, values []float64) {
	s.Lines = append(s.Lines, LineItem{Key: key, Label: label, Kind: KindTotal, Values: values})
}

func (s *Statement) items(lines []Line, n int) {
	for _, l := range lines {
		vals := make([]float64, n)
		copy(vals, l.Values)
		s.item(l.Key, l.Label, vals)
	}
}

func sumLines(lines []Line, n int) []float64 {
	out := make([]float64, n)
	for _, l := range lines {
		for i := 0; i < n && i < len(l.Values); i++ {
			out[i] += l.Values[i]
		}
	}
	return out
}

// delta returns period-over-period changes; the balance before the first period is zero.
func delta(s []float64) []float64 {
	out := make([]float64, len(s))
	prev := 0.0
	for i, v := range s {
		out[i] = v - prev
		prev = v
	}
	return out
}

func cumulative(s []float64) []float64 {
	out := make([]float64, len(s))
	run := 0.0
	for i, v := range s {
		run += v
		out[i] = run
	}
	return out
}

func negate(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = 0 - v // keeps zero positive
	}
	return out
}

func add(series ...[]float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series[0]))
	for _, s := range series {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}
