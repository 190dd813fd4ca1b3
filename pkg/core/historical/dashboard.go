package historical

import "company_historicals/pkg/core/calc"

// Insight thresholds, as fractions.
const (
	HighProfitMargin  = 0.20
	LowProfitMargin   = 0.05
	HighRevenueGrowth = 0.10
)

// Trend summarizes how a series moved across the historical periods.
type Trend struct {
	Direction    string  `json:"direction"`
	Growth       Value   `json:"growth"`
	Volatility   Value   `json:"volatility"`
	Consistency  Value   `json:"consistency"`
	PeriodGrowth []Value `json:"period_growth"`
}

// TrendOf analyses xs. Statistics that cannot be computed are undefined.
func TrendOf(xs []float64) Trend {
	a := calc.Trend(xs)
	t := Trend{
		Direction:    string(a.Direction),
		PeriodGrowth: GrowthSeries(xs),
	}
	if a.HasGrowth {
		t.Growth = Of(a.Growth)
	}
	if a.HasVolatility {
		t.Volatility = Of(a.Volatility)
	}
	if a.HasConsistency {
		t.Consistency = Of(a.Consistency)
	}
	return t
}

// Dashboard is the at-a-glance view of a calculation: latest-period KPIs,
// trends for the headline series and plain-language insights.
type Dashboard struct {
	KPIs     map[string]Value `json:"kpis"`
	Trends   map[string]Trend `json:"trends"`
	Insights []string         `json:"insights"`
}

// kpiMetrics are read from the last period of the computed metrics.
var kpiMetrics = []string{
	"profit_margin",
	"return_on_assets",
	"return_on_equity",
	"current_ratio",
	"debt_to_equity",
}

// BuildDashboard derives the dashboard from the statement summary and the
// metrics a company type reports.
func BuildDashboard(s Summary, metrics map[string]Metric) Dashboard {
	d := Dashboard{
		KPIs: map[string]Value{
			"revenue":        Of(Last(s.Revenue)),
			"net_income":     Of(Last(s.NetIncome)),
			"free_cash_flow": Of(Last(s.FreeCashFlow)),
		},
		Trends: map[string]Trend{
			"revenue":        TrendOf(s.Revenue),
			"net_income":     TrendOf(s.NetIncome),
			"free_cash_flow": TrendOf(s.FreeCashFlow),
		},
		Insights: []string{},
	}
	for _, name := range kpiMetrics {
		v := Undefined
		if m, ok := metrics[name]; ok {
			v = m.Last()
		}
		d.KPIs[name] = v
	}

	if margin, ok := d.KPIs["profit_margin"].Get(); ok {
		switch {
		case margin > HighProfitMargin:
			d.Insights = append(d.Insights, "Strong profitability with high profit margins")
		case margin < LowProfitMargin:
			d.Insights = append(d.Insights, "Low profit margins; consider cost optimization")
		}
	}
	if growth, ok := d.Trends["revenue"].Growth.Get(); ok {
		switch {
		case growth > HighRevenueGrowth:
			d.Insights = append(d.Insights, "Strong revenue growth trend")
		case growth < 0:
			d.Insights = append(d.Insights, "Declining revenue; investigate market conditions")
		}
	}
	return d
}
