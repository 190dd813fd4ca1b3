// Package saas computes historical statements and unit economics for
// subscription software businesses.
package saas

import (
	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/historical"
)

// Key is the registry key for SaaS companies.
const Key = "saas"

const DefaultMaxChurnRate = 0.5

var requiredFields = []string{
	"revenue",
	"subscription_revenue",
	"cost_of_revenue",
	"operating_expenses",
	"sales_and_marketing",
	"customer_count",
	"new_customers",
	"churned_customers",
}

var optionalFields = []string{
	"deferred_revenue",
}

var supportedMetrics = append([]string{
	"churn_rate",
	"arpu",
	"cac",
	"ltv",
	"ltv_to_cac",
	"recurring_revenue_ratio",
	"gross_margin",
	"operating_margin",
	"profit_margin",
	"free_cash_flow",
	"revenue_growth_rate",
	"revenue_cagr",
}, historical.RatioMetrics...)

var assumptions = []string{
	"churn_rate_target",
	"revenue_growth_rate",
	"customer_growth_rate",
}

type model struct {
	maxChurnRate float64
}

// New returns the SaaS calculator. Tuning keys: max_churn_rate plus the shared engine knobs.
func New(t config.Tuning) historical.Calculator {
	return historical.NewEngine(&model{
		maxChurnRate: t.Get("max_churn_rate", DefaultMaxChurnRate),
	}, t)
}

func (m *model) Descriptor() historical.CompanyTypeDescriptor {
	return historical.CompanyTypeDescriptor{
		Key:   Key,
		Label: "SaaS Company",
		Description: "Subscription software business. Growth is measured through customer " +
			"acquisition, churn and recurring revenue per customer.",
		RequiredFields:   requiredFields,
		OptionalFields:   optionalFields,
		SupportedMetrics: supportedMetrics,
		Assumptions:      assumptions,
	}
}

// BeginningCustomers returns the customer count at the start of each period:
// the prior period's closing count, or for the first period the closing count
// rolled back through that period's adds and churn.
func BeginningCustomers(data historical.HistoricalDataSet, periods int) []float64 {
	count := data.Series("customer_count", periods)
	added := data.Series("new_customers", periods)
	churned := data.Series("churned_customers", periods)

	begin := make([]float64, periods)
	for i := range begin {
		if i == 0 {
			begin[i] = count[0] - added[0] + churned[0]
			continue
		}
		begin[i] = count[i-1]
	}
	return begin
}

func (m *model) CheckStructure(data historical.HistoricalDataSet, periods int, out *historical.ValidationOutcome) {
	for _, fields := range [][]string{requiredFields, optionalFields} {
		for _, f := range fields {
			for i, v := range data[f] {
				if v < 0 {
					out.AddError("Field %s has a negative value in period %d", f, i+1)
				}
			}
		}
	}

	revenue := data["revenue"]
	subscription := data["subscription_revenue"]
	for i := 0; i < periods; i++ {
		if subscription[i] > revenue[i] {
			out.AddError("Field subscription_revenue exceeds revenue in period %d", i+1)
		}
	}

	begin := BeginningCustomers(data, periods)
	for i, b := range begin {
		if b < 0 {
			out.AddError("Beginning customer count is negative in period %d", i+1)
		}
	}

	churn := historical.RatioSeries(data["churned_customers"], begin)
	for i, c := range churn {
		if c.Defined && c.Float > m.maxChurnRate {
			out.AddWarning("Churn rate %.2f in period %d exceeds %.2f", c.Float, i+1, m.maxChurnRate)
		}
	}
}

func (m *model) Drivers(data historical.HistoricalDataSet, periods int) historical.StatementDrivers {
	revenue := data.Series("revenue", periods)
	subscription := data.Series("subscription_revenue", periods)
	other := make([]float64, periods)
	for i := range other {
		other[i] = revenue[i] - subscription[i]
	}

	d := historical.BaseDrivers(data, periods)
	d.RevenueLines = []historical.Line{
		{Key: "subscription_revenue", Label: "Subscription Revenue", Values: subscription},
		{Key: "other_revenue", Label: "Services & Other Revenue", Values: other},
	}
	d.CostOfSales = []historical.Line{
		{Key: "cost_of_revenue", Label: "Cost of Revenue", Values: data.Series("cost_of_revenue", periods)},
	}
	d.OperatingExpenses = []historical.Line{
		{Key: "sales_and_marketing", Label: "Sales & Marketing", Values: data.Series("sales_and_marketing", periods)},
		{Key: "operating_expenses", Label: "Other Operating Expenses", Values: data.Series("operating_expenses", periods)},
	}
	d.DeferredRevenue = data.Series("deferred_revenue", periods)
	return d
}

func (m *model) Metrics(data historical.HistoricalDataSet, s historical.Summary, a historical.AssumptionSet) map[string]historical.Metric {
	periods := len(data["customer_count"])
	begin := BeginningCustomers(data, periods)
	end := data["customer_count"]

	avg := make([]float64, periods)
	for i := range avg {
		avg[i] = (begin[i] + end[i]) / 2
	}

	churn := historical.RatioSeries(data["churned_customers"], begin)
	arpu := historical.RatioSeries(data["subscription_revenue"], avg)
	cac := historical.RatioSeries(data["sales_and_marketing"], data["new_customers"])
	grossMargin := historical.RatioSeries(s.GrossProfit, s.Revenue)
	ltv := historical.DivSeries(historical.MulSeries(arpu, grossMargin), churn)

	return map[string]historical.Metric{
		"churn_rate":              historical.SeriesMetric(churn),
		"arpu":                    historical.SeriesMetric(arpu),
		"cac":                     historical.SeriesMetric(cac),
		"ltv":                     historical.SeriesMetric(ltv),
		"ltv_to_cac":              historical.SeriesMetric(historical.DivSeries(ltv, cac)),
		"recurring_revenue_ratio": historical.SeriesMetric(historical.RatioSeries(data["subscription_revenue"], data["revenue"])),
	}
}

func (m *model) ApplyAssumptions(ac *historical.AssumptionContext) {
	ac.Gap("churn_rate_gap", "churn_rate_target", "churn_rate")
	ac.Grow("revenue", "revenue_growth_rate", ac.Summary.Revenue)
	ac.Grow("customer_count", "customer_growth_rate", ac.Data["customer_count"])
}
