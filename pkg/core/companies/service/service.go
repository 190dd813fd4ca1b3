// Package service computes historical statements and KPIs for professional
// service firms, where revenue is driven by headcount and billable hours.
package service

import (
	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/historical"
	"company_historicals/pkg/core/projection"
)

// Key is the registry key for service companies.
const Key = "service"

const (
	DefaultStandardHours  = 2080.0
	DefaultMinUtilization = 0.30
	DefaultMaxUtilization = 1.00
)

var requiredFields = []string{
	"revenue",
	"operating_expenses",
	"employee_count",
	"billable_hours",
	"service_delivery_costs",
	"client_count",
	"average_project_value",
}

var supportedMetrics = append([]string{
	"revenue_per_employee",
	"utilization_rate",
	"billable_hours_per_employee",
	"revenue_per_client",
	"service_delivery_efficiency",
	"average_project_size",
	"gross_margin",
	"operating_margin",
	"ebitda_margin",
	"profit_margin",
	"free_cash_flow",
	"revenue_growth_rate",
	"revenue_cagr",
}, historical.RatioMetrics...)

var assumptions = []string{
	"utilization_rate_target",
	"revenue_growth_rate",
	"employee_growth_rate",
}

type model struct {
	standardHours  float64
	minUtilization float64
	maxUtilization float64
}

// New returns the service calculator. Tuning keys: standard_hours_per_period,
// min_utilization, max_utilization plus the shared engine knobs. Standard
// hours are tuning only, so the utilization warnings raised by Validate and
// the utilization_rate metric always use the same capacity.
func New(t config.Tuning) historical.Calculator {
	return historical.NewEngine(&model{
		standardHours:  t.Get("standard_hours_per_period", DefaultStandardHours),
		minUtilization: t.Get("min_utilization", DefaultMinUtilization),
		maxUtilization: t.Get("max_utilization", DefaultMaxUtilization),
	}, t)
}

func (m *model) Descriptor() historical.CompanyTypeDescriptor {
	return historical.CompanyTypeDescriptor{
		Key:   Key,
		Label: "Service Company",
		Description: "Professional services firm (consulting, agencies, IT services). Revenue is " +
			"driven by team size, utilization and client work; delivery costs are mostly people.",
		RequiredFields:   requiredFields,
		SupportedMetrics: supportedMetrics,
		Assumptions:      assumptions,
	}
}

func (m *model) CheckStructure(data historical.HistoricalDataSet, periods int, out *historical.ValidationOutcome) {
	for _, f := range requiredFields {
		for i, v := range data[f] {
			if v < 0 {
				out.AddError("Field %s has a negative value in period %d", f, i+1)
			}
		}
	}

	employees := data["employee_count"]
	hours := data["billable_hours"]
	for i := 0; i < periods; i++ {
		u := historical.Ratio(hours[i], employees[i]*m.standardHours)
		if !u.Defined {
			continue
		}
		if u.Float < m.minUtilization || u.Float > m.maxUtilization {
			out.AddWarning("Utilization rate %.2f in period %d is outside the expected range %.2f-%.2f",
				u.Float, i+1, m.minUtilization, m.maxUtilization)
		}
	}
}

func (m *model) Drivers(data historical.HistoricalDataSet, periods int) historical.StatementDrivers {
	d := historical.BaseDrivers(data, periods)
	d.RevenueLines = []historical.Line{
		{Key: "service_revenue", Label: "Service Revenue", Values: data.Series("revenue", periods)},
	}
	d.CostOfSales = []historical.Line{
		{Key: "service_delivery_costs", Label: "Service Delivery Costs", Values: data.Series("service_delivery_costs", periods)},
	}
	d.OperatingExpenses = []historical.Line{
		{Key: "operating_expenses", Label: "Operating Expenses", Values: data.Series("operating_expenses", periods)},
	}
	return d
}

func (m *model) Metrics(data historical.HistoricalDataSet, s historical.Summary, a historical.AssumptionSet) map[string]historical.Metric {
	revenue := data["revenue"]
	employees := data["employee_count"]
	hours := data["billable_hours"]
	capacity := make([]float64, len(employees))
	for i, e := range employees {
		capacity[i] = e * m.standardHours
	}

	return map[string]historical.Metric{
		"revenue_per_employee":        historical.SeriesMetric(historical.RatioSeries(revenue, employees)),
		"utilization_rate":            historical.SeriesMetric(historical.RatioSeries(hours, capacity)),
		"billable_hours_per_employee": historical.SeriesMetric(historical.RatioSeries(hours, employees)),
		"revenue_per_client":          historical.SeriesMetric(historical.RatioSeries(revenue, data["client_count"])),
		"service_delivery_efficiency": historical.SeriesMetric(historical.RatioSeries(revenue, data["service_delivery_costs"])),
		"average_project_size":        historical.SeriesMetric(historical.Values(data["average_project_value"])),
	}
}

func (m *model) ApplyAssumptions(ac *historical.AssumptionContext) {
	ac.Grow("revenue", "revenue_growth_rate", ac.Summary.Revenue)
	ac.Grow("employee_count", "employee_growth_rate", ac.Data["employee_count"])

	target, ok := ac.Gap("utilization_rate_gap", "utilization_rate_target", "utilization_rate")
	if !ok {
		return
	}
	headcount := ac.Driver("employee_count", historical.Last(ac.Data["employee_count"]))
	ac.Project("billable_hours",
		&projection.ProductStrategy{Factor: m.standardHours * target, DriverIDs: []string{"employee_count"}},
		ac.Data["billable_hours"],
		projection.FromSeries(map[string][]float64{"employee_count": headcount}))
}
