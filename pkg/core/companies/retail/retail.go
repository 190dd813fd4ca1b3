// Package retail computes historical statements and KPIs for store-based retailers.
package retail

import (
	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/historical"
	"company_historicals/pkg/core/projection"
)

// Key is the registry key for retail companies.
const Key = "retail"

const (
	DefaultDaysPerPeriod = 365.0
	DefaultMinTurnover   = 1.0
	DefaultMaxTurnover   = 50.0
)

var requiredFields = []string{
	"revenue",
	"cost_of_goods_sold",
	"operating_expenses",
	"inventory",
	"square_footage",
}

var optionalFields = []string{
	"average_inventory",
	"store_count",
}

var supportedMetrics = append([]string{
	"inventory_turnover",
	"revenue_per_square_foot",
	"days_inventory_outstanding",
	"revenue_per_store",
	"gross_margin",
	"operating_margin",
	"profit_margin",
	"free_cash_flow",
	"revenue_growth_rate",
	"revenue_cagr",
}, historical.RatioMetrics...)

var assumptions = []string{
	"inventory_turnover_target",
	"revenue_growth_rate",
	"gross_margin_target",
}

type model struct {
	daysPerPeriod float64
	minTurnover   float64
	maxTurnover   float64
}

// New returns the retail calculator. Tuning keys: days_per_period,
// min_turnover, max_turnover plus the shared engine knobs.
func New(t config.Tuning) historical.Calculator {
	return historical.NewEngine(&model{
		daysPerPeriod: t.Get("days_per_period", DefaultDaysPerPeriod),
		minTurnover:   t.Get("min_turnover", DefaultMinTurnover),
		maxTurnover:   t.Get("max_turnover", DefaultMaxTurnover),
	}, t)
}

func (m *model) Descriptor() historical.CompanyTypeDescriptor {
	return historical.CompanyTypeDescriptor{
		Key:   Key,
		Label: "Retail Company",
		Description: "Store-based retailer selling physical goods. Performance hinges on inventory " +
			"turnover, sales density per square foot and merchandise margin.",
		RequiredFields:   requiredFields,
		OptionalFields:   optionalFields,
		SupportedMetrics: supportedMetrics,
		Assumptions:      assumptions,
	}
}

// AverageInventory returns the supplied average_inventory series, or derives
// it as the mean of opening and closing inventory. The first period has no
// opening balance and uses its closing inventory.
func AverageInventory(data historical.HistoricalDataSet, periods int) []float64 {
	if data.Has("average_inventory") {
		return data.Series("average_inventory", periods)
	}
	inv := data.Series("inventory", periods)
	avg := make([]float64, periods)
	for i := range avg {
		if i == 0 {
			avg[i] = inv[0]
			continue
		}
		avg[i] = (inv[i-1] + inv[i]) / 2
	}
	return avg
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

	turnover := historical.RatioSeries(data["cost_of_goods_sold"], AverageInventory(data, periods))
	for i, t := range turnover {
		if !t.Defined {
			continue
		}
		if t.Float < m.minTurnover || t.Float > m.maxTurnover {
			out.AddWarning("Inventory turnover %.2f in period %d is outside the expected range %.0f-%.0f",
				t.Float, i+1, m.minTurnover, m.maxTurnover)
		}
	}
}

// Normalize fills average_inventory when the caller did not supply it.
func (m *model) Normalize(data historical.HistoricalDataSet, periods int) {
	data["average_inventory"] = AverageInventory(data, periods)
}

func (m *model) Drivers(data historical.HistoricalDataSet, periods int) historical.StatementDrivers {
	d := historical.BaseDrivers(data, periods)
	d.RevenueLines = []historical.Line{
		{Key: "net_sales", Label: "Net Sales", Values: data.Series("revenue", periods)},
	}
	d.CostOfSales = []historical.Line{
		{Key: "cost_of_goods_sold", Label: "Cost of Goods Sold", Values: data.Series("cost_of_goods_sold", periods)},
	}
	d.OperatingExpenses = []historical.Line{
		{Key: "operating_expenses", Label: "Store & Operating Expenses", Values: data.Series("operating_expenses", periods)},
	}
	d.Inventory = data.Series("inventory", periods)
	return d
}

func (m *model) Metrics(data historical.HistoricalDataSet, s historical.Summary, a historical.AssumptionSet) map[string]historical.Metric {
	revenue := data["revenue"]
	cogs := data["cost_of_goods_sold"]
	avgInv := data["average_inventory"]

	metrics := map[string]historical.Metric{
		"inventory_turnover":         historical.SeriesMetric(historical.RatioSeries(cogs, avgInv)),
		"revenue_per_square_foot":    historical.SeriesMetric(historical.RatioSeries(revenue, data["square_footage"])),
		"days_inventory_outstanding": historical.SeriesMetric(historical.ScaleSeries(historical.RatioSeries(avgInv, cogs), m.daysPerPeriod)),
	}
	if data.Has("store_count") {
		metrics["revenue_per_store"] = historical.SeriesMetric(historical.RatioSeries(revenue, data["store_count"]))
	}
	return metrics
}

func (m *model) ApplyAssumptions(ac *historical.AssumptionContext) {
	if target, ok := ac.Gap("inventory_turnover_gap", "inventory_turnover_target", "inventory_turnover"); ok {
		ac.Annotate("target_inventory", historical.Ratio(historical.Last(ac.Data["cost_of_goods_sold"]), target))
	}

	ac.Grow("revenue", "revenue_growth_rate", ac.Summary.Revenue)

	if gm, ok := ac.Assumptions.Get("gross_margin_target"); ok {
		revenue := ac.Driver("revenue", historical.Last(ac.Summary.Revenue))
		ac.Project("cost_of_goods_sold",
			&projection.MarginStrategy{MarginPercent: 1 - gm, BaseNodeID: "revenue"},
			ac.Data["cost_of_goods_sold"],
			projection.FromSeries(map[string][]float64{"revenue": revenue}))
	}
}
