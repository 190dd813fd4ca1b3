// Package legacy accepts the older service-company payload, where each year
// lists individual services and expense categories, and converts it into the
// field-per-series form the calculators take.
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"company_historicals/pkg/core/companies/service"
	"company_historicals/pkg/core/historical"
	"company_historicals/pkg/core/payload"
	"company_historicals/pkg/core/registry"
)

// Defaults applied when the payload omits a setting.
const (
	DefaultTeamSize        = 10.0
	DefaultUtilizationRate = 75.0
	DefaultTaxRate         = 25.0
	DefaultForecastYears   = 5.0
)

// Number accepts a JSON number or a numeric string. Empty strings read as zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type ServiceLine struct {
	Name              string `json:"name"`
	HistoricalRevenue Number `json:"historicalRevenue"`
	HistoricalClients Number `json:"historicalClients"`
	Cost              Number `json:"cost"`
}

type ServiceYear struct {
	Year     Number        `json:"year"`
	Services []ServiceLine `json:"services"`
}

type ExpenseLine struct {
	Category         string `json:"category"`
	HistoricalAmount Number `json:"historicalAmount"`
}

type ExpenseYear struct {
	Year     Number        `json:"year"`
	Expenses []ExpenseLine `json:"expenses"`
}

// BusinessModel holds team settings. Rates are percentages.
type BusinessModel struct {
	TeamSize        *Number `json:"teamSize"`
	UtilizationRate *Number `json:"utilizationRate"`
	TeamGrowthRate  *Number `json:"teamGrowthRate"`
}

// Payload is the legacy service-company request. Rates are percentages.
type Payload struct {
	HistoricalServices   []ServiceYear `json:"historicalServices"`
	HistoricalExpenses   []ExpenseYear `json:"historicalExpenses"`
	ServiceBusinessModel BusinessModel `json:"serviceBusinessModel"`
	TaxRate              *Number       `json:"taxRate"`
	RevenueGrowthRate    *Number       `json:"revenueGrowthRate"`
	ForecastYears        *Number       `json:"forecastYears"`
}

// Parse decodes a legacy payload with the same lenient parsing as regular requests.
func Parse(input []byte) (Payload, error) {
	var p Payload
	if _, err := payload.Decode(input, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to parse legacy payload: %w", err)
	}
	return p, nil
}

func pick(n *Number, def float64) float64 {
	if n == nil {
		return def
	}
	return float64(*n)
}

// Convert maps the payload onto a data set and assumptions for the service
// calculator. One period per historicalServices entry; expense years are
// matched by position. standardHours converts team size and utilization
// into billable hours.
func Convert(p Payload, standardHours float64) (historical.HistoricalDataSet, historical.AssumptionSet) {
	periods := len(p.HistoricalServices)
	data := historical.HistoricalDataSet{
		"revenue":                make([]float64, periods),
		"operating_expenses":     make([]float64, periods),
		"employee_count":         make([]float64, periods),
		"billable_hours":         make([]float64, periods),
		"service_delivery_costs": make([]float64, periods),
		"client_count":           make([]float64, periods),
		"average_project_value":  make([]float64, periods),
	}

	team := pick(p.ServiceBusinessModel.TeamSize, DefaultTeamSize)
	utilization := pick(p.ServiceBusinessModel.UtilizationRate, DefaultUtilizationRate) / 100

	for i, year := range p.HistoricalServices {
		for _, s := range year.Services {
			data["revenue"][i] += float64(s.HistoricalRevenue)
			data["service_delivery_costs"][i] += float64(s.Cost)
			data["client_count"][i] += float64(s.HistoricalClients)
		}
		if i < len(p.HistoricalExpenses) {
			for _, e := range p.HistoricalExpenses[i].Expenses {
				data["operating_expenses"][i] += float64(e.HistoricalAmount)
			}
		}
		if clients := data["client_count"][i]; clients > 0 {
			data["average_project_value"][i] = data["revenue"][i] / clients
		}
		data["employee_count"][i] = team
		data["billable_hours"][i] = team * utilization * standardHours
	}

	assumptions := historical.AssumptionSet{
		"tax_rate":                pick(p.TaxRate, DefaultTaxRate) / 100,
		"projection_periods":      pick(p.ForecastYears, DefaultForecastYears),
		"utilization_rate_target": utilization,
	}
	if p.RevenueGrowthRate != nil {
		assumptions["revenue_growth_rate"] = float64(*p.RevenueGrowthRate) / 100
	}
	if p.ServiceBusinessModel.TeamGrowthRate != nil {
		assumptions["employee_growth_rate"] = float64(*p.ServiceBusinessModel.TeamGrowthRate) / 100
	}
	if periods > 0 && p.HistoricalServices[0].Year > 0 {
		assumptions["base_year"] = float64(p.HistoricalServices[0].Year)
	}
	return data, assumptions
}

// Calculate converts p and runs it through the service calculator in r.
// standardHours must match the calculator's tuning; zero selects the default.
// An empty payload fails validation like any other missing data.
func Calculate(r *registry.Registry, p Payload, standardHours float64) (historical.CalculationResult, error) {
	if standardHours <= 0 {
		standardHours = service.DefaultStandardHours
	}
	data, assumptions := Convert(p, standardHours)
	if len(p.HistoricalServices) == 0 {
		data = historical.HistoricalDataSet{}
	}
	return r.CalculateHistoricalStatements(service.Key, data, assumptions)
}
