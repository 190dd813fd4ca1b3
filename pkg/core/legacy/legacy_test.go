package legacy

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/registry"
)

const samplePayload = `{
  "historicalServices": [
    {"year": 2022, "services": [
      {"name": "Advisory", "historicalRevenue": 600000, "historicalClients": 6, "cost": 300000},
      {"name": "Implementation", "historicalRevenue": "400000", "historicalClients": "4", "cost": "100000"}
    ]},
    {"year": "2023", "services": [
      {"name": "Advisory", "historicalRevenue": 700000, "historicalClients": 7, "cost": 350000},
      {"name": "Implementation", "historicalRevenue": 500000, "historicalClients": 3, "cost": 150000}
    ]}
  ],
  "historicalExpenses": [
    {"year": 2022, "expenses": [
      {"category": "Rent", "historicalAmount": 100000},
      {"category": "Salaries", "historicalAmount": "150000"}
    ]},
    {"year": 2023, "expenses": [
      {"category": "Rent", "historicalAmount": 300000}
    ]}
  ],
  "serviceBusinessModel": {"teamSize": 8, "utilizationRate": 80},
  "taxRate": 30,
  "revenueGrowthRate": 10,
  "forecastYears": 3
}`

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{`12.5`, 12.5, false},
		{`"12.5"`, 12.5, false},
		{`" 7 "`, 7, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"twelve"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		var n Number
		err := json.Unmarshal([]byte(tt.input), &n)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && float64(n) != tt.want {
			t.Errorf("%s: got %v, want %v", tt.input, n, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	p, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	data, a := Convert(p, 2080)

	want := map[string][]float64{
		"revenue":                {1000000, 1200000},
		"service_delivery_costs": {400000, 500000},
		"client_count":           {10, 10},
		"operating_expenses":     {250000, 300000},
		"average_project_value":  {100000, 120000},
		"employee_count":         {8, 8},
	}
	for field, w := range want {
		if !reflect.DeepEqual(data[field], w) {
			t.Errorf("%s = %v, want %v", field, data[field], w)
		}
	}
	for i, h := range data["billable_hours"] {
		if math.Abs(h-13312) > 1e-6 {
			t.Errorf("billable_hours[%d] = %v, want 13312", i, h)
		}
	}

	checks := map[string]float64{
		"tax_rate":                0.3,
		"revenue_growth_rate":     0.1,
		"utilization_rate_target": 0.8,
		"projection_periods":      3,
		"base_year":               2022,
	}
	for k, w := range checks {
		if math.Abs(a[k]-w) > 1e-12 {
			t.Errorf("assumption %s = %v, want %v", k, a[k], w)
		}
	}
	if _, ok := a["employee_growth_rate"]; ok {
		t.Error("employee_growth_rate set without teamGrowthRate")
	}
}

func TestConvert_Defaults(t *testing.T) {
	p := Payload{HistoricalServices: []ServiceYear{{Services: []ServiceLine{{HistoricalRevenue: 1000}}}}}

	data, a := Convert(p, 2080)

	if data["employee_count"][0] != DefaultTeamSize {
		t.Errorf("employee_count = %v", data["employee_count"])
	}
	if math.Abs(data["billable_hours"][0]-DefaultTeamSize*0.75*2080) > 1e-6 {
		t.Errorf("billable_hours = %v", data["billable_hours"])
	}
	if data["average_project_value"][0] != 0 {
		t.Errorf("average_project_value without clients = %v, want 0", data["average_project_value"])
	}
	if data["operating_expenses"][0] != 0 {
		t.Errorf("operating_expenses without expense years = %v", data["operating_expenses"])
	}
	if a["tax_rate"] != 0.25 || a["projection_periods"] != DefaultForecastYears {
		t.Errorf("assumptions = %v", a)
	}
	if _, ok := a["base_year"]; ok {
		t.Error("base_year set without a year")
	}
}

func TestCalculate(t *testing.T) {
	r, err := registry.Default(config.Config{})
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	p, _ := Parse([]byte(samplePayload))

	res, err := Calculate(r, p, 0)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if !reflect.DeepEqual(res.Metadata.PeriodLabels, []string{"2022", "2023"}) {
		t.Errorf("labels = %v", res.Metadata.PeriodLabels)
	}
	rpe := res.Metrics["revenue_per_employee"].Series
	if rpe[0].Float != 125000 || rpe[1].Float != 150000 {
		t.Errorf("revenue_per_employee = %v", rpe)
	}
	taxes, _ := res.Statements.IncomeStatement.Line("taxes")
	if math.Abs(taxes[0]-105000) > 1e-6 || math.Abs(taxes[1]-120000) > 1e-6 {
		t.Errorf("taxes = %v, want [105000 120000]", taxes)
	}
	if gap := res.Annotations["utilization_rate_gap"]; !gap.Defined || math.Abs(gap.Float) > 1e-9 {
		t.Errorf("utilization_rate_gap = %v, want 0", gap)
	}

	rev := res.Projections["revenue"]
	want := []float64{1320000, 1452000, 1597200}
	if len(rev.Values) != len(want) {
		t.Fatalf("revenue projection = %+v", rev)
	}
	for i := range want {
		if math.Abs(rev.Values[i]-want[i]) > 1e-6 {
			t.Errorf("revenue projection[%d] = %v, want %v", i, rev.Values[i], want[i])
		}
	}
	if !reflect.DeepEqual(rev.Periods, []string{"2024", "2025", "2026"}) {
		t.Errorf("projection periods = %v", rev.Periods)
	}
}

func TestCalculate_EmptyPayload(t *testing.T) {
	r, _ := registry.Default(config.Config{})

	_, err := Calculate(r, Payload{}, 0)
	if !errors.Is(err, registry.ErrInvalidHistoricalData) {
		t.Errorf("err = %v, want ErrInvalidHistoricalData", err)
	}
}
