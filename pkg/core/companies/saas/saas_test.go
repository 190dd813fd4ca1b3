package saas

import (
	"math"
	"reflect"
	"testing"

	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/historical"
)

func sampleData() historical.HistoricalDataSet {
	return historical.HistoricalDataSet{
		"revenue":              {1000000, 1500000},
		"subscription_revenue": {900000, 1350000},
		"cost_of_revenue":      {200000, 300000},
		"operating_expenses":   {300000, 400000},
		"sales_and_marketing":  {400000, 500000},
		"customer_count":       {100, 130},
		"new_customers":        {30, 50},
		"churned_customers":    {10, 20},
	}
}

func TestValidate_MissingFieldsInOrder(t *testing.T) {
	calc := New(nil)

	out := calc.Validate(historical.HistoricalDataSet{"revenue": {1}, "unrelated": {1, 2, 3}})
	want := make([]string, 0, len(requiredFields)-1)
	for _, f := range calc.RequiredFields()[1:] {
		want = append(want, "Missing required field: "+f)
	}
	if out.Valid || !reflect.DeepEqual(out.Errors, want) {
		t.Errorf("errors = %v, want %v", out.Errors, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(historical.HistoricalDataSet)
		wantValid   bool
		wantError   string
		wantWarning string
	}{
		{"Complete", func(historical.HistoricalDataSet) {}, true, "", ""},
		{"Subscription exceeds revenue", func(d historical.HistoricalDataSet) {
			d["subscription_revenue"] = []float64{1100000, 1350000}
		}, false, "Field subscription_revenue exceeds revenue in period 1", ""},
		{"Negative beginning customers", func(d historical.HistoricalDataSet) {
			d["customer_count"] = []float64{10, 130}
		}, false, "Beginning customer count is negative in period 1", ""},
		{"Negative churn count", func(d historical.HistoricalDataSet) {
			d["churned_customers"] = []float64{10, -5}
		}, false, "Field churned_customers has a negative value in period 2", ""},
		{"High churn", func(d historical.HistoricalDataSet) {
			d["churned_customers"] = []float64{10, 60}
		}, true, "", "Churn rate 0.60 in period 2 exceeds 0.50"},
		{"Deferred revenue length", func(d historical.HistoricalDataSet) {
			d["deferred_revenue"] = []float64{1, 2, 3}
		}, false, "Field deferred_revenue has 3 periods, expected 2", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := sampleData()
			tt.mutate(data)
			out := New(nil).Validate(data)
			if out.Valid != tt.wantValid {
				t.Fatalf("valid = %v, errors %v", out.Valid, out.Errors)
			}
			if tt.wantError != "" && !containsString(out.Errors, tt.wantError) {
				t.Errorf("errors = %v, want %q", out.Errors, tt.wantError)
			}
			if tt.wantWarning != "" && !containsString(out.Warnings, tt.wantWarning) {
				t.Errorf("warnings = %v, want %q", out.Warnings, tt.wantWarning)
			}
			if tt.wantValid && tt.wantWarning == "" && len(out.Warnings) != 0 {
				t.Errorf("unexpected warnings %v", out.Warnings)
			}
		})
	}
}

func TestValidate_TunedChurnLimit(t *testing.T) {
	out := New(config.Tuning{"max_churn_rate": 0.1}).Validate(sampleData())
	if !out.Valid || len(out.Warnings) != 2 {
		t.Errorf("expected two churn warnings, got %+v", out)
	}
}

func TestBeginningCustomers(t *testing.T) {
	got := BeginningCustomers(sampleData(), 2)
	if !reflect.DeepEqual(got, []float64{80, 100}) {
		t.Errorf("beginning customers = %v, want [80 100]", got)
	}
}

func TestCalculate_UnitEconomics(t *testing.T) {
	res := New(nil).Calculate(sampleData(), nil)

	tests := []struct {
		metric string
		period int
		want   float64
	}{
		{"churn_rate", 0, 0.125},
		{"churn_rate", 1, 0.2},
		{"arpu", 0, 10000},
		{"arpu", 1, 1350000.0 / 115},
		{"cac", 0, 400000.0 / 30},
		{"cac", 1, 10000},
		{"ltv", 0, 64000},
		{"ltv", 1, 1350000.0 / 115 * 0.8 / 0.2},
		{"ltv_to_cac", 0, 64000 / (400000.0 / 30)},
		{"recurring_revenue_ratio", 1, 0.9},
		{"gross_margin", 0, 0.8},
		{"operating_margin", 0, 0.1},
		{"revenue_growth_rate", 1, 0.5},
	}
	for _, tt := range tests {
		got := res.Metrics[tt.metric].Series[tt.period]
		if !got.Defined || math.Abs(got.Float-tt.want) > 1e-6 {
			t.Errorf("%s[%d] = %v, want %v", tt.metric, tt.period, got, tt.want)
		}
	}
	if len(res.Metrics) != len(supportedMetrics) {
		t.Errorf("got %d metrics, want %d", len(res.Metrics), len(supportedMetrics))
	}
}

func TestCalculate_UndefinedPropagates(t *testing.T) {
	data := sampleData()
	data["churned_customers"] = []float64{0, 20}
	data["new_customers"] = []float64{30, 0}
	data["customer_count"] = []float64{100, 80}

	res := New(nil).Calculate(data, nil)

	if c := res.Metrics["churn_rate"].Series[0]; c != historical.Of(0) {
		t.Errorf("churn_rate[0] = %v, want 0", c)
	}
	if v := res.Metrics["ltv"].Series[0]; v.Defined {
		t.Errorf("ltv with zero churn should be undefined, got %v", v)
	}
	if v := res.Metrics["ltv_to_cac"].Series[0]; v.Defined {
		t.Errorf("ltv_to_cac with undefined ltv should be undefined, got %v", v)
	}
	if v := res.Metrics["cac"].Series[1]; v.Defined {
		t.Errorf("cac with no new customers should be undefined, got %v", v)
	}
	if v := res.Metrics["ltv_to_cac"].Series[1]; v.Defined {
		t.Errorf("ltv_to_cac with undefined cac should be undefined, got %v", v)
	}
}

func TestCalculate_Statements(t *testing.T) {
	data := sampleData()
	data["deferred_revenue"] = []float64{50000, 80000}

	res := New(nil).Calculate(data, historical.AssumptionSet{"opening_cash": 250000})

	other, ok := res.Statements.IncomeStatement.Line("other_revenue")
	if !ok || other[0] != 100000 {
		t.Errorf("other revenue = %v", other)
	}
	total, _ := res.Statements.IncomeStatement.Line("total_revenue")
	if total[1] != 1500000 {
		t.Errorf("total revenue = %v", total)
	}
	dr, _ := res.Statements.CashFlow.Line("change_in_deferred_revenue")
	if dr[0] != 50000 || dr[1] != 30000 {
		t.Errorf("change in deferred revenue = %v", dr)
	}
	paidIn, _ := res.Statements.BalanceSheet.Line("paid_in_capital")
	if paidIn[0] != 250000 {
		t.Errorf("paid-in capital = %v", paidIn)
	}
	if !res.Metadata.Linkage.AllPassed {
		t.Errorf("linkage failed: %v", res.Metadata.Linkage.FailedChecks)
	}
}

func TestCalculate_Assumptions(t *testing.T) {
	res := New(nil).Calculate(sampleData(), historical.AssumptionSet{
		"churn_rate_target":    0.15,
		"customer_growth_rate": 0.2,
	})

	if gap := res.Annotations["churn_rate_gap"]; math.Abs(gap.Float+0.05) > 1e-9 {
		t.Errorf("churn_rate_gap = %v, want -0.05", gap)
	}
	customers := res.Projections["customer_count"].Values
	want := []float64{156, 187.2, 224.64}
	for i := range want {
		if math.Abs(customers[i]-want[i]) > 1e-9 {
			t.Errorf("customer_count[%d] = %v, want %v", i, customers[i], want[i])
		}
	}
	if _, ok := res.Projections["revenue"]; ok {
		t.Error("revenue projection without revenue_growth_rate")
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	calc := New(nil)
	a := historical.AssumptionSet{"churn_rate_target": 0.15}

	if !reflect.DeepEqual(calc.Calculate(sampleData(), a), calc.Calculate(sampleData(), a)) {
		t.Error("repeated Calculate produced different results")
	}
	extra := historical.AssumptionSet{"churn_rate_target": 0.15, "net_dollar_retention": 1.1}
	if !reflect.DeepEqual(calc.Calculate(sampleData(), a), calc.Calculate(sampleData(), extra)) {
		t.Error("unknown assumption changed the result")
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
