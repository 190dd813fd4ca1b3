package projection_test

import (
	"math"
	"testing"

	"company_historicals/pkg/core/projection"
)

func TestGrowthStrategy(t *testing.T) {
	s := &projection.GrowthStrategy{GrowthRate: 0.05} // 5% growth

	result, err := s.Calculate(projection.Context{LastValue: 100.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 105.0
	if result != expected {
		t.Errorf("expected %.2f, got %.2f", expected, result)
	}
}

func TestGrowthStrategy_ZeroBase(t *testing.T) {
	s := &projection.GrowthStrategy{GrowthRate: 0.05}

	if _, err := s.Calculate(projection.Context{}); err == nil {
		t.Fatal("expected error for zero last value, got nil")
	}
}

func TestMarginStrategy(t *testing.T) {
	s := &projection.MarginStrategy{MarginPercent: 0.6, BaseNodeID: "revenue"}

	result, err := s.Calculate(projection.Context{
		Drivers: map[string]float64{"revenue": 1000.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 600.0 {
		t.Errorf("expected 600.00, got %.2f", result)
	}

	if _, err := s.Calculate(projection.Context{}); err == nil {
		t.Fatal("expected error for missing base driver, got nil")
	}
}

func TestProductStrategy(t *testing.T) {
	s := &projection.ProductStrategy{Factor: 2080 * 0.75, DriverIDs: []string{"employee_count"}}

	result, err := s.Calculate(projection.Context{
		Drivers: map[string]float64{"employee_count": 10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(result-15600) > 1e-9 {
		t.Errorf("expected 15600, got %.2f", result)
	}

	if _, err := s.Calculate(projection.Context{Drivers: map[string]float64{}}); err == nil {
		t.Fatal("expected error for missing driver, got nil")
	}
}

func TestRun_Growth(t *testing.T) {
	series, err := projection.Run("revenue", &projection.GrowthStrategy{GrowthRate: 0.10}, []float64{90, 100}, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []float64{110, 121, 133.1}
	if len(series.Values) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(series.Values))
	}
	for i, want := range expected {
		if math.Abs(series.Values[i]-want) > 1e-9 {
			t.Errorf("step %d: expected %.2f, got %.4f", i+1, want, series.Values[i])
		}
	}
	if series.Strategy != "GrowthRate" || series.Key != "revenue" {
		t.Errorf("unexpected series header: %+v", series)
	}
}

func TestRun_DoesNotMutateHistory(t *testing.T) {
	history := []float64{100}
	if _, err := projection.Run("revenue", &projection.GrowthStrategy{GrowthRate: 0.1}, history, 2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 || history[0] != 100 {
		t.Errorf("history mutated: %v", history)
	}
}

func TestRun_WithSeriesDrivers(t *testing.T) {
	drivers := projection.FromSeries(map[string][]float64{"revenue": {200, 300}})
	series, err := projection.Run("cogs", &projection.MarginStrategy{MarginPercent: 0.5, BaseNodeID: "revenue"}, nil, 3, drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Third step reuses the last driver value.
	expected := []float64{100, 150, 150}
	for i, want := range expected {
		if series.Values[i] != want {
			t.Errorf("step %d: expected %.2f, got %.2f", i+1, want, series.Values[i])
		}
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := projection.Run("revenue", &projection.GrowthStrategy{}, []float64{100}, 0, nil); err == nil {
		t.Error("expected error for zero steps")
	}
	if _, err := projection.Run("revenue", &projection.GrowthStrategy{GrowthRate: 0.1}, []float64{0}, 2, nil); err == nil {
		t.Error("expected error for zero base")
	}
	if _, err := projection.Run("cogs", &projection.MarginStrategy{MarginPercent: 0.5, BaseNodeID: "revenue"}, nil, 1, nil); err == nil {
		t.Error("expected error for a driver strategy without drivers")
	}
	other := projection.FromSeries(map[string][]float64{"other": {1}})
	if _, err := projection.Run("cogs", &projection.MarginStrategy{BaseNodeID: "revenue"}, nil, 1, other); err == nil {
		t.Error("expected error for missing driver")
	}
}
