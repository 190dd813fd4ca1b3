package payload

import (
	"math"
	"reflect"
	"testing"

	"company_historicals/pkg/core/historical"
)

func TestDecodeRequest_Strategies(t *testing.T) {
	want := historical.HistoricalDataSet{"revenue": {100, 200}}

	tests := []struct {
		name     string
		input    string
		strategy Strategy
	}{
		{
			name:     "Strict JSON",
			input:    `{"data": {"revenue": [100, 200]}, "assumptions": {"tax_rate": 0.3}}`,
			strategy: StrategyJSON,
		},
		{
			name: "Hjson with comments",
			input: `{
  # hand-edited input
  data: {
    revenue: [100, 200]
  }
  assumptions: {
    tax_rate: 0.3
  }
}`,
			strategy: StrategyHJSON,
		},
		{
			name:  "Unclosed object",
			input: `{"data": {"revenue": [100, 200]}, "assumptions": {"tax_rate": 0.3}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, strategy, err := DecodeRequest([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeRequest: %v", err)
			}
			if tt.strategy != "" && strategy != tt.strategy {
				t.Errorf("strategy = %s, want %s", strategy, tt.strategy)
			}
			if tt.strategy == "" && strategy == StrategyJSON {
				t.Error("malformed input accepted as strict JSON")
			}
			if !reflect.DeepEqual(req.Data, want) {
				t.Errorf("data = %v, want %v", req.Data, want)
			}
			if req.Assumptions["tax_rate"] != 0.3 {
				t.Errorf("assumptions = %v", req.Assumptions)
			}
		})
	}
}

func TestDecodeRequest_NonNumericObservations(t *testing.T) {
	input := `{"data": {"revenue": [100, "250.5", null, "abc", true]}, "assumptions": {"tax_rate": "n/a"}}`

	req, _, err := DecodeRequest([]byte(input))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}

	rev := req.Data["revenue"]
	if len(rev) != 5 {
		t.Fatalf("revenue = %v", rev)
	}
	if rev[0] != 100 || rev[1] != 250.5 {
		t.Errorf("numeric observations = %v", rev[:2])
	}
	for i := 2; i < 5; i++ {
		if !math.IsNaN(rev[i]) {
			t.Errorf("revenue[%d] = %v, want NaN", i, rev[i])
		}
	}
	if _, ok := req.Assumptions.Get("tax_rate"); ok {
		t.Error("non-numeric assumption should be ignored")
	}
}

func TestDecodeRequest_Empty(t *testing.T) {
	req, strategy, err := DecodeRequest([]byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if strategy != StrategyJSON || len(req.Data) != 0 || req.Data == nil {
		t.Errorf("got %+v via %s", req, strategy)
	}
}

func TestDecode_Rejects(t *testing.T) {
	var req rawRequest
	if _, err := Decode([]byte(`{"data": [1, 2]}`), &req); err == nil {
		t.Error("expected error for data given as an array")
	}
	if req.Data != nil {
		t.Errorf("failed decode left partial data: %v", req.Data)
	}

	if _, err := Decode([]byte(`{}`), req); err == nil {
		t.Error("expected error for a non-pointer target")
	}
}
