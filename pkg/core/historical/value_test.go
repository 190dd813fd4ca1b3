package historical

import (
	"encoding/json"
	"testing"
)

func TestRatio(t *testing.T) {
	if v := Ratio(10, 4); !v.Defined || v.Float != 2.5 {
		t.Errorf("Ratio(10, 4) = %+v, want 2.5", v)
	}
	if v := Ratio(10, 0); v.Defined {
		t.Errorf("Ratio(10, 0) should be undefined, got %+v", v)
	}
	if v := Ratio(0, 5); !v.Defined || v.Float != 0 {
		t.Errorf("Ratio(0, 5) should be a defined zero, got %+v", v)
	}
}

func TestValueArithmetic(t *testing.T) {
	a, b := Of(6), Of(3)
	if got := a.Div(b); got != Of(2) {
		t.Errorf("6/3 = %v", got)
	}
	if got := a.Mul(Undefined); got.Defined {
		t.Errorf("6*undefined should be undefined, got %v", got)
	}
	if got := a.Div(Of(0)); got.Defined {
		t.Errorf("6/0 should be undefined, got %v", got)
	}
	if got := Undefined.Sub(b); got.Defined {
		t.Errorf("undefined-3 should be undefined, got %v", got)
	}
	if got := b.Scale(2); got != Of(6) {
		t.Errorf("3 scaled by 2 = %v", got)
	}
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Of(1.5), Undefined, Of(0)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[1.5,null,0]" {
		t.Errorf("got %s", b)
	}

	var back []Value
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0] != Of(1.5) || back[1].Defined || back[2] != Of(0) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestValueString(t *testing.T) {
	if Undefined.String() != "N/A" {
		t.Errorf("undefined renders as %q", Undefined.String())
	}
	if Of(0.25).String() != "0.25" {
		t.Errorf("0.25 renders as %q", Of(0.25).String())
	}
}

func TestMetricJSON(t *testing.T) {
	m := map[string]Metric{
		"series": SeriesMetric([]Value{Of(1), Undefined}),
		"scalar": ScalarMetric(Of(0.1)),
		"empty":  ScalarMetric(Undefined),
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"empty":null,"scalar":0.1,"series":[1,null]}` {
		t.Errorf("got %s", b)
	}

	var back map[string]Metric
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back["scalar"].IsScalar || back["scalar"].Scalar != Of(0.1) {
		t.Errorf("scalar = %+v", back["scalar"])
	}
	if back["series"].IsScalar || len(back["series"].Series) != 2 || back["series"].Series[1].Defined {
		t.Errorf("series = %+v", back["series"])
	}
	if !back["empty"].IsScalar || back["empty"].Scalar.Defined {
		t.Errorf("empty = %+v", back["empty"])
	}
}
