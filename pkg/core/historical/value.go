package historical

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is a metric observation that may be undefined, e.g. a ratio whose
// denominator is zero. Undefined is distinct from every number including 0.
// JSON: undefined encodes as null, defined as a plain number.
type Value struct {
	Float   float64
	Defined bool
}

// Undefined is the zero Value.
var Undefined = Value{}

// Of wraps a number. Non-finite numbers are undefined.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return Value{Float: f, Defined: true}
}

// Ratio returns num / den, undefined when den is zero.
func Ratio(num, den float64) Value {
	if den == 0 {
		return Undefined
	}
	return Of(num / den)
}

// Get returns the number and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.Float, v.Defined
}

// Mul returns v × o; undefined if either operand is.
func (v Value) Mul(o Value) Value {
	if !v.Defined || !o.Defined {
		return Undefined
	}
	return Of(v.Float * o.Float)
}

// Div returns v / o; undefined if either operand is, or o is zero.
func (v Value) Div(o Value) Value {
	if !v.Defined || !o.Defined {
		return Undefined
	}
	return Ratio(v.Float, o.Float)
}

// Sub returns v - o; undefined if either operand is.
func (v Value) Sub(o Value) Value {
	if !v.Defined || !o.Defined {
		return Undefined
	}
	return Of(v.Float - o.Float)
}

// Scale multiplies a defined value by k.
func (v Value) Scale(k float64) Value {
	if !v.Defined {
		return Undefined
	}
	return Of(v.Float * k)
}

func (v Value) String() string {
	if !v.Defined {
		return "N/A"
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Float, 'g', -1, 64)), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}
