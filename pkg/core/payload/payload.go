// Package payload decodes calculation requests from files and HTTP bodies.
// Input is often hand-written, so decoding falls back from strict JSON to
// Hjson and finally to JSON repair.
package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"company_historicals/pkg/core/historical"
)

// Strategy names the parser that accepted the input.
type Strategy string

const (
	StrategyJSON     Strategy = "json"
	StrategyHJSON    Strategy = "hjson"
	StrategyRepaired Strategy = "repaired"
)

// Request is the body of a validate or calculate call.
type Request struct {
	Data        historical.HistoricalDataSet `json:"data"`
	Assumptions historical.AssumptionSet     `json:"assumptions"`
}

// Decode parses input into v, trying strict JSON, then Hjson (comments,
// unquoted keys, trailing commas), then JSON repair (unclosed brackets,
// markdown fences). It reports which strategy succeeded.
func Decode(input []byte, v any) (Strategy, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return "", fmt.Errorf("decode target must be a non-nil pointer, got %T", v)
	}
	// A failed attempt can leave v partially filled.
	reset := func() { rv.Elem().Set(reflect.Zero(rv.Elem().Type())) }

	if err := json.Unmarshal(input, v); err == nil {
		return StrategyJSON, nil
	}

	if normalized, err := hjsonToJSON(input); err == nil {
		reset()
		if err := json.Unmarshal(normalized, v); err == nil {
			return StrategyHJSON, nil
		}
	}

	repaired, err := jsonrepair.RepairJSON(string(input))
	if err == nil {
		reset()
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return StrategyRepaired, nil
		}
	}
	reset()

	return "", fmt.Errorf("failed to decode payload: no parsing strategy accepted the input")
}

func hjsonToJSON(input []byte) ([]byte, error) {
	var generic interface{}
	if err := hjson.Unmarshal(input, &generic); err != nil {
		return nil, fmt.Errorf("hjson parse: %w", err)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("hjson re-encode: %w", err)
	}
	return out, nil
}

type rawRequest struct {
	Data        map[string][]interface{} `json:"data"`
	Assumptions map[string]interface{}   `json:"assumptions"`
}

// DecodeRequest parses a request body. Observations that are not numbers
// (null, booleans, non-numeric strings) become NaN so validation can report
// them by field and period instead of failing the whole decode. Numeric
// strings such as "1200.5" are accepted.
func DecodeRequest(input []byte) (Request, Strategy, error) {
	var raw rawRequest
	strategy, err := Decode(input, &raw)
	if err != nil {
		return Request{}, "", err
	}

	req := Request{
		Data:        make(historical.HistoricalDataSet, len(raw.Data)),
		Assumptions: make(historical.AssumptionSet, len(raw.Assumptions)),
	}
	for field, obs := range raw.Data {
		series := make([]float64, len(obs))
		for i, o := range obs {
			series[i] = toFloat(o)
		}
		req.Data[field] = series
	}
	for key, v := range raw.Assumptions {
		req.Assumptions[key] = toFloat(v)
	}
	return req, strategy, nil
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
