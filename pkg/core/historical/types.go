// Package historical defines the data model and the shared calculation workflow
// for historical financial statements. Company types plug in through Model;
// Engine turns a Model into a Calculator.
package historical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"company_historicals/pkg/core/validate"
)

// =============================================================================
// INPUTS
// =============================================================================

// HistoricalDataSet maps a field name to its observations, one per period, oldest first.
type HistoricalDataSet map[string][]float64

// Clone returns a deep copy.
func (d HistoricalDataSet) Clone() HistoricalDataSet {
	out := make(HistoricalDataSet, len(d))
	for k, v := range d {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// Has reports whether field is present.
func (d HistoricalDataSet) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// Series returns a copy of field sized to periods. Absent fields and missing
// trailing observations read as zero.
func (d HistoricalDataSet) Series(field string, periods int) []float64 {
	out := make([]float64, periods)
	copy(out, d[field])
	return out
}

// AssumptionSet maps an assumption name to a scalar. Unknown keys are ignored.
type AssumptionSet map[string]float64

// Get returns a finite assumption value.
func (a AssumptionSet) Get(key string) (float64, bool) {
	v, ok := a[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// GetOr returns the assumption or def.
func (a AssumptionSet) GetOr(key string, def float64) float64 {
	if v, ok := a.Get(key); ok {
		return v
	}
	return def
}

// =============================================================================
// DESCRIPTOR & VALIDATION
// =============================================================================

// CompanyTypeDescriptor identifies a calculator and documents its inputs.
type CompanyTypeDescriptor struct {
	Key              string   `json:"key"`
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	RequiredFields   []string `json:"required_fields"`
	OptionalFields   []string `json:"optional_fields"`
	SupportedMetrics []string `json:"supported_metrics"`
	Assumptions      []string `json:"assumptions"`
}

// Clone returns a copy that shares no slices with d.
func (d CompanyTypeDescriptor) Clone() CompanyTypeDescriptor {
	d.RequiredFields = cloneStrings(d.RequiredFields)
	d.OptionalFields = cloneStrings(d.OptionalFields)
	d.SupportedMetrics = cloneStrings(d.SupportedMetrics)
	d.Assumptions = cloneStrings(d.Assumptions)
	return d
}

func cloneStrings(s []string) []string {
	return append([]string{}, s...)
}

// ValidationOutcome is the result of Validate. Valid is exactly len(Errors) == 0.
type ValidationOutcome struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationOutcome returns a valid outcome with empty lists.
func NewValidationOutcome() ValidationOutcome {
	return ValidationOutcome{Valid: true, Errors: []string{}, Warnings: []string{}}
}

// AddError records an error and marks the outcome invalid.
func (o *ValidationOutcome) AddError(format string, args ...any) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
	o.Valid = false
}

// AddWarning records a warning; Valid is unchanged.
func (o *ValidationOutcome) AddWarning(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// =============================================================================
// RESULTS
// =============================================================================

// Metric is either a per-period series or a single scalar.
type Metric struct {
	Series   []Value
	Scalar   Value
	IsScalar bool
}

// SeriesMetric wraps a per-period series.
func SeriesMetric(vals []Value) Metric {
	return Metric{Series: vals}
}

// ScalarMetric wraps a single value.
func ScalarMetric(v Value) Metric {
	return Metric{Scalar: v, IsScalar: true}
}

// Last returns the final observation of a series, or the scalar.
func (m Metric) Last() Value {
	if m.IsScalar {
		return m.Scalar
	}
	if len(m.Series) == 0 {
		return Undefined
	}
	return m.Series[len(m.Series)-1]
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if m.IsScalar {
		return json.Marshal(m.Scalar)
	}
	if m.Series == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.Series)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*m = ScalarMetric(Undefined)
		return nil
	}
	var series []Value
	if err := json.Unmarshal(b, &series); err == nil {
		*m = SeriesMetric(series)
		return nil
	}
	var v Value
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("metric is neither a series nor a scalar: %w", err)
	}
	*m = ScalarMetric(v)
	return nil
}

// Projection is a series extended beyond the last historical period.
type Projection struct {
	Strategy string    `json:"strategy"`
	Periods  []string  `json:"periods"`
	Values   []float64 `json:"values"`
}

// Metadata describes a calculation.
type Metadata struct {
	CompanyType      string                 `json:"company_type"`
	PeriodsProcessed int                    `json:"periods_processed"`
	PeriodLabels     []string               `json:"period_labels"`
	Linkage          validate.LinkageReport `json:"linkage"`
}

// CalculationResult is everything Calculate produces.
type CalculationResult struct {
	Statements  Statements            `json:"statements"`
	Metrics     map[string]Metric     `json:"metrics"`
	Projections map[string]Projection `json:"projections"`
	Annotations map[string]Value      `json:"annotations"`
	Dashboard   Dashboard             `json:"dashboard"`
	Metadata    Metadata              `json:"metadata"`
}
