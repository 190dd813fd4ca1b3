package historical

import (
	"fmt"
	"math"
	"strconv"

	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/projection"
	"company_historicals/pkg/core/validate"
)

const (
	DefaultTaxRate           = 0.25
	DefaultProjectionPeriods = 3
	MaxProjectionPeriods     = 20

	// DefaultRevenueSwing flags period-over-period revenue changes above 300%.
	DefaultRevenueSwing = 3.0

	// MaxMagnitude bounds every observation and money assumption so that
	// statement totals stay finite.
	MaxMagnitude = 1e15

	linkageTolerance = 0.01
)

// SharedAssumptions are accepted by every company type.
var SharedAssumptions = []string{"tax_rate", "projection_periods", "base_year", "opening_cash"}

// Engine implements Calculator on top of a Model.
type Engine struct {
	model Model
	desc  CompanyTypeDescriptor

	taxRate           float64
	projectionPeriods float64
	revenueSwing      float64
}

var _ Calculator = (*Engine)(nil)

// NewEngine wraps m. Shared optional fields and assumptions are appended to its descriptor.
func NewEngine(m Model, t config.Tuning) *Engine {
	desc := m.Descriptor().Clone()
	desc.OptionalFields = mergeFields(desc.OptionalFields, SharedOptionalFields)
	desc.Assumptions = mergeFields(desc.Assumptions, SharedAssumptions)

	return &Engine{
		model:             m,
		desc:              desc,
		taxRate:           t.Get("tax_rate", DefaultTaxRate),
		projectionPeriods: t.Get("projection_periods", DefaultProjectionPeriods),
		revenueSwing:      t.Get("max_revenue_swing", DefaultRevenueSwing),
	}
}

func (e *Engine) Descriptor() CompanyTypeDescriptor { return e.desc.Clone() }

func (e *Engine) RequiredFields() []string { return cloneStrings(e.desc.RequiredFields) }

func (e *Engine) SupportedMetrics() []string { return cloneStrings(e.desc.SupportedMetrics) }

// =============================================================================
// VALIDATE
// =============================================================================

func (e *Engine) Validate(data HistoricalDataSet) ValidationOutcome {
	out := NewValidationOutcome()

	periods := CheckPeriods(data, e.desc.RequiredFields, e.desc.OptionalFields, &out)
	if !out.Valid {
		return out
	}

	e.model.CheckStructure(data, periods, &out)
	e.checkRevenueSwings(data, &out)

	out.Valid = len(out.Errors) == 0
	return out
}

// CheckPeriods records missing required fields (in order), period-count
// mismatches, non-finite observations and observations beyond MaxMagnitude.
// It returns the period count taken from the first present required field.
func CheckPeriods(data HistoricalDataSet, required, optional []string, out *ValidationOutcome) int {
	expected := -1
	for _, f := range required {
		vals, ok := data[f]
		if !ok {
			out.AddError("Missing required field: %s", f)
			continue
		}
		if expected < 0 {
			expected = len(vals)
		}
	}
	if expected < 0 {
		return 0
	}

	for _, f := range required {
		vals, ok := data[f]
		if !ok {
			continue
		}
		switch {
		case len(vals) == 0:
			out.AddError("Field %s has no periods", f)
		case len(vals) != expected:
			out.AddError("Field %s has %d periods, expected %d", f, len(vals), expected)
		}
	}
	for _, f := range optional {
		if vals, ok := data[f]; ok && len(vals) != expected {
			out.AddError("Field %s has %d periods, expected %d", f, len(vals), expected)
		}
	}

	for _, fields := range [][]string{required, optional} {
		for _, f := range fields {
			for i, v := range data[f] {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					out.AddError("Field %s has a non-numeric value in period %d", f, i+1)
					break
				}
				if math.Abs(v) > MaxMagnitude {
					out.AddError("Field %s in period %d exceeds the supported magnitude of %g", f, i+1, MaxMagnitude)
					break
				}
			}
		}
	}

	return expected
}

func (e *Engine) checkRevenueSwings(data HistoricalDataSet, out *ValidationOutcome) {
	revenue := data["revenue"]
	for i := 1; i < len(revenue); i++ {
		check := validate.CheckForOutlier("revenue", revenue[i], revenue[i-1], e.revenueSwing)
		if check.IsOutlier {
			out.AddWarning("Field revenue in period %d: %s", i+1, check.Reason)
		}
	}
}

// =============================================================================
// CALCULATE
// =============================================================================

// Calculate runs normalize -> build statements -> compute metrics -> apply
// assumptions -> assemble, deriving the dashboard from the metrics. data is
// never modified.
func (e *Engine) Calculate(data HistoricalDataSet, assumptions AssumptionSet) CalculationResult {
	periods := 0
	if len(e.desc.RequiredFields) > 0 {
		periods = len(data[e.desc.RequiredFields[0]])
	}

	work := data.Clone()
	if n, ok := e.model.(Normalizer); ok {
		n.Normalize(work, periods)
	}

	labels := PeriodLabels(assumptions, periods, 0)
	statements, summary, totals := BuildStatements(e.model.Drivers(work, periods), StatementOptions{
		Periods:     periods,
		Labels:      labels,
		TaxRate:     clamp(assumptions.GetOr("tax_rate", e.taxRate), 0, 1),
		OpeningCash: clamp(assumptions.GetOr("opening_cash", 0), -MaxMagnitude, MaxMagnitude),
	})

	common := CommonMetrics(summary)
	specific := e.model.Metrics(work, summary, assumptions)
	metrics := make(map[string]Metric, len(e.desc.SupportedMetrics))
	for _, name := range e.desc.SupportedMetrics {
		if m, ok := specific[name]; ok {
			metrics[name] = m
		} else if m, ok := common[name]; ok {
			metrics[name] = m
		}
	}

	result := CalculationResult{
		Statements:  statements,
		Metrics:     metrics,
		Projections: map[string]Projection{},
		Annotations: map[string]Value{},
		Dashboard:   BuildDashboard(summary, metrics),
		Metadata: Metadata{
			CompanyType:      e.desc.Key,
			PeriodsProcessed: periods,
			PeriodLabels:     labels,
			Linkage:          validate.ValidateLinkages(totals, labels, linkageTolerance),
		},
	}

	horizon := e.horizon(assumptions)
	e.model.ApplyAssumptions(&AssumptionContext{
		Data:        work,
		Assumptions: assumptions,
		Summary:     summary,
		Metrics:     metrics,
		Horizon:     horizon,
		Labels:      PeriodLabels(assumptions, horizon, periods),
		result:      &result,
	})

	return result
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func (e *Engine) horizon(a AssumptionSet) int {
	h := int(math.Round(a.GetOr("projection_periods", e.projectionPeriods)))
	return max(1, min(h, MaxProjectionPeriods))
}

// PeriodLabels names count periods starting offset periods after the first
// historical one: years when base_year is set, P1..Pn otherwise.
func PeriodLabels(a AssumptionSet, count, offset int) []string {
	labels := make([]string, count)
	base, hasBase := a.Get("base_year")
	for i := range labels {
		if hasBase {
			labels[i] = strconv.Itoa(int(math.Round(base)) + offset + i)
		} else {
			labels[i] = fmt.Sprintf("P%d", offset+i+1)
		}
	}
	return labels
}

func mergeFields(own, shared []string) []string {
	seen := make(map[string]bool, len(own)+len(shared))
	out := make([]string, 0, len(own)+len(shared))
	for _, list := range [][]string{own, shared} {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// =============================================================================
// ASSUMPTIONS
// =============================================================================

// AssumptionContext is handed to Model.ApplyAssumptions. Projections and
// annotations are written straight into the result being assembled.
type AssumptionContext struct {
	Data        HistoricalDataSet
	Assumptions AssumptionSet
	Summary     Summary
	Metrics     map[string]Metric
	Horizon     int
	Labels      []string

	result *CalculationResult
}

// Annotate records a scalar annotation.
func (ac *AssumptionContext) Annotate(key string, v Value) {
	ac.result.Annotations[key] = v
}

// Gap annotates target minus the last observed metric value when the
// assumption is set. It returns the target.
func (ac *AssumptionContext) Gap(annotation, assumption, metric string) (float64, bool) {
	target, ok := ac.Assumptions.Get(assumption)
	if !ok {
		return 0, false
	}
	last := Undefined
	if m, ok := ac.Metrics[metric]; ok {
		last = m.Last()
	}
	ac.Annotate(annotation, Of(target).Sub(last))
	return target, true
}

// Project runs s over the horizon and stores the projection under key.
// A strategy that cannot run (e.g. growth from zero) leaves no projection.
func (ac *AssumptionContext) Project(key string, s projection.Strategy, history []float64, drivers projection.DriverFunc) bool {
	series, err := projection.Run(key, s, history, ac.Horizon, drivers)
	if err != nil {
		return false
	}
	ac.result.Projections[key] = Projection{
		Strategy: series.Strategy,
		Periods:  cloneStrings(ac.Labels),
		Values:   series.Values,
	}
	return true
}

// Grow projects key at the growth rate named by assumption, when set.
func (ac *AssumptionContext) Grow(key, assumption string, history []float64) bool {
	rate, ok := ac.Assumptions.Get(assumption)
	if !ok {
		return false
	}
	return ac.Project(key, &projection.GrowthStrategy{GrowthRate: rate}, history, nil)
}

// Driver returns the projection for key, or a single-element series holding
// fallback. projection.FromSeries repeats the last element past the end.
func (ac *AssumptionContext) Driver(key string, fallback float64) []float64 {
	if p, ok := ac.result.Projections[key]; ok {
		return p.Values
	}
	return []float64{fallback}
}
