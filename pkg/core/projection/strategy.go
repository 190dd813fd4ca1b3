// Package projection extends a historical series beyond its last period.
// A Strategy computes one period at a time from the previous value and any
// driver values the caller supplies; Run walks a strategy across a horizon.
package projection

import (
	"fmt"
	"math"
)

// =============================================================================
// PROJECTION STRATEGY INTERFACE
// =============================================================================

// Context provides data needed for strategy calculations
type Context struct {
	LastValue float64            // Previous period's value for this series
	Drivers   map[string]float64 // Values of other series for this step
}

// Strategy defines a pluggable forecasting algorithm
type Strategy interface {
	// Name returns the strategy identifier
	Name() string

	// Calculate computes the projected value for a given context
	Calculate(ctx Context) (float64, error)

	// RequiredDrivers returns the driver IDs needed by this strategy
	// Empty slice = no drivers needed (e.g., simple growth)
	RequiredDrivers() []string

	// Validate checks if necessary inputs are available
	Validate(ctx Context) error
}

// =============================================================================
// BUILT-IN STRATEGIES
// =============================================================================

// GrowthStrategy implements simple percentage growth
// Formula: Value(t) = Value(t-1) * (1 + GrowthRate)
type GrowthStrategy struct {
	GrowthRate float64 `json:"growth_rate"` // e.g., 0.05 for 5%
}

func (s *GrowthStrategy) Name() string { return "GrowthRate" }

func (s *GrowthStrategy) RequiredDrivers() []string { return nil }

func (s *GrowthStrategy) Validate(ctx Context) error {
	if ctx.LastValue == 0 {
		return fmt.Errorf("GrowthStrategy requires a non-zero LastValue")
	}
	return nil
}

func (s *GrowthStrategy) Calculate(ctx Context) (float64, error) {
	if err := s.Validate(ctx); err != nil {
		return 0, err
	}
	return ctx.LastValue * (1 + s.GrowthRate), nil
}

// MarginStrategy implements Margin % of Base
// Formula: Value = BaseValue × MarginPercent
// Example: COGS = Revenue × (1 - GrossMargin%)
type MarginStrategy struct {
	MarginPercent float64 `json:"margin_percent"` // e.g., 0.40 for 40%
	BaseNodeID    string  `json:"base_node_id"`   // e.g., "revenue"
}

func (s *MarginStrategy) Name() string { return "Margin" }

func (s *MarginStrategy) RequiredDrivers() []string {
	return []string{s.BaseNodeID}
}

func (s *MarginStrategy) Validate(ctx Context) error {
	if _, ok := ctx.Drivers[s.BaseNodeID]; !ok {
		return fmt.Errorf("MarginStrategy requires '%s' base value", s.BaseNodeID)
	}
	return nil
}

func (s *MarginStrategy) Calculate(ctx Context) (float64, error) {
	if err := s.Validate(ctx); err != nil {
		return 0, err
	}
	return ctx.Drivers[s.BaseNodeID] * s.MarginPercent, nil
}

// ProductStrategy multiplies driver values and a constant factor.
// Formula: Value = Factor × Driver1 × Driver2 × ...
// Example: Billable Hours = Headcount × (Standard Hours × Utilization Target)
type ProductStrategy struct {
	Factor    float64  `json:"factor"`
	DriverIDs []string `json:"driver_ids"`
}

func (s *ProductStrategy) Name() string { return "Product" }

func (s *ProductStrategy) RequiredDrivers() []string { return s.DriverIDs }

func (s *ProductStrategy) Validate(ctx Context) error {
	for _, id := range s.DriverIDs {
		if _, ok := ctx.Drivers[id]; !ok {
			return fmt.Errorf("ProductStrategy requires '%s' driver", id)
		}
	}
	return nil
}

func (s *ProductStrategy) Calculate(ctx Context) (float64, error) {
	if err := s.Validate(ctx); err != nil {
		return 0, err
	}
	v := s.Factor
	for _, id := range s.DriverIDs {
		v *= ctx.Drivers[id]
	}
	return v, nil
}

// =============================================================================
// RUNNER
// =============================================================================

// Series is a projected series.
type Series struct {
	Key      string    `json:"key"`
	Strategy string    `json:"strategy"`
	Values   []float64 `json:"values"`
}

// DriverFunc supplies driver values for a 1-based projection step.
type DriverFunc func(step int) map[string]float64

// Run projects key for the given number of steps, starting from the last
// value of history. drivers may be nil for strategies without drivers.
func Run(key string, s Strategy, history []float64, steps int, drivers DriverFunc) (Series, error) {
	if steps <= 0 {
		return Series{}, fmt.Errorf("projection %s: steps must be positive, got %d", key, steps)
	}

	if need := s.RequiredDrivers(); len(need) > 0 && drivers == nil {
		return Series{}, fmt.Errorf("projection %s: %s strategy needs drivers %v", key, s.Name(), need)
	}

	last := 0.0
	if len(history) > 0 {
		last = history[len(history)-1]
	}

	out := Series{Key: key, Strategy: s.Name(), Values: make([]float64, 0, steps)}
	for step := 1; step <= steps; step++ {
		ctx := Context{LastValue: last}
		if drivers != nil {
			ctx.Drivers = drivers(step)
		}

		v, err := s.Calculate(ctx)
		if err != nil {
			return Series{}, fmt.Errorf("projection %s step %d: %w", key, step, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Series{}, fmt.Errorf("projection %s step %d: non-finite value", key, step)
		}

		out.Values = append(out.Values, v)
		last = v
	}
	return out, nil
}

// FromSeries returns a DriverFunc that reads each driver from a projected
// series, falling back to the series' last value past its end.
func FromSeries(series map[string][]float64) DriverFunc {
	return func(step int) map[string]float64 {
		out := make(map[string]float64, len(series))
		for id, vals := range series {
			if len(vals) == 0 {
				continue
			}
			i := step - 1
			if i >= len(vals) {
				i = len(vals) - 1
			}
			out[id] = vals[i]
		}
		return out
	}
}
