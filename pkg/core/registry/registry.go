// Package registry maps company-type keys to calculators and is the single
// entry point for validation and calculation. It is built once at start-up
// and read-only afterwards, so it is safe for concurrent use without locking.
package registry

import (
	"fmt"

	"company_historicals/pkg/core/companies/retail"
	"company_historicals/pkg/core/companies/saas"
	"company_historicals/pkg/core/companies/service"
	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/historical"
	"company_historicals/pkg/logger"
)

// Entry registers a calculator under a key.
type Entry struct {
	Key        string
	Calculator historical.Calculator
}

// Registry resolves company types to calculators.
type Registry struct {
	order       []string
	calculators map[string]historical.Calculator
}

// New builds a registry. Keys must be non-empty and unique; registration
// order is the listing order.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{calculators: make(map[string]historical.Calculator, len(entries))}
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("registry entry %d has an empty key", len(r.order))
		}
		if e.Calculator == nil {
			return nil, fmt.Errorf("registry entry %q has no calculator", e.Key)
		}
		if _, dup := r.calculators[e.Key]; dup {
			return nil, fmt.Errorf("company type %q registered twice", e.Key)
		}
		r.calculators[e.Key] = e.Calculator
		r.order = append(r.order, e.Key)
	}
	return r, nil
}

// Default registers the built-in company types with tuning from cfg.
func Default(cfg config.Config) (*Registry, error) {
	return New(
		Entry{Key: service.Key, Calculator: service.New(cfg.For(service.Key))},
		Entry{Key: retail.Key, Calculator: retail.New(cfg.For(retail.Key))},
		Entry{Key: saas.Key, Calculator: saas.New(cfg.For(saas.Key))},
	)
}

func (r *Registry) resolve(key string) (historical.Calculator, error) {
	c, ok := r.calculators[key]
	if !ok {
		logger.L.Debug("Unsupported company type requested", "companyType", key)
		return nil, &UnsupportedCompanyTypeError{CompanyType: key, Supported: r.Keys()}
	}
	return c, nil
}

// Keys returns registered keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string{}, r.order...)
}

// IsSupported reports whether key is registered.
func (r *Registry) IsSupported(key string) bool {
	_, ok := r.calculators[key]
	return ok
}

// ListCompanyTypes returns every descriptor in registration order.
func (r *Registry) ListCompanyTypes() []historical.CompanyTypeDescriptor {
	out := make([]historical.CompanyTypeDescriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.calculators[k].Descriptor())
	}
	return out
}

// GetCompanyTypeInfo returns the descriptor for key.
func (r *Registry) GetCompanyTypeInfo(key string) (historical.CompanyTypeDescriptor, error) {
	c, err := r.resolve(key)
	if err != nil {
		return historical.CompanyTypeDescriptor{}, err
	}
	return c.Descriptor(), nil
}

// GetSupportedMetrics returns the metric names for key.
func (r *Registry) GetSupportedMetrics(key string) ([]string, error) {
	c, err := r.resolve(key)
	if err != nil {
		return nil, err
	}
	return c.SupportedMetrics(), nil
}

// GetRequiredFields returns the required input fields for key.
func (r *Registry) GetRequiredFields(key string) ([]string, error) {
	c, err := r.resolve(key)
	if err != nil {
		return nil, err
	}
	return c.RequiredFields(), nil
}

// ValidateHistoricalData validates data against the calculator for key.
// An unknown key is an error; invalid data is reported in the outcome.
func (r *Registry) ValidateHistoricalData(key string, data historical.HistoricalDataSet) (historical.ValidationOutcome, error) {
	c, err := r.resolve(key)
	if err != nil {
		return historical.ValidationOutcome{}, err
	}
	return c.Validate(data), nil
}

// CalculateHistoricalStatements validates data and, only when it is valid,
// runs the calculation. The result is returned unchanged.
func (r *Registry) CalculateHistoricalStatements(key string, data historical.HistoricalDataSet, assumptions historical.AssumptionSet) (historical.CalculationResult, error) {
	c, err := r.resolve(key)
	if err != nil {
		return historical.CalculationResult{}, err
	}

	outcome := c.Validate(data)
	if !outcome.Valid {
		logger.L.Debug("Historical data rejected", "companyType", key, "errors", len(outcome.Errors))
		return historical.CalculationResult{}, &InvalidHistoricalDataError{
			CompanyType: key,
			Errors:      outcome.Errors,
			Warnings:    outcome.Warnings,
		}
	}

	return c.Calculate(data, assumptions), nil
}
