package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedCompanyType matches *UnsupportedCompanyTypeError with errors.Is.
	ErrUnsupportedCompanyType = errors.New("unsupported company type")

	// ErrInvalidHistoricalData matches *InvalidHistoricalDataError with errors.Is.
	ErrInvalidHistoricalData = errors.New("invalid historical data")
)

// UnsupportedCompanyTypeError means no calculator is registered for the key.
type UnsupportedCompanyTypeError struct {
	CompanyType string
	Supported   []string
}

func (e *UnsupportedCompanyTypeError) Error() string {
	return fmt.Sprintf("unsupported company type %q (supported: %s)",
		e.CompanyType, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedCompanyTypeError) Is(target error) bool {
	return target == ErrUnsupportedCompanyType
}

// InvalidHistoricalDataError carries every validation error so callers can
// report all problems at once.
type InvalidHistoricalDataError struct {
	CompanyType string
	Errors      []string
	Warnings    []string
}

func (e *InvalidHistoricalDataError) Error() string {
	return fmt.Sprintf("invalid historical data for %s: %s",
		e.CompanyType, strings.Join(e.Errors, "; "))
}

func (e *InvalidHistoricalDataError) Is(target error) bool {
	return target == ErrInvalidHistoricalData
}
