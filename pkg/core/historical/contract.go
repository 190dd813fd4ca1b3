package historical

// Calculator is the capability every company type exposes.
// Implementations are stateless and safe for concurrent use.
type Calculator interface {
	Descriptor() CompanyTypeDescriptor
	RequiredFields() []string
	SupportedMetrics() []string

	// Validate never panics on well-formed input; problems are reported in the outcome.
	Validate(data HistoricalDataSet) ValidationOutcome

	// Calculate assumes data has passed Validate.
	Calculate(data HistoricalDataSet, assumptions AssumptionSet) CalculationResult
}

// Model supplies the type-specific pieces of a calculation. Engine runs the
// shared workflow around it: period checks, statement building, metric
// filtering and result assembly.
type Model interface {
	// Descriptor lists fields, metrics and assumptions. Called once by NewEngine.
	Descriptor() CompanyTypeDescriptor

	// CheckStructure adds type-specific errors and warnings. It only runs
	// once every required field is present with periods observations.
	CheckStructure(data HistoricalDataSet, periods int, out *ValidationOutcome)

	// Drivers maps inputs onto statement rows.
	Drivers(data HistoricalDataSet, periods int) StatementDrivers

	// Metrics computes type-specific metrics; common metrics come from CommonMetrics.
	Metrics(data HistoricalDataSet, s Summary, assumptions AssumptionSet) map[string]Metric

	// ApplyAssumptions adds projections and annotations.
	ApplyAssumptions(ac *AssumptionContext)
}

// Normalizer is implemented by models that derive fields before statements are
// built. data is the engine's private copy.
type Normalizer interface {
	Normalize(data HistoricalDataSet, periods int)
}
