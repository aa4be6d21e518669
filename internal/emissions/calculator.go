package emissions

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"ghgcli/pkg/contracts/domain"
)

// KWhPerMWh converts a per-MWh factor into a per-kWh factor
const KWhPerMWh = 1000.0

var (
	// ErrInvalidFactor is returned when the emission factor is negative or not finite
	ErrInvalidFactor = errors.New("invalid emission factor")
	// ErrNegativeConsumption is returned in strict mode for negative kWh values
	ErrNegativeConsumption = errors.New("negative consumption")
)

// ValidationError describes a rejected input value
type ValidationError struct {
	Field string
	Row   int
	Value float64
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: %s at row %d: %g", e.Err, e.Field, e.Row, e.Value)
	}
	return fmt.Sprintf("%s: %s: %g", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compute derives the emissions of every record for the given factor.
// The input slice is not modified.
func Compute(records []domain.ConsumptionRecord, factor float64) []domain.EnrichedRecord {
	enriched := make([]domain.EnrichedRecord, len(records))
	for i, record := range records {
		enriched[i] = domain.EnrichedRecord{
			ConsumptionRecord: record,
			EmissionsTCO2e:    record.ConsumptionKWh * (factor / KWhPerMWh),
		}
	}
	return enriched
}

// Aggregate returns the sum of emissions across records; zero for none
func Aggregate(records []domain.EnrichedRecord) float64 {
	var total float64
	for _, record := range records {
		total += record.EmissionsTCO2e
	}
	return total
}

// ValidateFactor checks that a factor is finite and non-negative
func ValidateFactor(factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return &ValidationError{Field: "factor", Row: -1, Value: factor, Err: ErrInvalidFactor}
	}
	return nil
}

// Options configures a Calculator
type Options struct {
	// Strict rejects negative consumption values and invalid factors
	Strict bool
}

// Calculator computes emissions with optional input validation
type Calculator struct {
	opts   Options
	logger *slog.Logger
}

// NewCalculator creates a calculator
func NewCalculator(opts Options, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		opts:   opts,
		logger: logger.With(slog.String("component", "emissions_calculator")),
	}
}

// Strict reports whether the calculator validates its inputs
func (c *Calculator) Strict() bool {
	return c.opts.Strict
}

// Compute enriches the records. In lenient mode it never fails.
func (c *Calculator) Compute(records []domain.ConsumptionRecord, factor float64) ([]domain.EnrichedRecord, error) {
	if c.opts.Strict {
		if err := ValidateFactor(factor); err != nil {
			return nil, err
		}
		for i, record := range records {
			if record.ConsumptionKWh < 0 || math.IsNaN(record.ConsumptionKWh) {
				return nil, &ValidationError{
					Field: "consumption_kwh",
					Row:   i,
					Value: record.ConsumptionKWh,
					Err:   ErrNegativeConsumption,
				}
			}
		}
	} else if factor < 0 {
		c.logger.Warn("negative emission factor accepted",
			slog.Float64("factor", factor))
	}

	enriched := Compute(records, factor)

	c.logger.Debug("emissions computed",
		slog.Int("records", len(enriched)),
		slog.Float64("factor", factor),
		slog.Bool("strict", c.opts.Strict))

	return enriched, nil
}
