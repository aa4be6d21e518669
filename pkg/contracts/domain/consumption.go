package domain

import (
	"strconv"
)

// Default emission factor values (tCO2e per MWh)
const (
	DefaultEmissionFactor       = 0.444
	DefaultEmissionFactorSource = "national grid 2024"
)

// ConsumptionRecord represents one row of energy consumption input
type ConsumptionRecord struct {
	Month          string  `json:"month" validate:"required"`
	Plant          string  `json:"plant" validate:"required"`
	ConsumptionKWh float64 `json:"consumption_kwh"`
}

// EnrichedRecord is a ConsumptionRecord with its derived emissions
type EnrichedRecord struct {
	ConsumptionRecord
	EmissionsTCO2e float64 `json:"emissions_tco2e"`
}

// EmissionFactor is the grid conversion constant used for an evaluation.
// Value is expressed in tCO2e per MWh; Source records where it came from.
type EmissionFactor struct {
	Value  float64 `json:"value"`
	Source string  `json:"source,omitempty" validate:"max=120"`
}

// DefaultFactor returns the reference emission factor
func DefaultFactor() EmissionFactor {
	return EmissionFactor{
		Value:  DefaultEmissionFactor,
		Source: DefaultEmissionFactorSource,
	}
}

// String renders the factor with its provenance, e.g. "0.444 (national grid 2024)"
func (f EmissionFactor) String() string {
	value := strconv.FormatFloat(f.Value, 'f', -1, 64)
	if f.Source == "" {
		return value
	}
	return value + " (" + f.Source + ")"
}

// PlantMonthTotal holds the emissions of one plant in one month
type PlantMonthTotal struct {
	Month          string  `json:"month"`
	Plant          string  `json:"plant"`
	ConsumptionKWh float64 `json:"consumption_kwh"`
	EmissionsTCO2e float64 `json:"emissions_tco2e"`
}
