// Package api contains the request and response contracts of the HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"ghgcli/pkg/contracts/domain"
)

// EvaluateRequest carries a dataset and an optional emission factor.
// A missing factor means the configured default.
type EvaluateRequest struct {
	Records []domain.ConsumptionRecord `json:"records" validate:"dive"`
	Factor  *domain.EmissionFactor     `json:"factor,omitempty"`
}

// UploadRequest holds the form fields accompanying an uploaded dataset
type UploadRequest struct {
	Factor string `json:"factor" validate:"omitempty,numeric"`
	Source string `json:"source" validate:"max=120"`
	Format string `json:"format" validate:"omitempty,oneof=xlsx json csv"`
}

// EvaluationResponse is the JSON rendition of an evaluation
type EvaluationResponse struct {
	Total          float64                  `json:"total_tco2e"`
	Classification domain.ComplianceResult  `json:"classification"`
	Style          domain.AlertStyle        `json:"style"`
	Factor         domain.EmissionFactor    `json:"factor"`
	RecordCount    int                      `json:"record_count"`
	Records        []domain.EnrichedRecord  `json:"records"`
	Breakdown      []domain.PlantMonthTotal `json:"breakdown"`
	PlantTotals    map[string]float64       `json:"plant_totals,omitempty"`
}

// NewEvaluationResponse builds the response for an evaluation
func NewEvaluationResponse(e *domain.Evaluation, plantTotals map[string]float64) *EvaluationResponse {
	records := e.Records
	if records == nil {
		records = []domain.EnrichedRecord{}
	}
	breakdown := e.Breakdown
	if breakdown == nil {
		breakdown = []domain.PlantMonthTotal{}
	}
	return &EvaluationResponse{
		Total:          e.Total,
		Classification: e.Result,
		Style:          e.Result.Tier.AlertStyle(),
		Factor:         e.Factor,
		RecordCount:    len(e.Records),
		Records:        records,
		Breakdown:      breakdown,
		PlantTotals:    plantTotals,
	}
}

// ThresholdsResponse exposes the configured regulatory thresholds
type ThresholdsResponse struct {
	Mandatory float64 `json:"mandatory_tco2e"`
	Watch     float64 `json:"watch_tco2e"`
}

// TiersResponse is the traffic-light legend
type TiersResponse struct {
	Tiers         []domain.TierDescription `json:"tiers"`
	Thresholds    ThresholdsResponse       `json:"thresholds"`
	DefaultFactor domain.EmissionFactor    `json:"default_factor"`
}
