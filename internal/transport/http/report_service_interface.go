package http

import (
	"context"
	"io"

	"ghgcli/internal/compliance"
	"ghgcli/pkg/contracts/domain"
)

// ReportServiceInterface defines the evaluation operations the handlers need
type ReportServiceInterface interface {
	Evaluate(ctx context.Context, records []domain.ConsumptionRecord, factor *domain.EmissionFactor) (*domain.Evaluation, error)
	EvaluateDataset(ctx context.Context, name string, r io.Reader, factor *domain.EmissionFactor) (*domain.Evaluation, error)
	Export(ctx context.Context, eval *domain.Evaluation, source string) (domain.ReportDocument, error)
	ExportCSV(ctx context.Context, w io.Writer, eval *domain.Evaluation) error
	Legend() []domain.TierDescription
	Thresholds() compliance.Thresholds
	DefaultFactor() domain.EmissionFactor
}
