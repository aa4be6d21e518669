package http

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"

	"ghgcli/internal/compliance"
	"ghgcli/internal/emissions"
	apierrors "ghgcli/internal/errors"
	"ghgcli/internal/shared/testutil"
	"ghgcli/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Evaluate(ctx context.Context, records []domain.ConsumptionRecord, factor *domain.EmissionFactor) (*domain.Evaluation, error) {
	args := m.Called(records, factor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockReportService) EvaluateDataset(ctx context.Context, name string, r io.Reader, factor *domain.EmissionFactor) (*domain.Evaluation, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(name, string(body), factor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, eval *domain.Evaluation, source string) (domain.ReportDocument, error) {
	args := m.Called(eval, source)
	return args.Get(0).(domain.ReportDocument), args.Error(1)
}

func (m *MockReportService) ExportCSV(ctx context.Context, w io.Writer, eval *domain.Evaluation) error {
	args := m.Called(w, eval)
	return args.Error(0)
}

func (m *MockReportService) Legend() []domain.TierDescription {
	return m.Called().Get(0).([]domain.TierDescription)
}

func (m *MockReportService) Thresholds() compliance.Thresholds {
	return m.Called().Get(0).(compliance.Thresholds)
}

func (m *MockReportService) DefaultFactor() domain.EmissionFactor {
	return m.Called().Get(0).(domain.EmissionFactor)
}

// sampleEvaluation evaluates the two-plant sample at the default factor
func sampleEvaluation() *domain.Evaluation {
	factor := domain.DefaultFactor()
	records := emissions.Compute(testutil.SampleRecords(), factor.Value)
	total := emissions.Aggregate(records)
	return &domain.Evaluation{
		Records:   records,
		Total:     total,
		Factor:    factor,
		Result:    compliance.Classify(total),
		Breakdown: emissions.Breakdown(records),
	}
}

func newTestErrorHandler(t *testing.T) *apierrors.ErrorHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return apierrors.NewErrorHandler(logger, false)
}
