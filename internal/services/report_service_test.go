package services

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"ghgcli/internal/dataprocessing"
	"ghgcli/internal/emissions"
	apperrors "ghgcli/internal/errors"
	"ghgcli/internal/exporter"
	"ghgcli/internal/infrastructure"
	"ghgcli/internal/shared/testutil"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

func requireAppError(t *testing.T, err error, want apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, want, appErr.Type)
	return appErr
}

func TestReportService_EvaluateSample(t *testing.T) {
	svc := newTestService(t, false)

	eval, err := svc.Evaluate(context.Background(), testutil.SampleRecords(), nil)
	require.NoError(t, err)

	assert.InDelta(t, 4.44, eval.Total, 1e-9)
	assert.Equal(t, domain.TierVoluntary, eval.Result.Tier)
	assert.Equal(t, domain.DefaultFactor(), eval.Factor)
	assert.Len(t, eval.Records, 2)
	assert.Len(t, eval.Breakdown, 2)
}

func TestReportService_EvaluateEmpty(t *testing.T) {
	svc := newTestService(t, false)

	eval, err := svc.Evaluate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, eval.Total)
	assert.Empty(t, eval.Records)
	assert.Equal(t, domain.TierVoluntary, eval.Result.Tier)
}

func TestReportService_EvaluateMandatory(t *testing.T) {
	svc := newTestService(t, false)

	eval, err := svc.Evaluate(context.Background(), testutil.MixedTierRecords(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 26640, eval.Total, 1e-6)
	assert.Equal(t, domain.TierMandatory, eval.Result.Tier)
	assert.Len(t, eval.Breakdown, 24)
}

func TestReportService_CustomFactor(t *testing.T) {
	svc := newTestService(t, false)
	records := []domain.ConsumptionRecord{{Month: "Jan", Plant: "A", ConsumptionKWh: 10000}}

	eval, err := svc.Evaluate(context.Background(), records, &domain.EmissionFactor{Value: 0.5, Source: "supplier"})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, eval.Total, 1e-9)
	assert.Equal(t, "0.5 (supplier)", eval.Factor.String())
}

func TestReportService_LenientAcceptsNegativeFactor(t *testing.T) {
	svc := newTestService(t, false)

	eval, err := svc.Evaluate(context.Background(), testutil.SampleRecords(), &domain.EmissionFactor{Value: -0.444})
	require.NoError(t, err)
	assert.Less(t, eval.Total, 0.0)
	assert.Equal(t, domain.TierVoluntary, eval.Result.Tier)
}

func TestReportService_StrictRejections(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, testutil.SampleRecords(), &domain.EmissionFactor{Value: -1})
	requireAppError(t, err, apperrors.ErrTypeValidation)
	assert.ErrorIs(t, err, emissions.ErrInvalidFactor)

	records := []domain.ConsumptionRecord{
		{Month: "Jan", Plant: "A", ConsumptionKWh: 100},
		{Month: "Jan", Plant: "B", ConsumptionKWh: -5},
	}
	_, err = svc.Evaluate(ctx, records, nil)
	appErr := requireAppError(t, err, apperrors.ErrTypeValidation)
	assert.ErrorIs(t, err, emissions.ErrNegativeConsumption)
	assert.Equal(t, 1, appErr.Context["row"])
	assert.Equal(t, "consumption_kwh", appErr.Context["field"])
}

func TestReportService_NonFiniteFactorRejected(t *testing.T) {
	svc := newTestService(t, false)

	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		_, err := svc.Evaluate(context.Background(), testutil.SampleRecords(), &domain.EmissionFactor{Value: v})
		requireAppError(t, err, apperrors.ErrTypeValidation)
		assert.ErrorIs(t, err, ErrInvalidFactor)
	}
}

func TestReportService_OverflowingTotalRejected(t *testing.T) {
	svc := newTestService(t, false)

	tests := []struct {
		name    string
		records []domain.ConsumptionRecord
		factor  float64
	}{
		{
			name: "sum overflows",
			records: []domain.ConsumptionRecord{
				{Month: "Enero", Plant: "A", ConsumptionKWh: 1e308},
				{Month: "Enero", Plant: "B", ConsumptionKWh: 1e308},
			},
			factor: 1000,
		},
		{
			name:    "single record overflows",
			records: []domain.ConsumptionRecord{{Month: "Enero", Plant: "A", ConsumptionKWh: 1e308}},
			factor:  1e6,
		},
		{
			name: "opposite overflows",
			records: []domain.ConsumptionRecord{
				{Month: "Enero", Plant: "A", ConsumptionKWh: 1e308},
				{Month: "Enero", Plant: "B", ConsumptionKWh: -1e308},
			},
			factor: 1e6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := svc.Evaluate(context.Background(), tt.records, &domain.EmissionFactor{Value: tt.factor})
			assert.Nil(t, eval)
			appErr := requireAppError(t, err, apperrors.ErrTypeValidation)
			assert.ErrorIs(t, err, ErrNonFiniteTotal)
			assert.Equal(t, len(tt.records), appErr.Context["records"])
		})
	}
}

func TestReportService_EvaluateDatasetCSV(t *testing.T) {
	svc := newTestService(t, false)

	eval, err := svc.EvaluateDataset(context.Background(), "consumo.csv", strings.NewReader(testutil.SampleCSV), nil)
	require.NoError(t, err)
	assert.InDelta(t, 4.44, eval.Total, 1e-9)
	assert.Equal(t, "Norte", eval.Records[0].Plant)
}

func TestReportService_EvaluateFileWorkbook(t *testing.T) {
	svc := newTestService(t, false)
	path := testutil.WriteWorkbook(t, "consumo.xlsx", testutil.SampleWorkbookRows())

	eval, err := svc.EvaluateFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.InDelta(t, 4.44, eval.Total, 1e-9)
}

func TestReportService_EvaluateFileMissing(t *testing.T) {
	svc := newTestService(t, false)

	_, err := svc.EvaluateFile(context.Background(), "does-not-exist.xlsx", nil)
	requireAppError(t, err, apperrors.ErrTypeNotFound)
}

func TestReportService_DatasetErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		body     string
		sentinel error
		reason   string
	}{
		{"missing column", "a.csv", "Mes,Planta\nEnero,Norte\n", dataprocessing.ErrMissingColumn, "missing_column"},
		{"non numeric", "a.csv", "Mes,Planta,kWh\nEnero,Norte,lots\n", dataprocessing.ErrNonNumeric, "non_numeric"},
		{"unsupported format", "a.txt", "anything", dataprocessing.ErrUnsupportedFormat, "unsupported_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := new(MockPublisher)
			pub.On("Publish", mock.Anything, events.MessageTypeEvaluationFailed, mock.MatchedBy(func(e events.EvaluationFailed) bool {
				return e.FileName == tt.file && e.Error != ""
			})).Once()

			svc := newTestService(t, false, WithPublisher(pub))
			_, err := svc.EvaluateDataset(context.Background(), tt.file, strings.NewReader(tt.body), nil)

			requireAppError(t, err, apperrors.ErrTypeParsing)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.reason, parseFailureReason(err))
			pub.AssertExpectations(t)
		})
	}
}

func TestReportService_NonNumericContext(t *testing.T) {
	svc := newTestService(t, false)

	_, err := svc.EvaluateDataset(context.Background(), "a.csv", strings.NewReader("Mes,Planta,kWh\nEnero,Norte,5000\nFebrero,Norte,n/a\n"), nil)
	appErr := requireAppError(t, err, apperrors.ErrTypeParsing)
	assert.Equal(t, 3, appErr.Context["row"])
	assert.Equal(t, "n/a", appErr.Context["value"])
}

func TestReportService_ExportPublishesEvent(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, events.MessageTypeReportGenerated, mock.MatchedBy(func(e events.ReportGenerated) bool {
		return e.Source == events.SourceAPI &&
			e.Records == 2 &&
			e.Tier == domain.TierVoluntary &&
			e.Style == domain.AlertSuccess &&
			e.FileName == exporter.DefaultFileName &&
			e.Bytes > 0
	})).Once()

	svc := newTestService(t, false, WithPublisher(pub))
	eval, doc, err := svc.GenerateReport(context.Background(), testutil.SampleRecords(), nil, events.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportContentType, doc.MIMEType)
	assert.Len(t, eval.Records, 2)

	summary, err := exporter.ReadSummarySheet(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	assert.InDelta(t, 4.44, summary.Total, 1e-9)

	pub.AssertExpectations(t)
}

func TestReportService_ExportCSV(t *testing.T) {
	svc := newTestService(t, false)
	eval, err := svc.Evaluate(context.Background(), testutil.SampleRecords(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, eval))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(buf.String(), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Month,Plant,Consumption kWh,Emissions tCO2e", lines[0])
}

func TestReportService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	svc := newTestService(t, false, WithMetrics(metrics))
	_, _, err = svc.GenerateReport(context.Background(), testutil.SampleRecords(), nil, events.SourceCLI)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(1), sums["emissions_evaluations_total"])
	assert.Equal(t, int64(2), sums["emissions_records_total"])
	assert.Equal(t, int64(1), sums["compliance_classifications_total"])
	assert.Equal(t, int64(1), sums["reports_generated_total"])
}

func TestReportService_Accessors(t *testing.T) {
	svc := newTestService(t, true)

	assert.True(t, svc.Strict())
	assert.Equal(t, domain.DefaultFactor(), svc.DefaultFactor())
	assert.Equal(t, 25000.0, svc.Thresholds().Mandatory)
	assert.Len(t, svc.Legend(), 3)
}
