package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ghgcli/internal/compliance"
	"ghgcli/internal/dataprocessing"
	"ghgcli/internal/emissions"
	apperrors "ghgcli/internal/errors"
	"ghgcli/internal/exporter"
	"ghgcli/internal/infrastructure"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

// EventPublisher receives evaluation events
type EventPublisher interface {
	Publish(ctx context.Context, messageType events.MessageType, data interface{})
}

// ReportServiceConfig holds the evaluation settings
type ReportServiceConfig struct {
	DefaultFactor domain.EmissionFactor
	Thresholds    compliance.Thresholds
	Strict        bool
	FileName      string
}

// Option configures optional ReportService dependencies
type Option func(*ReportService)

// WithPublisher sets the event publisher
func WithPublisher(p EventPublisher) Option {
	return func(s *ReportService) { s.publisher = p }
}

// WithMetrics sets the business metrics
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(s *ReportService) { s.metrics = m }
}

// WithTracer sets the tracer used for evaluation spans
func WithTracer(t trace.Tracer) Option {
	return func(s *ReportService) { s.tracer = t }
}

// ReportService evaluates datasets and produces reports.
// It composes the parser, the calculator, the classifier and the exporter.
type ReportService struct {
	parser        *dataprocessing.Parser
	calculator    *emissions.Calculator
	classifier    *compliance.Classifier
	exporter      *exporter.ReportExporter
	csv           *exporter.CSVWriter
	defaultFactor domain.EmissionFactor

	publisher EventPublisher
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewReportService creates a report service
func NewReportService(cfg ReportServiceConfig, logger *slog.Logger, opts ...Option) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &ReportService{
		parser:        dataprocessing.NewParser(logger),
		calculator:    emissions.NewCalculator(emissions.Options{Strict: cfg.Strict}, logger),
		classifier:    compliance.NewClassifier(cfg.Thresholds),
		exporter:      exporter.NewReportExporter(cfg.FileName, logger),
		csv:           exporter.NewCSVWriter(true),
		defaultFactor: cfg.DefaultFactor,
		logger:        logger.With(slog.String("component", "report_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(infrastructure.MeterName)
	}

	s.logger.Info("ReportService initialized",
		slog.String("default_factor", cfg.DefaultFactor.String()),
		slog.Bool("strict", cfg.Strict),
		slog.Float64("mandatory_threshold", s.classifier.Thresholds().Mandatory),
		slog.Float64("watch_threshold", s.classifier.Thresholds().Watch))

	return s
}

// DefaultFactor returns the factor used when a request carries none
func (s *ReportService) DefaultFactor() domain.EmissionFactor {
	return s.defaultFactor
}

// Thresholds returns the classifier thresholds
func (s *ReportService) Thresholds() compliance.Thresholds {
	return s.classifier.Thresholds()
}

// Legend returns the tier legend for the configured thresholds
func (s *ReportService) Legend() []domain.TierDescription {
	return s.classifier.Legend()
}

// Strict reports whether inputs are validated
func (s *ReportService) Strict() bool {
	return s.calculator.Strict()
}

// ResolveFactor returns the default factor when f is nil
func (s *ReportService) ResolveFactor(f *domain.EmissionFactor) (domain.EmissionFactor, error) {
	if f == nil {
		return s.defaultFactor, nil
	}
	if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
		return domain.EmissionFactor{}, apperrors.NewAppValidationError("invalid emission factor", ErrInvalidFactor).
			WithContext("factor", fmt.Sprint(f.Value))
	}
	return *f, nil
}

// Evaluate computes emissions for the records and classifies the total.
// An empty record set evaluates to a zero total.
func (s *ReportService) Evaluate(ctx context.Context, records []domain.ConsumptionRecord, factor *domain.EmissionFactor) (*domain.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.Evaluate",
		trace.WithAttributes(attribute.Int("records", len(records))))
	defer span.End()

	f, err := s.ResolveFactor(factor)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	enriched, err := s.calculator.Compute(records, f.Value)
	if err != nil {
		appErr := computeFailure(err)
		infrastructure.RecordError(ctx, appErr)
		s.logger.WarnContext(ctx, "evaluation rejected", slog.String("error", err.Error()))
		return nil, appErr
	}

	total := emissions.Aggregate(enriched)
	if math.IsInf(total, 0) || math.IsNaN(total) {
		appErr := apperrors.NewAppValidationError("consumption values are too large to evaluate", ErrNonFiniteTotal).
			WithContext("records", len(enriched))
		infrastructure.RecordError(ctx, appErr)
		s.logger.WarnContext(ctx, "evaluation rejected", slog.String("error", ErrNonFiniteTotal.Error()))
		return nil, appErr
	}
	result := s.classifier.Classify(total)

	eval := &domain.Evaluation{
		Records:   enriched,
		Total:     total,
		Factor:    f,
		Result:    result,
		Breakdown: emissions.Breakdown(enriched),
	}

	infrastructure.RecordEvaluation(ctx, s.metrics, string(result.Tier), len(enriched), total)
	span.SetAttributes(
		attribute.String("tier", string(result.Tier)),
		attribute.Float64("total_tco2e", total))

	s.logger.InfoContext(ctx, "evaluation completed",
		slog.Int("records", len(enriched)),
		slog.Float64("total_tco2e", total),
		slog.String("tier", string(result.Tier)),
		slog.String("factor", f.String()))

	return eval, nil
}

// EvaluateDataset parses a dataset stream and evaluates it.
// name is used to detect the format and to label events.
func (s *ReportService) EvaluateDataset(ctx context.Context, name string, r io.Reader, factor *domain.EmissionFactor) (*domain.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.EvaluateDataset",
		trace.WithAttributes(attribute.String("dataset", filepath.Base(name))))
	defer span.End()

	records, err := s.parse(name, r)
	if err != nil {
		appErr := parseFailure(err)
		infrastructure.RecordParseError(ctx, s.metrics, parseFailureReason(err))
		infrastructure.RecordError(ctx, appErr)
		s.publish(ctx, events.MessageTypeEvaluationFailed, events.EvaluationFailed{
			FileName: filepath.Base(name),
			Error:    err.Error(),
		})
		s.logger.WarnContext(ctx, "dataset rejected",
			slog.String("dataset", name),
			slog.String("error", err.Error()))
		return nil, appErr
	}

	return s.Evaluate(ctx, records, factor)
}

// EvaluateFile opens and evaluates a dataset file
func (s *ReportService) EvaluateFile(ctx context.Context, path string, factor *domain.EmissionFactor) (*domain.Evaluation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewStorageError("failed to open dataset", err)
	}
	defer f.Close()

	return s.EvaluateDataset(ctx, path, f, factor)
}

func (s *ReportService) parse(name string, r io.Reader) ([]domain.ConsumptionRecord, error) {
	format, err := dataprocessing.DetectFormat(name)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(r, format)
}

// Export serializes an evaluation into the two-sheet workbook and
// publishes a report:generated event. source labels the caller.
func (s *ReportService) Export(ctx context.Context, eval *domain.Evaluation, source string) (domain.ReportDocument, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.Export")
	defer span.End()

	doc, err := s.exporter.Export(ctx, eval.Records, eval.Result, eval.Factor)
	if err != nil {
		appErr := apperrors.NewExportError("failed to generate report", err)
		infrastructure.RecordError(ctx, appErr)
		return domain.ReportDocument{}, appErr
	}

	infrastructure.RecordReport(ctx, s.metrics, string(domain.ReportFormatExcel), doc.Size())
	span.SetAttributes(attribute.Int("report.bytes", doc.Size()))

	s.publish(ctx, events.MessageTypeReportGenerated, events.ReportGenerated{
		Source:   source,
		FileName: doc.FileName,
		Records:  len(eval.Records),
		Total:    eval.Total,
		Tier:     eval.Result.Tier,
		Label:    eval.Result.Label,
		Severity: eval.Result.Severity,
		Style:    eval.Result.Tier.AlertStyle(),
		Bytes:    doc.Size(),
	})

	return doc, nil
}

// ExportCSV writes the detail table of an evaluation as CSV
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, eval *domain.Evaluation) error {
	cw := &countingWriter{w: w}
	if err := s.csv.WriteEnriched(cw, eval.Records); err != nil {
		return apperrors.NewExportError("failed to write csv", err)
	}
	infrastructure.RecordReport(ctx, s.metrics, string(domain.ReportFormatCSV), int(cw.n))
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// GenerateReport evaluates the records and exports the workbook
func (s *ReportService) GenerateReport(ctx context.Context, records []domain.ConsumptionRecord, factor *domain.EmissionFactor, source string) (*domain.Evaluation, domain.ReportDocument, error) {
	eval, err := s.Evaluate(ctx, records, factor)
	if err != nil {
		return nil, domain.ReportDocument{}, err
	}
	doc, err := s.Export(ctx, eval, source)
	if err != nil {
		return nil, domain.ReportDocument{}, err
	}
	return eval, doc, nil
}

func (s *ReportService) publish(ctx context.Context, messageType events.MessageType, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, messageType, data)
}
