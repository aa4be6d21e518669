package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ghgcli/internal/emissions"
	apierrors "ghgcli/internal/errors"
	"ghgcli/internal/middleware"
	api "ghgcli/pkg/contracts/api/v1"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

const (
	csvFileName = "emissions_report.csv"
	csvMIMEType = "text/csv; charset=utf-8"

	// multipart parts above this size spill to temp files
	multipartMemory = 8 << 20
)

var reportFormats = []string{
	string(domain.ReportFormatExcel),
	string(domain.ReportFormatCSV),
	string(domain.ReportFormatJSON),
}

// ReportHandler serves the evaluation and report endpoints
type ReportHandler struct {
	service        ReportServiceInterface
	validator      *middleware.Validator
	query          *middleware.QueryParamValidator
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewReportHandler creates a report handler. Uploads larger than
// maxUploadBytes are rejected with 413.
func NewReportHandler(service ReportServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:        service,
		validator:      middleware.NewValidator(),
		query:          middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the emissions and compliance routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/emissions", func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json", "multipart/form-data"))
		r.Use(middleware.BodyLimit(h.maxUploadBytes))

		r.Post("/evaluate", h.Evaluate)
		r.Post("/report", h.Report)
		r.Post("/upload", h.Upload)
	})

	r.Get("/compliance/tiers", h.Tiers)

	return r
}

// Evaluate handles POST /emissions/evaluate
func (h *ReportHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req api.EvaluateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	eval, err := h.service.Evaluate(r.Context(), req.Records, req.Factor)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.NewEvaluationResponse(eval, emissions.TotalsByPlant(eval.Records)))
}

// Report handles POST /emissions/report. The workbook is the default;
// ?format=csv or ?format=json select the other renditions.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", reportFormats, string(domain.ReportFormatExcel))
	if !ok {
		return
	}

	var req api.EvaluateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	eval, err := h.service.Evaluate(r.Context(), req.Records, req.Factor)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respond(w, r, eval, domain.ReportFormat(format), events.SourceAPI)
}

// Upload handles POST /emissions/upload with a multipart dataset in the
// "file" field. Optional fields: factor, source (factor provenance) and
// format (xlsx, csv or json).
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := api.UploadRequest{
		Factor: r.FormValue("factor"),
		Source: r.FormValue("source"),
		Format: r.FormValue("format"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "file is required"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if err := h.validator.Var("file", name, "filename,dataset"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	factor, err := h.uploadFactor(form)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("file", name),
		slog.Int64("size", header.Size),
		slog.String("format", form.Format))

	eval, err := h.service.EvaluateDataset(r.Context(), name, file, factor)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := domain.ReportFormat(form.Format)
	if format == "" {
		format = domain.ReportFormatExcel
	}
	h.respond(w, r, eval, format, events.SourceUpload)
}

// Tiers handles GET /compliance/tiers
func (h *ReportHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	th := h.service.Thresholds()
	render.JSON(w, r, api.TiersResponse{
		Tiers: h.service.Legend(),
		Thresholds: api.ThresholdsResponse{
			Mandatory: th.Mandatory,
			Watch:     th.Watch,
		},
		DefaultFactor: h.service.DefaultFactor(),
	})
}

func (h *ReportHandler) respond(w http.ResponseWriter, r *http.Request, eval *domain.Evaluation, format domain.ReportFormat, source string) {
	switch format {
	case domain.ReportFormatJSON:
		render.JSON(w, r, api.NewEvaluationResponse(eval, emissions.TotalsByPlant(eval.Records)))

	case domain.ReportFormatCSV:
		var buf bytes.Buffer
		if err := h.service.ExportCSV(r.Context(), &buf, eval); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		writeAttachment(w, csvFileName, csvMIMEType, buf.Bytes())

	default:
		doc, err := h.service.Export(r.Context(), eval, source)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		writeAttachment(w, doc.FileName, doc.MIMEType, doc.Data)
	}
}

// writeAttachment sends data as a file download
func writeAttachment(w http.ResponseWriter, fileName, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// uploadFactor builds the emission factor from the form fields.
// No factor and no source means the configured default. A source alone
// relabels the default value.
func (h *ReportHandler) uploadFactor(form api.UploadRequest) (*domain.EmissionFactor, error) {
	if form.Factor == "" && form.Source == "" {
		return nil, nil
	}

	factor := h.service.DefaultFactor()
	if form.Factor != "" {
		value, err := strconv.ParseFloat(form.Factor, 64)
		if err != nil {
			return nil, apierrors.ErrValidation("factor", fmt.Sprintf("factor must be a number: %q", form.Factor))
		}
		factor = domain.EmissionFactor{Value: value}
	}
	if form.Source != "" {
		factor.Source = form.Source
	}
	return &factor, nil
}

// uploadError keeps body size errors intact so they render as 413
func uploadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return maxBytesErr
	}
	if errors.Is(err, http.ErrNotMultipart) {
		return apierrors.New(http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Upload must be multipart/form-data")
	}
	return apierrors.InvalidRequestWithError(err)
}
