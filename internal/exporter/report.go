package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"ghgcli/internal/emissions"
	"ghgcli/pkg/contracts/domain"
)

// DefaultFileName is the name used for generated workbooks
const DefaultFileName = "emissions_report.xlsx"

// Table headers
var (
	DetailHeader  = []string{"Month", "Plant", "Consumption kWh", "Emissions tCO2e"}
	SummaryHeader = []string{"Concept", "Value"}
)

// BuildDetailTable renders one row per record below the header
func BuildDetailTable(records []domain.EnrichedRecord) [][]any {
	table := make([][]any, 0, len(records)+1)
	table = append(table, headerRow(DetailHeader))
	for _, r := range records {
		table = append(table, []any{r.Month, r.Plant, r.ConsumptionKWh, r.EmissionsTCO2e})
	}
	return table
}

// BuildSummaryTable renders the three regulatory summary rows below the header
func BuildSummaryTable(total float64, result domain.ComplianceResult, factor domain.EmissionFactor) [][]any {
	return [][]any{
		headerRow(SummaryHeader),
		{domain.ConceptTotalEmissions, total},
		{domain.ConceptRegulatoryStatus, result.Label},
		{domain.ConceptEmissionFactor, factor.String()},
	}
}

func headerRow(cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

// Export serializes records, classification and factor into a two-sheet workbook
func Export(records []domain.EnrichedRecord, result domain.ComplianceResult, factor domain.EmissionFactor) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     "GHG Pulse",
		Title:       "Emissions Report",
		Description: "Scope 2 emissions and regulatory classification",
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	// Rename the default sheet so the workbook holds exactly two sheets
	if err := f.SetSheetName(f.GetSheetName(0), domain.SheetEmissionsData); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(domain.SheetRegulatorySummary); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, domain.SheetEmissionsData, BuildDetailTable(records), bold, []float64{14, 22, 18, 18}); err != nil {
		return nil, err
	}

	summary := BuildSummaryTable(emissions.Aggregate(records), result, factor)
	if err := writeSheet(f, domain.SheetRegulatorySummary, summary, bold, []float64{26, 36}); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet streams a table into a sheet; the first row is styled as header
func writeSheet(f *excelize.File, sheet string, table [][]any, headerStyle int, widths []float64) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", sheet, err)
	}

	for i, w := range widths {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range table {
		values := row
		if i == 0 {
			values = make([]any, len(row))
			for j, v := range row {
				values[j] = excelize.Cell{StyleID: headerStyle, Value: v}
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %q: %w", sheet, err)
	}
	return nil
}

// ReportExporter produces report documents
type ReportExporter struct {
	fileName string
	logger   *slog.Logger
}

// NewReportExporter creates an exporter. An empty fileName uses DefaultFileName.
func NewReportExporter(fileName string, logger *slog.Logger) *ReportExporter {
	if fileName == "" {
		fileName = DefaultFileName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		fileName: fileName,
		logger:   logger.With(slog.String("component", "report_exporter")),
	}
}

// FileName returns the file name given to generated documents
func (e *ReportExporter) FileName() string {
	return e.fileName
}

// Export builds the workbook document
func (e *ReportExporter) Export(ctx context.Context, records []domain.EnrichedRecord, result domain.ComplianceResult, factor domain.EmissionFactor) (domain.ReportDocument, error) {
	data, err := Export(records, result, factor)
	if err != nil {
		return domain.ReportDocument{}, err
	}

	doc := domain.ReportDocument{
		FileName: e.fileName,
		MIMEType: domain.ReportContentType,
		Data:     data,
	}

	e.logger.InfoContext(ctx, "report exported",
		slog.String("file_name", doc.FileName),
		slog.Int("records", len(records)),
		slog.String("tier", string(result.Tier)),
		slog.Int("bytes", doc.Size()))

	return doc, nil
}
