package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ghgcli/pkg/contracts/domain"
)

var (
	// ErrMissingColumn is returned when a required column has no matching header
	ErrMissingColumn = errors.New("missing required column")
	// ErrNonNumeric is returned when a consumption cell cannot be read as a number
	ErrNonNumeric = errors.New("non-numeric consumption value")
	// ErrNoSheets is returned for workbooks without any worksheet
	ErrNoSheets = errors.New("workbook has no sheets")
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Column identifies one of the required dataset columns
type Column string

const (
	ColumnMonth       Column = "month"
	ColumnPlant       Column = "plant"
	ColumnConsumption Column = "consumption_kwh"
)

// RequiredColumns lists the columns every dataset must carry
var RequiredColumns = []Column{ColumnMonth, ColumnPlant, ColumnConsumption}

// headerAliases maps normalized header text to a column
var headerAliases = map[string]Column{
	"month":           ColumnMonth,
	"mes":             ColumnMonth,
	"plant":           ColumnPlant,
	"planta":          ColumnPlant,
	"facility":        ColumnPlant,
	"consumption_kwh": ColumnConsumption,
	"consumo_kwh":     ColumnConsumption,
	"consumption kwh": ColumnConsumption,
	"kwh":             ColumnConsumption,
}

// ColumnError reports a missing column
type ColumnError struct {
	Column Column
	Sheet  string
}

func (e *ColumnError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s: %s (sheet %q)", ErrMissingColumn, e.Column, e.Sheet)
	}
	return fmt.Sprintf("%s: %s", ErrMissingColumn, e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// CellError reports a cell that could not be converted.
// Row is the 1-based row number as shown by spreadsheet tools.
type CellError struct {
	Row    int
	Column Column
	Value  string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s: %s at row %d: %q", ErrNonNumeric, e.Column, e.Row, e.Value)
}

func (e *CellError) Unwrap() error { return ErrNonNumeric }

// Format is a dataset file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat infers the dataset format from a file name
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parser loads consumption records from workbooks and CSV streams
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "dataset_parser"))}
}

// ParseFile opens a dataset file and parses it according to its extension
func (p *Parser) ParseFile(path string) ([]domain.ConsumptionRecord, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return p.Parse(f, format)
}

// Parse reads a dataset in the given format
func (p *Parser) Parse(r io.Reader, format Format) ([]domain.ConsumptionRecord, error) {
	switch format {
	case FormatXLSX:
		return p.ParseWorkbook(r)
	case FormatCSV:
		return p.ParseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseWorkbook reads the first sheet whose header carries every required
// column. When no sheet qualifies the first sheet's error is returned.
func (p *Parser) ParseWorkbook(r io.Reader) ([]domain.ConsumptionRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	var firstErr error
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if headerIdx, columns, err := locateHeader(rows); err == nil {
			formatDateLabels(f, sheet, rows, headerIdx, columns[ColumnMonth], columns[ColumnPlant])
		}

		records, err := ParseRows(rows)
		if err != nil {
			var colErr *ColumnError
			if errors.As(err, &colErr) {
				colErr.Sheet = sheet
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			return nil, err
		}

		p.logger.Debug("dataset sheet parsed",
			slog.String("sheet_name", sheet),
			slog.Int("total_rows", len(rows)),
			slog.Int("records", len(records)))
		return records, nil
	}

	return nil, firstErr
}

// ParseCSV reads a comma-separated dataset. A UTF-8 BOM is ignored.
func (p *Parser) ParseCSV(r io.Reader) ([]domain.ConsumptionRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	records, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("dataset csv parsed",
		slog.Int("total_rows", len(rows)),
		slog.Int("records", len(records)))
	return records, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseRows converts a header row followed by data rows into records.
// Leading blank rows and fully blank data rows are skipped; extra
// columns are ignored. A table with only a header yields no records.
func ParseRows(rows [][]string) ([]domain.ConsumptionRecord, error) {
	headerIdx, columns, err := locateHeader(rows)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ConsumptionRecord, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		raw := cell(row, columns[ColumnConsumption])
		kwh, err := parseNumber(raw)
		if err != nil {
			return nil, &CellError{Row: i + 1, Column: ColumnConsumption, Value: raw}
		}

		records = append(records, domain.ConsumptionRecord{
			Month:          cell(row, columns[ColumnMonth]),
			Plant:          cell(row, columns[ColumnPlant]),
			ConsumptionKWh: kwh,
		})
	}

	return records, nil
}

// locateHeader finds the first non-blank row and maps it to columns
func locateHeader(rows [][]string) (int, map[Column]int, error) {
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		columns, err := mapHeader(row)
		if err != nil {
			return 0, nil, err
		}
		return i, columns, nil
	}
	return 0, nil, &ColumnError{Column: RequiredColumns[0]}
}

// NormalizeHeader lowercases and trims a header cell
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// ResolveColumn returns the column a header maps to
func ResolveColumn(header string) (Column, bool) {
	col, ok := headerAliases[NormalizeHeader(header)]
	return col, ok
}

func mapHeader(header []string) (map[Column]int, error) {
	columns := make(map[Column]int, len(RequiredColumns))
	for j, h := range header {
		col, ok := ResolveColumn(h)
		if !ok {
			continue
		}
		// First matching header wins
		if _, seen := columns[col]; !seen {
			columns[col] = j
		}
	}

	for _, col := range RequiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, &ColumnError{Column: col}
		}
	}
	return columns, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// parseNumber accepts plain decimals and comma-grouped thousands
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	if groupedNumber.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
