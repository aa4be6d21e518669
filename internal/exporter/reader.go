package exporter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ghgcli/pkg/contracts/domain"
)

// ErrUnexpectedLayout is returned when a workbook is not a generated report
var ErrUnexpectedLayout = errors.New("unexpected report layout")

// Summary holds the values of the regulatory summary sheet
type Summary struct {
	Total  float64 `json:"total_tco2e"`
	Status string  `json:"status"`
	Factor string  `json:"factor"`
}

// Report is a generated workbook read back into memory
type Report struct {
	Records []domain.EnrichedRecord
	Summary Summary
}

// ReadReport reads both sheets of a generated workbook
func ReadReport(r io.Reader) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	records, err := readEmissions(f)
	if err != nil {
		return nil, err
	}
	summary, err := readSummary(f)
	if err != nil {
		return nil, err
	}
	return &Report{Records: records, Summary: summary}, nil
}

// ReadEmissionsSheet reads the detail sheet of a generated workbook
func ReadEmissionsSheet(r io.Reader) ([]domain.EnrichedRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	return readEmissions(f)
}

// ReadSummarySheet reads the regulatory summary sheet of a generated workbook
func ReadSummarySheet(r io.Reader) (Summary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	return readSummary(f)
}

func readEmissions(f *excelize.File) ([]domain.EnrichedRecord, error) {
	rows, err := f.GetRows(domain.SheetEmissionsData, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedLayout, err)
	}
	if len(rows) == 0 || !matchesHeader(rows[0], DetailHeader) {
		return nil, fmt.Errorf("%w: sheet %q header", ErrUnexpectedLayout, domain.SheetEmissionsData)
	}

	records := make([]domain.EnrichedRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < len(DetailHeader) {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrUnexpectedLayout, i+2, len(row))
		}
		kwh, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d consumption: %v", ErrUnexpectedLayout, i+2, err)
		}
		tco2e, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d emissions: %v", ErrUnexpectedLayout, i+2, err)
		}
		records = append(records, domain.EnrichedRecord{
			ConsumptionRecord: domain.ConsumptionRecord{
				Month:          row[0],
				Plant:          row[1],
				ConsumptionKWh: kwh,
			},
			EmissionsTCO2e: tco2e,
		})
	}
	return records, nil
}

func readSummary(f *excelize.File) (Summary, error) {
	rows, err := f.GetRows(domain.SheetRegulatorySummary, excelize.Options{RawCellValue: true})
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrUnexpectedLayout, err)
	}
	if len(rows) != 4 || !matchesHeader(rows[0], SummaryHeader) {
		return Summary{}, fmt.Errorf("%w: sheet %q", ErrUnexpectedLayout, domain.SheetRegulatorySummary)
	}

	values := make(map[string]string, 3)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			return Summary{}, fmt.Errorf("%w: short summary row", ErrUnexpectedLayout)
		}
		values[row[0]] = row[1]
	}

	total, err := strconv.ParseFloat(values[domain.ConceptTotalEmissions], 64)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: total: %v", ErrUnexpectedLayout, err)
	}

	return Summary{
		Total:  total,
		Status: values[domain.ConceptRegulatoryStatus],
		Factor: values[domain.ConceptEmissionFactor],
	}, nil
}

func matchesHeader(row, want []string) bool {
	if len(row) < len(want) {
		return false
	}
	for i, h := range want {
		if strings.TrimSpace(row[i]) != h {
			return false
		}
	}
	return true
}
