package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"ghgcli/pkg/contracts/domain"
)

// CSVWriter renders report tables as CSV
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel detects the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(bomPrefix bool) *CSVWriter {
	return &CSVWriter{BOMPrefix: bomPrefix}
}

// WriteTable writes a table whose first row is the header
func (w *CSVWriter) WriteTable(out io.Writer, table [][]any) error {
	if w.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	record := make([]string, 0, len(DetailHeader))
	for i, row := range table {
		record = record[:0]
		for _, v := range row {
			record = append(record, formatCell(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteEnriched writes the detail table of an evaluation
func (w *CSVWriter) WriteEnriched(out io.Writer, records []domain.EnrichedRecord) error {
	return w.WriteTable(out, BuildDetailTable(records))
}
