// Package exporter serializes evaluations into report documents.
//
// The workbook holds exactly two sheets:
//
//	Emissions Data      Month | Plant | Consumption kWh | Emissions tCO2e
//	Regulatory Summary  Concept | Value (total, status label, factor)
//
// BuildDetailTable and BuildSummaryTable are independent pure functions
// composed by Export. ReadReport reads a generated workbook back for
// verification. CSVWriter renders the same tables as CSV.
//
// Example usage:
//
//	exp := exporter.NewReportExporter("", logger)
//	doc, err := exp.Export(ctx, records, result, factor)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(doc.FileName, doc.Data, 0644)
package exporter
