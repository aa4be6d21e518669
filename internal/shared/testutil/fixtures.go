package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"ghgcli/pkg/contracts/domain"
)

// SampleRecords returns two plants at 5000 kWh each. At 0.444 tCO2e/MWh
// they total 4.44 tCO2e.
func SampleRecords() []domain.ConsumptionRecord {
	return []domain.ConsumptionRecord{
		{Month: "Enero", Plant: "Norte", ConsumptionKWh: 5000},
		{Month: "Enero", Plant: "Sur", ConsumptionKWh: 5000},
	}
}

// MixedTierRecords returns a year of consumption for two plants large
// enough to cross the mandatory threshold at the default factor.
func MixedTierRecords() []domain.ConsumptionRecord {
	months := []string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}

	records := make([]domain.ConsumptionRecord, 0, len(months)*2)
	for _, m := range months {
		records = append(records,
			domain.ConsumptionRecord{Month: m, Plant: "Norte", ConsumptionKWh: 3_000_000},
			domain.ConsumptionRecord{Month: m, Plant: "Sur", ConsumptionKWh: 2_000_000},
		)
	}
	return records
}

// SampleCSV is a consumption table using the localized headers
const SampleCSV = "Mes,Planta,Consumo_kWh\nEnero,Norte,5000\nEnero,Sur,5000\n"

// WriteWorkbook writes rows to the first sheet of a new workbook in a
// temp directory and returns its path
func WriteWorkbook(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// SampleWorkbookRows mirrors SampleCSV as workbook rows
func SampleWorkbookRows() [][]interface{} {
	return [][]interface{}{
		{"Mes", "Planta", "Consumo_kWh"},
		{"Enero", "Norte", 5000},
		{"Enero", "Sur", 5000},
	}
}
