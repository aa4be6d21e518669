package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghgcli/pkg/contracts/domain"
)

func sampleEnriched() []domain.EnrichedRecord {
	return []domain.EnrichedRecord{
		{ConsumptionRecord: domain.ConsumptionRecord{Month: "Jan", Plant: "A", ConsumptionKWh: 10000}, EmissionsTCO2e: 4.44},
		{ConsumptionRecord: domain.ConsumptionRecord{Month: "Feb", Plant: "Planta, Norte", ConsumptionKWh: 2500.5}, EmissionsTCO2e: 1.110222},
	}
}

func TestCSVWriter_WriteEnriched(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(false).WriteEnriched(&buf, sampleEnriched()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, DetailHeader, rows[0])
	assert.Equal(t, []string{"Jan", "A", "10000", "4.44"}, rows[1])
	assert.Equal(t, []string{"Feb", "Planta, Norte", "2500.5", "1.110222"}, rows[2])
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(true).WriteEnriched(&buf, nil))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"))
	assert.Equal(t, "\ufeffMonth,Plant,Consumption kWh,Emissions tCO2e\n", out)
}

func TestCSVWriter_WriteTable(t *testing.T) {
	table := BuildSummaryTable(4.44, domain.ComplianceResult{Label: "Voluntary Reporting"}, domain.DefaultFactor())

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(false).WriteTable(&buf, table))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Total Emissions tCO2e", "4.44"}, rows[1])
	assert.Equal(t, []string{"Regulatory Status", "Voluntary Reporting"}, rows[2])
	assert.Equal(t, []string{"Emission Factor", "0.444 (national grid 2024)"}, rows[3])
}
