package emissions

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghgcli/pkg/contracts/domain"
)

func sampleRecords() []domain.ConsumptionRecord {
	return []domain.ConsumptionRecord{
		{Month: "Jan", Plant: "A", ConsumptionKWh: 10000},
		{Month: "Jan", Plant: "B", ConsumptionKWh: 2500.5},
		{Month: "Feb", Plant: "A", ConsumptionKWh: 0},
		{Month: "Feb", Plant: "B", ConsumptionKWh: 125000},
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.ConsumptionRecord
		factor  float64
		want    []float64
	}{
		{
			name:    "reference factor",
			records: []domain.ConsumptionRecord{{Month: "Jan", Plant: "A", ConsumptionKWh: 10000}},
			factor:  0.444,
			want:    []float64{4.44},
		},
		{
			name:    "zero factor",
			records: sampleRecords(),
			factor:  0,
			want:    []float64{0, 0, 0, 0},
		},
		{
			name:    "negative consumption passes through",
			records: []domain.ConsumptionRecord{{Month: "Mar", Plant: "C", ConsumptionKWh: -1000}},
			factor:  0.5,
			want:    []float64{-0.5},
		},
		{
			name:    "empty input",
			records: nil,
			factor:  0.444,
			want:    []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.records, tt.factor)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i].EmissionsTCO2e, 1e-9)
				assert.Equal(t, tt.records[i], got[i].ConsumptionRecord)
			}
		})
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	records := sampleRecords()
	original := sampleRecords()

	enriched := Compute(records, 0.444)
	enriched[0].ConsumptionKWh = -1

	assert.Equal(t, original, records)
}

func TestCompute_LinearInFactor(t *testing.T) {
	records := sampleRecords()
	for _, factor := range []float64{0.1, 0.444, 0.9, 3} {
		single := Compute(records, factor)
		double := Compute(records, factor*2)
		for i := range single {
			assert.GreaterOrEqual(t, single[i].EmissionsTCO2e, 0.0)
			assert.InDelta(t, single[i].EmissionsTCO2e*2, double[i].EmissionsTCO2e, 1e-9)
		}
	}
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, 0.0, Aggregate(nil))
	assert.Equal(t, 0.0, Aggregate([]domain.EnrichedRecord{}))

	enriched := Compute(sampleRecords(), 0.444)
	var want float64
	for _, r := range enriched {
		want += r.EmissionsTCO2e
	}
	assert.InDelta(t, want, Aggregate(enriched), 1e-9)
	assert.InDelta(t, (10000+2500.5+125000)*0.000444, Aggregate(enriched), 1e-9)
}

func TestValidateFactor(t *testing.T) {
	assert.NoError(t, ValidateFactor(0))
	assert.NoError(t, ValidateFactor(0.444))

	for _, bad := range []float64{-0.1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := ValidateFactor(bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidFactor))
	}
}

func TestCalculator_Strict(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	calc := NewCalculator(Options{Strict: true}, logger)
	assert.True(t, calc.Strict())

	t.Run("rejects negative factor", func(t *testing.T) {
		_, err := calc.Compute(sampleRecords(), -0.444)
		assert.ErrorIs(t, err, ErrInvalidFactor)
	})

	t.Run("rejects negative consumption with row", func(t *testing.T) {
		records := sampleRecords()
		records[2].ConsumptionKWh = -5
		_, err := calc.Compute(records, 0.444)
		require.ErrorIs(t, err, ErrNegativeConsumption)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, 2, verr.Row)
		assert.Equal(t, "consumption_kwh", verr.Field)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("accepts valid input", func(t *testing.T) {
		got, err := calc.Compute(sampleRecords(), 0.444)
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})
}

func TestCalculator_Lenient(t *testing.T) {
	calc := NewCalculator(Options{}, nil)
	assert.False(t, calc.Strict())

	records := []domain.ConsumptionRecord{{Month: "Jan", Plant: "A", ConsumptionKWh: -100}}
	got, err := calc.Compute(records, -1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.1, got[0].EmissionsTCO2e, 1e-12)
}
