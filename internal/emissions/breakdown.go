package emissions

import (
	"ghgcli/pkg/contracts/domain"
)

type plantMonthKey struct {
	month string
	plant string
}

// Breakdown groups records by month and plant, preserving first-seen order
func Breakdown(records []domain.EnrichedRecord) []domain.PlantMonthTotal {
	index := make(map[plantMonthKey]int)
	var totals []domain.PlantMonthTotal

	for _, record := range records {
		key := plantMonthKey{month: record.Month, plant: record.Plant}
		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, domain.PlantMonthTotal{
				Month: record.Month,
				Plant: record.Plant,
			})
		}
		totals[i].ConsumptionKWh += record.ConsumptionKWh
		totals[i].EmissionsTCO2e += record.EmissionsTCO2e
	}

	return totals
}

// TotalsByPlant sums emissions per plant
func TotalsByPlant(records []domain.EnrichedRecord) map[string]float64 {
	totals := make(map[string]float64)
	for _, record := range records {
		totals[record.Plant] += record.EmissionsTCO2e
	}
	return totals
}
