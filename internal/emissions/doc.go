// Package emissions converts energy consumption records into greenhouse-gas
// emissions.
//
// Every record gains an emissions value in tCO2e derived from its kWh
// consumption and an emission factor expressed in tCO2e per MWh:
//
//	emissions_tco2e = consumption_kwh * factor / 1000
//
// The package-level Compute and Aggregate functions are pure and perform no
// validation: negative consumption or factors flow through unchanged. A
// Calculator configured with Options{Strict: true} rejects those inputs
// instead.
//
// Breakdown and TotalsByPlant group enriched records by plant and month for
// callers that chart emissions per facility.
package emissions
