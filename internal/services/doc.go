// Package services implements the business logic layer of GHG Pulse.
// It sits between the transports (HTTP, CLI, inbox watcher) and the core
// packages, so every caller evaluates datasets the same way.
//
// # Report service
//
// ReportService composes the core in dependency order:
//
//	dataset ──▶ dataprocessing.Parser ──▶ emissions.Calculator
//	        ──▶ compliance.Classifier ──▶ exporter.ReportExporter
//
// It resolves the emission factor (the configured default when the caller
// supplies none), records business metrics and trace spans, and publishes
// report:generated events to the WebSocket hub.
//
// # Error Handling
//
// Core sentinel errors are wrapped into typed application errors that the
// HTTP layer maps to problem details:
//
//	dataprocessing.ErrMissingColumn  PARSING     422
//	dataprocessing.ErrNonNumeric     PARSING     422
//	emissions.ErrInvalidFactor       VALIDATION  400
//	emissions.ErrNegativeConsumption VALIDATION  400
//	exporter failures                EXPORT      500
//
// The original sentinel stays reachable through errors.Is.
package services
