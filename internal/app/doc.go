// Package app wires GHG Pulse together: configuration, logging,
// OpenTelemetry, the event hub, the report service, the HTTP router and,
// when enabled, the inbox watcher.
//
// # Routes
//
//	/api/v1/emissions/{evaluate,report,upload}  evaluation and report export
//	/api/v1/compliance/tiers                    compliance legend
//	/api/v1/health, /health/ready, /health/live, /version
//	/metrics                                    Prometheus scrape endpoint
//	/ws                                         event stream
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run returns after SIGINT, SIGTERM or cancellation of ctx. In-flight
// requests are drained within Server.ShutdownTimeout, the event hub
// closes its clients and the telemetry providers are flushed. The
// package never calls os.Exit.
package app
