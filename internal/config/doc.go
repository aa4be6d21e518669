// Package config provides centralized configuration management for GHG Pulse.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GHG_<SECTION>_<FIELD>:
//
//	GHG_SERVER_PORT=8080
//	GHG_LOGGING_LEVEL=debug
//	GHG_EMISSIONS_DEFAULT_FACTOR=0.444
//	GHG_EMISSIONS_STRICT=true
//	GHG_COMPLIANCE_MANDATORY_THRESHOLD=25000
//	GHG_WATCH_INBOX_DIR=/srv/ghg/inbox
//
// The config file is read from GHG_CONFIG_FILE, or from ghg.yaml /
// configs/ghg.yaml when present.
//
// # Validation
//
// Load rejects invalid ports, non-positive timeouts, negative or non-finite
// default emission factors and unordered compliance thresholds.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	classifier := compliance.NewClassifier(cfg.Compliance.Thresholds())
package config
