package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "GHG Pulse"

	// Environment
	EnvPrefix     = "GHG"
	ConfigFileEnv = "GHG_CONFIG_FILE"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second

	// Report Settings
	DefaultReportFileName = "emissions_report.xlsx"
	DefaultMaxUploadBytes = 20 << 20 // 20MB

	// File Paths (relative to the base directory)
	DefaultDataDir   = "data"
	DefaultInboxDir  = "data/inbox"
	DefaultOutboxDir = "data/outbox"
	DefaultLogFile   = "logs/ghg.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
