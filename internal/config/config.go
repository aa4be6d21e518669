package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"ghgcli/internal/compliance"
	"ghgcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Emissions  EmissionsConfig  `yaml:"emissions" envconfig:"EMISSIONS"`
	Compliance ComplianceConfig `yaml:"compliance" envconfig:"COMPLIANCE"`
	Report     ReportConfig     `yaml:"report" envconfig:"REPORT"`
	Watch      WatchConfig      `yaml:"watch" envconfig:"WATCH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port              int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout       time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout    time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	EnableMetrics     bool          `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing     bool          `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	IncludeErrorStack bool          `yaml:"include_error_stack" envconfig:"INCLUDE_ERROR_STACK"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// EmissionsConfig contains emission factor defaults and validation mode
type EmissionsConfig struct {
	DefaultFactor float64 `yaml:"default_factor" envconfig:"DEFAULT_FACTOR"`
	FactorSource  string  `yaml:"factor_source" envconfig:"FACTOR_SOURCE"`
	Strict        bool    `yaml:"strict" envconfig:"STRICT"`
}

// ComplianceConfig contains the regulatory thresholds in tCO2e per year
type ComplianceConfig struct {
	MandatoryThreshold float64 `yaml:"mandatory_threshold" envconfig:"MANDATORY_THRESHOLD"`
	WatchThreshold     float64 `yaml:"watch_threshold" envconfig:"WATCH_THRESHOLD"`
}

// ReportConfig contains report output settings
type ReportConfig struct {
	FileName       string `yaml:"file_name" envconfig:"FILE_NAME"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// WatchConfig contains inbox watcher settings
type WatchConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"ENABLED"`
	InboxDir  string `yaml:"inbox_dir" envconfig:"INBOX_DIR"`
	OutboxDir string `yaml:"outbox_dir" envconfig:"OUTBOX_DIR"`
	Backfill  bool   `yaml:"backfill" envconfig:"BACKFILL"`
}

// Factor returns the configured default emission factor
func (c EmissionsConfig) Factor() domain.EmissionFactor {
	return domain.EmissionFactor{Value: c.DefaultFactor, Source: c.FactorSource}
}

// Thresholds returns the configured compliance thresholds
func (c ComplianceConfig) Thresholds() compliance.Thresholds {
	return compliance.Thresholds{
		Mandatory: c.MandatoryThreshold,
		Watch:     c.WatchThreshold,
	}
}

// Load loads configuration from defaults, the config file (if any) and
// environment variables, in increasing order of precedence
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration using an explicit config file path.
// An empty path skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML configuration onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	f := c.Emissions.DefaultFactor
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("invalid default emission factor: %v", f)
	}

	if err := c.Compliance.Thresholds().Validate(); err != nil {
		return err
	}

	if c.Report.FileName == "" {
		c.Report.FileName = DefaultReportFileName
	} else if !strings.HasSuffix(strings.ToLower(c.Report.FileName), ".xlsx") {
		return fmt.Errorf("report file name must end in .xlsx: %s", c.Report.FileName)
	}

	if c.Report.MaxUploadBytes <= 0 {
		c.Report.MaxUploadBytes = DefaultMaxUploadBytes
	}

	// Logs are always structured JSON
	c.Logging.Format = "json"

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"ghg.yaml",
		"configs/ghg.yaml",
		"../configs/ghg.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			EnableMetrics:   true,
			EnableTracing:   false,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Emissions: EmissionsConfig{
			DefaultFactor: domain.DefaultEmissionFactor,
			FactorSource:  domain.DefaultEmissionFactorSource,
			Strict:        false,
		},
		Compliance: ComplianceConfig{
			MandatoryThreshold: compliance.MandatoryThresholdTCO2e,
			WatchThreshold:     compliance.WatchThresholdTCO2e,
		},
		Report: ReportConfig{
			FileName:       DefaultReportFileName,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Watch: WatchConfig{
			InboxDir:  DefaultInboxDir,
			OutboxDir: DefaultOutboxDir,
			Backfill:  true,
		},
	}
}
