package contract

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/maintinsight/maintinsight/schema"
)

// Default values for configuration.
const (
	DefaultHighRiskCost        = 1500.0
	DefaultLowRiskCost         = 200.0
	DefaultComplianceThreshold = 37.0
	DefaultResultLimit         = 25
	MaxResultLimit             = 100000
	DefaultPrecision           = 1
	DefaultModelPath           = "model.yaml"
	DefaultServeAddr           = ":8080"
	DefaultMaxUploadMB         = 32
)

// CacheVersion is bumped whenever the cached result layout changes.
const CacheVersion = 1

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath string // CSV path, "-" for stdin
	ModelPath string

	HighRiskCost        float64
	LowRiskCost         float64
	ComplianceThreshold float64

	ResultLimit int // 0 = all rows
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	ShowRecords bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	ServeAddr   string
	MaxUploadMB int

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	ModelPath           string  `mapstructure:"model-path"`
	HighRiskCost        float64 `mapstructure:"high-risk-cost"`
	LowRiskCost         float64 `mapstructure:"low-risk-cost"`
	ComplianceThreshold float64 `mapstructure:"compliance-threshold"`
	OutputFile          string  `mapstructure:"output-file"`
	Limit               int     `mapstructure:"limit"`
	Precision           int     `mapstructure:"precision"`
	Output              string  `mapstructure:"output"`
	Width               int     `mapstructure:"width"`
	CacheBackend        string  `mapstructure:"cache-backend"`
	CacheDBConnect      string  `mapstructure:"cache-db-connect"`
	AnalysisBackend     string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect   string  `mapstructure:"analysis-db-connect"`
	Emoji               string  `mapstructure:"emoji"`
	Color               string  `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	Records bool `mapstructure:"records"`

	// --- Fields from serveCmd.Flags() ---
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int    `mapstructure:"max-upload-mb"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CostParams returns the cost policy inputs in a form suitable for run tracking.
func (c *Config) CostParams() map[string]any {
	return map[string]any{
		"model_path":           c.ModelPath,
		"high_risk_cost":       c.HighRiskCost,
		"low_risk_cost":        c.LowRiskCost,
		"compliance_threshold": c.ComplianceThreshold,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCostPolicy(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processServeInputs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return errors.New("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return errors.New("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return errors.New("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return errors.New("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis backend: %w", err)
	}

	// Cache and analysis must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ShowRecords = input.Records

	cfg.ModelPath = strings.TrimSpace(input.ModelPath)
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, prom", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("parquet output requires --output-file")
	}

	return nil
}

// processCostPolicy validates the repair cost inputs and compliance threshold.
func processCostPolicy(cfg *Config, input *ConfigRawInput) error {
	costs := []struct {
		name  string
		value float64
	}{
		{"high-risk-cost", input.HighRiskCost},
		{"low-risk-cost", input.LowRiskCost},
	}
	for _, c := range costs {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 {
			return fmt.Errorf("%s must be a finite, non-negative number (received %v)", c.name, c.value)
		}
	}
	cfg.HighRiskCost = input.HighRiskCost
	cfg.LowRiskCost = input.LowRiskCost

	if math.IsNaN(input.ComplianceThreshold) || math.IsInf(input.ComplianceThreshold, 0) {
		return fmt.Errorf("compliance-threshold must be finite (received %v)", input.ComplianceThreshold)
	}
	cfg.ComplianceThreshold = input.ComplianceThreshold
	return nil
}

// processServeInputs handles the HTTP server parameters.
func processServeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ServeAddr = strings.TrimSpace(input.Addr)
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}
	cfg.MaxUploadMB = input.MaxUploadMB
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = DefaultMaxUploadMB
	}
	if cfg.MaxUploadMB < 0 {
		return fmt.Errorf("max-upload-mb must be positive (received %d)", input.MaxUploadMB)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
