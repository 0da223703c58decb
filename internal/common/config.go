// Package common provides shared utilities for fundwatch
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for fundwatch
type Config struct {
	Environment    string               `toml:"environment"`
	Server         ServerConfig         `toml:"server"`
	Storage        StorageConfig        `toml:"storage"`
	Fund           FundConfig           `toml:"fund"`
	Fetch          FetchConfig          `toml:"fetch"`
	Analytics      AnalyticsConfig      `toml:"analytics"`
	Classification ClassificationConfig `toml:"classification"`
	Clients        ClientsConfig        `toml:"clients"`
	Schedule       ScheduleConfig       `toml:"schedule"`
	Logging        LoggingConfig        `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host" validate:"required"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// StorageConfig holds the on-disk layout. Sub-directories are resolved
// relative to DataDir unless absolute.
type StorageConfig struct {
	DataDir      string `toml:"data_dir" validate:"required"`
	SourceDir    string `toml:"source_dir" validate:"required"`    // raw market data + holdings info
	ProcessedDir string `toml:"processed_dir" validate:"required"` // computed tables
	HoldingsDir  string `toml:"holdings_dir" validate:"required"`  // dated fund holdings files
	JSONDir      string `toml:"json_dir" validate:"required"`      // JSON mirror consumed by the dashboard
}

// FundConfig describes the monitored fund.
type FundConfig struct {
	ReferenceTicker string   `toml:"reference_ticker" validate:"required"`
	HoldingsURL     string   `toml:"holdings_url"` // template; {file} is replaced by the dated file name
	HoldingsSuffix  string   `toml:"holdings_suffix" validate:"required"`
	Benchmarks      []string `toml:"benchmarks"`
}

// FetchConfig controls market data retrieval.
type FetchConfig struct {
	StartDate    string `toml:"start_date" validate:"required,datetime=2006-01-02"`
	BatchSize    int    `toml:"batch_size" validate:"min=1"`
	MaxRetries   int    `toml:"max_retries" validate:"min=1"`
	RetryBackoff string `toml:"retry_backoff"`
	Parallelism  int    `toml:"parallelism" validate:"min=1"`
	InfoTTL      string `toml:"info_ttl"` // holdings_info.csv younger than this is not refetched
}

// GetRetryBackoff parses and returns the pause between retry rounds
func (c *FetchConfig) GetRetryBackoff() time.Duration {
	d, err := time.ParseDuration(c.RetryBackoff)
	if err != nil {
		return time.Second
	}
	return d
}

// GetInfoTTL parses and returns the holdings info freshness window
func (c *FetchConfig) GetInfoTTL() time.Duration {
	d, err := time.ParseDuration(c.InfoTTL)
	if err != nil {
		return FreshnessHoldingsInfo
	}
	return d
}

// GetStartDate parses the configured start date.
func (c *FetchConfig) GetStartDate() time.Time {
	t, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// AnalyticsConfig holds the risk calculation constants.
type AnalyticsConfig struct {
	RiskFreeRate       float64 `toml:"risk_free_rate" validate:"gte=0,lt=1"`
	TradingDaysPerYear int     `toml:"trading_days_per_year" validate:"min=1"`
}

// ClassificationConfig holds the static lookup tables used by attribution.
type ClassificationConfig struct {
	Industries       map[string]string `toml:"industries"`        // ticker -> industry
	CompanyOverrides map[string]string `toml:"company_overrides"` // holdings company name -> ticker
	Countries        map[string]string `toml:"countries"`         // ticker -> country, wins over fetched info
	Symbols          map[string]string `toml:"symbols"`           // ticker -> EODHD symbol
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD    EODHDConfig    `toml:"eodhd"`
	Holdings HoldingsConfig `toml:"holdings"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// HoldingsConfig holds the holdings download client configuration
type HoldingsConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *HoldingsConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ScheduleConfig controls the background refresh run by `serve`.
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Outputs  []string `toml:"outputs" validate:"dive,oneof=console stdout file"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			DataDir:      ".",
			SourceDir:    "source_data",
			ProcessedDir: "processed_data",
			HoldingsDir:  "holdings",
			JSONDir:      "data",
		},
		Fund: FundConfig{
			ReferenceTicker: "AGIX",
			HoldingsURL:     "https://kraneshares.com/csv/{file}",
			HoldingsSuffix:  "agix_holdings.csv",
			Benchmarks:      []string{"QQQ", "^SPX", "DIA", "^DJI", "SPY", "SMH", "IGV"},
		},
		Fetch: FetchConfig{
			StartDate:    "2023-01-01",
			BatchSize:    100,
			MaxRetries:   5,
			RetryBackoff: "1s",
			Parallelism:  4,
			InfoTTL:      "168h",
		},
		Analytics: AnalyticsConfig{
			RiskFreeRate:       0.02,
			TradingDaysPerYear: 252,
		},
		Classification: ClassificationConfig{
			Industries:       map[string]string{},
			CompanyOverrides: map[string]string{},
			Countries:        map[string]string{},
			Symbols:          map[string]string{},
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Holdings: HoldingsConfig{
				UserAgent: "Mozilla/5.0",
				Timeout:   "10s",
			},
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Cron:    "30 6 * * 2-6", // after US close, Tue-Sat local
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "logs/fundwatch.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FUNDWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FUNDWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FUNDWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}

	if dir := os.Getenv("FUNDWATCH_DATA_DIR"); dir != "" {
		config.Storage.DataDir = dir
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if expr := os.Getenv("FUNDWATCH_SCHEDULE"); expr != "" {
		config.Schedule.Cron = expr
		config.Schedule.Enabled = true
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolvePath resolves a storage sub-directory against DataDir.
func (c *StorageConfig) ResolvePath(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.DataDir, dir)
}
