package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tiktracker/pkg/logger"
)

// Config holds all configuration options for the growth tracker
type Config struct {
	// Collection orchestration settings
	Collector CollectorConfig `yaml:"collector"`

	// Extraction browser settings
	Extractor ExtractorConfig `yaml:"extractor"`

	// Identifier list input
	Input InputConfig `yaml:"input"`

	// Report persistence
	Reports ReportsConfig `yaml:"reports"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// CollectorConfig holds retry, batching and reconciliation settings
type CollectorConfig struct {
	Retries             int           `yaml:"retries"`
	RankLimit           int           `yaml:"rank_limit"`
	BatchSize           int           `yaml:"batch_size"`
	RegressionTolerance int           `yaml:"regression_tolerance"`
	RetryDelay          time.Duration `yaml:"retry_delay"`
}

// ExtractorConfig holds browser and transport settings
type ExtractorConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ProfileDelay time.Duration `yaml:"profile_delay"`
	PageTimeout  time.Duration `yaml:"page_timeout"`
	Proxy        string        `yaml:"proxy"`
	UserAgent    string        `yaml:"user_agent"`
}

// InputConfig points at the username list
type InputConfig struct {
	File string `yaml:"file"`
}

// ReportsConfig holds report directory settings
type ReportsConfig struct {
	Directory string `yaml:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Collector: CollectorConfig{
			Retries:             3,
			RankLimit:           5,
			BatchSize:           5,
			RegressionTolerance: 5,
			RetryDelay:          2 * time.Second,
		},
		Extractor: ExtractorConfig{
			BaseURL:      "https://www.tiktok.com",
			ProfileDelay: time.Second,
			PageTimeout:  20 * time.Second,
			UserAgent:    defaultUserAgent,
		},
		Input: InputConfig{
			File: "usernames.txt",
		},
		Reports: ReportsConfig{
			Directory: "./reports",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. An empty path means
// "use the default locations"; a missing file is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

func findConfigFile() string {
	locations := []string{
		".tiktracker.yaml",
		".tiktracker.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tiktracker", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".tiktracker.yaml"),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// LoadFromEnv overrides settings from TIKTRACKER_* environment variables
func (c *Config) LoadFromEnv() {
	if v, ok := envInt("TIKTRACKER_RETRIES"); ok {
		c.Collector.Retries = v
	}
	if v, ok := envInt("TIKTRACKER_RANK_LIMIT"); ok {
		c.Collector.RankLimit = v
	}
	if v, ok := envInt("TIKTRACKER_BATCH_SIZE"); ok {
		c.Collector.BatchSize = v
	}
	if v, ok := envInt("TIKTRACKER_REGRESSION_TOLERANCE"); ok {
		c.Collector.RegressionTolerance = v
	}
	if v := os.Getenv("TIKTRACKER_INPUT_FILE"); v != "" {
		c.Input.File = v
	}
	if v := os.Getenv("TIKTRACKER_REPORTS_DIR"); v != "" {
		c.Reports.Directory = v
	}
	if v := os.Getenv("TIKTRACKER_PROXY"); v != "" {
		c.Extractor.Proxy = v
	}
	if v := os.Getenv("TIKTRACKER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Normalize clamps out-of-range values back to their defaults so a bad
// config never aborts a run. Returns the list of adjusted fields.
func (c *Config) Normalize() []string {
	def := DefaultConfig()
	var adjusted []string

	if c.Collector.Retries < 1 {
		c.Collector.Retries = def.Collector.Retries
		adjusted = append(adjusted, "collector.retries")
	}
	if c.Collector.RankLimit < 1 {
		c.Collector.RankLimit = def.Collector.RankLimit
		adjusted = append(adjusted, "collector.rank_limit")
	}
	if c.Collector.BatchSize < 1 {
		c.Collector.BatchSize = def.Collector.BatchSize
		adjusted = append(adjusted, "collector.batch_size")
	}
	if c.Collector.RegressionTolerance < 0 {
		c.Collector.RegressionTolerance = def.Collector.RegressionTolerance
		adjusted = append(adjusted, "collector.regression_tolerance")
	}
	if c.Collector.RetryDelay < 0 {
		c.Collector.RetryDelay = def.Collector.RetryDelay
		adjusted = append(adjusted, "collector.retry_delay")
	}
	if c.Extractor.BaseURL == "" {
		c.Extractor.BaseURL = def.Extractor.BaseURL
		adjusted = append(adjusted, "extractor.base_url")
	}
	if c.Extractor.PageTimeout <= 0 {
		c.Extractor.PageTimeout = def.Extractor.PageTimeout
		adjusted = append(adjusted, "extractor.page_timeout")
	}
	if c.Extractor.UserAgent == "" {
		c.Extractor.UserAgent = def.Extractor.UserAgent
		adjusted = append(adjusted, "extractor.user_agent")
	}
	if c.Input.File == "" {
		c.Input.File = def.Input.File
		adjusted = append(adjusted, "input.file")
	}
	if c.Reports.Directory == "" {
		c.Reports.Directory = def.Reports.Directory
		adjusted = append(adjusted, "reports.directory")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
		adjusted = append(adjusted, "logging.level")
	}

	return adjusted
}

// Load builds the effective configuration. Precedence: environment
// variables (including .env) over config file over defaults. Config load
// problems degrade to defaults with a warning rather than aborting.
func Load(configPath string, log logger.Logger) *Config {
	_ = godotenv.Load(".env")

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		if log != nil {
			log.WithError(err).Warn("config file unusable, falling back to defaults")
		}
		cfg = DefaultConfig()
	}

	cfg.LoadFromEnv()

	if adjusted := cfg.Normalize(); len(adjusted) > 0 && log != nil {
		log.WithField("fields", adjusted).Warn("config values out of range, reset to defaults")
	}

	return cfg
}
