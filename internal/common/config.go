package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/pagetext/constants"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Report  ReportConfig  `yaml:"report"`
	Extract ExtractConfig `yaml:"extract"`
	Log     LogConfig     `yaml:"log"`
}

// ReportConfig holds report-related configuration
type ReportConfig struct {
	Format          string        `yaml:"format"`
	ContinueOnError bool          `yaml:"continue_on_error"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ExtractConfig holds document backend configuration
type ExtractConfig struct {
	Backend   string `yaml:"backend"`
	Pdftotext string `yaml:"pdftotext"` // binary name or absolute path
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "PAGETEXT_CONFIG"

func defaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Format:  string(constants.FormatText),
			Timeout: 2 * time.Minute,
		},
		Extract: ExtractConfig{
			Backend:   string(constants.DefaultBackend),
			Pdftotext: "pdftotext",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	c := defaultConfig()
	c.applyEnv()
	return c
}

// LoadConfigFile loads defaults, then the YAML file at path, then
// environment overrides. An empty path is LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		return LoadConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	c := defaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	c.Report.Format = getEnv("PAGETEXT_FORMAT", c.Report.Format)
	c.Report.ContinueOnError = getEnvAsBool("PAGETEXT_CONTINUE_ON_ERROR", c.Report.ContinueOnError)
	c.Report.Timeout = getEnvAsDuration("PAGETEXT_TIMEOUT", c.Report.Timeout)
	c.Extract.Backend = getEnv("PAGETEXT_BACKEND", c.Extract.Backend)
	c.Extract.Pdftotext = getEnv("PAGETEXT_PDFTOTEXT", c.Extract.Pdftotext)
	c.Log.Level = getEnv("PAGETEXT_LOG_LEVEL", c.Log.Level)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if _, ok := constants.CanonicalizeBackend(c.Extract.Backend); !ok {
		return fmt.Errorf("%w: unknown backend %q (want one of %s)",
			ErrInvalidInput, c.Extract.Backend, strings.Join(constants.BackendNames(), ", "))
	}
	if _, ok := constants.CanonicalizeFormat(c.Report.Format); !ok {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidInput, c.Report.Format)
	}
	if c.Report.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidInput)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
