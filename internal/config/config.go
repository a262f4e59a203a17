package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read, when present, before the process environment is
// parsed. Variables already set in the environment win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config is built once at startup and passed explicitly to whatever needs it.
type Config struct {
	// DBPath defaults to ~/.orgdir/orgdir.db when unset.
	DBPath           string        `env:"ORGDIR_DB"`
	APIKey           string        `env:"API_KEY" envDefault:"test"`
	HTTPAddr         string        `env:"ORGDIR_HTTP_ADDR" envDefault:":8080"`
	APIPrefix        string        `env:"ORGDIR_API_PREFIX" envDefault:"/api/v1"`
	MetricsPath      string        `env:"ORGDIR_METRICS_PATH" envDefault:"/metrics"`
	DefaultPageLimit int           `env:"ORGDIR_PAGE_LIMIT" envDefault:"100"`
	LogUseCases      bool          `env:"ORGDIR_LOG_USE_CASES" envDefault:"false"`
	LogLevel         string        `env:"ORGDIR_LOG_LEVEL" envDefault:"info"`
	ReadTimeout      time.Duration `env:"ORGDIR_HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout     time.Duration `env:"ORGDIR_HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout  time.Duration `env:"ORGDIR_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// CORSOrigins is a comma-separated allow list; empty disables CORS.
	CORSOrigins []string `env:"ORGDIR_CORS_ORIGINS" envSeparator:","`
}

// LoadEnv loads the env files that exist and reports how many were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads envFiles (DefaultEnvFiles when none are given), parses the
// environment and validates the result.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".orgdir", "orgdir.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY must not be empty"))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("ORGDIR_API_PREFIX %q must start with /", c.APIPrefix))
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("ORGDIR_METRICS_PATH %q must start with /", c.MetricsPath))
	}
	if c.DefaultPageLimit <= 0 {
		errs = append(errs, fmt.Errorf("ORGDIR_PAGE_LIMIT must be positive, got %d", c.DefaultPageLimit))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("ORGDIR_LOG_LEVEL: %w", err)
	}
	return level, nil
}
