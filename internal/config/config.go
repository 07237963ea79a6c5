// Package config provides configuration management for the revenue comparison report.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "revcompare/internal/errors"
	"revcompare/internal/logging"
	"revcompare/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Entities []models.Entity   `mapstructure:"entities"`
	Window   int               `mapstructure:"window"`
	Fetch    FetchConfig       `mapstructure:"fetch"`
	Chart    ChartConfig       `mapstructure:"chart"`
	Logging  logging.LogConfig `mapstructure:"logging"`
}

// FetchConfig holds market data provider settings.
type FetchConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	SessionURL        string        `mapstructure:"session_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Concurrent        bool          `mapstructure:"concurrent"`
	HistoryYears      int           `mapstructure:"history_years"`
}

// ChartConfig holds figure styling and output settings.
type ChartConfig struct {
	Width       float64 `mapstructure:"width"`  // inches
	Height      float64 `mapstructure:"height"` // inches
	FontVariant string  `mapstructure:"font_variant"`
	TitleSize   float64 `mapstructure:"title_size"`
	LabelSize   float64 `mapstructure:"label_size"`
	TickSize    float64 `mapstructure:"tick_size"`
	Caption     string  `mapstructure:"caption"`
	Output      string  `mapstructure:"output"` // empty opens a viewer
}

// DefaultEntities are the two companies compared when no config overrides them.
func DefaultEntities() []models.Entity {
	return []models.Entity{
		{Name: "NVIDIA", Symbol: "NVDA", Color: "#76B900"},
		{Name: "AMD", Symbol: "AMD", Color: "#ED1C24"},
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/revcompare"
	}
	return filepath.Join(home, ".config", "revcompare")
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	v := newViper("")
	// Unmarshalling defaults only cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	entities := make([]map[string]interface{}, 0, 2)
	for _, e := range DefaultEntities() {
		entities = append(entities, map[string]interface{}{
			"name":   e.Name,
			"symbol": e.Symbol,
			"color":  e.Color,
		})
	}
	v.SetDefault("entities", entities)
	v.SetDefault("window", 20)

	v.SetDefault("fetch.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("fetch.session_url", "https://fc.yahoo.com")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("fetch.concurrent", false)
	v.SetDefault("fetch.history_years", 6)

	v.SetDefault("chart.width", 14.0)
	v.SetDefault("chart.height", 12.0)
	v.SetDefault("chart.font_variant", "Sans")
	v.SetDefault("chart.title_size", 20.0)
	v.SetDefault("chart.label_size", 14.0)
	v.SetDefault("chart.tick_size", 12.0)
	v.SetDefault("chart.caption", "Source: Yahoo Finance | Generated with gonum/plot")
	v.SetDefault("chart.output", "")

	logCfg := logging.DefaultLogConfig()
	v.SetDefault("logging.level", logCfg.Level)
	v.SetDefault("logging.console", logCfg.Console)
	v.SetDefault("logging.file", logCfg.File)
	v.SetDefault("logging.file_path", logCfg.FilePath)
	v.SetDefault("logging.max_size", logCfg.MaxSize)
	v.SetDefault("logging.max_backups", logCfg.MaxBackups)
	v.SetDefault("logging.max_age", logCfg.MaxAge)

	return v
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REVCOMPARE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REVCOMPARE_OUTPUT"); v != "" {
		cfg.Chart.Output = v
	}
	if v := os.Getenv("REVCOMPARE_USER_AGENT"); v != "" {
		cfg.Fetch.UserAgent = v
	}
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Entities) != 2 {
		return apperrors.NewValidationError("entities", len(c.Entities), "exactly two entities are required")
	}

	seenNames := make(map[string]bool)
	seenSymbols := make(map[string]bool)
	for i, e := range c.Entities {
		field := fmt.Sprintf("entities[%d]", i)
		if e.Name == "" {
			return apperrors.NewValidationError(field+".name", e.Name, "must not be empty")
		}
		if e.Symbol == "" {
			return apperrors.NewValidationError(field+".symbol", e.Symbol, "must not be empty")
		}
		if !hexColor.MatchString(e.Color) {
			return apperrors.NewValidationError(field+".color", e.Color, "must be #RRGGBB")
		}
		if seenNames[e.Name] {
			return apperrors.NewValidationError(field+".name", e.Name, "duplicate entity name")
		}
		if seenSymbols[strings.ToUpper(e.Symbol)] {
			return apperrors.NewValidationError(field+".symbol", e.Symbol, "duplicate symbol")
		}
		seenNames[e.Name] = true
		seenSymbols[strings.ToUpper(e.Symbol)] = true
	}

	if c.Window <= 0 {
		return apperrors.NewValidationError("window", c.Window, "must be positive")
	}
	if c.Fetch.BaseURL == "" {
		return apperrors.NewValidationError("fetch.base_url", c.Fetch.BaseURL, "must not be empty")
	}
	if c.Fetch.Timeout <= 0 {
		return apperrors.NewValidationError("fetch.timeout", c.Fetch.Timeout, "must be positive")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return apperrors.NewValidationError("fetch.requests_per_second", c.Fetch.RequestsPerSecond, "must be non-negative")
	}
	if c.Fetch.HistoryYears <= 0 {
		return apperrors.NewValidationError("fetch.history_years", c.Fetch.HistoryYears, "must be positive")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return apperrors.NewValidationError("chart.size", fmt.Sprintf("%gx%g", c.Chart.Width, c.Chart.Height), "must be positive")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return apperrors.NewValidationError("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	return nil
}

// ConfigPath returns the config file path inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}
