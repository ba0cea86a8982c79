package config

import (
	"errors"
	"fmt"
	"math"
	"mpdkit/internal/dash"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats understood by the timeline command.
const (
	FormatText = "text"
	FormatHLS  = "hls"
)

var (
	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidTimescale is returned for a non-positive timescale.
	ErrInvalidTimescale = errors.New("invalid timescale")
	// ErrInvalidDuration is returned when period_duration is not an ISO 8601 duration.
	ErrInvalidDuration = errors.New("invalid period duration")
)

// Config holds the fully processed tool configuration.
type Config struct {
	LogLevel string
	// Timescale is used when a SegmentTemplate carries no timescale attribute.
	Timescale float64
	// PeriodDuration, in seconds, bounds open-ended repeats when the manifest
	// gives no duration. +Inf when unknown.
	PeriodDuration float64
	Format         string
	// BaseURL is resolved against every expanded segment path.
	BaseURL string
}

// rawConfig is the intermediate structure that maps directly to the YAML file.
type rawConfig struct {
	LogLevel       string `yaml:"log_level"`
	Timescale      int64  `yaml:"timescale"`
	PeriodDuration string `yaml:"period_duration"`
	Format         string `yaml:"format"`
	BaseURL        string `yaml:"base_url"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		Timescale:      1,
		PeriodDuration: math.Inf(1),
		Format:         FormatText,
	}
}

// LoadConfig reads and parses the configuration file from the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applying defaults for missing keys.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg := Default()
	if raw.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(raw.LogLevel)
	}
	if raw.Timescale != 0 {
		cfg.Timescale = float64(raw.Timescale)
	}
	if raw.PeriodDuration != "" {
		d, ok := dash.ParseDuration(raw.PeriodDuration)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, raw.PeriodDuration)
		}
		cfg.PeriodDuration = d
	}
	if raw.Format != "" {
		cfg.Format = strings.ToLower(raw.Format)
	}
	cfg.BaseURL = raw.BaseURL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the tool cannot use.
func (c *Config) Validate() error {
	if c.Timescale <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTimescale, c.Timescale)
	}
	switch c.Format {
	case FormatText, FormatHLS:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	return nil
}
