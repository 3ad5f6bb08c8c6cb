package app

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Valid values for Config.LogLevel and Config.LogFormat.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// DescriptionPaths are build description files or directories. The
	// first one anchors the module root.
	DescriptionPaths []string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Incremental overrides the description's incremental compilation
	// policy when set.
	Incremental *bool
	// ProbeTimeout bounds each repository lookup; zero uses the default.
	ProbeTimeout time.Duration
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.DescriptionPaths) == 0 {
		return nil, errors.New("at least one description path is required")
	}
	for _, p := range cfg.DescriptionPaths {
		if p == "" {
			return nil, errors.New("description path cannot be empty")
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(LogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q (valid: %v)", cfg.LogLevel, LogLevels)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(LogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q (valid: %v)", cfg.LogFormat, LogFormats)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.ProbeTimeout < 0 {
		return nil, fmt.Errorf("invalid timeout %s", cfg.ProbeTimeout)
	}

	cfg.DescriptionPaths = slices.Clone(cfg.DescriptionPaths)
	return &cfg, nil
}
