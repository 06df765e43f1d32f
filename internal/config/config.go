// =============================================================================
// Compliance Batch Processor - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration from a
// YAML file. Every value has a default, so an absent config file is not an
// error: the pipeline runs out of the box against ./drop, ./output and
// ./archive.
//
// Values here are the run-configuration surface of the batch driver:
// directory roles, inter-row pacing, the two extended-check skip flags,
// the optional evaluation-service endpoint, and logging.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultWaitTime is the default pause between rows. It exists to respect
// call-volume limits on the downstream registry agents, not for
// correctness.
const DefaultWaitTime = 7 * time.Second

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the drop directory scanned for pending input files.
	// Default: "./drop"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one report artifact per processed row and hosts
	// the checkpoint file.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives completed input files and the skipped/errors
	// audit files, under MM-DD-YYYY subfolders.
	// Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// WaitSeconds is the pause after each processed row, in seconds.
	// Fractional values are accepted.
	// Default: 7.0
	WaitSeconds float64 `yaml:"wait_time"`

	// SkipFinancials disables the extended financial review on every
	// evaluation call.
	// Default: true
	SkipFinancials *bool `yaml:"skip_financials"`

	// SkipLegal disables the extended legal review on every evaluation
	// call.
	// Default: true
	SkipLegal *bool `yaml:"skip_legal"`

	// EvaluatorURL is the endpoint of the evaluation service. When empty,
	// no service is called and every row gets a synthesized failure
	// report.
	EvaluatorURL string `yaml:"evaluator_url"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogJSON switches log output from console lines to JSON.
	// Default: false
	LogJSON bool `yaml:"log_json"`
}

// Load reads the configuration from path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./drop"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = "./archive"
	}
	if cfg.WaitSeconds == 0 {
		cfg.WaitSeconds = DefaultWaitTime.Seconds()
	}
	if cfg.SkipFinancials == nil {
		cfg.SkipFinancials = boolPtr(true)
	}
	if cfg.SkipLegal == nil {
		cfg.SkipLegal = boolPtr(true)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate rejects configurations the pipeline cannot run with.
func validate(cfg *Config) error {
	if cfg.WaitSeconds < 0 {
		return fmt.Errorf("wait_time must not be negative, got %v", cfg.WaitSeconds)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}

// Wait returns the inter-row pause as a duration.
func (c *Config) Wait() time.Duration {
	return time.Duration(c.WaitSeconds * float64(time.Second))
}

func boolPtr(b bool) *bool { return &b }
