package config

import (
	"fmt"
	"math"
	"runtime"

	"github.com/BurntSushi/toml"

	"satpr/internal/algorithms/criteria"
	"satpr/internal/logger"
	"satpr/internal/pipeline"
	"satpr/internal/processing/corridor"
)

// Config holds the settings of one classification run.
type Config struct {
	Delta        int    `toml:"delta"`
	BaseClass    int    `toml:"base_class"`
	Criterion    string `toml:"criterion"`
	MeanMode     string `toml:"mean_mode"`
	CriteriaMode string `toml:"criteria_mode"`
	Optimize     bool   `toml:"optimize"`
	Workers      int    `toml:"workers"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`

	Training []string `toml:"training"`
	Exam     []string `toml:"exam"`
	Output   string   `toml:"output"`
}

// Default returns the settings used when no file or flag overrides them.
func Default() Config {
	return Config{
		Delta:        0,
		BaseClass:    0,
		Criterion:    criteria.Shannon.String(),
		MeanMode:     corridor.MeanRealizations.String(),
		CriteriaMode: criteria.Pooled.String(),
		Workers:      runtime.NumCPU(),
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads TOML text on top of the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and returns the first ValidationError.
func (c Config) Validate() error {
	if c.Delta < 0 || c.Delta > math.MaxUint8 {
		return NewValidationError("delta", c.Delta, "must be between 0 and 255")
	}
	if c.BaseClass < 0 {
		return NewValidationError("base_class", c.BaseClass, "must not be negative")
	}
	if c.Workers < 1 {
		return NewValidationError("workers", c.Workers, "must be at least 1")
	}
	if _, err := criteria.ParseKind(c.Criterion); err != nil {
		return NewValidationError("criterion", c.Criterion, "must be shannon or kullback")
	}
	if _, err := corridor.ParseMeanMode(c.MeanMode); err != nil {
		return NewValidationError("mean_mode", c.MeanMode, "must be realizations or legacy-attributes")
	}
	if _, err := criteria.ParseMode(c.CriteriaMode); err != nil {
		return NewValidationError("criteria_mode", c.CriteriaMode, "must be pooled or closest")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return NewValidationError("log_level", c.LogLevel, "must be debug, info, warn, error or disabled")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return NewValidationError("log_format", c.LogFormat, "must be console or json")
	}
	return nil
}

// Kind returns the configured optimization criterion. Call Validate first.
func (c Config) Kind() criteria.Kind {
	kind, _ := criteria.ParseKind(c.Criterion)
	return kind
}

// PipelineOptions returns the configured recompute options. Call Validate first.
func (c Config) PipelineOptions() pipeline.Options {
	mean, _ := corridor.ParseMeanMode(c.MeanMode)
	mode, _ := criteria.ParseMode(c.CriteriaMode)
	return pipeline.Options{MeanMode: mean, CriteriaMode: mode}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewValidationError creates a new validation error
func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}
