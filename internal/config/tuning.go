package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// ErrUnsupportedFormat is returned when a tuning file has an extension other
// than .json, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Default tuning values. These mirror the behaviour of the pointer tracker
// and its velocity estimator when no tuning file is supplied.
const (
	DefaultVelocityHistorySize  = 20
	DefaultVelocityHorizon      = 300 * time.Millisecond
	DefaultVelocityStoppedAfter = 40 * time.Millisecond
	DefaultVelocityMinSamples   = 3
	DefaultVelocityFitDegree    = 2
	DefaultReportVelocityUnits  = "px/s"
)

// TuningConfig represents the root configuration for tracker tuning parameters.
// Every field is optional; the Get* accessors supply defaults for nil fields so
// partial files are safe. The same schema is accepted as JSON or YAML.
type TuningConfig struct {
	// Velocity estimator params
	VelocityHistorySize  *int    `json:"velocity_history_size,omitempty" yaml:"velocity_history_size,omitempty" validate:"omitempty,gte=1,lte=1024"`
	VelocityHorizon      *string `json:"velocity_horizon,omitempty" yaml:"velocity_horizon,omitempty"`             // duration string like "300ms"
	VelocityStoppedAfter *string `json:"velocity_stopped_after,omitempty" yaml:"velocity_stopped_after,omitempty"` // duration string like "40ms"
	VelocityMinSamples   *int    `json:"velocity_min_samples,omitempty" yaml:"velocity_min_samples,omitempty" validate:"omitempty,gte=1"`
	VelocityFitDegree    *int    `json:"velocity_fit_degree,omitempty" yaml:"velocity_fit_degree,omitempty" validate:"omitempty,gte=1,lte=4"`

	// Tracker params
	ResetClearsAverages *bool `json:"reset_clears_averages,omitempty" yaml:"reset_clears_averages,omitempty"`

	// Report params
	ReportVelocityUnits *string `json:"report_velocity_units,omitempty" yaml:"report_velocity_units,omitempty" validate:"omitempty,oneof=px/s px/ms"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the package defaults.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		VelocityHistorySize:  ptrInt(DefaultVelocityHistorySize),
		VelocityHorizon:      ptrString(DefaultVelocityHorizon.String()),
		VelocityStoppedAfter: ptrString(DefaultVelocityStoppedAfter.String()),
		VelocityMinSamples:   ptrInt(DefaultVelocityMinSamples),
		VelocityFitDegree:    ptrInt(DefaultVelocityFitDegree),
		ResetClearsAverages:  ptrBool(false),
		ReportVelocityUnits:  ptrString(DefaultReportVelocityUnits),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The file is validated to ensure it has a supported extension and is under
// the max file size. Fields omitted from the file retain their default values.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: config file must be .json, .yaml or .yml, got %q", ErrUnsupportedFormat, ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath
// when present, searching the current directory and common parent directories.
// A missing file falls back to DefaultTuningConfig; an existing but invalid
// file panics.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadTuningConfig(path)
		if err != nil {
			panic("cannot load " + path + ": " + err.Error())
		}
		return cfg
	}
	return DefaultTuningConfig()
}

var validate = validator.New()

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	// Validate VelocityHorizon can be parsed if set
	if c.VelocityHorizon != nil && *c.VelocityHorizon != "" {
		d, err := time.ParseDuration(*c.VelocityHorizon)
		if err != nil {
			return fmt.Errorf("invalid velocity_horizon '%s': %w", *c.VelocityHorizon, err)
		}
		if d <= 0 {
			return fmt.Errorf("velocity_horizon must be positive, got %s", d)
		}
	}

	// Validate VelocityStoppedAfter can be parsed if set
	if c.VelocityStoppedAfter != nil && *c.VelocityStoppedAfter != "" {
		d, err := time.ParseDuration(*c.VelocityStoppedAfter)
		if err != nil {
			return fmt.Errorf("invalid velocity_stopped_after '%s': %w", *c.VelocityStoppedAfter, err)
		}
		if d <= 0 {
			return fmt.Errorf("velocity_stopped_after must be positive, got %s", d)
		}
	}

	// A polynomial of degree d needs at least d+1 samples to be determined.
	if c.GetVelocityMinSamples() <= c.GetVelocityFitDegree() {
		return fmt.Errorf("velocity_min_samples (%d) must exceed velocity_fit_degree (%d)",
			c.GetVelocityMinSamples(), c.GetVelocityFitDegree())
	}
	if c.GetVelocityMinSamples() > c.GetVelocityHistorySize() {
		return fmt.Errorf("velocity_min_samples (%d) must not exceed velocity_history_size (%d)",
			c.GetVelocityMinSamples(), c.GetVelocityHistorySize())
	}

	return nil
}

// GetVelocityHistorySize returns the velocity_history_size value or the default.
func (c *TuningConfig) GetVelocityHistorySize() int {
	if c.VelocityHistorySize == nil {
		return DefaultVelocityHistorySize
	}
	return *c.VelocityHistorySize
}

// GetVelocityHorizon parses and returns the VelocityHorizon as a time.Duration.
func (c *TuningConfig) GetVelocityHorizon() time.Duration {
	if c.VelocityHorizon == nil || *c.VelocityHorizon == "" {
		return DefaultVelocityHorizon
	}
	d, err := time.ParseDuration(*c.VelocityHorizon)
	if err != nil {
		return DefaultVelocityHorizon // default on parse error
	}
	return d
}

// GetVelocityStoppedAfter parses and returns the VelocityStoppedAfter as a time.Duration.
func (c *TuningConfig) GetVelocityStoppedAfter() time.Duration {
	if c.VelocityStoppedAfter == nil || *c.VelocityStoppedAfter == "" {
		return DefaultVelocityStoppedAfter
	}
	d, err := time.ParseDuration(*c.VelocityStoppedAfter)
	if err != nil {
		return DefaultVelocityStoppedAfter // default on parse error
	}
	return d
}

// GetVelocityMinSamples returns the velocity_min_samples value or the default.
func (c *TuningConfig) GetVelocityMinSamples() int {
	if c.VelocityMinSamples == nil {
		return DefaultVelocityMinSamples
	}
	return *c.VelocityMinSamples
}

// GetVelocityFitDegree returns the velocity_fit_degree value or the default.
func (c *TuningConfig) GetVelocityFitDegree() int {
	if c.VelocityFitDegree == nil {
		return DefaultVelocityFitDegree
	}
	return *c.VelocityFitDegree
}

// GetResetClearsAverages returns the reset_clears_averages value or the default.
func (c *TuningConfig) GetResetClearsAverages() bool {
	if c.ResetClearsAverages == nil {
		return false // default: keep cached averages across reset
	}
	return *c.ResetClearsAverages
}

// GetReportVelocityUnits returns the report_velocity_units value or the default.
func (c *TuningConfig) GetReportVelocityUnits() string {
	if c.ReportVelocityUnits == nil || *c.ReportVelocityUnits == "" {
		return DefaultReportVelocityUnits
	}
	return *c.ReportVelocityUnits
}
