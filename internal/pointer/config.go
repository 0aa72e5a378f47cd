package pointer

import (
	"github.com/banshee-data/pointertrack/internal/config"
	"github.com/banshee-data/pointertrack/internal/velocity"
)

// TrackerConfig holds configuration parameters for the tracker.
type TrackerConfig struct {
	// Velocity configures the default estimator built by NewTracker.
	Velocity velocity.Config

	// ResetClearsAverages makes Reset also zero the cached averages. Off by
	// default: a reset tracker keeps reporting the last valid averages until
	// a pointer is added.
	ResetClearsAverages bool
}

// DefaultTrackerConfig returns the default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Velocity: velocity.DefaultConfig(),
	}
}

// TrackerConfigFromTuning builds a TrackerConfig from a loaded TuningConfig.
func TrackerConfigFromTuning(cfg *config.TuningConfig) TrackerConfig {
	return TrackerConfig{
		Velocity:            velocity.ConfigFromTuning(cfg),
		ResetClearsAverages: cfg.GetResetClearsAverages(),
	}
}
