package drift

import (
	"fmt"

	"github.com/zeusync/driftlab/internal/core/hud"
)

// Config holds the drift tuning exposed to designers.
type Config struct {
	// MinimumSpeed is exclusive: the body must move faster than this.
	MinimumSpeed float64 `yaml:"minimum_speed"`
	// MinimumAngle is inclusive, in degrees.
	MinimumAngle float64 `yaml:"minimum_angle"`
	// DriftingDelay is the entry grace period in seconds. The stop sequence
	// waits four times as long before committing.
	DriftingDelay float64 `yaml:"drifting_delay"`

	NormalDriftColor string `yaml:"normal_drift_color"`
	NearStopColor    string `yaml:"near_stop_color"`
	DriftEndedColor  string `yaml:"drift_ended_color"`
}

func DefaultConfig() Config {
	return Config{
		MinimumSpeed:     5,
		MinimumAngle:     10,
		DriftingDelay:    0.2,
		NormalDriftColor: "#ffffff",
		NearStopColor:    "#ffb000",
		DriftEndedColor:  "#ff3030",
	}
}

func (c Config) Validate() error {
	if c.MinimumSpeed < 0 {
		return fmt.Errorf("%w: minimum_speed must not be negative, got %v", ErrInvalidConfig, c.MinimumSpeed)
	}
	if c.MinimumAngle < 0 || c.MinimumAngle > maxValidAngle {
		return fmt.Errorf("%w: minimum_angle must be within [0, %v], got %v", ErrInvalidConfig, maxValidAngle, c.MinimumAngle)
	}
	if c.DriftingDelay < 0 {
		return fmt.Errorf("%w: drifting_delay must not be negative, got %v", ErrInvalidConfig, c.DriftingDelay)
	}
	if _, err := c.palette(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

type palette struct {
	normal, nearStop, ended hud.Color
}

func (c Config) palette() (palette, error) {
	var p palette
	var err error
	if p.normal, err = hud.ParseColor(c.NormalDriftColor); err != nil {
		return p, fmt.Errorf("normal_drift_color: %w", err)
	}
	if p.nearStop, err = hud.ParseColor(c.NearStopColor); err != nil {
		return p, fmt.Errorf("near_stop_color: %w", err)
	}
	if p.ended, err = hud.ParseColor(c.DriftEndedColor); err != nil {
		return p, fmt.Errorf("drift_ended_color: %w", err)
	}
	return p, nil
}
