package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/driftlab/internal/core/audio"
	"github.com/zeusync/driftlab/internal/core/deform"
	"github.com/zeusync/driftlab/internal/core/drift"
	"github.com/zeusync/driftlab/internal/core/observability/log"
)

var (
	ErrInvalidLog = errors.New("invalid log config")
	ErrInvalidHUD = errors.New("invalid hud config")
	ErrInvalidCar = errors.New("invalid car config")
)

// HUD modes.
const (
	HUDTerminal = "terminal"
	HUDLog      = "log"
)

// Config is the whole driftlab configuration document.
type Config struct {
	Log    log.Config    `yaml:"log"`
	Drift  drift.Config  `yaml:"drift"`
	Deform deform.Config `yaml:"deform"`
	Audio  audio.Config  `yaml:"audio"`
	HUD    HUD           `yaml:"hud"`
	Car    Car           `yaml:"car"`
}

// HUD controls where drift labels are shown.
type HUD struct {
	Mode    string        `yaml:"mode"`
	Mirror  string        `yaml:"mirror"`
	Refresh time.Duration `yaml:"refresh"`
}

// Car describes the deformable body used by the host.
type Car struct {
	Name         string  `yaml:"name"`
	Size         float64 `yaml:"size"`
	Subdivisions int     `yaml:"subdivisions"`
}

func Default() Config {
	return Config{
		Log:    log.DefaultConfig(),
		Drift:  drift.DefaultConfig(),
		Deform: deform.DefaultConfig(),
		Audio:  audio.DefaultConfig(),
		HUD: HUD{
			Mode:    HUDTerminal,
			Refresh: 50 * time.Millisecond,
		},
		Car: Car{Name: "car", Size: 1, Subdivisions: 8},
	}
}

// Load decodes a yaml document over the defaults, so every section and field
// is optional.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Load(f)
}

func (c Config) Validate() error {
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidLog, c.Log.Level)
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("%w: unknown encoding %q", ErrInvalidLog, c.Log.Encoding)
	}
	if err := c.Drift.Validate(); err != nil {
		return fmt.Errorf("drift: %w", err)
	}
	if err := c.Deform.Validate(); err != nil {
		return fmt.Errorf("deform: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if c.HUD.Mode != HUDTerminal && c.HUD.Mode != HUDLog {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidHUD, c.HUD.Mode)
	}
	if c.HUD.Refresh <= 0 {
		return fmt.Errorf("%w: refresh must be positive", ErrInvalidHUD)
	}
	if c.Car.Size <= 0 || c.Car.Subdivisions < 1 {
		return fmt.Errorf("%w: size and subdivisions must be positive", ErrInvalidCar)
	}
	return nil
}
