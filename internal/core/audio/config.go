package audio

import "fmt"

// Config drives the impact audio output.
type Config struct {
	Enabled bool `yaml:"enabled"`
	// SampleRate of the output device in Hz.
	SampleRate int `yaml:"sample_rate"`
	// BufferMillis is the speaker buffer length.
	BufferMillis int `yaml:"buffer_millis"`
	// Rolloff controls distance attenuation: gain / (1 + rolloff*distance).
	Rolloff float64 `yaml:"rolloff"`
	// Clips are wav paths or "synth:<name>" procedural impacts.
	Clips []string `yaml:"clips"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		SampleRate:   44100,
		BufferMillis: 100,
		Rolloff:      0.1,
		Clips:        []string{"synth:crunch", "synth:thud"},
	}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.BufferMillis <= 0 {
		return fmt.Errorf("%w: buffer_millis must be positive, got %d", ErrInvalidConfig, c.BufferMillis)
	}
	if c.Rolloff < 0 {
		return fmt.Errorf("%w: rolloff must not be negative, got %v", ErrInvalidConfig, c.Rolloff)
	}
	return nil
}
