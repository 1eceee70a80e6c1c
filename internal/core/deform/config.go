package deform

import "fmt"

// Config tunes the dent model. Distances are in the mesh's local units.
type Config struct {
	DeformRadius     float64 `yaml:"deform_radius"`
	MaxDeform        float64 `yaml:"max_deform"`
	DamageFalloff    float64 `yaml:"damage_falloff"`
	DamageMultiplier float64 `yaml:"damage_multiplier"`
	// MinDamage is the impulse magnitude a collision must exceed.
	MinDamage float64 `yaml:"min_damage"`
	// ImpactVolume is the base volume of impact clips.
	ImpactVolume float64 `yaml:"impact_volume"`
}

func DefaultConfig() Config {
	return Config{
		DeformRadius:     0.2,
		MaxDeform:        0.1,
		DamageFalloff:    1,
		DamageMultiplier: 1,
		MinDamage:        1,
		ImpactVolume:     0.5,
	}
}

func (c Config) Validate() error {
	switch {
	case c.DeformRadius < 0:
		return fmt.Errorf("%w: deform_radius must not be negative, got %v", ErrInvalidConfig, c.DeformRadius)
	case c.MaxDeform < 0:
		return fmt.Errorf("%w: max_deform must not be negative, got %v", ErrInvalidConfig, c.MaxDeform)
	case c.DamageFalloff < 0:
		return fmt.Errorf("%w: damage_falloff must not be negative, got %v", ErrInvalidConfig, c.DamageFalloff)
	case c.DamageMultiplier < 0:
		return fmt.Errorf("%w: damage_multiplier must not be negative, got %v", ErrInvalidConfig, c.DamageMultiplier)
	case c.MinDamage < 0:
		return fmt.Errorf("%w: min_damage must not be negative, got %v", ErrInvalidConfig, c.MinDamage)
	case c.ImpactVolume < 0 || c.ImpactVolume > 1:
		return fmt.Errorf("%w: impact_volume must be within [0, 1], got %v", ErrInvalidConfig, c.ImpactVolume)
	}
	return nil
}
