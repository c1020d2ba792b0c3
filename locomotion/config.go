package locomotion

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("locomotion: invalid config")

// Config is the per-session tuning of the controller. Gravity is signed
// with downward negative; every other field is a magnitude.
type Config struct {
	Gravity         float64
	HorizontalSpeed float64
	JumpImpulse     float64
	ClimbSpeed      float64
	GraceWindow     float64
}

// DefaultConfig matches the stock player prefab.
func DefaultConfig() Config {
	return Config{
		Gravity:         -980,
		HorizontalSpeed: 200,
		JumpImpulse:     500,
		ClimbSpeed:      120,
		GraceWindow:     0.1,
	}
}

// Validate rejects configurations the controller cannot run with.
func (c Config) Validate() error {
	fields := []struct {
		name   string
		value  float64
		signed bool
	}{
		{"gravity", c.Gravity, true},
		{"horizontal_speed", c.HorizontalSpeed, false},
		{"jump_impulse", c.JumpImpulse, false},
		{"climb_speed", c.ClimbSpeed, false},
		{"grounded_grace_window", c.GraceWindow, false},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, f.name)
		}
		if !f.signed && f.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidConfig, f.name, f.value)
		}
	}
	if c.Gravity > 0 {
		return fmt.Errorf("%w: gravity must point down (<= 0), got %g", ErrInvalidConfig, c.Gravity)
	}
	return nil
}
