package prefabs

import (
	"fmt"

	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"gopkg.in/yaml.v3"
)

// EntityBuildSpec is a prefab made of named component specs.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec re-decodes one loosely typed component entry into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// PlayerComponentSpec is the controller tuning. Gravity is owned by the
// level; see LevelSpec.
type PlayerComponentSpec struct {
	HorizontalSpeed float64 `yaml:"horizontal_speed"`
	JumpImpulse     float64 `yaml:"jump_impulse"`
	ClimbSpeed      float64 `yaml:"climb_speed"`
	GraceWindow     float64 `yaml:"grace_window"`
}

// Config converts the spec into a validated controller config using the
// given gravity.
func (s PlayerComponentSpec) Config(gravity float64) (locomotion.Config, error) {
	cfg := locomotion.Config{
		Gravity:         gravity,
		HorizontalSpeed: s.HorizontalSpeed,
		JumpImpulse:     s.JumpImpulse,
		ClimbSpeed:      s.ClimbSpeed,
		GraceWindow:     s.GraceWindow,
	}
	if err := cfg.Validate(); err != nil {
		return locomotion.Config{}, err
	}
	return cfg, nil
}

type TransformComponentSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type SensorSpec struct {
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
}

type PhysicsBodyComponentSpec struct {
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Sensor SensorSpec `yaml:"sensor"`
}

// SensorRect returns the sensor box relative to the body's bottom-left.
func (s PhysicsBodyComponentSpec) SensorRect() physics.Rect {
	return physics.Rect{X: s.Sensor.OffsetX, Y: s.Sensor.OffsetY, W: s.Sensor.Width, H: s.Sensor.Height}
}

func (s PhysicsBodyComponentSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("prefabs: physics_body: body %vx%v must be positive", s.Width, s.Height)
	}
	if s.Sensor.Width <= 0 || s.Sensor.Height <= 0 {
		return fmt.Errorf("prefabs: physics_body: sensor %vx%v must be positive", s.Sensor.Width, s.Sensor.Height)
	}
	return nil
}

type AnimationComponentSpec struct {
	Idle      string `yaml:"idle"`
	Run       string `yaml:"run"`
	Jump      string `yaml:"jump"`
	Fall      string `yaml:"fall"`
	Climb     string `yaml:"climb"`
	ClimbIdle string `yaml:"climb_idle"`
}

// LoadPlayerTuning reads only the player component of a player prefab. The
// hot-reload path uses it to swap tuning without rebuilding the entity.
func LoadPlayerTuning(filename string, gravity float64) (locomotion.Config, error) {
	spec, err := LoadEntityBuildSpec(filename)
	if err != nil {
		return locomotion.Config{}, err
	}
	raw, ok := spec.Components["player"]
	if !ok {
		return locomotion.Config{}, fmt.Errorf("prefabs: %s: no player component", filename)
	}
	player, err := DecodeComponentSpec[PlayerComponentSpec](raw)
	if err != nil {
		return locomotion.Config{}, fmt.Errorf("prefabs: %s: decode player: %w", filename, err)
	}
	cfg, err := player.Config(gravity)
	if err != nil {
		return locomotion.Config{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return cfg, nil
}
