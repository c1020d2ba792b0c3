package prefabs

import (
	"fmt"

	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type RectSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

func (r RectSpec) Rect() physics.Rect {
	return physics.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// LevelSpec is a level layout in world units, y up, origin bottom-left.
type LevelSpec struct {
	Name      string     `yaml:"name"`
	Width     int        `yaml:"width"`
	Height    int        `yaml:"height"`
	Cell      int        `yaml:"cell"`
	KillY     float64    `yaml:"kill_y"`
	Gravity   PointSpec  `yaml:"gravity"`
	Spawn     PointSpec  `yaml:"spawn"`
	Ground    []RectSpec `yaml:"ground"`
	Climbable []RectSpec `yaml:"climbable"`
}

func LoadLevelSpec(filename string) (LevelSpec, error) {
	spec, err := LoadSpec[LevelSpec](filename)
	if err != nil {
		return LevelSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return LevelSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

func (s LevelSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("level %q: size %dx%d must be positive", s.Name, s.Width, s.Height)
	}
	if s.Cell < 0 {
		return fmt.Errorf("level %q: negative cell size %d", s.Name, s.Cell)
	}
	if s.Gravity.Y > 0 {
		return fmt.Errorf("level %q: gravity %v points up", s.Name, s.Gravity.Y)
	}
	check := func(kind string, rects []RectSpec) error {
		for i, r := range rects {
			if r.W <= 0 || r.H <= 0 {
				return fmt.Errorf("level %q: %s[%d]: size %vx%v must be positive", s.Name, kind, i, r.W, r.H)
			}
		}
		return nil
	}
	if err := check("ground", s.Ground); err != nil {
		return err
	}
	return check("climbable", s.Climbable)
}

// Rects returns every collider of the level with its category, ground
// first, in file order.
func (s LevelSpec) Rects() ([]physics.Rect, []locomotion.Category) {
	rects := make([]physics.Rect, 0, len(s.Ground)+len(s.Climbable))
	cats := make([]locomotion.Category, 0, cap(rects))
	for _, r := range s.Ground {
		rects = append(rects, r.Rect())
		cats = append(cats, locomotion.CategoryGround)
	}
	for _, r := range s.Climbable {
		rects = append(rects, r.Rect())
		cats = append(cats, locomotion.CategoryClimbable)
	}
	return rects, cats
}
