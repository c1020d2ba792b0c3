package entity

import (
	"fmt"
	"sort"

	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/prefabs"
)

// BuildContext carries what component builders need beyond the raw spec.
type BuildContext struct {
	PrefabPath string
	// Gravity is the vertical gravity of the session's physics backend.
	Gravity float64
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":   addPlayerTag,
	"transform":    addTransform,
	"input":        addInput,
	"player":       addPlayer,
	"physics_body": addPhysicsBody,
	"animation":    addAnimation,
	"locomotion":   addLocomotion,
}

var componentBuildOrder = []string{
	"player_tag",
	"transform",
	"input",
	"player",
	"physics_body",
	"animation",
	"locomotion",
}

// BuildEntity loads a prefab and builds an entity from it.
func BuildEntity(w *ecs.World, prefabPath string, ctx BuildContext) (ecs.Entity, error) {
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	ctx.PrefabPath = prefabPath
	return BuildEntityFromSpec(w, spec, ctx)
}

// BuildEntityFromSpec adds the spec's components in a fixed order. Unknown
// components fail the build and leave no entity behind.
func BuildEntityFromSpec(w *ecs.World, spec prefabs.EntityBuildSpec, ctx BuildContext) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	name := ctx.PrefabPath
	if name == "" {
		name = spec.Name
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", name)
	}

	names := make([]string, 0, len(spec.Components))
	for _, n := range componentBuildOrder {
		if _, ok := spec.Components[n]; ok {
			names = append(names, n)
		}
	}
	var extra []string
	for n := range spec.Components {
		if _, ok := componentRegistry[n]; !ok {
			extra = append(extra, n)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return 0, fmt.Errorf("build entity: %q: no builder for components %v", name, extra)
	}

	e := ecs.CreateEntity(w)
	for _, n := range names {
		if err := componentRegistry[n](w, e, spec.Components[n], &ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", name, n, err)
		}
	}
	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *BuildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: spec.X, Y: spec.Y})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *BuildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

func addPlayer(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PlayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode player spec: %w", err)
	}
	cfg, err := spec.Config(ctx.Gravity)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{Config: cfg})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics_body spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:  spec.Width,
		Height: spec.Height,
		Sensor: spec.SensorRect(),
	})
}

func addAnimation(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AnimationComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode animation spec: %w", err)
	}
	clips := component.AnimationClips{
		Idle:      orDefault(spec.Idle, "idle"),
		Run:       orDefault(spec.Run, "run"),
		Jump:      orDefault(spec.Jump, "jump"),
		Fall:      orDefault(spec.Fall, "fall"),
		Climb:     orDefault(spec.Climb, "climb"),
		ClimbIdle: orDefault(spec.ClimbIdle, "climb_idle"),
	}
	return ecs.Add(w, e, component.AnimationComponent.Kind(), &component.Animation{
		Clips:   clips,
		Current: clips.Idle,
	})
}

// addLocomotion starts a fresh snapshot. The aggregator is bound to the
// sensor when the body is spawned.
func addLocomotion(w *ecs.World, e ecs.Entity, _ any, _ *BuildContext) error {
	return ecs.Add(w, e, component.LocomotionComponent.Kind(), &component.Locomotion{
		Snapshot: locomotion.NewSnapshot(),
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
