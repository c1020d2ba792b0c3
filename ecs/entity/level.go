package entity

import (
	"fmt"

	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

// SpawnLevel creates one entity per collider plus a bounds entity. Each
// collider entity's value is the id it is registered under.
func SpawnLevel(w *ecs.World, backend physics.Backend, spec prefabs.LevelSpec) ([]ecs.Entity, error) {
	if w == nil || backend == nil {
		return nil, fmt.Errorf("level: world and backend are required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	bounds := ecs.CreateEntity(w)
	if err := ecs.Add(w, bounds, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  float64(spec.Width),
		Height: float64(spec.Height),
		KillY:  spec.KillY,
		SpawnX: spec.Spawn.X,
		SpawnY: spec.Spawn.Y,
	}); err != nil {
		return nil, err
	}

	rects, cats := spec.Rects()
	out := make([]ecs.Entity, 0, len(rects))
	for i, r := range rects {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{Category: cats[i], Rect: r}); err != nil {
			return out, err
		}
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: r.X, Y: r.Y}); err != nil {
			return out, err
		}
		if err := backend.AddStatic(locomotion.ColliderID(e), r, cats[i]); err != nil {
			ecs.DestroyEntity(w, e)
			return out, fmt.Errorf("level %q: collider %d: %w", spec.Name, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// DestroyCollider removes a level collider from the backend and the world.
func DestroyCollider(w *ecs.World, backend physics.Backend, e ecs.Entity) bool {
	if !ecs.Has(w, e, component.ColliderComponent.Kind()) {
		return false
	}
	if backend != nil {
		backend.Remove(locomotion.ColliderID(e))
	}
	return ecs.DestroyEntity(w, e)
}

func LevelBounds(w *ecs.World) (*component.LevelBounds, bool) {
	e, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(w, e, component.LevelBoundsComponent.Kind())
}
