package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

const PlayerPrefab = "player.yaml"

var ErrNotPlayer = errors.New("entity: not a player")

// NewPlayerAt builds the player prefab with its feet at x, y and registers
// its body and sensor with the backend.
func NewPlayerAt(w *ecs.World, backend physics.Backend, prefabPath string, x, y float64) (ecs.Entity, error) {
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}
	return NewPlayerFromSpec(w, backend, spec, x, y)
}

// NewPlayerFromSpec is NewPlayerAt for an already loaded prefab. The
// sensor gets its own entity so its collider id is distinct from the
// body's and dies with the player.
func NewPlayerFromSpec(w *ecs.World, backend physics.Backend, spec prefabs.EntityBuildSpec, x, y float64) (ecs.Entity, error) {
	if backend == nil {
		return 0, fmt.Errorf("player: backend is nil")
	}
	e, err := BuildEntityFromSpec(w, spec, BuildContext{PrefabPath: spec.Name, Gravity: backend.Gravity().Y})
	if err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || !ecs.Has(w, e, component.LocomotionComponent.Kind()) || !ecs.Has(w, e, component.PlayerComponent.Kind()) {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("player: prefab %q needs player, physics_body and locomotion", spec.Name)
	}
	if err := SetEntityTransform(w, e, x, y); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("player: override transform: %w", err)
	}

	sensor := ecs.CreateEntity(w)
	if err := ecs.Add(w, sensor, component.SensorTagComponent.Kind(), &component.SensorTag{Owner: uint64(e)}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("player: sensor: %w", err)
	}
	body.SensorEntity = uint64(sensor)

	bodyRect := physics.Rect{X: x, Y: y, W: body.Width, H: body.Height}
	if err := backend.SpawnPlayer(locomotion.ColliderID(e), locomotion.ColliderID(sensor), bodyRect, body.Sensor); err != nil {
		ecs.DestroyEntity(w, sensor)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("player: spawn body: %w", err)
	}

	loco, _ := ecs.Get(w, e, component.LocomotionComponent.Kind())
	loco.Snapshot = locomotion.NewSnapshot()
	loco.Aggregator = locomotion.NewAggregator(locomotion.ColliderID(sensor))
	return e, nil
}

// DestroyPlayer removes the player's colliders and entities. Its snapshot
// and overlap sets go with it.
func DestroyPlayer(w *ecs.World, backend physics.Backend, e ecs.Entity) error {
	if !ecs.Has(w, e, component.PlayerTagComponent.Kind()) {
		return fmt.Errorf("%w: %s", ErrNotPlayer, e)
	}
	if backend != nil {
		backend.Remove(locomotion.ColliderID(e))
	}
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && body.SensorEntity != 0 {
		ecs.DestroyEntity(w, ecs.Entity(body.SensorEntity))
	}
	ecs.DestroyEntity(w, e)
	return nil
}

// RespawnPlayer replaces old with a fresh player at the level spawn point.
// Nothing carries over from the old entity.
func RespawnPlayer(w *ecs.World, backend physics.Backend, old ecs.Entity, spec prefabs.EntityBuildSpec) (ecs.Entity, error) {
	if ecs.IsAlive(w, old) {
		if err := DestroyPlayer(w, backend, old); err != nil {
			return 0, err
		}
	}
	x, y := 0.0, 0.0
	if bounds, ok := LevelBounds(w); ok {
		x, y = bounds.SpawnX, bounds.SpawnY
	}
	return NewPlayerFromSpec(w, backend, spec, x, y)
}
