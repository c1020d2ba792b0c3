package system

import (
	"log"

	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
)

// EventConfigReloaded carries a locomotion.Config to swap in at the next
// tick boundary.
const EventConfigReloaded = "config_reloaded"

// LocomotionSystem runs the controller for one explicitly assigned player:
// drain all backend events, purge stale ids, step once, hand the intent to
// the backend.
type LocomotionSystem struct {
	backend physics.Backend
	player  ecs.Entity
	dt      float64

	// Logf receives debug chatter. Nil disables it.
	Logf func(format string, args ...any)
}

func NewLocomotionSystem(backend physics.Backend, dt float64) *LocomotionSystem {
	return &LocomotionSystem{backend: backend, dt: dt}
}

func (s *LocomotionSystem) SetPlayer(e ecs.Entity) {
	if s == nil {
		return
	}
	s.player = e
}

func (s *LocomotionSystem) Player() ecs.Entity {
	if s == nil {
		return 0
	}
	return s.player
}

func (s *LocomotionSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.backend == nil {
		return
	}
	s.applyReloads(w)

	e := s.player
	if !ecs.IsAlive(w, e) {
		return
	}
	player, ok := ecs.Get(w, e, component.PlayerComponent.Kind())
	if !ok {
		return
	}
	loco, ok := ecs.Get(w, e, component.LocomotionComponent.Kind())
	if !ok || loco.Aggregator == nil {
		return
	}
	input, _ := ecs.Get(w, e, component.InputComponent.Kind())

	if s.Logf != nil {
		loco.Aggregator.Logf = s.Logf
	}
	loco.Aggregator.Drain(s.backend.EventsSinceLastTick(), ColliderTags{World: w})
	if n := loco.Aggregator.Purge(s.alive(w)); n > 0 {
		s.debugf("locomotion: purged %d stale colliders", n)
	}

	cfg := player.Config
	cfg.Gravity = s.backend.Gravity().Y
	intent, next := locomotion.Step(cfg, loco.Snapshot, loco.Aggregator, input.Locomotion(), loco.Grounded, s.dt)
	res := s.backend.ApplyIntent(intent, s.dt)

	if next.Mode != loco.Snapshot.Mode {
		s.debugf("locomotion: %s -> %s at tick %d", loco.Snapshot.Mode, next.Mode, loco.Ticks)
	}
	loco.Intent = intent
	loco.Snapshot = next
	loco.Grounded = res.GroundedThisTick
	loco.DisplacedX = res.Displacement.X
	loco.DisplacedY = res.Displacement.Y
	loco.Ticks++

	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		pos := s.backend.PlayerPosition()
		t.X = pos.X
		t.Y = pos.Y
	}
}

// alive keeps ids that still name a live entity known to the backend.
func (s *LocomotionSystem) alive(w *ecs.World) func(locomotion.ColliderID) bool {
	return func(id locomotion.ColliderID) bool {
		return ecs.IsAlive(w, ecs.Entity(id)) && s.backend.Has(id)
	}
}

// applyReloads swaps in reloaded tuning. Invalid configs are logged and
// dropped; the running config stays.
func (s *LocomotionSystem) applyReloads(w *ecs.World) {
	for _, evt := range w.Events().Take(EventConfigReloaded) {
		cfg, ok := evt.Data.(locomotion.Config)
		if !ok {
			log.Printf("locomotion: reload event with %T payload ignored", evt.Data)
			continue
		}
		if err := cfg.Validate(); err != nil {
			log.Printf("locomotion: rejected reloaded config: %v", err)
			continue
		}
		player, ok := ecs.Get(w, s.player, component.PlayerComponent.Kind())
		if !ok {
			continue
		}
		player.Config = cfg
		log.Printf("locomotion: applied reloaded config %+v", cfg)
	}
}

func (s *LocomotionSystem) debugf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
