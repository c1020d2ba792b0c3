package system

import (
	"log"

	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/ecs/entity"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

// RespawnSystem replaces the player with a fresh one when it falls below
// the level's kill plane, when the respawn action is pressed or when a
// RespawnRequest is attached. It runs after the locomotion system.
type RespawnSystem struct {
	backend physics.Backend
	prefab  prefabs.EntityBuildSpec
	player  ecs.Entity

	// OnRespawn is told about the new player so other systems can follow.
	OnRespawn func(ecs.Entity)
}

func NewRespawnSystem(backend physics.Backend, prefab prefabs.EntityBuildSpec) *RespawnSystem {
	return &RespawnSystem{backend: backend, prefab: prefab}
}

func (s *RespawnSystem) SetPlayer(e ecs.Entity) {
	if s == nil {
		return
	}
	s.player = e
}

func (s *RespawnSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	if ecs.IsAlive(w, s.player) {
		if reason := s.trigger(w); reason != "" {
			_ = ecs.Add(w, s.player, component.RespawnRequestComponent.Kind(), &component.RespawnRequest{Reason: reason})
		}
	}

	ecs.ForEach(w, component.RespawnRequestComponent.Kind(), func(e ecs.Entity, req *component.RespawnRequest) {
		if e != s.player {
			_ = ecs.Remove(w, e, component.RespawnRequestComponent.Kind())
			return
		}
		next, err := entity.RespawnPlayer(w, s.backend, e, s.prefab)
		if err != nil {
			log.Printf("respawn: %v", err)
			return
		}
		log.Printf("respawn: %s -> %s (%s)", e, next, req.Reason)
		s.player = next
		if s.OnRespawn != nil {
			s.OnRespawn(next)
		}
	})
}

func (s *RespawnSystem) trigger(w *ecs.World) string {
	if in, ok := ecs.Get(w, s.player, component.InputComponent.Kind()); ok && in.JustPressed(component.ActionRespawn) {
		return "requested"
	}
	bounds, ok := entity.LevelBounds(w)
	if !ok {
		return ""
	}
	t, ok := ecs.Get(w, s.player, component.TransformComponent.Kind())
	if !ok {
		return ""
	}
	height := 0.0
	if body, ok := ecs.Get(w, s.player, component.PhysicsBodyComponent.Kind()); ok {
		height = body.Height
	}
	if t.Y+height < bounds.KillY {
		return "fell out of the level"
	}
	return ""
}
