package system

import (
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
)

// ColliderTags resolves collider ids to categories through the Collider
// components of live entities.
type ColliderTags struct {
	World *ecs.World
}

func (t ColliderTags) CategoryOf(id locomotion.ColliderID) (locomotion.Category, bool) {
	c, ok := ecs.Get(t.World, ecs.Entity(id), component.ColliderComponent.Kind())
	if !ok || c.Category == locomotion.CategoryNone {
		return locomotion.CategoryNone, false
	}
	return c.Category, true
}
