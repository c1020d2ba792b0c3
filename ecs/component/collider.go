package component

import (
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
)

// Collider is a static piece of level geometry. The owning entity's value
// doubles as the collider id registered with the physics backend.
type Collider struct {
	Category locomotion.Category
	Rect     physics.Rect
}

var ColliderComponent = NewComponent[Collider]()
