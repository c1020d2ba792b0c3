package component

import "github.com/milk9111/climber/locomotion"

// Player carries the tuning the controller runs with. Config is replaced
// wholesale on hot reload.
type Player struct {
	Config locomotion.Config
}

var PlayerComponent = NewComponent[Player]()

// Locomotion is the per-player controller state. It is created at spawn and
// dies with the entity.
type Locomotion struct {
	Snapshot   locomotion.Snapshot
	Intent     locomotion.Intent
	Aggregator *locomotion.Aggregator
	// Grounded is the backend's grounded flag from the previous integration.
	Grounded   bool
	DisplacedX float64
	DisplacedY float64
	Ticks      int
}

var LocomotionComponent = NewComponent[Locomotion]()
