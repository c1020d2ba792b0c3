package component

import "github.com/milk9111/climber/physics"

// PhysicsBody describes the player's body box and the sensor box attached
// to it. Sensor is relative to the body's bottom-left corner.
type PhysicsBody struct {
	Width  float64
	Height float64
	Sensor physics.Rect
	// SensorEntity is the entity whose id names the sensor collider.
	SensorEntity uint64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
