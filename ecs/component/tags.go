package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// SensorTag marks the entity that owns the player's ground/climb sensor
// collider. Owner is the player entity.
type SensorTag struct {
	Owner uint64
}

var SensorTagComponent = NewComponent[SensorTag]()
