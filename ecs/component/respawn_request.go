package component

// RespawnRequest marks a player that should be destroyed and spawned fresh
// at the level spawn point after the current tick.
type RespawnRequest struct {
	Reason string
}

var RespawnRequestComponent = NewComponent[RespawnRequest]()
