package component

// LevelBounds stores the world-space extent of the level. An entity whose
// top drops below KillY is sent back to the spawn point.
type LevelBounds struct {
	Width  float64
	Height float64
	KillY  float64
	SpawnX float64
	SpawnY float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
