package component

// Transform is the bottom-left corner of an entity in world units, y up.
type Transform struct {
	X float64
	Y float64
}

var TransformComponent = NewComponent[Transform]()
