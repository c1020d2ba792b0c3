package physics

import (
	"errors"

	"github.com/milk9111/climber/locomotion"
)

var (
	ErrDuplicateCollider = errors.New("physics: collider already registered")
	ErrInvalidRect       = errors.New("physics: rect must have positive size")
)

// Vector is a 2D vector in world units, y up.
type Vector struct {
	X float64
	Y float64
}

// Rect is an axis-aligned box in world units. X, Y is the bottom-left
// corner; y grows upward.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func (r Rect) Valid() bool {
	return r.W > 0 && r.H > 0
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Result is what the backend reports after integrating one intent.
type Result struct {
	Displacement     Vector
	GroundedThisTick bool
}

// Adapter is the kinematic controller seen by the locomotion pipeline.
type Adapter interface {
	// EventsSinceLastTick returns and clears the queued overlap events.
	EventsSinceLastTick() []locomotion.CollisionEvent
	ApplyIntent(intent locomotion.Intent, dt float64) Result
	Gravity() Vector
}

// Backend is an Adapter that also owns the collider registry.
type Backend interface {
	Adapter
	locomotion.Tagger

	AddStatic(id locomotion.ColliderID, r Rect, c locomotion.Category) error
	// SpawnPlayer registers the player body and its sensor. sensor is
	// relative to the body's bottom-left corner.
	SpawnPlayer(body, sensor locomotion.ColliderID, bodyRect, sensorRect Rect) error
	Remove(id locomotion.ColliderID)
	Has(id locomotion.ColliderID) bool
	PlayerPosition() Vector
}

type eventQueue struct {
	items []locomotion.CollisionEvent
}

func (q *eventQueue) push(kind locomotion.EventKind, a, b locomotion.ColliderID) {
	q.items = append(q.items, locomotion.CollisionEvent{Kind: kind, A: a, B: b})
}

func (q *eventQueue) drain() []locomotion.CollisionEvent {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
