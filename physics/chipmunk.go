package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/climber/locomotion"
)

const (
	collisionTypeBody cp.CollisionType = iota + 1
	collisionTypeSensor
	collisionTypeGround
	collisionTypeClimbable
)

// groundNormalY is the minimum upward share of a contact normal for the
// contact to count as support.
const groundNormalY = 0.5

type chipmunkCollider struct {
	shape    *cp.Shape
	category locomotion.Category
}

type chipmunkPlayer struct {
	bodyID   locomotion.ColliderID
	sensorID locomotion.ColliderID
	body     *cp.Body
	shape    *cp.Shape
	sensor   *cp.Shape
	width    float64
	height   float64
}

// ChipmunkAdapter runs the player as a dynamic Chipmunk body with infinite
// moment whose velocity is replaced by the intent every tick. Engine
// gravity is off; the controller integrates gravity itself.
type ChipmunkAdapter struct {
	space         *cp.Space
	gravity       Vector
	handlersReady bool

	shapes    map[*cp.Shape]locomotion.ColliderID
	colliders map[locomotion.ColliderID]*chipmunkCollider
	player    *chipmunkPlayer
	events    eventQueue
}

func NewChipmunkAdapter(gravity Vector) *ChipmunkAdapter {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})

	ca := &ChipmunkAdapter{
		space:     space,
		gravity:   gravity,
		shapes:    make(map[*cp.Shape]locomotion.ColliderID),
		colliders: make(map[locomotion.ColliderID]*chipmunkCollider),
	}
	ca.setupHandlers()
	return ca
}

// Space returns the underlying Chipmunk space.
func (ca *ChipmunkAdapter) Space() *cp.Space {
	if ca == nil {
		return nil
	}
	return ca.space
}

func (ca *ChipmunkAdapter) Gravity() Vector {
	return ca.gravity
}

func (ca *ChipmunkAdapter) EventsSinceLastTick() []locomotion.CollisionEvent {
	return ca.events.drain()
}

func (ca *ChipmunkAdapter) AddStatic(id locomotion.ColliderID, r Rect, c locomotion.Category) error {
	if !r.Valid() {
		return fmt.Errorf("%w: collider %d", ErrInvalidRect, id)
	}
	if ca.Has(id) {
		return fmt.Errorf("%w: %d", ErrDuplicateCollider, id)
	}

	bb := cp.BB{L: r.X, B: r.Y, R: r.X + r.W, T: r.Y + r.H}
	shape := cp.NewBox2(ca.space.StaticBody, bb, 0)
	shape.SetFriction(0)
	switch c {
	case locomotion.CategoryClimbable:
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeClimbable)
	default:
		shape.SetCollisionType(collisionTypeGround)
	}
	ca.space.AddShape(shape)

	ca.shapes[shape] = id
	ca.colliders[id] = &chipmunkCollider{shape: shape, category: c}
	return nil
}

func (ca *ChipmunkAdapter) SpawnPlayer(bodyID, sensorID locomotion.ColliderID, bodyRect, sensorRect Rect) error {
	if !bodyRect.Valid() || !sensorRect.Valid() {
		return fmt.Errorf("%w: player %d", ErrInvalidRect, bodyID)
	}
	if ca.Has(bodyID) || ca.Has(sensorID) || bodyID == sensorID {
		return fmt.Errorf("%w: player %d/%d", ErrDuplicateCollider, bodyID, sensorID)
	}
	if ca.player != nil {
		ca.Remove(ca.player.bodyID)
	}

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: bodyRect.X + bodyRect.W/2, Y: bodyRect.Y + bodyRect.H/2})
	body.SetAngle(0)

	shape := cp.NewBox(body, bodyRect.W, bodyRect.H, 0)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeBody)

	// sensor offsets are relative to the bottom-left corner of the body
	left := sensorRect.X - bodyRect.W/2
	bottom := sensorRect.Y - bodyRect.H/2
	sensor := cp.NewBox2(body, cp.BB{L: left, B: bottom, R: left + sensorRect.W, T: bottom + sensorRect.H}, 0)
	sensor.SetSensor(true)
	sensor.SetCollisionType(collisionTypeSensor)

	ca.space.AddBody(body)
	ca.space.AddShape(shape)
	ca.space.AddShape(sensor)

	ca.shapes[shape] = bodyID
	ca.shapes[sensor] = sensorID
	ca.player = &chipmunkPlayer{
		bodyID:   bodyID,
		sensorID: sensorID,
		body:     body,
		shape:    shape,
		sensor:   sensor,
		width:    bodyRect.W,
		height:   bodyRect.H,
	}
	return nil
}

// Remove unregisters a collider. Removing the player body or its sensor
// removes the whole player. Chipmunk reports separation for any live
// overlap before the shape goes away.
func (ca *ChipmunkAdapter) Remove(id locomotion.ColliderID) {
	if ca == nil {
		return
	}
	if p := ca.player; p != nil && (id == p.bodyID || id == p.sensorID) {
		ca.space.RemoveShape(p.sensor)
		ca.space.RemoveShape(p.shape)
		ca.space.RemoveBody(p.body)
		delete(ca.shapes, p.sensor)
		delete(ca.shapes, p.shape)
		ca.player = nil
		return
	}
	col, ok := ca.colliders[id]
	if !ok {
		return
	}
	ca.space.RemoveShape(col.shape)
	delete(ca.shapes, col.shape)
	delete(ca.colliders, id)
}

func (ca *ChipmunkAdapter) Has(id locomotion.ColliderID) bool {
	if ca == nil {
		return false
	}
	if p := ca.player; p != nil && (id == p.bodyID || id == p.sensorID) {
		return true
	}
	_, ok := ca.colliders[id]
	return ok
}

func (ca *ChipmunkAdapter) CategoryOf(id locomotion.ColliderID) (locomotion.Category, bool) {
	if ca == nil {
		return locomotion.CategoryNone, false
	}
	col, ok := ca.colliders[id]
	if !ok {
		return locomotion.CategoryNone, false
	}
	return col.category, true
}

// PlayerPosition returns the bottom-left corner of the player body.
func (ca *ChipmunkAdapter) PlayerPosition() Vector {
	if ca == nil || ca.player == nil {
		return Vector{}
	}
	pos := ca.player.body.Position()
	return Vector{X: pos.X - ca.player.width/2, Y: pos.Y - ca.player.height/2}
}

func (ca *ChipmunkAdapter) ApplyIntent(intent locomotion.Intent, dt float64) Result {
	if ca == nil || ca.player == nil || dt <= 0 {
		return Result{}
	}
	p := ca.player
	before := p.body.Position()

	p.body.SetVelocity(intent.X, intent.Y)
	p.body.SetAngle(0)
	p.body.SetAngularVelocity(0)
	ca.space.Step(dt)

	after := p.body.Position()
	return Result{
		Displacement:     Vector{X: after.X - before.X, Y: after.Y - before.Y},
		GroundedThisTick: ca.supported(),
	}
}

// supported reports whether the body rests on ground this step.
func (ca *ChipmunkAdapter) supported() bool {
	p := ca.player
	grounded := false
	p.body.EachArbiter(func(arb *cp.Arbiter) {
		a, b := arb.Shapes()
		n := arb.Normal()
		var other *cp.Shape
		switch {
		case a == p.shape:
			other = b
		case b == p.shape:
			other = a
			n = n.Neg()
		default:
			return
		}
		id, ok := ca.shapes[other]
		if !ok {
			return
		}
		if c, ok := ca.CategoryOf(id); !ok || c != locomotion.CategoryGround {
			return
		}
		// normal points from the player toward the other shape
		if n.Y < -groundNormalY {
			grounded = true
		}
	})
	return grounded
}

func (ca *ChipmunkAdapter) setupHandlers() {
	if ca.handlersReady || ca.space == nil {
		return
	}

	for _, other := range []cp.CollisionType{collisionTypeGround, collisionTypeClimbable} {
		handler := ca.space.NewCollisionHandler(collisionTypeSensor, other)
		handler.UserData = ca
		handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			if adapter, ok := userData.(*ChipmunkAdapter); ok && adapter != nil {
				adapter.record(locomotion.EventBegin, arb)
			}
			return true
		}
		handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
			if adapter, ok := userData.(*ChipmunkAdapter); ok && adapter != nil {
				adapter.record(locomotion.EventEnd, arb)
			}
		}
	}

	ca.handlersReady = true
}

func (ca *ChipmunkAdapter) record(kind locomotion.EventKind, arb *cp.Arbiter) {
	a, b := arb.Shapes()
	idA, okA := ca.shapes[a]
	idB, okB := ca.shapes[b]
	if !okA || !okB {
		return
	}
	ca.events.push(kind, idA, idB)
}
