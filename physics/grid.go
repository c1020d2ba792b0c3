package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/climber/locomotion"
	"github.com/solarlune/resolv"
)

var ErrOutOfBounds = errors.New("physics: rect outside grid bounds")

const (
	tagGround    = "ground"
	tagClimbable = "climbable"
	tagPlayer    = "player"
	tagSensor    = "sensor"
)

const (
	// groundProbe is how far below the feet a ground top still counts as
	// support.
	groundProbe = 0.5
	gridEpsilon = 1e-9
)

type gridCollider struct {
	obj      *resolv.Object
	category locomotion.Category
}

type gridPlayer struct {
	bodyID   locomotion.ColliderID
	sensorID locomotion.ColliderID
	body     *resolv.Object
	sensor   *resolv.Object
	offsetX  float64
	offsetY  float64
	overlaps map[locomotion.ColliderID]struct{}
}

// GridAdapter is a kinematic backend on a resolv cell grid. resolv only
// supplies candidates; contact resolution is exact box math so results do
// not depend on cell size. Coordinates are stored y-up inside the grid.
type GridAdapter struct {
	space   *resolv.Space
	width   float64
	height  float64
	cell    float64
	gravity Vector

	objects   map[*resolv.Object]locomotion.ColliderID
	colliders map[locomotion.ColliderID]*gridCollider
	player    *gridPlayer
	events    eventQueue
}

func NewGridAdapter(width, height, cell int, gravity Vector) *GridAdapter {
	if cell <= 0 {
		cell = 16
	}
	return &GridAdapter{
		space:     resolv.NewSpace(width, height, cell, cell),
		width:     float64(width),
		height:    float64(height),
		cell:      float64(cell),
		gravity:   gravity,
		objects:   make(map[*resolv.Object]locomotion.ColliderID),
		colliders: make(map[locomotion.ColliderID]*gridCollider),
	}
}

func (ga *GridAdapter) Gravity() Vector {
	return ga.gravity
}

func (ga *GridAdapter) EventsSinceLastTick() []locomotion.CollisionEvent {
	return ga.events.drain()
}

func (ga *GridAdapter) inBounds(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= ga.width && r.Y+r.H <= ga.height
}

func (ga *GridAdapter) AddStatic(id locomotion.ColliderID, r Rect, c locomotion.Category) error {
	if !r.Valid() {
		return fmt.Errorf("%w: collider %d", ErrInvalidRect, id)
	}
	if !ga.inBounds(r) {
		return fmt.Errorf("%w: collider %d", ErrOutOfBounds, id)
	}
	if ga.Has(id) {
		return fmt.Errorf("%w: %d", ErrDuplicateCollider, id)
	}

	tag := tagGround
	if c == locomotion.CategoryClimbable {
		tag = tagClimbable
	}
	obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tag)
	obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
	ga.space.Add(obj)

	ga.objects[obj] = id
	ga.colliders[id] = &gridCollider{obj: obj, category: c}
	return nil
}

func (ga *GridAdapter) SpawnPlayer(bodyID, sensorID locomotion.ColliderID, bodyRect, sensorRect Rect) error {
	if !bodyRect.Valid() || !sensorRect.Valid() {
		return fmt.Errorf("%w: player %d", ErrInvalidRect, bodyID)
	}
	if ga.Has(bodyID) || ga.Has(sensorID) || bodyID == sensorID {
		return fmt.Errorf("%w: player %d/%d", ErrDuplicateCollider, bodyID, sensorID)
	}
	if ga.player != nil {
		ga.Remove(ga.player.bodyID)
	}

	body := resolv.NewObject(bodyRect.X, bodyRect.Y, bodyRect.W, bodyRect.H, tagPlayer)
	body.SetShape(resolv.NewRectangle(0, 0, bodyRect.W, bodyRect.H))
	sensor := resolv.NewObject(bodyRect.X+sensorRect.X, bodyRect.Y+sensorRect.Y, sensorRect.W, sensorRect.H, tagSensor)
	sensor.SetShape(resolv.NewRectangle(0, 0, sensorRect.W, sensorRect.H))
	ga.space.Add(body, sensor)

	ga.objects[body] = bodyID
	ga.objects[sensor] = sensorID
	ga.player = &gridPlayer{
		bodyID:   bodyID,
		sensorID: sensorID,
		body:     body,
		sensor:   sensor,
		offsetX:  sensorRect.X,
		offsetY:  sensorRect.Y,
		overlaps: make(map[locomotion.ColliderID]struct{}),
	}
	ga.refreshOverlaps()
	return nil
}

// Remove unregisters a collider. A static collider the sensor currently
// overlaps produces an End event. Removing the player body or its sensor
// removes the whole player.
func (ga *GridAdapter) Remove(id locomotion.ColliderID) {
	if ga == nil {
		return
	}
	if p := ga.player; p != nil && (id == p.bodyID || id == p.sensorID) {
		for other := range p.overlaps {
			ga.events.push(locomotion.EventEnd, p.sensorID, other)
		}
		ga.space.Remove(p.body, p.sensor)
		delete(ga.objects, p.body)
		delete(ga.objects, p.sensor)
		ga.player = nil
		return
	}
	col, ok := ga.colliders[id]
	if !ok {
		return
	}
	if p := ga.player; p != nil {
		if _, touching := p.overlaps[id]; touching {
			delete(p.overlaps, id)
			ga.events.push(locomotion.EventEnd, p.sensorID, id)
		}
	}
	ga.space.Remove(col.obj)
	delete(ga.objects, col.obj)
	delete(ga.colliders, id)
}

func (ga *GridAdapter) Has(id locomotion.ColliderID) bool {
	if ga == nil {
		return false
	}
	if p := ga.player; p != nil && (id == p.bodyID || id == p.sensorID) {
		return true
	}
	_, ok := ga.colliders[id]
	return ok
}

func (ga *GridAdapter) CategoryOf(id locomotion.ColliderID) (locomotion.Category, bool) {
	if ga == nil {
		return locomotion.CategoryNone, false
	}
	col, ok := ga.colliders[id]
	if !ok {
		return locomotion.CategoryNone, false
	}
	return col.category, true
}

func (ga *GridAdapter) PlayerPosition() Vector {
	if ga == nil || ga.player == nil {
		return Vector{}
	}
	return Vector{X: ga.player.body.X, Y: ga.player.body.Y}
}

func (ga *GridAdapter) ApplyIntent(intent locomotion.Intent, dt float64) Result {
	if ga == nil || ga.player == nil || dt <= 0 {
		return Result{}
	}
	body := ga.player.body
	startX, startY := body.X, body.Y

	dx := intent.X * dt
	dy := intent.Y * dt

	// a sub-step no longer than the body keeps the swept area inside the
	// union of the start and end boxes
	stepX := math.Min(ga.cell, body.W)
	stepY := math.Min(ga.cell, body.H)
	steps := int(math.Ceil(math.Max(math.Abs(dx)/stepX, math.Abs(dy)/stepY)))
	if steps < 1 {
		steps = 1
	}
	sx := dx / float64(steps)
	sy := dy / float64(steps)

	blockedX, blockedY := false, false
	for i := 0; i < steps; i++ {
		if !blockedX && sx != 0 {
			moved := ga.clampX(sx)
			if moved != sx {
				blockedX = true
			}
			body.X += moved
			body.Update()
		}
		if !blockedY && sy != 0 {
			moved := ga.clampY(sy)
			if moved != sy {
				blockedY = true
			}
			body.Y += moved
			body.Update()
		}
	}

	ga.syncSensor()
	ga.refreshOverlaps()

	return Result{
		Displacement:     Vector{X: body.X - startX, Y: body.Y - startY},
		GroundedThisTick: ga.supported(),
	}
}

func objectRect(obj *resolv.Object) Rect {
	return Rect{X: obj.X, Y: obj.Y, W: obj.W, H: obj.H}
}

// candidates returns objects with the given tag whose cells touch obj's box
// at its current position or shifted by dx, dy, widened by one unit.
func (ga *GridAdapter) candidates(obj *resolv.Object, dx, dy float64, tag string) []*resolv.Object {
	seen := make(map[*resolv.Object]struct{})
	var out []*resolv.Object
	probes := [][2]float64{{-1, -1}, {1, 1}, {dx - 1, dy - 1}, {dx + 1, dy + 1}}
	for _, probe := range probes {
		check := obj.Check(probe[0], probe[1], tag)
		if check == nil {
			continue
		}
		for _, o := range check.ObjectsByTags(tag) {
			if _, dup := seen[o]; dup {
				continue
			}
			seen[o] = struct{}{}
			out = append(out, o)
		}
	}
	return out
}

// spans reports whether two intervals share more than a rounding sliver.
func spans(a, alen, b, blen float64) bool {
	return a < b+blen-gridEpsilon && b < a+alen-gridEpsilon
}

func (ga *GridAdapter) clampX(dx float64) float64 {
	body := ga.player.body
	for _, o := range ga.candidates(body, dx, 0, tagGround) {
		if !spans(body.Y, body.H, o.Y, o.H) {
			continue
		}
		if dx > 0 && o.X >= body.X+body.W-gridEpsilon {
			dx = math.Min(dx, o.X-(body.X+body.W))
		} else if dx < 0 && o.X+o.W <= body.X+gridEpsilon {
			dx = math.Max(dx, o.X+o.W-body.X)
		}
	}
	return dx
}

func (ga *GridAdapter) clampY(dy float64) float64 {
	body := ga.player.body
	for _, o := range ga.candidates(body, 0, dy, tagGround) {
		if !spans(body.X, body.W, o.X, o.W) {
			continue
		}
		if dy > 0 && o.Y >= body.Y+body.H-gridEpsilon {
			dy = math.Min(dy, o.Y-(body.Y+body.H))
		} else if dy < 0 && o.Y+o.H <= body.Y+gridEpsilon {
			dy = math.Max(dy, o.Y+o.H-body.Y)
		}
	}
	return dy
}

// supported reports whether a ground top sits just under the feet.
func (ga *GridAdapter) supported() bool {
	body := ga.player.body
	for _, o := range ga.candidates(body, 0, -groundProbe, tagGround) {
		if !spans(body.X, body.W, o.X, o.W) {
			continue
		}
		top := o.Y + o.H
		if top <= body.Y+gridEpsilon && body.Y-top <= groundProbe {
			return true
		}
	}
	return false
}

func (ga *GridAdapter) syncSensor() {
	p := ga.player
	p.sensor.X = p.body.X + p.offsetX
	p.sensor.Y = p.body.Y + p.offsetY
	p.sensor.Update()
}

// refreshOverlaps diffs the sensor's current overlaps against the last
// tick and queues Begin and End events for the changes.
func (ga *GridAdapter) refreshOverlaps() {
	p := ga.player
	box := objectRect(p.sensor)
	now := make(map[locomotion.ColliderID]struct{})
	for _, tag := range []string{tagGround, tagClimbable} {
		for _, o := range ga.candidates(p.sensor, 0, 0, tag) {
			id, ok := ga.objects[o]
			if !ok || !box.Overlaps(objectRect(o)) {
				continue
			}
			now[id] = struct{}{}
		}
	}

	for id := range p.overlaps {
		if _, still := now[id]; !still {
			ga.events.push(locomotion.EventEnd, p.sensorID, id)
		}
	}
	for id := range now {
		if _, had := p.overlaps[id]; !had {
			ga.events.push(locomotion.EventBegin, p.sensorID, id)
		}
	}
	p.overlaps = now
}
