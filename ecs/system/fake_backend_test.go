package system

import (
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/ecs/entity"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

const testDT = 1.0 / 60.0

// fakeBackend records calls and lets tests script events and contacts.
type fakeBackend struct {
	events    []locomotion.CollisionEvent
	colliders map[locomotion.ColliderID]locomotion.Category
	body      locomotion.ColliderID
	sensor    locomotion.ColliderID
	pos       physics.Vector
	grounded  bool
	gravity   physics.Vector
	intents   []locomotion.Intent
	calls     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		colliders: make(map[locomotion.ColliderID]locomotion.Category),
		gravity:   physics.Vector{Y: -980},
	}
}

func (f *fakeBackend) EventsSinceLastTick() []locomotion.CollisionEvent {
	f.calls = append(f.calls, "events")
	out := f.events
	f.events = nil
	return out
}

func (f *fakeBackend) ApplyIntent(intent locomotion.Intent, dt float64) physics.Result {
	f.calls = append(f.calls, "apply")
	f.intents = append(f.intents, intent)
	f.pos.X += intent.X * dt
	f.pos.Y += intent.Y * dt
	return physics.Result{
		Displacement:     physics.Vector{X: intent.X * dt, Y: intent.Y * dt},
		GroundedThisTick: f.grounded,
	}
}

func (f *fakeBackend) Gravity() physics.Vector {
	return f.gravity
}

func (f *fakeBackend) AddStatic(id locomotion.ColliderID, _ physics.Rect, c locomotion.Category) error {
	f.colliders[id] = c
	return nil
}

func (f *fakeBackend) SpawnPlayer(body, sensor locomotion.ColliderID, bodyRect, _ physics.Rect) error {
	f.body, f.sensor = body, sensor
	f.pos = physics.Vector{X: bodyRect.X, Y: bodyRect.Y}
	return nil
}

func (f *fakeBackend) Remove(id locomotion.ColliderID) {
	if id == f.body || id == f.sensor {
		f.body, f.sensor = 0, 0
		return
	}
	delete(f.colliders, id)
}

func (f *fakeBackend) Has(id locomotion.ColliderID) bool {
	if f.body != 0 && (id == f.body || id == f.sensor) {
		return true
	}
	_, ok := f.colliders[id]
	return ok
}

func (f *fakeBackend) CategoryOf(id locomotion.ColliderID) (locomotion.Category, bool) {
	c, ok := f.colliders[id]
	return c, ok
}

func (f *fakeBackend) PlayerPosition() physics.Vector {
	return f.pos
}

func (f *fakeBackend) begin(other locomotion.ColliderID) {
	f.events = append(f.events, locomotion.CollisionEvent{Kind: locomotion.EventBegin, A: other, B: f.sensor})
}

func (f *fakeBackend) end(other locomotion.ColliderID) {
	f.events = append(f.events, locomotion.CollisionEvent{Kind: locomotion.EventEnd, A: f.sensor, B: other})
}

func testPrefab() prefabs.EntityBuildSpec {
	return prefabs.EntityBuildSpec{
		Name: "test_player",
		Components: map[string]any{
			"player_tag": map[string]any{},
			"input":      map[string]any{},
			"player": map[string]any{
				"horizontal_speed": 200,
				"jump_impulse":     500,
				"climb_speed":      120,
				"grace_window":     0.1,
			},
			"physics_body": map[string]any{
				"width":  20,
				"height": 40,
				"sensor": map[string]any{"offset_x": 1, "offset_y": -2, "width": 18, "height": 22},
			},
			"animation":  map[string]any{},
			"locomotion": map[string]any{},
		},
	}
}

type testRig struct {
	world   *ecs.World
	backend *fakeBackend
	player  ecs.Entity
	ground  ecs.Entity
	ladder  ecs.Entity
	input   component.ActionState
}

func newTestRig(t interface{ Fatalf(string, ...any) }) *testRig {
	w := ecs.NewWorld()
	fb := newFakeBackend()
	ents, err := entity.SpawnLevel(w, fb, prefabs.LevelSpec{
		Name:      "rig",
		Width:     400,
		Height:    400,
		KillY:     -100,
		Spawn:     prefabs.PointSpec{X: 50, Y: 40},
		Ground:    []prefabs.RectSpec{{X: 0, Y: 0, W: 400, H: 40}},
		Climbable: []prefabs.RectSpec{{X: 100, Y: 40, W: 32, H: 200}},
	})
	if err != nil {
		t.Fatalf("spawn level: %v", err)
	}
	player, err := entity.NewPlayerFromSpec(w, fb, testPrefab(), 50, 40)
	if err != nil {
		t.Fatalf("spawn player: %v", err)
	}
	return &testRig{world: w, backend: fb, player: player, ground: ents[0], ladder: ents[1]}
}

func (r *testRig) loco() *component.Locomotion {
	l, _ := ecs.Get(r.world, r.player, component.LocomotionComponent.Kind())
	return l
}
