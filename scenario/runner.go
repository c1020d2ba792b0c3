// Package scenario drives the locomotion stack headlessly from tengo
// scripts. A script names itself, says how many ticks it wants and
// defines update(engine, state, tick), which is called once before every
// tick to choose the actions held on that tick.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/ecs/entity"
	"github.com/milk9111/climber/ecs/system"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

// DefaultDT is the fixed tick length used when Options.DT is zero.
const DefaultDT = 1.0 / 60.0

const defaultTicks = 600

const dispatchScript = `
if __phase == "update" {
	update(__engine, __state, __tick)
}
`

var ErrNoUpdate = errors.New("scenario: script does not define update")

type Options struct {
	Level  prefabs.LevelSpec
	Player prefabs.EntityBuildSpec
	// Physics names the backend, see physics.New.
	Physics string
	// Ticks overrides the script's own tick count when positive.
	Ticks int
	DT    float64
	// Debug routes locomotion debug chatter to log.Printf.
	Debug bool
}

// Frame is the observable state after one tick.
type Frame struct {
	Tick     int
	Mode     locomotion.Mode
	X        float64
	Y        float64
	VY       float64
	IntentX  float64
	IntentY  float64
	Grounded bool
	OnGround bool
	InClimb  bool
	Clip     string
	Jumped   bool
}

func (f Frame) String() string {
	return fmt.Sprintf("%4d %-8s x=%8.2f y=%8.2f vy=%8.2f intent=(%7.1f,%7.1f) grounded=%-5t ground=%-5t climb=%-5t clip=%s",
		f.Tick, f.Mode, f.X, f.Y, f.VY, f.IntentX, f.IntentY, f.Grounded, f.OnGround, f.InClimb, f.Clip)
}

type Result struct {
	Name     string
	Frames   []Frame
	Finished bool
	Respawns int
}

// Last returns the final frame, or the zero frame for an empty run.
func (r Result) Last() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

// Runner owns one world, backend and script.
type Runner struct {
	name  string
	ticks int
	dt    float64

	compiled *tengo.Compiled
	state    *tengo.Map

	world     *ecs.World
	backend   physics.Backend
	scheduler *ecs.Scheduler
	loco      *system.LocomotionSystem
	respawn   *system.RespawnSystem
	player    ecs.Entity

	held     component.ActionState
	holdErr  error
	finished bool
	respawns int
	tick     int
}

// Load builds a runner for an embedded or on-disk script by name.
func Load(name string, opts Options) (*Runner, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", name, err)
	}
	r, err := New(src, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", name, err)
	}
	return r, nil
}

// New compiles src and builds the level and player described by opts.
func New(src []byte, opts Options) (*Runner, error) {
	r := &Runner{dt: opts.DT}
	if r.dt <= 0 {
		r.dt = DefaultDT
	}
	if err := r.compile(src); err != nil {
		return nil, err
	}
	if opts.Ticks > 0 {
		r.ticks = opts.Ticks
	}
	if err := r.build(opts); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) compile(src []byte) error {
	full := string(src) + "\n" + dispatchScript
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__tick", 0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("scenario: compile: %w", err)
	}
	r.compiled = compiled
	r.state = &tengo.Map{Value: map[string]tengo.Object{}}

	// run once with no phase to evaluate the script's globals
	if err := r.runPhase("init", &tengo.ImmutableMap{Value: map[string]tengo.Object{}}); err != nil {
		return fmt.Errorf("scenario: init: %w", err)
	}
	if !compiled.IsDefined("update") {
		return ErrNoUpdate
	}
	r.name = "scenario"
	if compiled.IsDefined("name") {
		if s := strings.TrimSpace(compiled.Get("name").String()); s != "" {
			r.name = s
		}
	}
	r.ticks = defaultTicks
	if compiled.IsDefined("ticks") {
		if n := compiled.Get("ticks").Int(); n > 0 {
			r.ticks = n
		}
	}
	return nil
}

func (r *Runner) build(opts Options) error {
	level := opts.Level
	if err := level.Validate(); err != nil {
		return err
	}
	backend, err := physics.New(opts.Physics, level.Width, level.Height, level.Cell,
		physics.Vector{X: level.Gravity.X, Y: level.Gravity.Y})
	if err != nil {
		return err
	}
	w := ecs.NewWorld()
	if _, err := entity.SpawnLevel(w, backend, level); err != nil {
		return err
	}
	player, err := entity.NewPlayerFromSpec(w, backend, opts.Player, level.Spawn.X, level.Spawn.Y)
	if err != nil {
		return err
	}

	r.world = w
	r.backend = backend
	r.player = player

	r.loco = system.NewLocomotionSystem(backend, r.dt)
	r.loco.SetPlayer(player)
	if opts.Debug {
		r.loco.Logf = log.Printf
	}
	r.respawn = system.NewRespawnSystem(backend, opts.Player)
	r.respawn.SetPlayer(player)
	r.respawn.OnRespawn = func(e ecs.Entity) {
		r.player = e
		r.loco.SetPlayer(e)
		r.respawns++
	}

	r.scheduler = ecs.NewScheduler(
		system.NewInputSystem(r.sample),
		r.loco,
		system.NewAnimationSystem(),
		r.respawn,
	)
	return nil
}

func (r *Runner) Name() string {
	return r.name
}

func (r *Runner) Ticks() int {
	return r.ticks
}

func (r *Runner) World() *ecs.World {
	return r.world
}

func (r *Runner) Player() ecs.Entity {
	return r.player
}

func (r *Runner) Finished() bool {
	return r.finished
}

func (r *Runner) sample() component.ActionState {
	return r.held
}

// Step asks the script for this tick's actions and advances the world by
// one tick. ok is false when the script finished instead.
func (r *Runner) Step() (Frame, bool, error) {
	if r.finished {
		return Frame{}, false, nil
	}
	r.held = component.ActionState{}
	r.holdErr = nil
	if err := r.compiled.Set("__tick", r.tick); err != nil {
		return Frame{}, false, err
	}
	if err := r.runPhase("update", r.engine()); err != nil {
		return Frame{}, false, fmt.Errorf("scenario: %s: tick %d: %w", r.name, r.tick, err)
	}
	if r.holdErr != nil {
		return Frame{}, false, fmt.Errorf("scenario: %s: tick %d: %w", r.name, r.tick, r.holdErr)
	}
	if r.finished {
		return Frame{}, false, nil
	}

	r.scheduler.Update(r.world)
	frame := r.frame()
	r.tick++
	return frame, true, nil
}

// Run steps until the script finishes, the tick budget is spent or ctx is
// done.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{Name: r.name}
	for r.tick < r.ticks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		frame, ok, err := r.Step()
		if err != nil {
			return res, err
		}
		if !ok {
			break
		}
		res.Frames = append(res.Frames, frame)
	}
	res.Finished = r.finished
	res.Respawns = r.respawns
	return res, nil
}

func (r *Runner) frame() Frame {
	f := Frame{Tick: r.tick}
	if t, ok := ecs.Get(r.world, r.player, component.TransformComponent.Kind()); ok {
		f.X, f.Y = t.X, t.Y
	}
	if loco, ok := ecs.Get(r.world, r.player, component.LocomotionComponent.Kind()); ok {
		f.Mode = loco.Snapshot.Mode
		f.VY = loco.Snapshot.VerticalVelocity
		f.IntentX = loco.Intent.X
		f.IntentY = loco.Intent.Y
		f.Grounded = loco.Grounded
		f.Jumped = loco.Snapshot.Jumped
		f.OnGround = loco.Aggregator.IsOnGround()
		f.InClimb = loco.Aggregator.IsInClimbRange()
	}
	if anim, ok := ecs.Get(r.world, r.player, component.AnimationComponent.Kind()); ok {
		f.Clip = anim.Current
	}
	return f
}

func (r *Runner) runPhase(phase string, engine *tengo.ImmutableMap) error {
	if r == nil || r.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := r.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := r.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := r.compiled.Set("__state", r.state); err != nil {
		return err
	}
	return r.compiled.Run()
}
