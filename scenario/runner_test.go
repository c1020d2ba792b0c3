package scenario

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

var backends = []string{physics.BackendGrid, physics.BackendChipmunk}

func testOptions(t *testing.T, backend string) Options {
	t.Helper()
	level, err := prefabs.LoadLevelSpec("level.yaml")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	player, err := prefabs.LoadEntityBuildSpec("player.yaml")
	if err != nil {
		t.Fatalf("load player: %v", err)
	}
	return Options{Level: level, Player: player, Physics: backend}
}

func flatOptions(t *testing.T, backend string) Options {
	opts := testOptions(t, backend)
	opts.Level = prefabs.LevelSpec{
		Name:    "flat",
		Width:   400,
		Height:  400,
		Cell:    16,
		KillY:   -100,
		Gravity: prefabs.PointSpec{Y: -980},
		Spawn:   prefabs.PointSpec{X: 50, Y: 40},
		Ground:  []prefabs.RectSpec{{X: 0, Y: 0, W: 400, H: 40}},
	}
	return opts
}

func run(t *testing.T, src string, opts Options) Result {
	t.Helper()
	r, err := New([]byte(src), opts)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestEmbeddedIdle(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			r, err := Load("idle.tengo", testOptions(t, backend))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			res, err := r.Run(context.Background())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if res.Name != "idle" || len(res.Frames) != 60 {
				t.Fatalf("expected 60 idle frames, got %q with %d", res.Name, len(res.Frames))
			}
			last := res.Last()
			if last.Mode != locomotion.ModeGrounded || last.Clip != "idle" {
				t.Fatalf("expected grounded idle, got %s", last)
			}
			if last.X != 64 || math.Abs(last.Y-40) > 1 {
				t.Fatalf("expected to stay at the spawn point, got %s", last)
			}
		})
	}
}

func TestEmbeddedWalkOffLedge(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			r, err := Load("walk_off_ledge.tengo", testOptions(t, backend))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			res, err := r.Run(context.Background())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !res.Finished {
				t.Fatalf("expected the script to finish, last frame %s", res.Last())
			}

			graceJump := false
			for i, f := range res.Frames {
				if f.Jumped && i > 0 && res.Frames[i-1].Mode == locomotion.ModeAirborne {
					graceJump = true
				}
			}
			if !graceJump {
				t.Fatalf("expected a jump taken while airborne inside the grace window")
			}
			if last := res.Last(); last.X < 560 || last.Mode != locomotion.ModeGrounded {
				t.Fatalf("expected to land on the far ground, got %s", last)
			}
			if res.Respawns != 0 {
				t.Fatalf("unexpected respawn")
			}
		})
	}
}

func TestEmbeddedClimbLadder(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			r, err := Load("climb_ladder.tengo", testOptions(t, backend))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			res, err := r.Run(context.Background())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !res.Finished {
				t.Fatalf("expected the script to finish, last frame %s", res.Last())
			}

			climbed, climbClip := false, false
			for _, f := range res.Frames {
				if f.Mode == locomotion.ModeClimbing {
					climbed = true
					if f.IntentY != 120 {
						t.Fatalf("climbing up should move at climb speed, got %s", f)
					}
				}
				if f.Clip == "climb" {
					climbClip = true
				}
			}
			if !climbed || !climbClip {
				t.Fatalf("expected a climb, climbed=%v clip=%v", climbed, climbClip)
			}
			if last := res.Last(); math.Abs(last.Y-240) > 1 || last.X < 212 {
				t.Fatalf("expected to stand on the platform, got %s", last)
			}
		})
	}
}

func TestRunnerFinishStopsBeforeStepping(t *testing.T) {
	res := run(t, `
name := "stop"
ticks := 100
update := func(engine, state, tick) {
	if tick == 3 {
		engine.finish()
	}
}
`, flatOptions(t, physics.BackendGrid))
	if !res.Finished || len(res.Frames) != 3 {
		t.Fatalf("expected 3 frames then finish, got %d finished=%v", len(res.Frames), res.Finished)
	}
}

func TestRunnerTickOverride(t *testing.T) {
	opts := flatOptions(t, physics.BackendGrid)
	opts.Ticks = 5
	res := run(t, `update := func(engine, state, tick) {}`, opts)
	if res.Name != "scenario" || len(res.Frames) != 5 || res.Finished {
		t.Fatalf("unexpected result %q %d %v", res.Name, len(res.Frames), res.Finished)
	}
}

func TestRunnerJumpFromGround(t *testing.T) {
	res := run(t, `
ticks := 30
update := func(engine, state, tick) {
	if tick == 2 {
		engine.hold("jump")
	}
	if tick == 3 && engine.velocity() <= 0 {
		engine.log("not rising", engine.position())
	}
}
`, flatOptions(t, physics.BackendGrid))

	f := res.Frames[2]
	if !f.Jumped || f.VY != 500 || f.Clip != "jump" {
		t.Fatalf("expected a ground jump on tick 2, got %s", f)
	}
	peak := 0.0
	for _, f := range res.Frames {
		peak = math.Max(peak, f.Y)
	}
	if peak < 80 {
		t.Fatalf("expected the jump to clear the ground, peak %v", peak)
	}
}

func TestRunnerHeldJumpDoesNotRepeat(t *testing.T) {
	res := run(t, `
ticks := 120
update := func(engine, state, tick) {
	engine.hold("jump")
}
`, flatOptions(t, physics.BackendGrid))
	jumps := 0
	for _, f := range res.Frames {
		if f.Jumped {
			jumps++
		}
	}
	if jumps != 1 {
		t.Fatalf("holding jump should jump once, got %d", jumps)
	}
}

func TestRunnerRespawn(t *testing.T) {
	opts := flatOptions(t, physics.BackendGrid)
	r, err := New([]byte(`
ticks := 20
update := func(engine, state, tick) {
	engine.hold("right")
	if tick == 10 {
		engine.hold("respawn")
	}
}
`), opts)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	first := r.Player()
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Respawns != 1 || r.Player() == first || ecs.IsAlive(r.World(), first) {
		t.Fatalf("expected one respawn into a new entity, got %d", res.Respawns)
	}
	// the frame is recorded from the replacement player
	if f := res.Frames[10]; f.X != 50 || f.Y != 40 {
		t.Fatalf("expected tick 10 to report the fresh player at spawn, got %s", f)
	}
	if f := res.Frames[11]; f.Mode != locomotion.ModeGrounded || f.X <= 50 {
		t.Fatalf("fresh player should resolve grounded and keep walking, got %s", f)
	}
}

func TestRunnerErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `update := func(`, "compile"},
		{"no_update", `update := undefined`, ""},
		{"unresolved_update", `name := "x"`, "compile"},
		{"unknown_action", `update := func(engine, state, tick) { engine.hold("fly") }`, "unknown action"},
		{"runtime", `update := func(engine, state, tick) { x := tick; y := 1 / x }`, "tick 0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := New([]byte(c.src), flatOptions(t, physics.BackendGrid))
			if err == nil {
				_, err = r.Run(context.Background())
			}
			if err == nil {
				t.Fatalf("expected an error")
			}
			if c.name == "no_update" && !errors.Is(err, ErrNoUpdate) {
				t.Fatalf("expected ErrNoUpdate, got %v", err)
			}
			if c.want != "" && !strings.Contains(err.Error(), c.want) {
				t.Fatalf("expected %q in %v", c.want, err)
			}
		})
	}
}

func TestRunnerCancelled(t *testing.T) {
	r, err := New([]byte(`update := func(engine, state, tick) {}`), flatOptions(t, physics.BackendGrid))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
