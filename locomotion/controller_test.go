package locomotion

import (
	"math"
	"testing"
)

const tickDT = 1.0 / 60.0

type sensorState struct {
	ground bool
	climb  bool
}

func (s sensorState) IsOnGround() bool     { return s.ground }
func (s sensorState) IsInClimbRange() bool { return s.climb }

func scenarioConfig() Config {
	return Config{
		Gravity:         -980,
		HorizontalSpeed: 200,
		JumpImpulse:     500,
		ClimbSpeed:      150,
		GraceWindow:     0.1,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStepResolvesInitialMode(t *testing.T) {
	cfg := scenarioConfig()
	cases := []struct {
		name    string
		sensors sensorState
		want    Mode
	}{
		{"spawned_on_ground", sensorState{ground: true}, ModeGrounded},
		{"spawned_in_air", sensorState{}, ModeAirborne},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, snap := Step(cfg, NewSnapshot(), c.sensors, Input{}, false, tickDT)
			if !snap.Resolved {
				t.Fatalf("expected snapshot resolved after first tick")
			}
			if snap.Mode != c.want {
				t.Fatalf("expected %s, got %s", c.want, snap.Mode)
			}
		})
	}
}

func TestHorizontalSymmetry(t *testing.T) {
	cfg := scenarioConfig()
	cases := []struct {
		name  string
		in    Input
		wantX float64
	}{
		{"left", Input{Left: true}, -cfg.HorizontalSpeed},
		{"right", Input{Right: true}, cfg.HorizontalSpeed},
		{"both", Input{Left: true, Right: true}, 0},
		{"neither", Input{}, 0},
	}
	modes := []struct {
		name    string
		snap    Snapshot
		sensors sensorState
	}{
		{"grounded", Snapshot{Mode: ModeGrounded, Resolved: true}, sensorState{ground: true}},
		{"airborne", Snapshot{Mode: ModeAirborne, Resolved: true}, sensorState{}},
		{"climbing", Snapshot{Mode: ModeClimbing, Resolved: true}, sensorState{climb: true}},
	}
	for _, m := range modes {
		for _, c := range cases {
			t.Run(m.name+"_"+c.name, func(t *testing.T) {
				intent, _ := Step(cfg, m.snap, m.sensors, c.in, false, tickDT)
				if intent.X != c.wantX {
					t.Fatalf("expected x=%v, got %v", c.wantX, intent.X)
				}
			})
		}
	}
}

func TestSingleOpportunityJump(t *testing.T) {
	cfg := scenarioConfig()
	snap := Snapshot{Mode: ModeAirborne, Resolved: true, GraceTimer: 0.1, VerticalVelocity: -30}

	if !snap.ConsumeJump(cfg) {
		t.Fatalf("expected jump available with grace time left")
	}
	if snap.GraceTimer != 0 {
		t.Fatalf("expected grace timer spent, got %v", snap.GraceTimer)
	}
	if snap.VerticalVelocity != cfg.JumpImpulse {
		t.Fatalf("expected velocity %v, got %v", cfg.JumpImpulse, snap.VerticalVelocity)
	}

	snap.VerticalVelocity = 123
	if snap.ConsumeJump(cfg) {
		t.Fatalf("second jump from the same window should be refused")
	}
	if snap.VerticalVelocity != 123 {
		t.Fatalf("refused jump changed velocity to %v", snap.VerticalVelocity)
	}
}

func TestGroundJumpCannotRepeatBeforeLeavingGround(t *testing.T) {
	cfg := scenarioConfig()
	ground := sensorState{ground: true}
	snap := Snapshot{Mode: ModeGrounded, Resolved: true}

	_, snap = Step(cfg, snap, ground, Input{JumpPressed: true}, true, tickDT)
	if !snap.Jumped || snap.VerticalVelocity != cfg.JumpImpulse {
		t.Fatalf("expected ground jump, got %+v", snap)
	}

	// sensor still touches the floor on the next tick
	intent, snap := Step(cfg, snap, ground, Input{JumpPressed: true}, false, tickDT)
	if snap.Jumped {
		t.Fatalf("expected second press on the same ground contact to be ignored")
	}
	if intent.Y != cfg.JumpImpulse {
		t.Fatalf("jump velocity masked while still grounded: %v", intent.Y)
	}

	intent, snap = Step(cfg, snap, sensorState{}, Input{}, false, tickDT)
	if snap.Mode != ModeAirborne {
		t.Fatalf("expected airborne once the sensor clears, got %s", snap.Mode)
	}
	if !almostEqual(intent.Y, cfg.JumpImpulse+cfg.Gravity*tickDT) {
		t.Fatalf("expected gravity to start after leaving ground, got %v", intent.Y)
	}
}

func TestBlockedGroundJumpSettles(t *testing.T) {
	cfg := scenarioConfig()
	ground := sensorState{ground: true}
	_, snap := Step(cfg, Snapshot{Mode: ModeGrounded, Resolved: true}, ground, Input{JumpPressed: true}, true, tickDT)

	// the backend still reports support after applying the jump
	intent, snap := Step(cfg, snap, ground, Input{}, true, tickDT)
	if intent.Y != 0 || snap.JumpLatched {
		t.Fatalf("expected blocked jump to settle, got intent=%v snap=%+v", intent, snap)
	}
	_, snap = Step(cfg, snap, ground, Input{JumpPressed: true}, true, tickDT)
	if !snap.Jumped {
		t.Fatalf("expected a fresh jump once settled")
	}
}

func TestCoyoteBoundary(t *testing.T) {
	cfg := scenarioConfig()
	run := func(jumpTick int) (Snapshot, float64) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true, GraceTimer: cfg.GraceWindow}
		var before float64
		for tick := 0; tick <= jumpTick; tick++ {
			before = snap.VerticalVelocity
			_, snap = Step(cfg, snap, sensorState{}, Input{JumpPressed: tick == jumpTick}, false, tickDT)
		}
		return snap, before
	}

	t.Run("tick_5_succeeds", func(t *testing.T) {
		snap, _ := run(5)
		if !snap.Jumped || snap.VerticalVelocity != cfg.JumpImpulse {
			t.Fatalf("expected jump at ~0.083s, got %+v", snap)
		}
		if snap.GraceTimer != 0 {
			t.Fatalf("expected timer spent, got %v", snap.GraceTimer)
		}
	})

	t.Run("tick_7_ignored", func(t *testing.T) {
		snap, before := run(7)
		if snap.Jumped {
			t.Fatalf("expected no jump at ~0.117s")
		}
		want := before + cfg.Gravity*tickDT
		if !almostEqual(snap.VerticalVelocity, want) {
			t.Fatalf("expected gravity trajectory %v, got %v", want, snap.VerticalVelocity)
		}
	})
}

func TestCoyoteWindowWithLaggingBackendContact(t *testing.T) {
	cfg := scenarioConfig()

	cases := []struct {
		name     string
		jumpTick int
		want     bool
	}{
		{"tick_5_succeeds", 5, true},
		{"tick_6_expired", 6, false},
		{"tick_7_ignored", 7, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snap := Snapshot{Mode: ModeGrounded, Resolved: true}
			var before float64
			for tick := 0; tick <= c.jumpTick; tick++ {
				before = snap.VerticalVelocity
				// the sensor has already left the ledge on tick 0 while the
				// backend still reports the contact from its last integration
				_, snap = Step(cfg, snap, sensorState{}, Input{JumpPressed: tick == c.jumpTick}, tick == 0, tickDT)
			}
			if snap.Jumped != c.want {
				t.Fatalf("jump at tick %d: expected jumped=%v, got %+v", c.jumpTick, c.want, snap)
			}
			if !c.want {
				want := before + cfg.Gravity*tickDT
				if !almostEqual(snap.VerticalVelocity, want) {
					t.Fatalf("expected gravity trajectory %v, got %v", want, snap.VerticalVelocity)
				}
			}
		})
	}
}

func TestGraceTimer(t *testing.T) {
	cfg := scenarioConfig()

	t.Run("reset_by_backend_contact", func(t *testing.T) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true}
		_, snap = Step(cfg, snap, sensorState{}, Input{}, true, tickDT)
		if !almostEqual(snap.GraceTimer, cfg.GraceWindow-tickDT) {
			t.Fatalf("expected timer reset then decayed to %v, got %v", cfg.GraceWindow-tickDT, snap.GraceTimer)
		}
	})

	t.Run("decays_on_grounded_ticks", func(t *testing.T) {
		snap := Snapshot{Mode: ModeGrounded, Resolved: true}
		for i := 0; i < 3; i++ {
			_, snap = Step(cfg, snap, sensorState{ground: true}, Input{}, true, tickDT)
		}
		if !almostEqual(snap.GraceTimer, cfg.GraceWindow-tickDT) {
			t.Fatalf("expected %v after a grounded tick, got %v", cfg.GraceWindow-tickDT, snap.GraceTimer)
		}
	})

	t.Run("rounding_residue_cleared", func(t *testing.T) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true, GraceTimer: cfg.GraceWindow}
		for i := 0; i < 6; i++ {
			_, snap = Step(cfg, snap, sensorState{}, Input{}, false, tickDT)
		}
		if snap.GraceTimer != 0 {
			t.Fatalf("expected six ticks of 1/60 to spend a 0.1 window, got %v", snap.GraceTimer)
		}
	})

	t.Run("floored_at_zero", func(t *testing.T) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true, GraceTimer: 0.001}
		for i := 0; i < 5; i++ {
			_, snap = Step(cfg, snap, sensorState{}, Input{}, false, tickDT)
		}
		if snap.GraceTimer != 0 {
			t.Fatalf("expected timer floored at 0, got %v", snap.GraceTimer)
		}
	})

	t.Run("decays_by_dt", func(t *testing.T) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true, GraceTimer: 0.1}
		_, snap = Step(cfg, snap, sensorState{}, Input{}, false, tickDT)
		if !almostEqual(snap.GraceTimer, 0.1-tickDT) {
			t.Fatalf("expected %v, got %v", 0.1-tickDT, snap.GraceTimer)
		}
	})
}

func TestClimbing(t *testing.T) {
	cfg := scenarioConfig()
	ladder := sensorState{climb: true}

	t.Run("requires_press_edge", func(t *testing.T) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true}
		_, snap = Step(cfg, snap, ladder, Input{Up: true}, false, tickDT)
		if snap.Mode == ModeClimbing {
			t.Fatalf("held up without a press edge should not start climbing")
		}
		_, snap = Step(cfg, snap, ladder, Input{Up: true, UpPressed: true}, false, tickDT)
		if snap.Mode != ModeClimbing {
			t.Fatalf("expected climbing after press, got %s", snap.Mode)
		}
	})

	t.Run("press_outside_range", func(t *testing.T) {
		snap := Snapshot{Mode: ModeGrounded, Resolved: true}
		_, snap = Step(cfg, snap, sensorState{ground: true}, Input{Up: true, UpPressed: true}, true, tickDT)
		if snap.Mode != ModeGrounded {
			t.Fatalf("expected grounded, got %s", snap.Mode)
		}
	})

	t.Run("entered_from_ground", func(t *testing.T) {
		snap := Snapshot{Mode: ModeGrounded, Resolved: true}
		intent, snap := Step(cfg, snap, sensorState{ground: true, climb: true}, Input{Up: true, UpPressed: true}, true, tickDT)
		if snap.Mode != ModeClimbing {
			t.Fatalf("expected climbing, got %s", snap.Mode)
		}
		if intent.Y != cfg.ClimbSpeed {
			t.Fatalf("expected climb speed %v, got %v", cfg.ClimbSpeed, intent.Y)
		}
	})

	t.Run("down_moves_down", func(t *testing.T) {
		snap := Snapshot{Mode: ModeAirborne, Resolved: true}
		intent, _ := Step(cfg, snap, ladder, Input{Down: true, DownPressed: true}, false, tickDT)
		if intent.Y != -cfg.ClimbSpeed {
			t.Fatalf("expected %v, got %v", -cfg.ClimbSpeed, intent.Y)
		}
	})

	t.Run("suspends_gravity", func(t *testing.T) {
		snap := Snapshot{Mode: ModeClimbing, Resolved: true}
		for i := 0; i < 120; i++ {
			var intent Intent
			intent, snap = Step(cfg, snap, ladder, Input{}, false, tickDT)
			if snap.Mode != ModeClimbing {
				t.Fatalf("tick %d: left climbing", i)
			}
			if snap.VerticalVelocity != 0 || intent.Y != 0 {
				t.Fatalf("tick %d: gravity leaked into climb: %v", i, snap.VerticalVelocity)
			}
		}
	})

	t.Run("exits_when_out_of_range", func(t *testing.T) {
		snap := Snapshot{Mode: ModeClimbing, Resolved: true}
		intent, snap := Step(cfg, snap, sensorState{}, Input{Up: true}, false, tickDT)
		if snap.Mode != ModeAirborne {
			t.Fatalf("expected airborne, got %s", snap.Mode)
		}
		if !almostEqual(intent.Y, cfg.Gravity*tickDT) {
			t.Fatalf("expected gravity to resume, got %v", intent.Y)
		}
	})

	t.Run("exits_onto_ground", func(t *testing.T) {
		snap := Snapshot{Mode: ModeClimbing, Resolved: true, VerticalVelocity: -cfg.ClimbSpeed}
		_, snap = Step(cfg, snap, sensorState{ground: true}, Input{}, true, tickDT)
		if snap.Mode != ModeGrounded || snap.VerticalVelocity != 0 {
			t.Fatalf("expected grounded at rest, got %+v", snap)
		}
	})

	t.Run("jump_cancels_climb", func(t *testing.T) {
		snap := Snapshot{Mode: ModeClimbing, Resolved: true}
		intent, snap := Step(cfg, snap, ladder, Input{Up: true, JumpPressed: true}, false, tickDT)
		if snap.Mode != ModeAirborne {
			t.Fatalf("expected airborne after jump, got %s", snap.Mode)
		}
		if intent.Y != cfg.JumpImpulse || snap.GraceTimer != 0 {
			t.Fatalf("expected jump impulse with spent timer, got intent=%v snap=%+v", intent, snap)
		}

		// still inside the region with up held: no re-entry without a new press
		intent, snap = Step(cfg, snap, ladder, Input{Up: true}, false, tickDT)
		if snap.Mode != ModeAirborne {
			t.Fatalf("expected to stay airborne, got %s", snap.Mode)
		}
		if !almostEqual(intent.Y, cfg.JumpImpulse+cfg.Gravity*tickDT) {
			t.Fatalf("expected gravity after climb jump, got %v", intent.Y)
		}
	})
}

func TestLandingResetsVelocityOnEdgeOnly(t *testing.T) {
	cfg := scenarioConfig()
	snap := Snapshot{Mode: ModeAirborne, Resolved: true, VerticalVelocity: -300}

	intent, snap := Step(cfg, snap, sensorState{ground: true}, Input{}, true, tickDT)
	if snap.Mode != ModeGrounded {
		t.Fatalf("expected grounded, got %s", snap.Mode)
	}
	if intent.Y != 0 || snap.VerticalVelocity != 0 {
		t.Fatalf("expected landing to zero velocity, got %v", snap.VerticalVelocity)
	}

	for i := 0; i < 10; i++ {
		intent, snap = Step(cfg, snap, sensorState{ground: true}, Input{}, true, tickDT)
		if intent.Y != 0 {
			t.Fatalf("grounded tick %d accumulated velocity %v", i, intent.Y)
		}
	}

	intent, snap = Step(cfg, snap, sensorState{ground: true}, Input{JumpPressed: true}, true, tickDT)
	if intent.Y != cfg.JumpImpulse {
		t.Fatalf("jump from a settled ground period masked: %v", intent.Y)
	}
}

func TestJumpOnLandingTick(t *testing.T) {
	cfg := scenarioConfig()
	snap := Snapshot{Mode: ModeAirborne, Resolved: true, VerticalVelocity: -200}
	intent, snap := Step(cfg, snap, sensorState{ground: true}, Input{JumpPressed: true}, false, tickDT)
	if intent.Y != cfg.JumpImpulse || !snap.Jumped {
		t.Fatalf("expected jump to win over the landing reset, got intent=%v", intent)
	}
}

func TestEndToEndLedgeCoyoteJump(t *testing.T) {
	cfg := scenarioConfig()

	snap := NewSnapshot()
	_, snap = Step(cfg, snap, sensorState{ground: true}, Input{Right: true}, true, tickDT)
	if snap.Mode != ModeGrounded {
		t.Fatalf("expected grounded, got %+v", snap)
	}

	var intent Intent
	for tick := 0; tick <= 6; tick++ {
		in := Input{Right: true, JumpPressed: tick == 5}
		// the backend's contact from the last grounded integration arrives
		// with the empty sensor on tick 0
		intent, snap = Step(cfg, snap, sensorState{}, in, tick == 0, tickDT)

		switch tick {
		case 0:
			if snap.Mode != ModeAirborne {
				t.Fatalf("tick 0: expected airborne, got %s", snap.Mode)
			}
		case 5:
			if !snap.Jumped || snap.VerticalVelocity != 500 || snap.GraceTimer != 0 {
				t.Fatalf("tick 5: expected jump, got %+v", snap)
			}
		case 6:
			if math.Abs(snap.VerticalVelocity-483.6667) > 1e-3 {
				t.Fatalf("tick 6: expected ~483.67, got %v", snap.VerticalVelocity)
			}
		}
		if intent.X != cfg.HorizontalSpeed {
			t.Fatalf("tick %d: expected x=%v, got %v", tick, cfg.HorizontalSpeed, intent.X)
		}
	}
}

func TestIntentFacing(t *testing.T) {
	cases := []struct {
		x    float64
		want int
	}{{-5, -1}, {0, 0}, {3, 1}}
	for _, c := range cases {
		if got := (Intent{X: c.x}).Facing(); got != c.want {
			t.Fatalf("facing(%v) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestStepNilSensors(t *testing.T) {
	cfg := scenarioConfig()
	_, snap := Step(cfg, NewSnapshot(), nil, Input{}, false, tickDT)
	if snap.Mode != ModeAirborne {
		t.Fatalf("expected airborne without sensors, got %s", snap.Mode)
	}
}
