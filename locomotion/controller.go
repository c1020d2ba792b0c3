package locomotion

// Mode is the player's movement state.
type Mode int

const (
	ModeAirborne Mode = iota
	ModeGrounded
	ModeClimbing
)

func (m Mode) String() string {
	switch m {
	case ModeGrounded:
		return "grounded"
	case ModeClimbing:
		return "climbing"
	default:
		return "airborne"
	}
}

// Snapshot is the controller state carried from one tick to the next.
type Snapshot struct {
	VerticalVelocity float64
	GraceTimer       float64
	Mode             Mode

	// Resolved is false until the first tick has read the ground sensor.
	Resolved bool
	// Jumped is set only on the tick a jump was consumed.
	Jumped bool
	// JumpLatched marks a jump taken from the ground while the sensor still
	// overlaps it. It blocks a second ground jump until the sensor clears.
	JumpLatched bool
}

// NewSnapshot returns the spawn state. The mode is resolved on the first
// Step from the ground sensor.
func NewSnapshot() Snapshot {
	return Snapshot{Mode: ModeAirborne}
}

// JumpAvailable reports whether a jump press would be honored now.
func (s Snapshot) JumpAvailable() bool {
	switch s.Mode {
	case ModeClimbing:
		return true
	case ModeGrounded:
		if !s.JumpLatched {
			return true
		}
	}
	return s.GraceTimer > 0
}

// ConsumeJump applies the jump impulse if a jump is available. The grace
// timer is spent so the same opportunity cannot be used twice.
func (s *Snapshot) ConsumeJump(cfg Config) bool {
	if s == nil || !s.JumpAvailable() {
		return false
	}
	s.VerticalVelocity = cfg.JumpImpulse
	s.GraceTimer = 0
	s.Jumped = true
	switch s.Mode {
	case ModeClimbing:
		s.Mode = ModeAirborne
	case ModeGrounded:
		s.JumpLatched = true
	}
	return true
}

// Input is the action state for one tick. Left/Right/Up/Down are held
// states; the *Pressed fields are true only on the tick of the press.
type Input struct {
	Left  bool
	Right bool
	Up    bool
	Down  bool

	UpPressed   bool
	DownPressed bool
	JumpPressed bool
}

// Intent is the movement request handed to the physics backend. Y is a
// vertical velocity in units per second.
type Intent struct {
	X float64
	Y float64
}

// Facing returns -1, 0 or 1 following the sign of X.
func (i Intent) Facing() int {
	switch {
	case i.X < 0:
		return -1
	case i.X > 0:
		return 1
	default:
		return 0
	}
}

// Sensors is the read side of the collision aggregator.
type Sensors interface {
	IsOnGround() bool
	IsInClimbRange() bool
}

// graceEpsilon absorbs the rounding left by subtracting dt from the
// window tick by tick.
const graceEpsilon = 1e-9

// Step advances the controller by one tick. groundedThisTick is the
// backend's own contact report from the previous ApplyIntent and is
// checked independently of the ground sensor.
func Step(cfg Config, snap Snapshot, sensors Sensors, in Input, groundedThisTick bool, dt float64) (Intent, Snapshot) {
	next := snap
	next.Jumped = false

	onGround, inClimb := false, false
	if sensors != nil {
		onGround = sensors.IsOnGround()
		inClimb = sensors.IsInClimbRange()
	}

	if !next.Resolved {
		next.Resolved = true
		if onGround {
			next.Mode = ModeGrounded
		} else {
			next.Mode = ModeAirborne
		}
	}

	if groundedThisTick {
		next.GraceTimer = cfg.GraceWindow
	}

	prev := next.Mode
	switch {
	case inClimb && (in.UpPressed || in.DownPressed):
		next.Mode = ModeClimbing
	case prev == ModeClimbing && inClimb:
		// keep climbing until the region is left or a jump cancels it
	case onGround:
		next.Mode = ModeGrounded
	default:
		next.Mode = ModeAirborne
	}

	switch {
	case next.Mode == ModeGrounded && prev != ModeGrounded:
		// landing edge
		next.VerticalVelocity = 0
		next.JumpLatched = false
	case next.Mode != ModeGrounded:
		next.JumpLatched = false
	case next.JumpLatched && groundedThisTick:
		// the backend kept us supported after a ground jump, so the jump
		// was blocked
		next.VerticalVelocity = 0
		next.JumpLatched = false
	}

	jumped := in.JumpPressed && next.ConsumeJump(cfg)
	if !jumped {
		next.GraceTimer -= dt
		if next.GraceTimer <= graceEpsilon {
			next.GraceTimer = 0
		}
	}

	switch next.Mode {
	case ModeClimbing:
		next.VerticalVelocity = axis(in.Down, in.Up) * cfg.ClimbSpeed
	case ModeAirborne:
		if !jumped {
			next.VerticalVelocity += cfg.Gravity * dt
		}
	}

	intent := Intent{
		X: axis(in.Left, in.Right) * cfg.HorizontalSpeed,
		Y: next.VerticalVelocity,
	}
	return intent, next
}

func axis(neg, pos bool) float64 {
	v := 0.0
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}
