package component

import "github.com/milk9111/climber/locomotion"

type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionUp
	ActionDown
	ActionJump
	ActionRespawn
	ActionCount
)

func (a Action) String() string {
	switch a {
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionJump:
		return "jump"
	case ActionRespawn:
		return "respawn"
	default:
		return "unknown"
	}
}

// ActionState holds one boolean per action.
type ActionState [ActionCount]bool

// Input stores this tick's and last tick's action state. Edges are derived
// from the pair so a press is seen on exactly one tick.
type Input struct {
	Current  ActionState
	Previous ActionState
}

// Advance shifts Current into Previous and records the new sample.
func (in *Input) Advance(sample ActionState) {
	if in == nil {
		return
	}
	in.Previous = in.Current
	in.Current = sample
}

func (in *Input) Held(a Action) bool {
	if in == nil || a < 0 || a >= ActionCount {
		return false
	}
	return in.Current[a]
}

func (in *Input) JustPressed(a Action) bool {
	if in == nil || a < 0 || a >= ActionCount {
		return false
	}
	return in.Current[a] && !in.Previous[a]
}

// Locomotion converts the action state into controller input.
func (in *Input) Locomotion() locomotion.Input {
	return locomotion.Input{
		Left:        in.Held(ActionLeft),
		Right:       in.Held(ActionRight),
		Up:          in.Held(ActionUp),
		Down:        in.Held(ActionDown),
		UpPressed:   in.JustPressed(ActionUp),
		DownPressed: in.JustPressed(ActionDown),
		JumpPressed: in.JustPressed(ActionJump),
	}
}

var InputComponent = NewComponent[Input]()
