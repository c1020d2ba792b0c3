package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
)

const stickDeadzone = 0.5

// Sampler reports which actions are held right now.
type Sampler func() component.ActionState

// InputSystem samples the device once per tick and advances every Input
// component, so edges are derived from exactly one sample per tick.
type InputSystem struct {
	sample Sampler
}

// NewInputSystem uses sample, or the keyboard and first gamepad when sample
// is nil.
func NewInputSystem(sample Sampler) *InputSystem {
	if sample == nil {
		sample = DeviceSampler
	}
	return &InputSystem{sample: sample}
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil {
		return
	}
	state := i.sample()
	ecs.ForEach(w, component.InputComponent.Kind(), func(_ ecs.Entity, input *component.Input) {
		input.Advance(state)
	})
}

func DeviceSampler() component.ActionState {
	var s component.ActionState
	s[component.ActionLeft] = ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	s[component.ActionRight] = ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	s[component.ActionUp] = ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp)
	s[component.ActionDown] = ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown)
	s[component.ActionJump] = ebiten.IsKeyPressed(ebiten.KeySpace)
	s[component.ActionRespawn] = ebiten.IsKeyPressed(ebiten.KeyR)

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
			y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
			if math.Abs(x) > stickDeadzone {
				s[component.ActionLeft] = s[component.ActionLeft] || x < 0
				s[component.ActionRight] = s[component.ActionRight] || x > 0
			}
			// stick y grows downward
			if math.Abs(y) > stickDeadzone {
				s[component.ActionUp] = s[component.ActionUp] || y < 0
				s[component.ActionDown] = s[component.ActionDown] || y > 0
			}
			s[component.ActionLeft] = s[component.ActionLeft] || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft)
			s[component.ActionRight] = s[component.ActionRight] || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight)
			s[component.ActionUp] = s[component.ActionUp] || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftTop)
			s[component.ActionDown] = s[component.ActionDown] || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom)
			s[component.ActionJump] = s[component.ActionJump] || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
			s[component.ActionRespawn] = s[component.ActionRespawn] || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonCenterRight)
		}
	}
	return s
}
