package system

import (
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
)

// jumpClipTicks keeps the jump clip up after take-off even while the
// ground sensor still reads the floor.
const jumpClipTicks = 8

// AnimationSystem picks a clip from the locomotion mode, the jump edge and
// the sign of the horizontal intent. It reads nothing else.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.LocomotionComponent.Kind(), component.AnimationComponent.Kind(), func(_ ecs.Entity, loco *component.Locomotion, anim *component.Animation) {
		switch loco.Intent.Facing() {
		case -1:
			anim.FacingLeft = true
		case 1:
			anim.FacingLeft = false
		}

		if loco.Snapshot.Jumped {
			anim.JumpTicks = jumpClipTicks
		}
		clip := selectClip(anim, loco.Snapshot, loco.Intent)
		if anim.JumpTicks > 0 {
			anim.JumpTicks--
		}

		if clip != anim.Current {
			anim.Current = clip
			anim.Frame = 0
			return
		}
		anim.Frame++
	})
}

func selectClip(anim *component.Animation, snap locomotion.Snapshot, intent locomotion.Intent) string {
	clips := anim.Clips
	switch snap.Mode {
	case locomotion.ModeClimbing:
		anim.JumpTicks = 0
		if intent.Y != 0 {
			return clips.Climb
		}
		return clips.ClimbIdle
	case locomotion.ModeGrounded:
		if anim.JumpTicks > 0 {
			return clips.Jump
		}
		if intent.X != 0 {
			return clips.Run
		}
		return clips.Idle
	default:
		if anim.JumpTicks > 0 || snap.VerticalVelocity > 0 {
			return clips.Jump
		}
		return clips.Fall
	}
}
