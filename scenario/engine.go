package scenario

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
)

var actionNames = map[string]component.Action{
	"left":    component.ActionLeft,
	"right":   component.ActionRight,
	"up":      component.ActionUp,
	"down":    component.ActionDown,
	"jump":    component.ActionJump,
	"respawn": component.ActionRespawn,
}

// engine exposes the player to the script. Reads see the state left by
// the previous tick.
func (r *Runner) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["hold"] = &tengo.UserFunction{Name: "hold", Value: func(args ...tengo.Object) (tengo.Object, error) {
		for _, arg := range args {
			name := strings.ToLower(strings.TrimSpace(objectAsString(arg)))
			a, ok := actionNames[name]
			if !ok {
				if r.holdErr == nil {
					r.holdErr = fmt.Errorf("hold: unknown action %q", name)
				}
				return tengo.FalseValue, nil
			}
			r.held[a] = true
		}
		return tengo.TrueValue, nil
	}}

	values["finish"] = &tengo.UserFunction{Name: "finish", Value: func(args ...tengo.Object) (tengo.Object, error) {
		r.finished = true
		return tengo.TrueValue, nil
	}}

	values["mode"] = &tengo.UserFunction{Name: "mode", Value: func(args ...tengo.Object) (tengo.Object, error) {
		loco, ok := ecs.Get(r.world, r.player, component.LocomotionComponent.Kind())
		if !ok {
			return &tengo.String{Value: ""}, nil
		}
		return &tengo.String{Value: loco.Snapshot.Mode.String()}, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		t, ok := ecs.Get(r.world, r.player, component.TransformComponent.Kind())
		if !ok {
			return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: 0}, &tengo.Float{Value: 0}}}, nil
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: t.X}, &tengo.Float{Value: t.Y}}}, nil
	}}

	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		loco, ok := ecs.Get(r.world, r.player, component.LocomotionComponent.Kind())
		if !ok {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: loco.Snapshot.VerticalVelocity}, nil
	}}

	values["grounded"] = &tengo.UserFunction{Name: "grounded", Value: func(args ...tengo.Object) (tengo.Object, error) {
		loco, ok := ecs.Get(r.world, r.player, component.LocomotionComponent.Kind())
		if ok && loco.Aggregator.IsOnGround() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["in_climb_range"] = &tengo.UserFunction{Name: "in_climb_range", Value: func(args ...tengo.Object) (tengo.Object, error) {
		loco, ok := ecs.Get(r.world, r.player, component.LocomotionComponent.Kind())
		if ok && loco.Aggregator.IsInClimbRange() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, fmt.Sprint(objectToAny(arg)))
		}
		log.Printf("scenario: %s: tick %d: %s", r.name, r.tick, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
