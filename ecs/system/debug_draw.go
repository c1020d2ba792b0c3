package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/locomotion"
	"github.com/milk9111/climber/physics"
)

const debugCircleSegments = 24

var (
	groundColor    = color.NRGBA{R: 90, G: 200, B: 90, A: 255}
	climbableColor = color.NRGBA{R: 90, G: 140, B: 230, A: 200}
	bodyColor      = color.NRGBA{R: 240, G: 200, B: 80, A: 255}
	sensorColor    = color.NRGBA{R: 240, G: 90, B: 90, A: 255}
)

// DebugDrawSystem renders colliders, the player's body and sensor, and a
// text readout of the controller state. World y is up; the screen is
// flipped.
type DebugDrawSystem struct {
	backend physics.Backend
	player  ecs.Entity
	// Shapes also draws the raw Chipmunk shapes when the backend has them.
	Shapes bool
}

func NewDebugDrawSystem(backend physics.Backend) *DebugDrawSystem {
	return &DebugDrawSystem{backend: backend}
}

func (d *DebugDrawSystem) SetPlayer(e ecs.Entity) {
	if d == nil {
		return
	}
	d.player = e
}

func (d *DebugDrawSystem) Update(*ecs.World) {}

func (d *DebugDrawSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if d == nil || w == nil || screen == nil {
		return
	}
	height := float64(screen.Bounds().Dy())

	ecs.ForEach(w, component.ColliderComponent.Kind(), func(_ ecs.Entity, c *component.Collider) {
		clr := groundColor
		if c.Category == locomotion.CategoryClimbable {
			clr = climbableColor
		}
		strokeWorldRect(screen, height, c.Rect, clr)
	})

	if t, ok := ecs.Get(w, d.player, component.TransformComponent.Kind()); ok {
		if body, ok := ecs.Get(w, d.player, component.PhysicsBodyComponent.Kind()); ok {
			strokeWorldRect(screen, height, physics.Rect{X: t.X, Y: t.Y, W: body.Width, H: body.Height}, bodyColor)
			s := body.Sensor
			strokeWorldRect(screen, height, physics.Rect{X: t.X + s.X, Y: t.Y + s.Y, W: s.W, H: s.H}, sensorColor)
		}
	}

	if d.Shapes {
		if ca, ok := d.backend.(*physics.ChipmunkAdapter); ok && ca.Space() != nil {
			cp.DrawSpace(ca.Space(), &physicsDebugDrawer{screen: screen, height: height})
		}
	}

	ebitenutil.DebugPrintAt(screen, d.readout(w), 10, 10)
}

func (d *DebugDrawSystem) readout(w *ecs.World) string {
	loco, ok := ecs.Get(w, d.player, component.LocomotionComponent.Kind())
	if !ok {
		return "no player"
	}
	clip := ""
	if anim, ok := ecs.Get(w, d.player, component.AnimationComponent.Kind()); ok {
		clip = anim.Current
	}
	snap := loco.Snapshot
	return fmt.Sprintf("Mode: %s\nVelocityY: %.2f\nGrace: %.3f\nOnGround: %v  InClimb: %v  Grounded: %v\nIntent: %.0f, %.0f\nClip: %s",
		snap.Mode, snap.VerticalVelocity, snap.GraceTimer,
		loco.Aggregator.IsOnGround(), loco.Aggregator.IsInClimbRange(), loco.Grounded,
		loco.Intent.X, loco.Intent.Y, clip)
}

func strokeWorldRect(screen *ebiten.Image, height float64, r physics.Rect, clr color.Color) {
	x := float32(r.X)
	y := float32(height - r.Y - r.H)
	vector.StrokeRect(screen, x, y, float32(r.W), float32(r.H), 1, clr, false)
}

// physicsDebugDrawer feeds cp.DrawSpace onto an ebiten image.
type physicsDebugDrawer struct {
	screen *ebiten.Image
	height float64
}

func (p *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	p.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	p.drawLine(pos, end, outline)
}

func (p *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	p.drawLine(a, b, fill)
}

func (p *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	p.drawLine(a, b, outline)
}

func (p *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 || count > len(verts) {
		return
	}
	p.drawPolygon(verts[:count], outline)
}

func (p *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	half := math.Max(size, 2) / 2
	p.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	p.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (p *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (p *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (p *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Sensor() {
		return cp.FColor{R: 0.9, G: 0.3, B: 0.3, A: 0.6}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (p *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (p *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (p *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (p *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	vector.StrokeLine(p.screen, float32(a.X), float32(p.height-a.Y), float32(b.X), float32(p.height-b.Y), 1, toNRGBA(c), false)
}

func (p *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := range verts {
		p.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (p *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := 2 * math.Pi * float64(i) / debugCircleSegments
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	p.drawPolygon(points, c)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
