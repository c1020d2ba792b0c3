package main

import (
	"image/color"
	"log"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/climber/ecs"
	"github.com/milk9111/climber/ecs/component"
	"github.com/milk9111/climber/ecs/entity"
	"github.com/milk9111/climber/ecs/system"
	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
)

var backgroundColor = color.RGBA{R: 0x14, G: 0x16, B: 0x1c, A: 0xff}

type GameOptions struct {
	Level   string
	Player  string
	Physics string
	TPS     int
	Debug   bool
}

type Game struct {
	opts    GameOptions
	width   int
	height  int
	gravity float64

	world     *ecs.World
	backend   physics.Backend
	scheduler *ecs.Scheduler
	loco      *system.LocomotionSystem
	respawn   *system.RespawnSystem
	debugDraw *system.DebugDrawSystem
	player    ecs.Entity

	watcher *prefabs.Watcher

	paused  bool
	quit    bool
	pauseUI *ebitenui.UI
}

// NewGame loads the level and player prefab and wires the systems. An
// invalid tuning file is an error here; later reloads only log.
func NewGame(opts GameOptions) (*Game, error) {
	level, err := prefabs.LoadLevelSpec(opts.Level)
	if err != nil {
		return nil, err
	}
	playerSpec, err := prefabs.LoadEntityBuildSpec(opts.Player)
	if err != nil {
		return nil, err
	}
	gravity := physics.Vector{X: level.Gravity.X, Y: level.Gravity.Y}
	if _, err := prefabs.LoadPlayerTuning(opts.Player, gravity.Y); err != nil {
		return nil, err
	}

	backend, err := physics.New(opts.Physics, level.Width, level.Height, level.Cell, gravity)
	if err != nil {
		return nil, err
	}
	w := ecs.NewWorld()
	if _, err := entity.SpawnLevel(w, backend, level); err != nil {
		return nil, err
	}
	player, err := entity.NewPlayerFromSpec(w, backend, playerSpec, level.Spawn.X, level.Spawn.Y)
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:    opts,
		width:   level.Width,
		height:  level.Height,
		gravity: gravity.Y,
		world:   w,
		backend: backend,
		player:  player,
	}

	dt := 1.0 / float64(opts.TPS)
	g.loco = system.NewLocomotionSystem(backend, dt)
	g.respawn = system.NewRespawnSystem(backend, playerSpec)
	g.debugDraw = system.NewDebugDrawSystem(backend)
	g.debugDraw.Shapes = opts.Debug
	g.respawn.OnRespawn = g.setPlayer
	g.setPlayer(player)

	if opts.Debug {
		g.loco.Logf = log.Printf
		watcher, err := prefabs.NewWatcher("prefabs")
		if err != nil {
			log.Printf("climber: hot reload disabled: %v", err)
		} else {
			g.watcher = watcher
		}
	}

	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(nil),
		g.loco,
		system.NewAnimationSystem(),
		g.respawn,
		g.debugDraw,
	)
	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) setPlayer(e ecs.Entity) {
	g.player = e
	g.loco.SetPlayer(e)
	g.respawn.SetPlayer(e)
	g.debugDraw.SetPlayer(e)
}

// requestRespawn marks the player for replacement on the next tick.
func (g *Game) requestRespawn(reason string) {
	if err := ecs.Add(g.world, g.player, component.RespawnRequestComponent.Kind(), &component.RespawnRequest{Reason: reason}); err != nil {
		log.Printf("climber: respawn request: %v", err)
	}
}

// pollReloads queues a tuning swap for the locomotion system when the
// player prefab changed on disk. Swaps land at the next tick boundary.
func (g *Game) pollReloads() {
	if g.watcher == nil {
		return
	}
drain:
	for {
		select {
		case err, ok := <-g.watcher.Errors:
			if !ok {
				break drain
			}
			log.Printf("climber: watcher: %v", err)
		default:
			break drain
		}
	}
	for _, name := range g.watcher.Pending() {
		if name != filepath.Base(g.opts.Player) {
			continue
		}
		cfg, err := prefabs.LoadPlayerTuning(g.opts.Player, g.gravity)
		if err != nil {
			log.Printf("climber: rejected %s: %v", name, err)
			continue
		}
		g.world.Events().Push(ecs.Event{Type: system.EventConfigReloaded, Data: cfg})
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.pollReloads()
	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.scheduler.Draw(g.world, screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.width), float64(g.height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			log.Printf("climber: close watcher: %v", err)
		}
	}
}
