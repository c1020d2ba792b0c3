package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/climber/physics"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode (shape overlay, tuning hot reload, locomotion logging)")
	backend := flag.String("physics", physics.BackendChipmunk, "physics backend: chipmunk or grid")
	tps := flag.Int("tps", 60, "fixed ticks per second")
	levelName := flag.String("level", "level.yaml", "level spec in prefabs/")
	playerName := flag.String("player", "player.yaml", "player prefab in prefabs/")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *tps <= 0 {
		log.Fatalf("tps must be positive, got %d", *tps)
	}
	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	game, err := NewGame(GameOptions{
		Level:   *levelName,
		Player:  *playerName,
		Physics: *backend,
		TPS:     *tps,
		Debug:   *debug,
	})
	if err != nil {
		log.Fatalf("climber: %v", err)
	}
	defer game.Close()

	ebiten.SetTPS(*tps)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle("climber")

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
