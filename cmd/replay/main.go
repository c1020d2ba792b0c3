package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/milk9111/climber/physics"
	"github.com/milk9111/climber/prefabs"
	"github.com/milk9111/climber/scenario"
)

func main() {
	scriptName := flag.String("script", "", "scenario script in prefabs/scripts (empty runs all)")
	levelName := flag.String("level", "level.yaml", "level spec in prefabs/")
	playerName := flag.String("player", "player.yaml", "player prefab in prefabs/")
	backend := flag.String("physics", physics.BackendChipmunk, "physics backend: chipmunk or grid")
	ticks := flag.Int("ticks", 0, "override the script's tick count")
	trace := flag.Bool("trace", false, "print every frame")
	debug := flag.Bool("debug", false, "log locomotion debug output")
	flag.Parse()

	level, err := prefabs.LoadLevelSpec(*levelName)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
	player, err := prefabs.LoadEntityBuildSpec(*playerName)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	names := prefabs.ScriptNames()
	if *scriptName != "" {
		names = []string{*scriptName}
	}
	if len(names) == 0 {
		log.Fatalf("replay: no scripts found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := scenario.Options{
		Level:   level,
		Player:  player,
		Physics: *backend,
		Ticks:   *ticks,
		Debug:   *debug,
	}

	failed := 0
	for _, name := range names {
		r, err := scenario.Load(name, opts)
		if err != nil {
			log.Printf("replay: %v", err)
			failed++
			continue
		}
		res, err := r.Run(ctx)
		if *trace {
			for _, f := range res.Frames {
				fmt.Println(f)
			}
		}
		if err != nil {
			log.Printf("replay: %s: %v", r.Name(), err)
			failed++
			continue
		}

		status := "timeout"
		if res.Finished {
			status = "finished"
		}
		fmt.Printf("%-16s %-8s %-8s ticks=%-4d respawns=%d last: %s\n",
			res.Name, strings.ToLower(*backend), status, len(res.Frames), res.Respawns, res.Last())
	}
	if failed > 0 {
		stop()
		os.Exit(1)
	}
}
