//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"gol-bench/internal/app"
	"gol-bench/internal/config"
	"gol-bench/internal/engine"
)

func main() {
	cfg := config.DefaultConfig()
	cfg.Generations = 0
	cfg.TPS = 30
	if err := cfg.Parse(flag.CommandLine, os.Args[1:]); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	log := cfg.Log.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := cfg.RunConfig(cfg.Workers)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	game, err := app.New(ctx, run, engine.Options{Logger: log}, cfg.Scale)
	if err != nil {
		log.Error("failed to start run", "error", err)
		os.Exit(1)
	}
	defer game.Close()

	w, h := game.Layout(0, 0)
	ebiten.SetWindowTitle("Game of Life")
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("game exited", "error", err)
		os.Exit(1)
	}
}
