//go:build ebiten

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gol-bench/internal/core"
	"gol-bench/internal/engine"
	"gol-bench/internal/render"
	"gol-bench/internal/ui"
)

const hudWidth = 220

// Game adapts a supervised run to the ebiten.Game interface. It only reads
// the published board; generations advance on the engine's own workers.
type Game struct {
	ctx     context.Context
	cfg     engine.RunConfig
	opts    engine.Options
	sup     *engine.Supervisor
	painter *render.GridPainter
	hud     *ui.HUD
	log     *slog.Logger

	scale int
}

// New starts a run for cfg and constructs a Game that displays it.
func New(ctx context.Context, cfg engine.RunConfig, opts engine.Options, scale int) (*Game, error) {
	if scale <= 0 {
		scale = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	g := &Game{
		ctx:     ctx,
		cfg:     cfg,
		opts:    opts,
		painter: render.NewGridPainter(cfg.Width, cfg.Height, render.DefaultPalette()),
		log:     log,
		scale:   scale,
	}
	g.hud = ui.NewHUD(g, "Game of Life", hudWidth)
	if err := g.Reset(cfg.Seed); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset stops the current run and starts a new one with the provided seed.
func (g *Game) Reset(seed int64) error {
	g.Close()
	cfg := g.cfg
	cfg.Seed = seed
	sup := engine.NewSupervisor(g.ctx, g.opts)
	if err := sup.Start(cfg); err != nil {
		sup.Stop()
		return err
	}
	g.cfg = cfg
	g.sup = sup
	return nil
}

// Close stops the current run and waits for it to terminate.
func (g *Game) Close() {
	if g.sup == nil {
		return
	}
	g.sup.Stop()
	<-g.sup.Done()
}

// Parameters forwards the current run's parameter snapshot.
func (g *Game) Parameters() core.ParameterSnapshot {
	if g.sup == nil {
		return core.ParameterSnapshot{}
	}
	return g.sup.Parameters()
}

// Update handles per-frame input.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.Close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.Reset(g.cfg.Seed); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		seed := time.Now().UnixNano()
		g.log.Info("restarting with new seed", "seed", seed)
		if err := g.Reset(seed); err != nil {
			return err
		}
	}
	g.hud.Update()
	return nil
}

// Draw renders the latest complete board.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sup.CurrentBoard(), g.scale)
	g.hud.Draw(screen, g.cfg.Width*g.scale, g.cfg.Height*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width*g.scale + g.hud.Width(), g.cfg.Height * g.scale
}
