package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"gol-bench/internal/config"
	"gol-bench/internal/engine"
	"gol-bench/internal/report"
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.Parse(flag.CommandLine, os.Args[1:]); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	log := cfg.Log.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := buildSink(ctx, cfg, log)
	if err != nil {
		log.Error("failed to set up report sinks", "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	counts := cfg.WorkerCounts()
	fmt.Printf("Benchmarking %dx%d board, %d generations, time limit %s, workers %v\n",
		cfg.Width, cfg.Height, cfg.Generations, cfg.TimeLimit, counts)

	var results []engine.RunReport
	for _, workers := range counts {
		if ctx.Err() != nil {
			break
		}
		r, err := runOnce(ctx, cfg, workers, log)
		if err != nil {
			log.Error("run failed to start", "workers", workers, "error", err)
			os.Exit(1)
		}
		if err := sink.Publish(ctx, r); err != nil {
			log.Warn("report not delivered", "run_id", r.RunID, "error", err)
		}
		results = append(results, r)
	}

	printSummary(results)
	for _, r := range results {
		if r.Status == engine.StatusFailed {
			os.Exit(1)
		}
	}
}

func runOnce(ctx context.Context, cfg *config.Config, workers int, log *slog.Logger) (engine.RunReport, error) {
	run, err := cfg.RunConfig(workers)
	if err != nil {
		return engine.RunReport{}, err
	}
	sup := engine.NewSupervisor(ctx, engine.Options{Logger: log})
	if err := sup.Start(run); err != nil {
		sup.Stop()
		return engine.RunReport{}, err
	}
	r, ok, err := sup.Wait(context.Background())
	if err != nil {
		return engine.RunReport{}, err
	}
	if !ok {
		return engine.RunReport{}, fmt.Errorf("run with %d workers produced no report", workers)
	}
	return r, nil
}

func buildSink(ctx context.Context, cfg *config.Config, log *slog.Logger) (report.Sink, error) {
	sinks := report.Multi{report.NewLogSink(log)}
	if cfg.MQTT.Broker == "" {
		return sinks, nil
	}
	mq := report.NewMQTTSink(cfg.MQTT, log)
	if err := mq.Connect(ctx); err != nil {
		return nil, err
	}
	return append(sinks, mq), nil
}

func printSummary(results []engine.RunReport) {
	if len(results) == 0 {
		return
	}
	base := results[0].GenerationsPerSecond()
	sorted := append([]engine.RunReport(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GenerationsPerSecond() > sorted[j].GenerationsPerSecond()
	})

	fmt.Printf("\n%8s %10s %12s %12s %14s %8s\n", "workers", "status", "generations", "elapsed", "gen/s", "speedup")
	for _, r := range sorted {
		speedup := 0.0
		if base > 0 {
			speedup = r.GenerationsPerSecond() / base
		}
		fmt.Printf("%8d %10s %12d %12s %14.1f %7.2fx\n",
			r.Config.Workers, r.Status, r.Generations, r.Elapsed.Round(time.Millisecond), r.GenerationsPerSecond(), speedup)
	}
	best := sorted[0]
	fmt.Printf("\nBest: %d workers at %.1f gen/s (%.0f cell updates/s)\n",
		best.Config.Workers, best.GenerationsPerSecond(), best.CellUpdatesPerSecond())
}
