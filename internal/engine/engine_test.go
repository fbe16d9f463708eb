package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"gol-bench/pkg/core"
	"gol-bench/pkg/sims/life"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func runToCompletion(t *testing.T, cfg RunConfig, opts Options) RunReport {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quiet
	}
	sup := NewSupervisor(context.Background(), opts)
	if err := sup.Start(cfg); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	report, ok, err := sup.Wait(ctx)
	if err != nil {
		t.Fatalf("run did not finish: %v", err)
	}
	if !ok {
		t.Fatal("finished without a report")
	}
	return report
}

func boardConfig(b core.Board, workers, generations int) RunConfig {
	return RunConfig{
		Workers:     workers,
		Width:       b.Width(),
		Height:      b.Height(),
		Generations: generations,
		Initial:     &b,
	}
}

func TestHorizontalLineBecomesVerticalBlinker(t *testing.T) {
	board := core.NewBoard(4, 4).With(core.Pt(1, 1), core.Pt(1, 2), core.Pt(1, 3))
	want := []core.Point{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}}

	for _, workers := range []int{1, 2, 4} {
		report := runToCompletion(t, boardConfig(board, workers, 1), Options{})
		if report.Status != StatusCompleted {
			t.Fatalf("workers=%d status = %s (%v)", workers, report.Status, report.Err)
		}
		if report.Generations != 1 {
			t.Fatalf("workers=%d generations = %d, want 1", workers, report.Generations)
		}
		if got := report.Board.AlivePoints(); !slices.Equal(got, want) {
			t.Fatalf("workers=%d alive = %v, want %v", workers, got, want)
		}
	}
}

func TestBlinkerReturnsAfterTwoGenerations(t *testing.T) {
	board, err := core.ParseBoard(
		".....",
		"..#..",
		"..#..",
		"..#..",
		".....",
	)
	if err != nil {
		t.Fatal(err)
	}
	for workers := 1; workers <= board.Height(); workers++ {
		report := runToCompletion(t, boardConfig(board, workers, 2), Options{})
		if !report.Board.Equal(board) {
			t.Fatalf("workers=%d board after 2 generations:\n%s", workers, report.Board)
		}
	}
}

func TestEmptyBoardStaysEmpty(t *testing.T) {
	board := core.NewBoard(13, 9)
	for _, workers := range []int{1, 3, 9} {
		report := runToCompletion(t, boardConfig(board, workers, 25), Options{})
		if report.Board.Population() != 0 {
			t.Fatalf("workers=%d population = %d", workers, report.Board.Population())
		}
	}
}

func TestWorkerCountDoesNotChangeOutcome(t *testing.T) {
	board := core.RandomBoard(31, 17, 99, 0.35)
	for _, edge := range []life.Edge{life.Clamped, life.Torus} {
		want := life.StepN(board, edge, 12)

		single := boardConfig(board, 1, 12)
		single.Edge = edge
		perRow := boardConfig(board, board.Height(), 12)
		perRow.Edge = edge

		a := runToCompletion(t, single, Options{})
		b := runToCompletion(t, perRow, Options{})
		if !a.Board.Equal(b.Board) {
			t.Fatalf("%s: one worker and one-worker-per-row diverged", edge)
		}
		if !a.Board.Equal(want) {
			t.Fatalf("%s: engine diverged from sequential step", edge)
		}
	}
}

func TestSeededPatternRun(t *testing.T) {
	cfg := RunConfig{Workers: 3, Width: 20, Height: 12, Generations: 4, Pattern: "random", Seed: 5, Density: 0.5}
	report := runToCompletion(t, cfg, Options{})
	want := life.StepN(core.RandomBoard(20, 12, 5, 0.5), life.Clamped, 4)
	if !report.Board.Equal(want) {
		t.Fatal("seeded run does not match the sequential reference")
	}
	if report.RunID.String() == "" || report.GenerationsPerSecond() <= 0 {
		t.Fatalf("missing metrics: %+v", report)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	sup := NewSupervisor(context.Background(), Options{Logger: quiet})
	defer sup.Stop()

	cases := map[string]RunConfig{
		"workers":     {Workers: 0, Width: 4, Height: 4},
		"height":      {Workers: 1, Width: 4, Height: 0},
		"width":       {Workers: 1, Width: -1, Height: 4},
		"too many":    {Workers: 5, Width: 4, Height: 4},
		"generations": {Workers: 1, Width: 4, Height: 4, Generations: -1},
		"density":     {Workers: 1, Width: 4, Height: 4, Density: 2},
		"pattern":     {Workers: 1, Width: 4, Height: 4, Pattern: "nope"},
	}
	for name, cfg := range cases {
		err := sup.Start(cfg)
		var cerr *ConfigError
		if !errors.As(err, &cerr) || !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: err = %v, want ConfigError", name, err)
		}
	}
	mismatched := core.NewBoard(3, 3)
	if err := sup.Start(RunConfig{Workers: 1, Width: 4, Height: 4, Initial: &mismatched}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("mismatched initial board err = %v", err)
	}
}

func TestSecondStartDoesNotCreateSecondRun(t *testing.T) {
	sup := NewSupervisor(context.Background(), Options{Logger: quiet})
	cfg := RunConfig{Workers: 2, Width: 32, Height: 32, Pattern: "random", Seed: 1, Density: 0.3}
	if err := sup.Start(cfg); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := sup.Start(cfg); !errors.Is(err, ErrRunActive) {
		t.Fatalf("second Start err = %v, want ErrRunActive", err)
	}
	sup.Stop()
	<-sup.Done()
	if err := sup.Start(cfg); !errors.Is(err, ErrTerminated) {
		t.Fatalf("Start after shutdown err = %v, want ErrTerminated", err)
	}
}

func TestStopTerminatesOpenEndedRun(t *testing.T) {
	var reports atomic.Int32
	slow := func(cur core.Board, p life.Partition, edge life.Edge, dst []uint8) error {
		time.Sleep(2 * time.Millisecond)
		return life.ComputeRows(cur, p, edge, dst)
	}
	sup := NewSupervisor(context.Background(), Options{
		Logger:        quiet,
		Compute:       slow,
		OnRunComplete: []func(RunReport){func(RunReport) { reports.Add(1) }},
	})
	if err := sup.Start(RunConfig{Workers: 4, Width: 24, Height: 24, Pattern: "acorn"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for sup.Generation() < 3 {
		select {
		case <-deadline:
			t.Fatal("run made no progress")
		case <-time.After(time.Millisecond):
		}
	}

	sup.Stop()
	sup.Stop()
	select {
	case <-sup.Done():
	case <-time.After(time.Second):
		t.Fatal("Stop did not terminate the run")
	}

	report, ok := sup.Report()
	if !ok || report.Status != StatusStopped {
		t.Fatalf("report = %+v, ok = %v", report, ok)
	}
	if sup.Snapshot().State != Terminated {
		t.Fatalf("state = %s, want terminated", sup.Snapshot().State)
	}
	gen := sup.Generation()
	time.Sleep(20 * time.Millisecond)
	if sup.Generation() != gen || report.Generations != gen {
		t.Fatalf("board published after termination: %d -> %d", gen, sup.Generation())
	}
	if reports.Load() != 1 {
		t.Fatalf("OnRunComplete called %d times", reports.Load())
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(ctx, Options{Logger: quiet})
	if err := sup.Start(RunConfig{Workers: 2, Width: 16, Height: 16, Pattern: "glider"}); err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case <-sup.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context cancellation did not stop the supervisor")
	}
	if report, ok := sup.Report(); !ok || report.Status != StatusStopped {
		t.Fatalf("report = %+v", report)
	}
}

func TestStopOnIdleSupervisor(t *testing.T) {
	sup := NewSupervisor(context.Background(), Options{Logger: quiet})
	sup.Stop()
	<-sup.Done()
	if _, ok := sup.Report(); ok {
		t.Fatal("idle supervisor must not report a run")
	}
}

func TestWorkerFailureAbortsRun(t *testing.T) {
	board := core.RandomBoard(12, 12, 3, 0.4)
	boom := errors.New("disk on fire")
	var calls atomic.Int32
	failing := func(cur core.Board, p life.Partition, edge life.Edge, dst []uint8) error {
		if p.Index == 1 && calls.Add(1) == 3 {
			return boom
		}
		return life.ComputeRows(cur, p, edge, dst)
	}

	report := runToCompletion(t, boardConfig(board, 3, 10), Options{Compute: failing})
	if report.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", report.Status)
	}
	if !errors.Is(report.Err, ErrWorkerFailure) || !errors.Is(report.Err, boom) {
		t.Fatalf("err = %v, want worker failure wrapping boom", report.Err)
	}
	var werr *WorkerError
	if !errors.As(report.Err, &werr) || werr.Worker != 1 || werr.Generation != 3 {
		t.Fatalf("worker error = %+v", werr)
	}
	if report.Generations != 2 || !report.Board.Equal(life.StepN(board, life.Clamped, 2)) {
		t.Fatalf("failed run must keep the last complete board, got generation %d", report.Generations)
	}
}

func TestWorkerPanicIsReportedAsFailure(t *testing.T) {
	panicky := func(cur core.Board, p life.Partition, edge life.Edge, dst []uint8) error {
		if p.Index == 0 {
			panic("index out of range")
		}
		return life.ComputeRows(cur, p, edge, dst)
	}
	report := runToCompletion(t, RunConfig{Workers: 2, Width: 8, Height: 8, Generations: 5, Pattern: "empty"}, Options{Compute: panicky})
	if report.Status != StatusFailed || !errors.Is(report.Err, ErrWorkerFailure) {
		t.Fatalf("report = %+v", report)
	}
	if report.Generations != 0 {
		t.Fatalf("generations = %d, want 0", report.Generations)
	}
}

func TestTimeLimitCompletesRun(t *testing.T) {
	report := runToCompletion(t, RunConfig{
		Workers:   2,
		Width:     16,
		Height:    16,
		TimeLimit: 30 * time.Millisecond,
		TPS:       200,
		Pattern:   "rpentomino",
	}, Options{})
	if report.Status != StatusCompleted {
		t.Fatalf("status = %s (%v)", report.Status, report.Err)
	}
	if report.Generations == 0 || report.Elapsed < 30*time.Millisecond {
		t.Fatalf("generations = %d elapsed = %v", report.Generations, report.Elapsed)
	}
}

func TestSnapshotsAreNeverTorn(t *testing.T) {
	board := core.NewBoard(9, 64)
	for r := 1; r+2 < 64; r += 5 {
		board = board.With(core.Pt(r, 4), core.Pt(r+1, 4), core.Pt(r+2, 4))
	}
	other := life.Step(board, life.Clamped)

	sup := NewSupervisor(context.Background(), Options{Logger: quiet})
	if err := sup.Start(boardConfig(board, 64, 0)); err != nil {
		t.Fatal(err)
	}
	defer sup.Stop()

	deadline := time.Now().Add(100 * time.Millisecond)
	reads := 0
	for time.Now().Before(deadline) {
		b := sup.CurrentBoard()
		if b.Empty() {
			continue
		}
		if !b.Equal(board) && !b.Equal(other) {
			t.Fatalf("observed a board that is neither blinker phase:\n%s", b)
		}
		reads++
	}
	if reads == 0 {
		t.Fatal("no snapshots observed")
	}
}
