// Package engine runs Game of Life generations on a pool of partition
// workers coordinated by message passing.
//
// A Supervisor owns at most one run. For that run it creates a Coordinator,
// which owns one worker goroutine per row band of the board. Each tick the
// coordinator sends every worker its band, waits for all results, and
// publishes the assembled board through a guard.Guard that outside readers
// can query at any time.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	icore "gol-bench/internal/core"
	"gol-bench/internal/guard"
	"gol-bench/pkg/core"
)

// Options configures a Supervisor.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// OnRunComplete callbacks run on the supervisor goroutine once the run
	// has terminated.
	OnRunComplete []func(RunReport)
	// Compute replaces the partition step; nil uses life.ComputeRows.
	Compute ComputeFunc
}

// Supervisor is the entry and exit point for controlling a run.
type Supervisor struct {
	log   *slog.Logger
	opts  Options
	ctx   context.Context
	inbox chan Message
	done  chan struct{}
	snap  *guard.Guard[Snapshot]

	// Owned by the run goroutine.
	coord    *Coordinator
	runID    uuid.UUID
	cfg      RunConfig
	last     *NewBoard
	stopping bool
	finished bool

	// Written before done is closed.
	report    RunReport
	hasReport bool
}

// NewSupervisor starts an idle supervisor. Cancelling ctx acts as Stop.
func NewSupervisor(ctx context.Context, opts Options) *Supervisor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Supervisor{
		log:   log.With("component", "supervisor"),
		opts:  opts,
		ctx:   ctx,
		inbox: make(chan Message, 16),
		done:  make(chan struct{}),
		snap:  guard.New(Snapshot{}),
	}
	go s.run()
	return s
}

// Start validates cfg and begins a run. It returns a *ConfigError for an
// invalid configuration, ErrRunActive if a run already exists and
// ErrTerminated after shutdown.
func (s *Supervisor) Start(cfg RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	reply := make(chan error, 1)
	select {
	case s.inbox <- Start{Config: cfg, reply: reply}:
	case <-s.done:
		return ErrTerminated
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrTerminated
		}
	}
}

// Stop ends the active run and shuts the supervisor down. It does not wait;
// use Done for that.
func (s *Supervisor) Stop() {
	select {
	case s.inbox <- Stop{}:
	case <-s.done:
	}
}

// Done is closed once the supervisor has shut down.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

// Wait blocks until shutdown or ctx is done and returns the run report.
func (s *Supervisor) Wait(ctx context.Context) (RunReport, bool, error) {
	select {
	case <-s.done:
		return s.report, s.hasReport, nil
	case <-ctx.Done():
		return RunReport{}, false, ctx.Err()
	}
}

// Report returns the run report once the supervisor has shut down.
func (s *Supervisor) Report() (RunReport, bool) {
	select {
	case <-s.done:
		return s.report, s.hasReport
	default:
		return RunReport{}, false
	}
}

// CurrentBoard returns the latest complete board. It is safe to call while a
// run is in progress.
func (s *Supervisor) CurrentBoard() core.Board {
	b, _ := guard.ReadValue(s.snap, func(snap Snapshot) (core.Board, error) {
		return snap.Board, nil
	})
	return b
}

// Snapshot returns the latest published run state.
func (s *Supervisor) Snapshot() Snapshot { return s.snap.Load() }

// Generation returns the number of the latest published generation.
func (s *Supervisor) Generation() int { return s.Snapshot().Generation }

// Parameters describes the run for the HUD.
func (s *Supervisor) Parameters() icore.ParameterSnapshot {
	snap := s.Snapshot()
	cfg := snap.Config
	rate := 0.0
	if snap.Elapsed > 0 {
		rate = float64(snap.Generation) / snap.Elapsed.Seconds()
	}
	return icore.ParameterSnapshot{Groups: []icore.ParameterGroup{
		{
			Name: "Run",
			Params: []icore.Parameter{
				icore.IntParam("workers", "Workers", cfg.Workers),
				icore.IntParam("w", "Width", cfg.Width),
				icore.IntParam("h", "Height", cfg.Height),
				icore.StringParam("edge", "Edge", cfg.Edge.String()),
				icore.StringParam("pattern", "Pattern", cfg.pattern()),
				icore.Int64Param("seed", "Seed", cfg.Seed),
			},
		},
		{
			Name: "Progress",
			Params: []icore.Parameter{
				icore.StringParam("state", "State", snap.State.String()),
				icore.IntParam("generation", "Generation", snap.Generation),
				icore.IntParam("population", "Population", snap.Board.Population()),
				icore.DurationParam("elapsed", "Elapsed", snap.Elapsed),
				icore.FloatParam("gps", "Gen/s", rate),
			},
		},
	}}
}

func (s *Supervisor) run() {
	defer close(s.done)
	ctxDone := s.ctx.Done()
	for !s.finished {
		select {
		case msg := <-s.inbox:
			s.handle(msg)
		case <-ctxDone:
			ctxDone = nil
			s.log.Info("context cancelled")
			s.handle(Stop{})
		}
	}
}

func (s *Supervisor) handle(msg Message) {
	switch m := msg.(type) {
	case Start:
		if s.coord != nil || s.stopping {
			s.log.Warn("supervisor start ignored, run already active")
			m.reply <- ErrRunActive
			return
		}
		s.runID = uuid.New()
		s.cfg = m.Config
		s.log = s.log.With("run_id", s.runID.String())
		s.log.Info("supervisor start", "workers", m.Config.Workers)
		s.coord = newCoordinator(s.inbox, s.snap, s.opts.Compute, s.log)
		go s.coord.run(s.ctx)
		s.coord.Send(Start{Config: m.Config})
		m.reply <- nil
	case Stop:
		if s.stopping {
			return
		}
		s.stopping = true
		s.log.Info("supervisor stop")
		if s.coord == nil {
			s.finished = true
			return
		}
		s.coord.Send(Stop{})
	case NewBoard:
		s.log.Info("supervisor new board", "generation", m.Generation, "failed", m.Err != nil)
		if s.last == nil {
			s.last = &m
		}
		s.handle(Stop{})
	case terminated:
		s.finish(m)
	}
}

func (s *Supervisor) finish(t terminated) {
	snap := s.snap.Load()
	r := RunReport{
		RunID:       s.runID,
		Config:      s.cfg,
		Status:      StatusStopped,
		Board:       snap.Board,
		Generations: snap.Generation,
		Elapsed:     t.Elapsed,
		Err:         t.Err,
	}
	switch {
	case t.Err != nil:
		r.Status = StatusFailed
	case s.last != nil && s.last.Err == nil:
		r.Status = StatusCompleted
		r.Elapsed = s.last.Elapsed
	}
	s.report = r
	s.hasReport = true
	s.finished = true
	s.log.Info("run report",
		"status", r.Status,
		"generations", r.Generations,
		"elapsed", r.Elapsed.Round(time.Microsecond),
		"gen_per_sec", r.GenerationsPerSecond(),
	)
	for _, fn := range s.opts.OnRunComplete {
		fn(r)
	}
}
