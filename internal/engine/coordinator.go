package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	icore "gol-bench/internal/core"
	"gol-bench/internal/guard"
	"gol-bench/pkg/core"
	"gol-bench/pkg/sims/life"
)

// State is the coordinator lifecycle stage.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Snapshot is the published view of a run. It is the only state shared
// outside the message protocol.
type Snapshot struct {
	Config     RunConfig
	State      State
	Board      core.Board
	Generation int
	Elapsed    time.Duration
}

// Coordinator owns the current board and the worker set of one run. All of
// its fields except state are confined to the goroutine started by run.
type Coordinator struct {
	log     *slog.Logger
	inbox   chan Message
	owner   chan<- Message
	snap    *guard.Guard[Snapshot]
	compute ComputeFunc
	done    chan struct{}
	state   atomic.Int32

	cfg        RunConfig
	workers    []*worker
	results    chan Result
	group      *errgroup.Group
	cancel     context.CancelFunc
	board      core.Board
	next       []uint8
	generation int
	pending    int
	started    time.Time
	finished   bool
	due        bool
	pacer      *icore.FixedStep
	timer      *time.Timer
	pace       <-chan time.Time
	failure    error
}

func newCoordinator(owner chan<- Message, snap *guard.Guard[Snapshot], compute ComputeFunc, log *slog.Logger) *Coordinator {
	if compute == nil {
		compute = life.ComputeRows
	}
	return &Coordinator{
		log:     log.With("component", "coordinator"),
		inbox:   make(chan Message, 4),
		owner:   owner,
		snap:    snap,
		compute: compute,
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (c *Coordinator) State() State { return State(c.state.Load()) }

// Done is closed once the coordinator has terminated.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// Send delivers msg unless the coordinator has already terminated.
func (c *Coordinator) Send(msg Message) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)
	for c.State() != Terminated {
		// Pending control messages take priority over the next tick.
		select {
		case msg := <-c.inbox:
			c.handle(ctx, msg)
			continue
		default:
		}
		if c.due {
			c.due = false
			c.dispatch()
			continue
		}
		select {
		case msg := <-c.inbox:
			c.handle(ctx, msg)
		case res := <-c.results:
			c.collect(res)
		case <-c.pace:
			c.pace = nil
			c.dispatch()
		case <-ctx.Done():
			c.handle(ctx, Stop{})
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case Start:
		if c.State() != Idle {
			c.log.Warn("start ignored", "state", c.State())
			return
		}
		if err := c.start(ctx, m.Config); err != nil {
			c.log.Error("run failed to start", "error", err)
			c.fail(err)
		}
	case Stop:
		switch c.State() {
		case Idle:
			c.setState(Terminated)
			c.notify(terminated{})
		case Running:
			c.shutdown()
		}
	default:
		c.log.Warn("unexpected message", "type", fmt.Sprintf("%T", msg))
	}
}

func (c *Coordinator) start(ctx context.Context, cfg RunConfig) error {
	parts, err := life.Plan(cfg.Height, cfg.Workers, cfg.Edge)
	if err != nil {
		return err
	}
	board, err := cfg.InitialBoard()
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.board = board
	c.pacer = icore.NewFixedStep(cfg.TPS)
	c.results = make(chan Result, len(parts))
	wctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	g, gctx := errgroup.WithContext(wctx)
	c.group = g
	c.workers = make([]*worker, len(parts))
	for i, p := range parts {
		w := newWorker(p, cfg.Edge, c.compute, c.results, c.log)
		c.workers[i] = w
		g.Go(func() error { return w.run(gctx) })
	}

	c.started = time.Now()
	c.setState(Running)
	c.publish()
	c.log.Info("run started",
		"workers", cfg.Workers,
		"width", cfg.Width,
		"height", cfg.Height,
		"generations", cfg.Generations,
		"time_limit", cfg.TimeLimit,
		"edge", cfg.Edge,
	)
	if cfg.OpenEnded() {
		c.log.Debug("open-ended run")
	}
	c.schedule()
	return nil
}

// dispatch hands every worker its slice of a fresh next-generation buffer.
func (c *Coordinator) dispatch() {
	if c.State() != Running || c.finished {
		return
	}
	w := c.board.Width()
	c.next = make([]uint8, c.board.Size().Cells())
	c.pending = len(c.workers)
	gen := c.generation + 1
	for _, wk := range c.workers {
		wk.inbox <- computeRequest{
			generation: gen,
			board:      c.board,
			dst:        c.next[wk.part.Start*w : wk.part.End*w],
		}
	}
}

// collect records one result and completes the tick once all have arrived.
func (c *Coordinator) collect(res Result) {
	if c.State() != Running || res.Generation != c.generation+1 {
		return
	}
	if res.Err != nil {
		c.log.Error("worker failed", "worker", res.Worker, "generation", res.Generation, "error", res.Err)
		c.fail(res.Err)
		return
	}
	c.pending--
	if c.pending > 0 {
		return
	}

	board, err := core.BoardFromCells(c.board.Width(), c.board.Height(), c.next)
	if err != nil {
		c.fail(err)
		return
	}
	c.board = board
	c.next = nil
	c.generation++
	c.publish()
	c.log.Debug("generation complete", "generation", c.generation)

	if c.limitReached() {
		c.complete()
		return
	}
	c.schedule()
}

func (c *Coordinator) limitReached() bool {
	if c.cfg.Generations > 0 && c.generation >= c.cfg.Generations {
		return true
	}
	return c.cfg.TimeLimit > 0 && time.Since(c.started) >= c.cfg.TimeLimit
}

func (c *Coordinator) schedule() {
	d := c.pacer.Delay()
	if d <= 0 {
		c.due = true
		return
	}
	c.timer = time.NewTimer(d)
	c.pace = c.timer.C
}

// complete emits the final board and idles until the owner sends Stop.
func (c *Coordinator) complete() {
	c.finished = true
	elapsed := time.Since(c.started)
	c.log.Info("run complete", "generation", c.generation, "elapsed", elapsed)
	c.notify(NewBoard{Board: c.board, Generation: c.generation, Elapsed: elapsed})
}

// fail reports the last complete board as a failed run and tears down.
func (c *Coordinator) fail(err error) {
	c.failure = err
	c.finished = true
	c.notify(NewBoard{Board: c.board, Generation: c.generation, Elapsed: c.elapsed(), Err: err})
	if c.State() == Running {
		c.shutdown()
		return
	}
	c.setState(Terminated)
	c.notify(terminated{Err: err})
}

func (c *Coordinator) shutdown() {
	c.setState(Stopping)
	if c.timer != nil {
		c.timer.Stop()
		c.pace = nil
	}
	for _, w := range c.workers {
		close(w.inbox)
	}
	err := c.group.Wait()
	c.cancel()
	if c.failure == nil && err != nil {
		c.failure = err
	}
	elapsed := c.elapsed()
	c.setState(Terminated)
	c.log.Info("run terminated", "generation", c.generation, "elapsed", elapsed)
	c.notify(terminated{Generation: c.generation, Elapsed: elapsed, Err: c.failure})
}

func (c *Coordinator) elapsed() time.Duration {
	if c.started.IsZero() {
		return 0
	}
	return time.Since(c.started)
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
	_ = c.snap.Write(func(snap *Snapshot) error {
		snap.State = s
		return nil
	})
}

func (c *Coordinator) publish() {
	b, gen, elapsed, cfg := c.board, c.generation, c.elapsed(), c.cfg
	_ = c.snap.Write(func(snap *Snapshot) error {
		snap.Config = cfg
		snap.Board = b
		snap.Generation = gen
		snap.Elapsed = elapsed
		return nil
	})
}

func (c *Coordinator) notify(msg Message) {
	c.owner <- msg
}
