package engine

import (
	"context"
	"fmt"
	"log/slog"

	"gol-bench/pkg/core"
	"gol-bench/pkg/sims/life"
)

// ComputeFunc produces one partition of the next generation into dst.
type ComputeFunc func(cur core.Board, p life.Partition, edge life.Edge, dst []uint8) error

// Result is one worker's share of a generation. Rows aliases the
// coordinator's next-generation buffer.
type Result struct {
	Worker     int
	Generation int
	Rows       []uint8
	Err        error
}

type computeRequest struct {
	generation int
	board      core.Board
	dst        []uint8
}

// worker owns a single partition for the lifetime of a run and handles one
// request per tick.
type worker struct {
	part    life.Partition
	edge    life.Edge
	compute ComputeFunc
	inbox   chan computeRequest
	results chan<- Result
	log     *slog.Logger
}

func newWorker(part life.Partition, edge life.Edge, compute ComputeFunc, results chan<- Result, log *slog.Logger) *worker {
	return &worker{
		part:    part,
		edge:    edge,
		compute: compute,
		inbox:   make(chan computeRequest, 1),
		results: results,
		log:     log.With("worker", part.Index),
	}
}

// run serves requests until the inbox is closed or ctx is cancelled. A failed
// step is reported to the coordinator and also returned so the worker group
// cancels its siblings.
func (w *worker) run(ctx context.Context) error {
	w.log.Debug("worker started", "rows_start", w.part.Start, "rows_end", w.part.End)
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-w.inbox:
			if !ok {
				w.log.Debug("worker stopped")
				return nil
			}
			res := w.step(req)
			w.results <- res
			if res.Err != nil {
				return res.Err
			}
		}
	}
}

func (w *worker) step(req computeRequest) (res Result) {
	res = Result{Worker: w.part.Index, Generation: req.generation, Rows: req.dst}
	defer func() {
		if r := recover(); r != nil {
			res.Err = &WorkerError{Worker: w.part.Index, Generation: req.generation, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := w.compute(req.board, w.part, w.edge, req.dst); err != nil {
		res.Err = &WorkerError{Worker: w.part.Index, Generation: req.generation, Err: err}
	}
	return res
}
