package engine

import (
	"time"

	"gol-bench/pkg/core"
)

// Message is the tagged union of signals exchanged between the supervisor
// and its coordinator.
type Message interface {
	isMessage()
}

// Start begins a run.
type Start struct {
	Config RunConfig

	reply chan<- error
}

// Stop ends the active run. Repeated Stops have no further effect.
type Stop struct{}

// NewBoard carries the board that ends a run. Err is set when the run failed
// and Board is then the last complete generation.
type NewBoard struct {
	Board      core.Board
	Generation int
	Elapsed    time.Duration
	Err        error
}

// terminated is the coordinator's final message to its owner.
type terminated struct {
	Generation int
	Elapsed    time.Duration
	Err        error
}

func (Start) isMessage()      {}
func (Stop) isMessage()       {}
func (NewBoard) isMessage()   {}
func (terminated) isMessage() {}
