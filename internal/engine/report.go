package engine

import (
	"time"

	"github.com/google/uuid"

	"gol-bench/pkg/core"
)

// Status is the outcome of a run.
type Status string

const (
	// StatusCompleted marks a run that reached its generation or time limit.
	StatusCompleted Status = "completed"
	// StatusStopped marks a run ended by Stop before any limit.
	StatusStopped Status = "stopped"
	// StatusFailed marks a run aborted by a worker failure.
	StatusFailed Status = "failed"
)

// RunReport is delivered once per run after the coordinator has terminated.
type RunReport struct {
	RunID       uuid.UUID
	Config      RunConfig
	Status      Status
	Board       core.Board
	Generations int
	Elapsed     time.Duration
	Err         error
}

// GenerationsPerSecond is the tick throughput of the run.
func (r RunReport) GenerationsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Generations) / r.Elapsed.Seconds()
}

// CellUpdatesPerSecond is the number of cell transitions computed per second.
func (r RunReport) CellUpdatesPerSecond() float64 {
	return r.GenerationsPerSecond() * float64(r.Config.Width*r.Config.Height)
}
