package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid run configuration")
	// ErrWorkerFailure is matched by every WorkerError.
	ErrWorkerFailure = errors.New("worker failure")
	// ErrRunActive is returned by Start while a run is in progress.
	ErrRunActive = errors.New("run already active")
	// ErrTerminated is returned by Start once the supervisor has shut down.
	ErrTerminated = errors.New("supervisor terminated")
)

// ConfigError rejects a RunConfig field before a run begins.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// WorkerError reports a worker that did not produce its partition for a
// generation. It aborts the run.
type WorkerError struct {
	Worker     int
	Generation int
	Err        error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d failed at generation %d: %v", e.Worker, e.Generation, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// Is matches ErrWorkerFailure.
func (e *WorkerError) Is(target error) bool { return target == ErrWorkerFailure }
