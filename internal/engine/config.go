package engine

import (
	"time"

	"gol-bench/pkg/core"
	"gol-bench/pkg/sims/life"
)

// DefaultPattern seeds runs that name no pattern and supply no board.
const DefaultPattern = "random"

// RunConfig fixes the parameters of a single run. It is not modified once
// the run starts.
type RunConfig struct {
	Workers int
	Width   int
	Height  int

	// Generations stops the run after this many ticks. Zero means no limit.
	Generations int
	// TimeLimit stops the run after the first tick that ends past it. Zero
	// means no limit. With both limits zero the run is open-ended.
	TimeLimit time.Duration

	Edge    life.Edge
	Pattern string
	Seed    int64
	Density float64

	// TPS caps ticks per second. Zero runs as fast as the workers allow.
	TPS int

	// Initial replaces the seeded board when set.
	Initial *core.Board
}

// OpenEnded reports whether the run only ends on Stop.
func (c RunConfig) OpenEnded() bool { return c.Generations == 0 && c.TimeLimit == 0 }

// Validate rejects configurations that cannot start.
func (c RunConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return &ConfigError{Field: "width", Reason: "must be positive"}
	case c.Height <= 0:
		return &ConfigError{Field: "height", Reason: "must be positive"}
	case c.Workers < 1:
		return &ConfigError{Field: "workers", Reason: "must be at least 1"}
	case c.Workers > c.Height:
		return &ConfigError{Field: "workers", Reason: "must not exceed the board height"}
	case c.Generations < 0:
		return &ConfigError{Field: "generations", Reason: "must not be negative"}
	case c.TimeLimit < 0:
		return &ConfigError{Field: "time_limit", Reason: "must not be negative"}
	case c.Density < 0 || c.Density > 1:
		return &ConfigError{Field: "density", Reason: "must be within [0, 1]"}
	case c.TPS < 0:
		return &ConfigError{Field: "tps", Reason: "must not be negative"}
	case c.Edge != life.Clamped && c.Edge != life.Torus:
		return &ConfigError{Field: "edge", Reason: "unknown policy"}
	}
	if c.Initial != nil {
		if c.Initial.Width() != c.Width || c.Initial.Height() != c.Height {
			return &ConfigError{Field: "initial", Reason: "board size does not match width and height"}
		}
		return nil
	}
	if _, err := life.Seed(c.pattern(), life.SeedOptions{Size: core.Size{W: 1, H: 1}}); err != nil {
		return &ConfigError{Field: "pattern", Reason: err.Error()}
	}
	return nil
}

// InitialBoard returns the supplied board or seeds one from the pattern.
func (c RunConfig) InitialBoard() (core.Board, error) {
	if c.Initial != nil {
		return *c.Initial, nil
	}
	return life.Seed(c.pattern(), life.SeedOptions{
		Size:    core.Size{W: c.Width, H: c.Height},
		Seed:    c.Seed,
		Density: c.Density,
	})
}

func (c RunConfig) pattern() string {
	if c.Pattern == "" {
		return DefaultPattern
	}
	return c.Pattern
}
