package life

import (
	"errors"
	"fmt"

	"gol-bench/pkg/core"
)

// ErrInvalidPartition reports a worker count that cannot split the board.
var ErrInvalidPartition = errors.New("invalid partition")

// Partition is a half-open row band [Start, End) owned by one worker for a tick.
type Partition struct {
	Index int
	Start int
	End   int

	height int
	edge   Edge
}

// Rows returns the number of rows in the band.
func (p Partition) Rows() int { return p.End - p.Start }

// HaloTop returns the row read above the band, or -1 when it lies off a
// clamped board.
func (p Partition) HaloTop() int {
	if p.Start > 0 {
		return p.Start - 1
	}
	if p.edge == Torus {
		return p.height - 1
	}
	return -1
}

// HaloBottom returns the row read below the band, or -1 when it lies off a
// clamped board.
func (p Partition) HaloBottom() int {
	if p.End < p.height {
		return p.End
	}
	if p.edge == Torus {
		return 0
	}
	return -1
}

// Plan splits height rows into workers contiguous bands. The first
// height%workers bands take one extra row.
func Plan(height, workers int, edge Edge) ([]Partition, error) {
	if height < 1 {
		return nil, fmt.Errorf("%w: height %d", ErrInvalidPartition, height)
	}
	if workers < 1 || workers > height {
		return nil, fmt.Errorf("%w: %d workers for %d rows", ErrInvalidPartition, workers, height)
	}
	base, extra := height/workers, height%workers
	parts := make([]Partition, workers)
	start := 0
	for i := range parts {
		rows := base
		if i < extra {
			rows++
		}
		parts[i] = Partition{Index: i, Start: start, End: start + rows, height: height, edge: edge}
		start += rows
	}
	return parts, nil
}

// ComputeRows writes the next generation of p's rows into dst, reading only cur.
// dst must hold exactly p.Rows()*cur.Width() cells.
func ComputeRows(cur core.Board, p Partition, edge Edge, dst []uint8) error {
	if p.Start < 0 || p.End > cur.Height() || p.Start >= p.End {
		return fmt.Errorf("%w: rows [%d,%d) on %d-row board", ErrInvalidPartition, p.Start, p.End, cur.Height())
	}
	if want := p.Rows() * cur.Width(); len(dst) != want {
		return fmt.Errorf("%w: destination holds %d cells, want %d", ErrInvalidPartition, len(dst), want)
	}
	computeRows(cur, p.Start, p.End, edge, dst)
	return nil
}
