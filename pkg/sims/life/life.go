package life

import (
	"fmt"
	"strings"

	"gol-bench/pkg/core"
)

// Edge selects how neighbours beyond the board boundary are counted.
type Edge uint8

const (
	// Clamped treats off-board neighbours as dead.
	Clamped Edge = iota
	// Torus wraps rows and columns around the opposite edge.
	Torus
)

// String returns the flag spelling of the edge policy.
func (e Edge) String() string {
	switch e {
	case Clamped:
		return "clamped"
	case Torus:
		return "torus"
	default:
		return fmt.Sprintf("edge(%d)", uint8(e))
	}
}

// ParseEdge converts a flag or config value into an Edge.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamped", "clamp":
		return Clamped, nil
	case "torus", "wrap":
		return Torus, nil
	}
	return Clamped, fmt.Errorf("unknown edge policy %q", s)
}

// Next applies the B3/S23 rule to a cell with n live neighbours.
func Next(alive bool, n int) uint8 {
	if n == 3 || (alive && n == 2) {
		return 1
	}
	return 0
}

// Neighbours counts the live cells around (row, col).
func Neighbours(b core.Board, row, col int, edge Edge) int {
	w, h := b.Width(), b.Height()
	cells := b.Cells()
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			ny, nx := row+dy, col+dx
			if edge == Torus {
				ny = (ny + h) % h
				nx = (nx + w) % w
			} else if ny < 0 || ny >= h || nx < 0 || nx >= w {
				continue
			}
			n += int(cells[ny*w+nx])
		}
	}
	return n
}

// Step advances the whole board by one generation on the calling goroutine.
func Step(b core.Board, edge Edge) core.Board {
	w, h := b.Width(), b.Height()
	nxt := make([]uint8, w*h)
	computeRows(b, 0, h, edge, nxt)
	out, _ := core.BoardFromCells(w, h, nxt)
	return out
}

// StepN applies Step n times.
func StepN(b core.Board, edge Edge, n int) core.Board {
	for i := 0; i < n; i++ {
		b = Step(b, edge)
	}
	return b
}

func computeRows(b core.Board, start, end int, edge Edge, dst []uint8) {
	w := b.Width()
	cells := b.Cells()
	for y := start; y < end; y++ {
		base := (y - start) * w
		for x := 0; x < w; x++ {
			n := Neighbours(b, y, x, edge)
			dst[base+x] = Next(cells[y*w+x] == 1, n)
		}
	}
}
