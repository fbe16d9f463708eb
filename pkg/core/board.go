package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBoardShape reports cell data that does not match the requested dimensions.
var ErrBoardShape = errors.New("board shape mismatch")

// Cell is the binary state of a single board position.
type Cell uint8

const (
	// Dead is the background state.
	Dead Cell = 0
	// Alive is the populated state.
	Alive Cell = 1
)

// Size describes the dimensions of a board.
type Size struct {
	W int
	H int
}

// Cells returns the number of positions covered by the size.
func (s Size) Cells() int { return s.W * s.H }

// Point addresses a cell by row and column.
type Point struct {
	Row int
	Col int
}

// Pt is shorthand for Point{Row: row, Col: col}.
func Pt(row, col int) Point { return Point{Row: row, Col: col} }

// Board is an immutable snapshot of a grid of cells stored in row-major order.
// Values are shared freely between goroutines; nothing mutates a Board once it
// has been constructed.
type Board struct {
	w, h int
	data []uint8
}

// NewBoard allocates an all-dead board. Non-positive dimensions are clamped to 1.
func NewBoard(w, h int) Board {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return Board{w: w, h: h, data: make([]uint8, w*h)}
}

// BoardFromCells wraps cells as a board. The board takes ownership of the
// slice; the caller must not modify it afterwards.
func BoardFromCells(w, h int, cells []uint8) (Board, error) {
	if w <= 0 || h <= 0 {
		return Board{}, fmt.Errorf("%w: dimensions %dx%d", ErrBoardShape, w, h)
	}
	if len(cells) != w*h {
		return Board{}, fmt.Errorf("%w: %d cells for %dx%d", ErrBoardShape, len(cells), w, h)
	}
	for i, c := range cells {
		if c > 1 {
			cells[i] = 1
		}
	}
	return Board{w: w, h: h, data: cells}, nil
}

// ParseBoard builds a board from text rows. '#', 'O' and '1' mark live cells;
// '.', '0', '_' and ' ' mark dead ones.
func ParseBoard(rows ...string) (Board, error) {
	if len(rows) == 0 {
		return Board{}, fmt.Errorf("%w: no rows", ErrBoardShape)
	}
	w := len(rows[0])
	cells := make([]uint8, 0, w*len(rows))
	for r, row := range rows {
		if len(row) != w {
			return Board{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrBoardShape, r, len(row), w)
		}
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case '#', 'O', '1':
				cells = append(cells, 1)
			case '.', '0', '_', ' ':
				cells = append(cells, 0)
			default:
				return Board{}, fmt.Errorf("%w: unexpected %q at row %d col %d", ErrBoardShape, row[c], r, c)
			}
		}
	}
	return BoardFromCells(w, len(rows), cells)
}

// Width returns the number of columns.
func (b Board) Width() int { return b.w }

// Height returns the number of rows.
func (b Board) Height() int { return b.h }

// Size returns the board dimensions.
func (b Board) Size() Size { return Size{W: b.w, H: b.h} }

// Empty reports whether the board was never constructed.
func (b Board) Empty() bool { return b.data == nil }

// Index returns the linear slice index for (row, col).
func (b Board) Index(row, col int) int { return row*b.w + col }

// Contains reports whether (row, col) lies on the board.
func (b Board) Contains(row, col int) bool {
	return row >= 0 && row < b.h && col >= 0 && col < b.w
}

// At returns the cell at (row, col). Off-board positions read as Dead.
func (b Board) At(row, col int) Cell {
	if !b.Contains(row, col) {
		return Dead
	}
	return Cell(b.data[row*b.w+col])
}

// Alive reports whether the cell at (row, col) is alive.
func (b Board) Alive(row, col int) bool { return b.At(row, col) == Alive }

// Row returns the cells of a single row. The slice aliases the board and must
// not be modified.
func (b Board) Row(row int) []uint8 {
	return b.data[row*b.w : (row+1)*b.w]
}

// Cells exposes the backing slice for renderers. It must not be modified.
func (b Board) Cells() []uint8 { return b.data }

// Population counts the live cells.
func (b Board) Population() int {
	n := 0
	for _, c := range b.data {
		n += int(c)
	}
	return n
}

// AlivePoints lists the live cells in row-major order.
func (b Board) AlivePoints() []Point {
	var pts []Point
	for i, c := range b.data {
		if c != 0 {
			pts = append(pts, Point{Row: i / b.w, Col: i % b.w})
		}
	}
	return pts
}

// With returns a copy of the board with the given points set alive. Points
// outside the board are ignored.
func (b Board) With(points ...Point) Board {
	cp := Board{w: b.w, h: b.h, data: make([]uint8, len(b.data))}
	copy(cp.data, b.data)
	for _, p := range points {
		if b.Contains(p.Row, p.Col) {
			cp.data[p.Row*b.w+p.Col] = 1
		}
	}
	return cp
}

// Equal reports whether both boards have the same dimensions and cells.
func (b Board) Equal(other Board) bool {
	if b.w != other.w || b.h != other.h || len(b.data) != len(other.data) {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String renders the board with '#' for live and '.' for dead cells.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow((b.w + 1) * b.h)
	for r := 0; r < b.h; r++ {
		for _, c := range b.Row(r) {
			if c != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
