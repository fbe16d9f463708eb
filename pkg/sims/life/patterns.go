package life

import (
	"fmt"
	"sort"

	"gol-bench/pkg/core"
)

// SeedOptions carries the inputs a Seeder may use.
type SeedOptions struct {
	Size    core.Size
	Seed    int64
	Density float64
}

// Seeder builds an initial board.
type Seeder func(opts SeedOptions) core.Board

var seeders = map[string]Seeder{}

// Register adds a seeder under the provided name.
func Register(name string, s Seeder) {
	if name == "" || s == nil {
		return
	}
	seeders[name] = s
}

// Patterns lists the registered seeder names in sorted order.
func Patterns() []string {
	names := make([]string, 0, len(seeders))
	for name := range seeders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seed builds the initial board for a registered pattern.
func Seed(name string, opts SeedOptions) (core.Board, error) {
	s, ok := seeders[name]
	if !ok {
		return core.Board{}, fmt.Errorf("unknown pattern %q", name)
	}
	return s(opts), nil
}

// centred places rows of text in the middle of an otherwise dead board.
func centred(size core.Size, rows ...string) core.Board {
	b := core.NewBoard(size.W, size.H)
	top := (size.H - len(rows)) / 2
	var pts []core.Point
	for r, row := range rows {
		left := (size.W - len(row)) / 2
		for c := 0; c < len(row); c++ {
			if row[c] == '#' {
				pts = append(pts, core.Pt(top+r, left+c))
			}
		}
	}
	return b.With(pts...)
}

func init() {
	Register("random", func(o SeedOptions) core.Board {
		return core.RandomBoard(o.Size.W, o.Size.H, o.Seed, o.Density)
	})
	Register("empty", func(o SeedOptions) core.Board {
		return core.NewBoard(o.Size.W, o.Size.H)
	})
	Register("blinker", func(o SeedOptions) core.Board {
		return centred(o.Size, "###")
	})
	Register("glider", func(o SeedOptions) core.Board {
		return centred(o.Size, ".#.", "..#", "###")
	})
	Register("rpentomino", func(o SeedOptions) core.Board {
		return centred(o.Size, ".##", "##.", ".#.")
	})
	Register("acorn", func(o SeedOptions) core.Board {
		return centred(o.Size, ".#.....", "...#...", "##..###")
	})
}
