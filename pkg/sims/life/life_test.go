package life

import (
	"errors"
	"slices"
	"testing"

	"gol-bench/pkg/core"
)

func TestBlinkerOscillation(t *testing.T) {
	board := core.NewBoard(5, 5).With(core.Pt(1, 2), core.Pt(2, 2), core.Pt(3, 2))

	board = Step(board, Clamped)
	want := []core.Point{{Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}}
	if got := board.AlivePoints(); !slices.Equal(got, want) {
		t.Fatalf("after first step alive = %v, want %v", got, want)
	}

	board = Step(board, Clamped)
	want = []core.Point{{Row: 1, Col: 2}, {Row: 2, Col: 2}, {Row: 3, Col: 2}}
	if got := board.AlivePoints(); !slices.Equal(got, want) {
		t.Fatalf("after second step alive = %v, want %v", got, want)
	}
}

func TestClampedEdgeCountsOffBoardAsDead(t *testing.T) {
	// A blinker on the top edge loses its upper arm when clamped but wraps on a torus.
	board := core.NewBoard(5, 5).With(core.Pt(0, 1), core.Pt(0, 2), core.Pt(0, 3))

	clamped := Step(board, Clamped)
	want := []core.Point{{Row: 0, Col: 2}, {Row: 1, Col: 2}}
	if got := clamped.AlivePoints(); !slices.Equal(got, want) {
		t.Fatalf("clamped alive = %v, want %v", got, want)
	}

	torus := Step(board, Torus)
	want = []core.Point{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 4, Col: 2}}
	if got := torus.AlivePoints(); !slices.Equal(got, want) {
		t.Fatalf("torus alive = %v, want %v", got, want)
	}
}

func TestEmptyBoardIsFixedPoint(t *testing.T) {
	board := core.NewBoard(9, 7)
	for _, edge := range []Edge{Clamped, Torus} {
		if got := StepN(board, edge, 10); got.Population() != 0 {
			t.Fatalf("%s: empty board gained %d cells", edge, got.Population())
		}
	}
}

func TestPlanCoversAllRows(t *testing.T) {
	for h := 1; h <= 17; h++ {
		for n := 1; n <= h; n++ {
			parts, err := Plan(h, n, Clamped)
			if err != nil {
				t.Fatalf("Plan(%d,%d): %v", h, n, err)
			}
			if len(parts) != n {
				t.Fatalf("Plan(%d,%d) returned %d parts", h, n, len(parts))
			}
			next := 0
			for i, p := range parts {
				if p.Index != i || p.Start != next || p.End <= p.Start {
					t.Fatalf("Plan(%d,%d) part %d = %+v", h, n, i, p)
				}
				if rows := p.Rows(); rows != h/n && rows != h/n+1 {
					t.Fatalf("Plan(%d,%d) part %d has %d rows", h, n, i, rows)
				}
				if i < h%n && p.Rows() != h/n+1 {
					t.Fatalf("Plan(%d,%d) remainder row missing from part %d", h, n, i)
				}
				next = p.End
			}
			if next != h {
				t.Fatalf("Plan(%d,%d) covers %d rows", h, n, next)
			}
		}
	}
}

func TestPlanRejectsBadWorkerCounts(t *testing.T) {
	for _, tc := range []struct{ h, n int }{{4, 0}, {4, 5}, {0, 1}, {3, -1}} {
		if _, err := Plan(tc.h, tc.n, Clamped); !errors.Is(err, ErrInvalidPartition) {
			t.Fatalf("Plan(%d,%d) err = %v, want ErrInvalidPartition", tc.h, tc.n, err)
		}
	}
}

func TestHalo(t *testing.T) {
	parts, _ := Plan(6, 3, Clamped)
	if parts[0].HaloTop() != -1 || parts[0].HaloBottom() != 2 {
		t.Fatalf("first band halo = %d/%d", parts[0].HaloTop(), parts[0].HaloBottom())
	}
	if parts[2].HaloTop() != 3 || parts[2].HaloBottom() != -1 {
		t.Fatalf("last band halo = %d/%d", parts[2].HaloTop(), parts[2].HaloBottom())
	}
	wrapped, _ := Plan(6, 3, Torus)
	if wrapped[0].HaloTop() != 5 || wrapped[2].HaloBottom() != 0 {
		t.Fatalf("torus halo = %d/%d", wrapped[0].HaloTop(), wrapped[2].HaloBottom())
	}
}

func TestPartitionedStepMatchesSequential(t *testing.T) {
	board := core.RandomBoard(23, 19, 42, 0.4)
	for _, edge := range []Edge{Clamped, Torus} {
		want := Step(board, edge)
		for _, n := range []int{1, 2, 5, 19} {
			parts, err := Plan(board.Height(), n, edge)
			if err != nil {
				t.Fatal(err)
			}
			next := make([]uint8, board.Size().Cells())
			for _, p := range parts {
				dst := next[p.Start*board.Width() : p.End*board.Width()]
				if err := ComputeRows(board, p, edge, dst); err != nil {
					t.Fatalf("ComputeRows: %v", err)
				}
			}
			got, err := core.BoardFromCells(board.Width(), board.Height(), next)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(want) {
				t.Fatalf("%s with %d workers diverged from sequential step", edge, n)
			}
		}
	}
}

func TestComputeRowsRejectsWrongDestination(t *testing.T) {
	board := core.NewBoard(4, 4)
	parts, _ := Plan(4, 2, Clamped)
	if err := ComputeRows(board, parts[0], Clamped, make([]uint8, 3)); !errors.Is(err, ErrInvalidPartition) {
		t.Fatalf("err = %v, want ErrInvalidPartition", err)
	}
}

func TestSeedPatterns(t *testing.T) {
	size := core.Size{W: 11, H: 11}
	for _, name := range Patterns() {
		b, err := Seed(name, SeedOptions{Size: size, Seed: 3, Density: 0.3})
		if err != nil {
			t.Fatalf("Seed(%q): %v", name, err)
		}
		if b.Size() != size {
			t.Fatalf("Seed(%q) size = %+v", name, b.Size())
		}
	}
	blinker, _ := Seed("blinker", SeedOptions{Size: size})
	if blinker.Population() != 3 || !StepN(blinker, Clamped, 2).Equal(blinker) {
		t.Fatalf("blinker seed is not a period-2 oscillator:\n%s", blinker)
	}
	if _, err := Seed("nope", SeedOptions{Size: size}); err == nil {
		t.Fatal("unknown pattern must fail")
	}
}
