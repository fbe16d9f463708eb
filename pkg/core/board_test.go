package core

import (
	"errors"
	"slices"
	"testing"
)

func TestParseBoardRoundTrip(t *testing.T) {
	b, err := ParseBoard(
		"....",
		".###",
		"....",
	)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if b.Width() != 4 || b.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", b.Width(), b.Height())
	}
	want := "....\n.###\n....\n"
	if got := b.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if b.Population() != 3 {
		t.Fatalf("population = %d, want 3", b.Population())
	}
}

func TestParseBoardRejectsRaggedRows(t *testing.T) {
	_, err := ParseBoard("...", "..")
	if !errors.Is(err, ErrBoardShape) {
		t.Fatalf("err = %v, want ErrBoardShape", err)
	}
}

func TestBoardFromCellsValidatesLength(t *testing.T) {
	if _, err := BoardFromCells(3, 3, make([]uint8, 8)); !errors.Is(err, ErrBoardShape) {
		t.Fatalf("err = %v, want ErrBoardShape", err)
	}
	if _, err := BoardFromCells(0, 3, nil); !errors.Is(err, ErrBoardShape) {
		t.Fatalf("err = %v, want ErrBoardShape for zero width", err)
	}
}

func TestAtOffBoardIsDead(t *testing.T) {
	b := NewBoard(2, 2).With(Pt(0, 0), Pt(1, 1))
	if b.At(-1, 0) != Dead || b.At(0, 2) != Dead || b.At(2, 1) != Dead {
		t.Fatal("off-board cells must read as Dead")
	}
	if !b.Alive(0, 0) || !b.Alive(1, 1) || b.Alive(0, 1) {
		t.Fatalf("unexpected cells:\n%s", b)
	}
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	base := NewBoard(3, 3)
	next := base.With(Pt(1, 1))
	if base.Population() != 0 {
		t.Fatal("With mutated the original board")
	}
	if !next.Alive(1, 1) {
		t.Fatal("With did not set the point")
	}
	if got := next.AlivePoints(); !slices.Equal(got, []Point{{Row: 1, Col: 1}}) {
		t.Fatalf("AlivePoints = %v", got)
	}
}

func TestRandomBoardDeterministic(t *testing.T) {
	a := RandomBoard(16, 12, 7, 0.5)
	b := RandomBoard(16, 12, 7, 0.5)
	if !a.Equal(b) {
		t.Fatal("same seed produced different boards")
	}
	if RandomBoard(16, 12, 7, 0).Population() != 0 {
		t.Fatal("density 0 must produce an empty board")
	}
	if RandomBoard(16, 12, 7, 1).Population() != 16*12 {
		t.Fatal("density 1 must produce a full board")
	}
}
