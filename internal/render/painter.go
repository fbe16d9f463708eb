//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"gol-bench/pkg/core"
)

// GridPainter updates a single RGBA image from board snapshots.
type GridPainter struct {
	w, h    int
	img     *ebiten.Image
	buf     []byte
	palette Palette
}

// NewGridPainter allocates a painter for a board of size w*h.
func NewGridPainter(w, h int, p Palette) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h), palette: p}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit uploads the board into the painter image and draws it scaled onto dst.
// Boards of a different size are ignored.
func (gp *GridPainter) Blit(dst *ebiten.Image, b core.Board, scale int) {
	if b.Width() != gp.w || b.Height() != gp.h {
		return
	}
	FillRGBA(gp.buf, b, gp.palette)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
