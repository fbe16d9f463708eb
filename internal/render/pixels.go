package render

import (
	"image"
	"image/color"

	"gol-bench/pkg/core"
)

// Palette maps the two cell states to colours.
type Palette struct {
	Dead  color.Color
	Alive color.Color
}

// DefaultPalette draws dead cells white and live cells black.
func DefaultPalette() Palette {
	return Palette{Dead: color.White, Alive: color.Black}
}

// Color returns the colour for c.
func (p Palette) Color(c core.Cell) color.Color {
	if c == core.Alive {
		return p.Alive
	}
	return p.Dead
}

// FillRGBA converts the board into RGBA pixels in buf, which must hold at
// least 4*W*H bytes.
func FillRGBA(buf []byte, b core.Board, p Palette) {
	fillBinaryRGBA(buf, b.Cells(), p.Alive, p.Dead)
}

// Image renders the board as a new RGBA image with one pixel per cell.
func Image(b core.Board, p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width(), b.Height()))
	FillRGBA(img.Pix, b, p)
	return img
}

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}
