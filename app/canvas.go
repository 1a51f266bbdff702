package app

import (
	"image"
	"image/color"
	"unicode/utf8"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var font tinyfont.Fonter = &proggy.TinySZ8pt7b

const (
	lineHeight = 10
	// baseline offset from the top of a text row
	fontOffset = 8
)

// glyphWidth is the advance of the monospace overlay font.
var glyphWidth = func() int {
	_, w := tinyfont.LineWidth(font, "0")
	if w == 0 {
		return 6
	}
	return int(w)
}()

// canvas draws overlay text and boxes onto the composed frame.
type canvas struct {
	img *image.RGBA
}

var _ drivers.Displayer = canvas{}

func (c canvas) Size() (x, y int16) {
	if c.img == nil {
		return 0, 0
	}
	return int16(c.img.Rect.Dx()), int16(c.img.Rect.Dy())
}

func (c canvas) SetPixel(x, y int16, col color.RGBA) {
	if c.img == nil {
		return
	}
	p := image.Pt(int(x), int(y))
	if !p.In(c.img.Rect) {
		return
	}
	c.img.SetRGBA(p.X, p.Y, col)
}

func (c canvas) Display() error { return nil }

// text draws s with its top-left corner at (x, y).
func (c canvas) text(x, y int, s string, col color.RGBA) {
	tinyfont.WriteLine(c, font, int16(x), int16(y+fontOffset), s, col)
}

// shade blends col over r at the given alpha.
func (c canvas) shade(r image.Rectangle, col color.RGBA, alpha uint8) {
	if c.img == nil {
		return
	}
	r = r.Intersect(c.img.Rect)
	a := uint32(alpha)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d := c.img.RGBAAt(x, y)
			c.img.SetRGBA(x, y, color.RGBA{
				R: uint8((uint32(col.R)*a + uint32(d.R)*(255-a)) / 255),
				G: uint8((uint32(col.G)*a + uint32(d.G)*(255-a)) / 255),
				B: uint8((uint32(col.B)*a + uint32(d.B)*(255-a)) / 255),
				A: 0xFF,
			})
		}
	}
}

func (c canvas) fill(r image.Rectangle, col color.RGBA) {
	if c.img == nil {
		return
	}
	r = r.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.img.SetRGBA(x, y, col)
		}
	}
}

// blit copies src scaled with nearest filtering into r.
func blit(dst *image.RGBA, r image.Rectangle, src *image.RGBA) {
	if src == nil || r.Empty() {
		return
	}
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	if sw == 0 || sh == 0 {
		return
	}
	clip := r.Intersect(dst.Rect)
	rw, rh := r.Dx(), r.Dy()
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		sy := (y - r.Min.Y) * sh / rh
		srow := src.Pix[sy*src.Stride:]
		drow := dst.Pix[(y-dst.Rect.Min.Y)*dst.Stride:]
		for x := clip.Min.X; x < clip.Max.X; x++ {
			sx := (x - r.Min.X) * sw / rw
			copy(drow[(x-dst.Rect.Min.X)*4:(x-dst.Rect.Min.X)*4+4], srow[sx*4:sx*4+4])
		}
	}
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for k := 0; k < n; k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}
