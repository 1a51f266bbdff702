package render

import (
	"image"
	"image/color"
)

// Target is a pixel surface for software rendering.
//
// Implementations clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Pixel(x, y int) Color
	Clear(c Color)
}

// RGBATarget renders into an image.RGBA.
type RGBATarget struct {
	Img *image.RGBA
}

func NewRGBATarget(w, h int) *RGBATarget {
	return &RGBATarget{Img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Resize reallocates the image when the size changes.
func (t *RGBATarget) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if t.Img != nil && t.Img.Rect.Dx() == w && t.Img.Rect.Dy() == h {
		return
	}
	t.Img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (t *RGBATarget) Size() (w, h int) {
	if t == nil || t.Img == nil {
		return 0, 0
	}
	return t.Img.Rect.Dx(), t.Img.Rect.Dy()
}

func (t *RGBATarget) Clear(c Color) {
	if t == nil || t.Img == nil {
		return
	}
	p := t.Img.Pix
	for i := 0; i+3 < len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = c.R, c.G, c.B, c.A
	}
}

func (t *RGBATarget) SetPixel(x, y int, c Color) {
	if t == nil || t.Img == nil {
		return
	}
	if x < 0 || y < 0 || x >= t.Img.Rect.Dx() || y >= t.Img.Rect.Dy() {
		return
	}
	t.Img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
}

func (t *RGBATarget) Pixel(x, y int) Color {
	if t == nil || t.Img == nil {
		return Color{}
	}
	if x < 0 || y < 0 || x >= t.Img.Rect.Dx() || y >= t.Img.Rect.Dy() {
		return Color{}
	}
	c := t.Img.RGBAAt(x, y)
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RGB565Target renders into an RGB565 buffer. Callers provide the backing
// buffer and layout (stride).
type RGB565Target struct {
	Buf    []byte
	Stride int // bytes per row
	W      int
	H      int
}

func (t *RGB565Target) Size() (w, h int) { return t.W, t.H }

func (t *RGB565Target) Clear(c Color) {
	if t == nil || t.Buf == nil || t.Stride <= 0 {
		return
	}
	p := rgb565From888(c.R, c.G, c.B)
	for y := 0; y < t.H; y++ {
		row := y * t.Stride
		for x := 0; x < t.W; x++ {
			off := row + x*2
			if off+1 >= len(t.Buf) {
				return
			}
			t.Buf[off] = byte(p)
			t.Buf[off+1] = byte(p >> 8)
		}
	}
}

func (t *RGB565Target) SetPixel(x, y int, c Color) {
	off, ok := t.offset(x, y)
	if !ok {
		return
	}
	p := rgb565From888(c.R, c.G, c.B)
	t.Buf[off] = byte(p)
	t.Buf[off+1] = byte(p >> 8)
}

func (t *RGB565Target) Pixel(x, y int) Color {
	off, ok := t.offset(x, y)
	if !ok {
		return Color{}
	}
	r, g, b := rgb888From565(uint16(t.Buf[off]) | uint16(t.Buf[off+1])<<8)
	return RGB(r, g, b)
}

func (t *RGB565Target) offset(x, y int) (int, bool) {
	if t == nil || t.Buf == nil || t.Stride <= 0 {
		return 0, false
	}
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return 0, false
	}
	off := y*t.Stride + x*2
	if off+1 >= len(t.Buf) {
		return 0, false
	}
	return off, true
}
