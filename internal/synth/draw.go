package synth

import (
	"image/color"
	"math"

	"tinygo.org/x/drivers"
)

func rgb565From888(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

// canvas draws into a tightly packed RGB565 buffer, clipping at the edges.
type canvas struct {
	buf    []byte
	stride int
	w, h   int
}

var _ drivers.Displayer = (*canvas)(nil)

func (c *canvas) Size() (x, y int16) { return int16(c.w), int16(c.h) }

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	c.set(int(x), int(y), rgb565From888(col.R, col.G, col.B))
}

func (c *canvas) Display() error { return nil }

func (c *canvas) set(x, y int, pixel uint16) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	off := y*c.stride + x*2
	c.buf[off] = byte(pixel)
	c.buf[off+1] = byte(pixel >> 8)
}

func (c *canvas) clear(pixel uint16) {
	lo, hi := byte(pixel), byte(pixel>>8)
	for i := 0; i+1 < len(c.buf); i += 2 {
		c.buf[i] = lo
		c.buf[i+1] = hi
	}
}

func (c *canvas) fillRect(x0, y0, w, h int, pixel uint16) {
	x1, y1 := min(x0+w, c.w), min(y0+h, c.h)
	x0, y0 = max(x0, 0), max(y0, 0)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.set(x, y, pixel)
		}
	}
}

func (c *canvas) line(x0, y0, x1, y1 int, pixel uint16) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.set(x0, y0, pixel)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *canvas) circle(cx, cy, r int, pixel uint16) {
	x, y, err := r, 0, 0
	for x >= y {
		for _, p := range [8][2]int{
			{cx + x, cy + y}, {cx + y, cy + x}, {cx - x, cy + y}, {cx - y, cy + x},
			{cx - x, cy - y}, {cx - y, cy - x}, {cx + x, cy - y}, {cx + y, cy - x},
		} {
			c.set(p[0], p[1], pixel)
		}
		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func (c *canvas) fillCircle(cx, cy, r int, pixel uint16) {
	for y := -r; y <= r; y++ {
		dx := int(math.Sqrt(float64(r*r - y*y)))
		c.fillRect(cx-dx, cy+y, dx*2+1, 1, pixel)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
