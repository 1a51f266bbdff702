package render

import "github.com/chewxy/math32"

var bayer4 = [16]float32{
	0.0 / 16, 8.0 / 16, 2.0 / 16, 10.0 / 16,
	12.0 / 16, 4.0 / 16, 14.0 / 16, 6.0 / 16,
	3.0 / 16, 11.0 / 16, 1.0 / 16, 9.0 / 16,
	15.0 / 16, 7.0 / 16, 13.0 / 16, 5.0 / 16,
}

// DitherLevels is the number of quantization steps per channel.
const DitherLevels = 32

// Dither applies an ordered 4x4 Bayer dither and quantizes every channel to
// DitherLevels steps.
func Dither(t Target) {
	w, h := t.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.SetPixel(x, y, DitherPixel(t.Pixel(x, y), x, y))
		}
	}
}

// DitherPixel returns c dithered for screen position (x, y).
func DitherPixel(c Color, x, y int) Color {
	d := (bayer4[(y&3)*4+(x&3)] - 0.5) / DitherLevels
	q := func(v uint8) uint8 {
		f := float32(v)/255 + d
		f = math32.Floor(f*DitherLevels+0.5) / DitherLevels
		return uint8(Clamp01(f)*255 + 0.5)
	}
	return Color{R: q(c.R), G: q(c.G), B: q(c.B), A: c.A}
}
