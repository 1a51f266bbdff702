package render

// ScanlineDim scales odd rows in the Scanlines pass.
const ScanlineDim = 0.8

// Scanlines darkens every odd row of t to mimic a low-resolution display.
func Scanlines(t Target) {
	w, h := t.Size()
	for y := 1; y < h; y += 2 {
		for x := 0; x < w; x++ {
			c := t.Pixel(x, y)
			t.SetPixel(x, y, Color{R: dim(c.R), G: dim(c.G), B: dim(c.B), A: c.A})
		}
	}
}

func dim(v uint8) uint8 { return uint8(float32(v)*ScanlineDim + 0.5) }
