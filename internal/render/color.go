package render

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex converts 0xRRGGBB into an opaque Color.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

// Float returns the color as 0..1 channels.
func (c Color) Float() RGBf {
	return RGBf{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255}
}

// RGBf is an unclamped float color used during shading.
type RGBf struct {
	R, G, B float32
}

func (c RGBf) Add(o RGBf) RGBf      { return RGBf{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c RGBf) Mul(o RGBf) RGBf      { return RGBf{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c RGBf) Scale(s float32) RGBf { return RGBf{c.R * s, c.G * s, c.B * s} }

// Lerp mixes c toward o by t.
func (c RGBf) Lerp(o RGBf, t float32) RGBf {
	return RGBf{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// Bytes clamps c to 8-bit channels with the given alpha.
func (c RGBf) Bytes(a uint8) Color {
	return Color{
		R: uint8(Clamp01(c.R)*255 + 0.5),
		G: uint8(Clamp01(c.G)*255 + 0.5),
		B: uint8(Clamp01(c.B)*255 + 0.5),
		A: a,
	}
}

// blend composites src over dst with coverage alpha in 0..1.
func blend(dst Color, src RGBf, alpha float32) Color {
	if alpha >= 1 {
		return src.Bytes(0xFF)
	}
	d := dst.Float()
	return d.Lerp(src, alpha).Bytes(0xFF)
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}
