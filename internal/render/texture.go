package render

// TextureSource is an RGB565 surface a Texture can copy from.
type TextureSource interface {
	Size() (w, h int)
	// Snapshot copies the surface into dst (2 bytes per pixel, little endian,
	// tightly packed) and returns the filled slice.
	Snapshot(dst []byte) []byte
}

// Texture is a sampled image backed by a TextureSource. Setting NeedsUpdate
// makes the next draw copy the source again.
type Texture struct {
	Source      TextureSource
	NeedsUpdate bool
	Nearest     bool

	// Version counts completed uploads.
	Version uint64

	w, h int
	raw  []byte
	pix  []RGBf

	dev      *Device
	buf      BufferID
	disposed bool
}

func NewTexture(src TextureSource) *Texture {
	return &Texture{Source: src, NeedsUpdate: true, Nearest: true}
}

func (t *Texture) Size() (w, h int) { return t.w, t.h }
func (t *Texture) Uploaded() bool   { return t.buf != 0 }
func (t *Texture) Disposed() bool   { return t.disposed }

func (t *Texture) Dispose() {
	if t.dev != nil {
		t.dev.Free(t.buf)
	}
	t.buf = 0
	t.disposed = true
}

func (t *Texture) upload(dev *Device) {
	if t.disposed || dev == nil || t.Source == nil {
		return
	}
	if t.buf != 0 && !t.NeedsUpdate {
		return
	}
	w, h := t.Source.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.raw = t.Source.Snapshot(t.raw[:0])
	if w != t.w || h != t.h || t.buf == 0 {
		if t.dev != nil {
			t.dev.Free(t.buf)
		}
		t.dev = dev
		t.w, t.h = w, h
		t.buf = dev.Alloc(BufferTexture, 2*w*h)
	}
	if cap(t.pix) < w*h {
		t.pix = make([]RGBf, w*h)
	}
	t.pix = t.pix[:w*h]
	for i := range t.pix {
		if 2*i+1 >= len(t.raw) {
			t.pix[i] = RGBf{}
			continue
		}
		p := uint16(t.raw[2*i]) | uint16(t.raw[2*i+1])<<8
		r, g, b := rgb888From565(p)
		t.pix[i] = RGB(r, g, b).Float()
	}
	t.NeedsUpdate = false
	t.Version++
}

// Sample returns the texel at (u, v); v = 0 is the bottom row.
func (t *Texture) Sample(u, v float32) RGBf {
	if len(t.pix) == 0 {
		return RGBf{}
	}
	u = Clamp01(u)
	v = Clamp01(v)
	x := int(u * float32(t.w))
	y := int((1 - v) * float32(t.h))
	if x >= t.w {
		x = t.w - 1
	}
	if y >= t.h {
		y = t.h - 1
	}
	if t.Nearest {
		return t.pix[y*t.w+x]
	}
	return t.bilinear(u*float32(t.w)-0.5, (1-v)*float32(t.h)-0.5)
}

func (t *Texture) bilinear(fx, fy float32) RGBf {
	x0, y0 := int(fx), int(fy)
	if fx < 0 {
		x0 = -1
	}
	if fy < 0 {
		y0 = -1
	}
	ax := fx - float32(x0)
	ay := fy - float32(y0)
	at := func(x, y int) RGBf {
		x = clampInt(x, 0, t.w-1)
		y = clampInt(y, 0, t.h-1)
		return t.pix[y*t.w+x]
	}
	top := at(x0, y0).Lerp(at(x0+1, y0), ax)
	bot := at(x0, y0+1).Lerp(at(x0+1, y0+1), ax)
	return top.Lerp(bot, ay)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
