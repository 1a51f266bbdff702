package app

import (
	"fmt"
	"image"
	"image/color"

	"replica/internal/bridge"
	"replica/internal/model"
	"replica/internal/scene"
	"replica/internal/theme"
)

const (
	margin    = 8
	panelCols = 34

	// palette swatch cell size and cells per row
	swatchCell = 8
	swatchRow  = 10
)

type palette struct {
	text   color.RGBA
	dim    color.RGBA
	accent color.RGBA
	alert  color.RGBA
	panel  color.RGBA
}

var palettes = [...]palette{
	theme.Light: {
		text:   color.RGBA{R: 0x22, G: 0x22, B: 0x26, A: 0xFF},
		dim:    color.RGBA{R: 0x70, G: 0x70, B: 0x78, A: 0xFF},
		accent: color.RGBA{R: 0x1a, G: 0x7f, B: 0x8e, A: 0xFF},
		alert:  color.RGBA{R: 0xc0, G: 0x30, B: 0x30, A: 0xFF},
		panel:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xFF},
	},
	theme.Dark: {
		text:   color.RGBA{R: 0xe0, G: 0xe4, B: 0xea, A: 0xFF},
		dim:    color.RGBA{R: 0x80, G: 0x88, B: 0x94, A: 0xFF},
		accent: color.RGBA{R: 0x4f, G: 0xd1, B: 0xc5, A: 0xFF},
		alert:  color.RGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xFF},
		panel:  color.RGBA{R: 0x08, G: 0x09, B: 0x0c, A: 0xFF},
	},
}

// hud is the state the overlay shows for one frame.
type hud struct {
	theme    theme.Theme
	hd       bool
	status   string
	attached bool
	line     string
	panels   []bridge.Panel
	layout   scene.Layout
}

// loaderText returns the loader message, or "" once a model is showing.
func loaderText(l *model.Loader) string {
	switch l.Status() {
	case model.StatusLoading:
		if p, ok := l.Progress(); ok {
			f, _ := p.Fraction()
			return fmt.Sprintf("LOADING %3d%%", int(f*100))
		}
		return "LOADING..."
	case model.StatusFailed:
		return model.ErrorText
	}
	return ""
}

func drawHUD(img *image.RGBA, h hud) {
	c := canvas{img: img}
	pal := palettes[h.theme]

	badge := "LIGHT"
	if h.theme == theme.Dark {
		badge = "DARK"
	}
	q := "LO"
	if h.hd {
		q = "HD"
	}
	c.text(margin, margin, badge+"  "+q, pal.dim)

	vp := h.layout.Viewport
	if h.status != "" {
		col := pal.text
		if h.status == model.ErrorText {
			col = pal.alert
		}
		w := len(h.status) * glyphWidth
		c.text(vp.Min.X+(vp.Dx()-w)/2, vp.Min.Y+vp.Dy()/2-lineHeight/2, h.status, col)
	}

	hint := "T theme  H quality  E screen  R reload  SPACE home  ESC quit"
	c.text(margin, img.Rect.Dy()-margin-lineHeight, clip(hint, (img.Rect.Dx()-2*margin)/glyphWidth), pal.dim)

	drawPanels(c, h, pal)
}

// panelRect is where telemetry goes: below the viewport in compact framing,
// along the right edge otherwise.
func panelRect(l scene.Layout, frame image.Rectangle) image.Rectangle {
	if l.Framing == scene.FramingCompact {
		return image.Rect(0, l.Viewport.Max.Y, frame.Dx(), frame.Dy()-margin-lineHeight)
	}
	w := panelCols*glyphWidth + 2*margin
	return image.Rect(frame.Dx()-w, margin, frame.Dx(), frame.Dy()-margin-lineHeight)
}

func drawPanels(c canvas, h hud, pal palette) {
	r := panelRect(h.layout, c.img.Rect)
	if r.Dx() <= 2*margin || r.Dy() <= lineHeight {
		return
	}
	if h.layout.Framing != scene.FramingCompact {
		c.shade(r, pal.panel, 0xA0)
	}

	col := pal.dim
	if h.attached {
		col = pal.accent
	}
	colW := panelCols * glyphWidth
	x, y := r.Min.X+margin, r.Min.Y+margin
	c.text(x, y, clip(h.line, (r.Dx()-2*margin)/glyphWidth), col)
	y += lineHeight + lineHeight/2

	top := y
	cols := max(1, (r.Dx()-margin)/(colW+margin))
	for _, p := range h.panels {
		rows := (len(p.Swatches) + swatchRow - 1) / swatchRow
		need := (len(p.Lines)+1)*lineHeight + rows*swatchCell
		if y+need > r.Max.Y {
			if cols <= 1 {
				return
			}
			cols--
			x += colW + margin
			y = top
			if y+need > r.Max.Y || x+colW > r.Max.X {
				return
			}
		}
		c.text(x, y, p.Title, pal.accent)
		y += lineHeight
		for _, ln := range p.Lines {
			c.text(x, y, clip(ln, panelCols), pal.text)
			y += lineHeight
		}
		for i, sw := range p.Swatches {
			cx, cy := x+i%swatchRow*swatchCell, y+i/swatchRow*swatchCell
			c.fill(image.Rect(cx, cy, cx+swatchCell-1, cy+swatchCell-1), sw)
		}
		y += rows * swatchCell
		y += lineHeight / 2
	}
}
