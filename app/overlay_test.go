package app

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"replica/internal/bridge"
	"replica/internal/scene"
	"replica/internal/theme"
)

func TestPanelSwatchesDrawn(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	red := color.RGBA{R: 0xF8, A: 0xFF}
	green := color.RGBA{G: 0xF8, A: 0xFF}
	h := hud{
		theme:  theme.Dark,
		layout: scene.Layout{Framing: scene.FramingStandard},
		panels: []bridge.Panel{
			{Title: "PALETTE", Swatches: []color.RGBA{red, green}},
			{Title: "OAM", Lines: []string{"OBJ0"}},
		},
	}
	drawPanels(canvas{img: img}, h, palettes[theme.Dark])

	r := panelRect(h.layout, img.Rect)
	x := r.Min.X + margin
	y := r.Min.Y + margin + lineHeight + lineHeight/2 + lineHeight
	assert.Equal(t, red, img.RGBAAt(x+2, y+2))
	assert.Equal(t, green, img.RGBAAt(x+swatchCell+2, y+2))
	assert.NotEqual(t, red, img.RGBAAt(x+swatchCell-1, y+2), "cells are separated")
	assert.NotEqual(t, red, img.RGBAAt(x+2, y+swatchCell+lineHeight/2+2), "next panel starts below the swatch row")
}
