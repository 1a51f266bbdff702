package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replica/internal/render"
)

func TestNewRig(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, float32(FOV), c.Camera.FOV)
	assert.Equal(t, render.V3(0, 0.5, 4.5), c.Camera.Position)
	assert.Equal(t, float32(0.04), c.Orbit.DampingFactor)
	assert.False(t, c.Orbit.EnablePan)
	assert.False(t, c.Orbit.EnableZoom)
	require.Len(t, c.Scene.Lights, 2)
	assert.Equal(t, float32(2.0), c.Ambient.Intensity)
	assert.Equal(t, float32(2.5), c.Key.Intensity)
	assert.Equal(t, float32(1.5), c.Fill.Intensity)
	assert.NotNil(t, c.Scene.Environment)
	assert.Equal(t, float32(0.25), c.Edges.Opacity)
	assert.False(t, c.Edges.DepthWrite)
	assert.Equal(t, DefaultBreakpoint, c.Breakpoint())
}

func TestResizeBreakpoint(t *testing.T) {
	tests := []struct {
		w       int
		framing Framing
		fov     float32
		dist    float32
		vh      int
	}{
		{767, FramingCompact, CompactFOV, CompactDistance, 600},
		{768, FramingCompact, CompactFOV, CompactDistance, 600},
		{769, FramingStandard, FOV, Distance, 1000},
		{1920, FramingStandard, FOV, Distance, 1000},
	}
	for _, tt := range tests {
		c := New(Options{HD: true})
		require.True(t, c.Resize(tt.w, 1000))
		l := c.Layout()
		assert.Equal(t, tt.framing, l.Framing, "w=%d", tt.w)
		assert.Equal(t, tt.fov, c.Camera.FOV, "w=%d", tt.w)
		assert.Equal(t, tt.vh, l.Viewport.Dy(), "w=%d", tt.w)
		assert.Equal(t, render.V3(0, HomeY, tt.dist), c.Camera.Position, "w=%d", tt.w)
		assert.InDelta(t, float32(tt.w)/float32(tt.vh), c.Camera.Aspect, 1e-5)
	}
}

func TestResizeHomeOnlyOnClassChange(t *testing.T) {
	c := New(Options{})
	c.Resize(1200, 800)
	c.Camera.Position = render.V3(1, 1, 1)

	c.Resize(1000, 700)
	assert.Equal(t, render.V3(1, 1, 1), c.Camera.Position, "same class keeps the pose")

	c.Resize(500, 700)
	assert.Equal(t, render.V3(0, HomeY, CompactDistance), c.Camera.Position)
}

func TestResizeIgnoresZero(t *testing.T) {
	c := New(Options{})
	c.Resize(800, 600)
	before := c.Layout()
	assert.False(t, c.Resize(0, 600))
	assert.False(t, c.Resize(800, 0))
	assert.Equal(t, before, c.Layout())
}

func TestQualityScalesTarget(t *testing.T) {
	c := New(Options{})
	c.Resize(1000, 800)
	w, h := c.Target.Size()
	assert.Equal(t, 500, w)
	assert.Equal(t, 400, h)
	assert.Equal(t, render.ToneMappingFilmic, c.Renderer.ToneMapping)
	assert.Equal(t, float32(1.05), c.Renderer.Exposure)
	assert.True(t, c.Renderer.Dither)
	assert.True(t, c.Renderer.Scanlines)

	c.SetQuality(true)
	w, h = c.Target.Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 800, h)
	assert.Equal(t, render.ToneMappingNone, c.Renderer.ToneMapping)
	assert.Equal(t, float32(1), c.Renderer.Exposure)
	assert.False(t, c.Renderer.Dither)
	assert.False(t, c.Renderer.Scanlines)
	assert.Equal(t, render.V2(1000, 800), c.Edges.Resolution)
}

func TestRenderClearsBackground(t *testing.T) {
	c := New(Options{HD: true})
	c.Scene.Background = render.RGB(10, 20, 30)
	c.Resize(40, 30)
	img := c.Render()
	require.NotNil(t, img)
	px := img.RGBAAt(5, 5)
	assert.Equal(t, uint8(10), px.R)
	assert.Equal(t, uint8(30), px.B)
}
