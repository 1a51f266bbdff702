// Package scene owns the renderer, camera, orbit controller and lighting
// rig of the viewer, and frames the camera for the window size.
package scene

import (
	"image"

	"github.com/chewxy/math32"

	"replica/internal/render"
)

// Camera and framing constants.
const (
	FOV      = 24
	Near     = 0.1
	Far      = 100
	HomeY    = 0.5
	Distance = 4.5

	CompactFOV      = 28
	CompactDistance = 4.8
	// CompactHeight is the share of the window height given to the 3D
	// viewport in compact framing.
	CompactHeight = 0.6

	DefaultBreakpoint = 768

	EdgeWidth   = 0.8
	EdgeOpacity = 0.25
)

// Framing is the responsive layout class.
type Framing uint8

const (
	FramingUnset Framing = iota
	FramingStandard
	FramingCompact
)

func (f Framing) String() string {
	switch f {
	case FramingStandard:
		return "standard"
	case FramingCompact:
		return "compact"
	default:
		return "unset"
	}
}

// Layout is the result of the last Resize.
type Layout struct {
	Width, Height int // window
	Viewport      image.Rectangle
	RenderW       int
	RenderH       int
	Framing       Framing
	FOV           float32
	Distance      float32
}

// Pose is a camera position and the point it looks at.
type Pose struct {
	Position render.Vec3
	LookAt   render.Vec3
}

// Options configures New.
type Options struct {
	// CompactBreakpoint is the widest window that still uses compact
	// framing. Zero means DefaultBreakpoint.
	CompactBreakpoint int
	HD                bool
	Device            *render.Device
}

// Context is the 3D scene of the viewer. It is owned by the frame loop.
type Context struct {
	Renderer *render.Renderer
	Scene    *render.Scene
	Camera   *render.Camera
	Orbit    *render.OrbitController

	Ambient *render.AmbientLight
	Key     *render.DirectionalLight
	Fill    *render.DirectionalLight

	// Edges is the line material shared by every outline.
	Edges *render.LineMaterial

	Target *render.RGBATarget

	breakpoint int
	hd         bool
	layout     Layout
}

func New(opts Options) *Context {
	bp := opts.CompactBreakpoint
	if bp <= 0 {
		bp = DefaultBreakpoint
	}

	cam := render.NewCamera(FOV, 1, Near, Far)
	cam.Position = render.V3(0, HomeY, Distance)

	orbit := render.NewOrbitController()
	orbit.EnableDamping = true
	orbit.DampingFactor = 0.04
	orbit.MinPolarAngle = math32.Pi * 0.3
	orbit.MaxPolarAngle = math32.Pi * 0.62
	orbit.EnablePan = false
	orbit.EnableZoom = false

	s := render.NewScene()
	ambient := &render.AmbientLight{Color: render.Hex(0x405570), Intensity: 2.0}
	key := &render.DirectionalLight{Name: "key", Color: render.Hex(0xc0d8f0), Intensity: 2.5, Position: render.V3(3, 5, 6)}
	fill := &render.DirectionalLight{Name: "fill", Color: render.Hex(0x90a8c8), Intensity: 1.5, Position: render.V3(-4, 2, 4)}
	s.Ambient = ambient
	s.Lights = []*render.DirectionalLight{key, fill}
	s.Environment = render.RoomEnvironment()

	edges := render.NewLineMaterial(render.Hex(0x222222), EdgeWidth)
	edges.Opacity = EdgeOpacity
	edges.Transparent = true
	edges.DepthWrite = false

	c := &Context{
		Renderer:   render.NewRenderer(opts.Device),
		Scene:      s,
		Camera:     cam,
		Orbit:      orbit,
		Ambient:    ambient,
		Key:        key,
		Fill:       fill,
		Edges:      edges,
		Target:     &render.RGBATarget{},
		breakpoint: bp,
	}
	c.SetQuality(opts.HD)
	return c
}

// Breakpoint returns the compact framing threshold.
func (c *Context) Breakpoint() int { return c.breakpoint }

// Layout returns the framing computed by the last Resize.
func (c *Context) Layout() Layout { return c.layout }

// HD reports the render quality.
func (c *Context) HD() bool { return c.hd }

// Scale is the render resolution relative to the viewport.
func (c *Context) Scale() float32 {
	if c.hd {
		return 1
	}
	return 0.5
}

// Resize frames the camera for a window of w×h pixels. Zero sizes are
// ignored. The camera returns home on the first call and whenever the
// framing class changes.
func (c *Context) Resize(w, h int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	framing, fov, dist := FramingStandard, float32(FOV), float32(Distance)
	vh := h
	if w <= c.breakpoint {
		framing, fov, dist = FramingCompact, CompactFOV, CompactDistance
		vh = int(math32.Round(float32(h) * CompactHeight))
		if vh < 1 {
			vh = 1
		}
	}
	prev := c.layout.Framing
	c.layout = Layout{
		Width:    w,
		Height:   h,
		Viewport: image.Rect(0, 0, w, vh),
		Framing:  framing,
		FOV:      fov,
		Distance: dist,
	}
	c.Camera.FOV = fov
	c.Camera.Aspect = float32(w) / float32(vh)
	c.resizeTarget()
	if prev != framing {
		c.ResetCamera()
	}
	return true
}

func (c *Context) resizeTarget() {
	vp := c.layout.Viewport
	if vp.Empty() {
		return
	}
	s := c.Scale()
	rw := max(1, int(float32(vp.Dx())*s))
	rh := max(1, int(float32(vp.Dy())*s))
	c.layout.RenderW, c.layout.RenderH = rw, rh
	c.Target.Resize(rw, rh)
	c.Edges.SetResolution(rw, rh)
}

// SetQuality switches between full resolution without tone mapping (HD)
// and half resolution with filmic tone mapping plus dither and scanline
// passes.
func (c *Context) SetQuality(hd bool) {
	c.hd = hd
	r := c.Renderer
	if hd {
		r.ToneMapping = render.ToneMappingNone
		r.Exposure = 1
		r.Dither = false
		r.Scanlines = false
	} else {
		r.ToneMapping = render.ToneMappingFilmic
		r.Exposure = 1.05
		r.Dither = true
		r.Scanlines = true
	}
	c.resizeTarget()
}

// Home returns the resting camera pose for the current framing.
func (c *Context) Home() Pose {
	d := c.layout.Distance
	if d == 0 {
		d = Distance
	}
	return Pose{Position: render.V3(0, HomeY, d)}
}

// Focus returns a pose looking straight at the screen from distance d.
func (c *Context) Focus(d float32) Pose {
	return Pose{Position: render.V3(0, 0, d), LookAt: render.V3(0, 0.05, 0)}
}

// ResetCamera snaps the camera and orbit target to the home pose.
func (c *Context) ResetCamera() {
	p := c.Home()
	c.Orbit.Stop()
	c.Orbit.Target = p.LookAt
	c.Camera.Position = p.Position
	c.Camera.LookAt(p.LookAt)
}

func (c *Context) Add(n *render.Node)    { c.Scene.Add(n) }
func (c *Context) Remove(n *render.Node) { c.Scene.Remove(n) }

// Render draws the scene into the context's own target.
func (c *Context) Render() *image.RGBA {
	c.RenderTo(c.Target)
	return c.Target.Img
}

// RenderTo draws the scene into t.
func (c *Context) RenderTo(t render.Target) {
	c.Renderer.Render(t, c.Scene, c.Camera)
}
