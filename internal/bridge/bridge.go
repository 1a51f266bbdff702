// Package bridge puts an external framebuffer on the device's screen and
// reads telemetry from the machine that produces it.
package bridge

import (
	"errors"
	"log/slog"
	"time"

	"replica/internal/choreo"
	"replica/internal/classify"
	"replica/internal/render"
	"replica/internal/scene"
)

// ErrNoSource is returned when the bridge has no machine to drive.
var ErrNoSource = errors.New("bridge: no source")

const (
	// DimFactor scales body opacity while attached.
	DimFactor = 0.4
	// EdgeDim scales edge opacity while attached (0.25 → 0.08).
	EdgeDim = 0.08 / 0.25

	DefaultFocusDistance = 3.5
	ScreenEmissive       = 0.8
)

// Poser supplies the camera poses the bridge moves between.
// *scene.Context implements it.
type Poser interface {
	Home() scene.Pose
	Focus(d float32) scene.Pose
}

// Options configures a Bridge.
type Options struct {
	Poses  Poser
	Choreo *choreo.Choreographer
	Edges  *render.LineMaterial

	FocusDistance float32
	// Interval is the telemetry cadence.
	Interval time.Duration
	Logger   *slog.Logger
}

// Bridge swaps the Screen mesh's material for a live framebuffer while a
// Source is attached. It is owned by the frame loop.
type Bridge struct {
	opts Options
	log  *slog.Logger

	src      Source
	attached bool

	screen *render.Node
	static *render.Material
	tiers  [3]*render.Material

	tex *render.Texture
	dyn *render.Material

	cadence Cadence
	sampler Sampler
	snap    Snapshot
	panels  []Panel
}

func New(opts Options) *Bridge {
	if opts.FocusDistance <= 0 {
		opts.FocusDistance = DefaultFocusDistance
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	b := &Bridge{
		opts:    opts,
		log:     log.With("component", "bridge"),
		cadence: Cadence{Interval: opts.Interval},
	}
	b.panels = Format(Snapshot{})
	return b
}

// Attached reports whether a Source is on screen.
func (b *Bridge) Attached() bool { return b.attached }

// Source returns the last attached Source.
func (b *Bridge) Source() Source { return b.src }

// Texture returns the dynamic screen texture, if one was created.
func (b *Bridge) Texture() *render.Texture { return b.tex }

// Bind points the bridge at a newly committed model. Passing nil unbinds
// it, restoring the old model's materials first. While attached the new
// model is switched over immediately.
func (b *Bridge) Bind(screen *render.Node, mats *classify.MaterialSet) {
	if b.attached {
		b.restore()
	}
	b.screen, b.static, b.tiers = screen, nil, [3]*render.Material{}
	if mats != nil {
		b.static = mats.Screen
		b.tiers = mats.Tiers()
	}
	if b.attached {
		b.apply()
	}
}

// Attach starts src and shows its surface on the Screen mesh. Without a
// Screen mesh the machine still runs and the body is still dimmed.
func (b *Bridge) Attach(src Source) error {
	if src == nil {
		return ErrNoSource
	}
	if b.attached {
		if b.src != src {
			b.src.Pause()
		}
		b.restore()
	}
	b.src = src
	b.ensureTexture()
	src.Run()
	b.attached = true
	b.apply()
	b.cadence.Reset()
	b.moveTo(true)
	b.log.Info("attached", "screen", b.screen != nil)
	return nil
}

// Detach pauses and resets the source and restores the static screen.
func (b *Bridge) Detach() error {
	if b.src == nil {
		return ErrNoSource
	}
	if !b.attached {
		return nil
	}
	b.src.Pause()
	b.src.Reset()
	b.restore()
	b.attached = false
	b.cadence.Reset()
	b.moveTo(false)
	b.log.Info("detached")
	return nil
}

// Toggle attaches src when detached and detaches otherwise.
func (b *Bridge) Toggle(src Source) error {
	if b.attached {
		return b.Detach()
	}
	return b.Attach(src)
}

// Refresh marks the screen texture stale so the next draw copies the
// surface again. Call once per frame.
func (b *Bridge) Refresh() {
	if !b.attached || b.tex == nil || !b.src.Running() {
		return
	}
	b.tex.NeedsUpdate = true
}

// Sample reads telemetry if the cadence allows it and reports whether the
// panels changed.
func (b *Bridge) Sample(now time.Time) bool {
	if !b.cadence.Ready(now) {
		return false
	}
	var src Source
	if b.attached {
		src = b.src
	}
	b.snap = b.sampler.Sample(src)
	b.panels = Format(b.snap)
	return true
}

// Snapshot returns the last telemetry sample.
func (b *Bridge) Snapshot() Snapshot { return b.snap }

// Panels returns the formatted telemetry of the last sample.
func (b *Bridge) Panels() []Panel { return b.panels }

// StatusLine formats the live status of the attached source.
func (b *Bridge) StatusLine() string {
	if !b.attached {
		return StatusLine(Snapshot{})
	}
	return StatusLine(Snapshot{Running: b.src.Running(), Status: readStatus(b.src)})
}

// Close releases the screen texture.
func (b *Bridge) Close() {
	if b.tex != nil {
		b.tex.Dispose()
		b.tex = nil
	}
}

func (b *Bridge) ensureTexture() {
	surf := b.src.Surface()
	if surf == nil {
		return
	}
	if b.tex != nil {
		if s, ok := b.tex.Source.(surfaceSource); ok && s.fb == surf {
			return
		}
		b.tex.Dispose()
	}
	b.tex = render.NewTexture(surfaceSource{fb: surf})
	b.tex.Nearest = true
	b.dyn = nil
}

func (b *Bridge) dynamic() *render.Material {
	if b.dyn == nil || b.dyn.Disposed() {
		m := render.NewMaterial(render.Hex(0xffffff))
		m.Name = "screen-live"
		m.Map = b.tex
		m.EmissiveMap = b.tex
		m.Emissive = render.Hex(0xffffff)
		m.EmissiveIntensity = ScreenEmissive
		m.Roughness = 0.09
		m.EnvIntensity = 0
		m.Side = render.DoubleSide
		b.dyn = m
	}
	return b.dyn
}

func (b *Bridge) apply() {
	if b.screen != nil && b.screen.Mesh != nil && b.tex != nil {
		b.screen.Mesh.Material = b.dynamic()
	}
	for _, m := range b.tiers {
		if m != nil {
			m.OpacityScale = DimFactor
		}
	}
	if b.opts.Edges != nil {
		b.opts.Edges.OpacityScale = EdgeDim
	}
}

func (b *Bridge) restore() {
	if b.screen != nil && b.screen.Mesh != nil && b.static != nil {
		b.screen.Mesh.Material = b.static
	}
	for _, m := range b.tiers {
		if m != nil {
			m.OpacityScale = 1
		}
	}
	if b.opts.Edges != nil {
		b.opts.Edges.OpacityScale = 1
	}
}

func (b *Bridge) moveTo(focus bool) {
	if b.opts.Choreo == nil || b.opts.Poses == nil {
		return
	}
	p := b.opts.Poses.Home()
	if focus {
		p = b.opts.Poses.Focus(b.opts.FocusDistance)
	}
	b.opts.Choreo.SetTarget(choreo.ZoomTarget{Position: p.Position, LookAt: p.LookAt})
}
