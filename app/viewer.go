// Package app is the replica viewer: it drives the scene, loader, theme and
// bridge once per host frame and composes the overlay.
package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"time"

	"replica/hal"
	"replica/internal/bridge"
	"replica/internal/choreo"
	"replica/internal/config"
	"replica/internal/model"
	"replica/internal/prefs"
	"replica/internal/render"
	"replica/internal/scene"
	"replica/internal/synth"
	"replica/internal/theme"
)

// Options wires a Viewer. Zero fields get production defaults.
type Options struct {
	Config config.Config
	Prefs  *prefs.Store

	// Platform reports the system dark mode preference.
	Platform func() (dark, ok bool)
	// Source is the machine shown on the screen; nil means the demo
	// machine.
	Source bridge.Source
	Fetch  model.Fetcher
	Device *render.Device
	Now    func() time.Time
}

// Viewer implements hal.App.
type Viewer struct {
	h   hal.HAL
	log *slog.Logger
	cfg config.Config

	ctx    context.Context
	cancel context.CancelFunc

	prefs  *prefs.Store
	sc     *scene.Context
	loader *model.Loader
	watch  *model.Watcher
	theme  *theme.Controller
	choreo *choreo.Choreographer
	bridge *bridge.Bridge
	src    bridge.Source
	now    func() time.Time

	reload     bool
	themeDirty bool
	frame      *image.RGBA
}

var _ hal.App = (*Viewer)(nil)

// New builds the scene and starts loading the configured asset.
func New(h hal.HAL, opts Options) (*Viewer, error) {
	cfg := opts.Config
	// Components tag their own loggers, so they get the untagged base.
	base := slog.Default()
	log := base.With("component", "viewer")

	store := opts.Prefs
	if store == nil {
		store = prefs.Memory()
	}
	hd := cfg.Render.HD
	if v, ok := store.Bool(prefs.KeyHD); ok {
		hd = v
	}

	v := &Viewer{
		h:      h,
		log:    log,
		cfg:    cfg,
		prefs:  store,
		choreo: &choreo.Choreographer{},
		src:    opts.Source,
		now:    opts.Now,
	}
	if v.now == nil {
		v.now = time.Now
	}
	if v.src == nil {
		v.src = synth.New(cfg.Bridge.SynthHz)
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())

	v.sc = scene.New(scene.Options{
		CompactBreakpoint: cfg.Render.CompactBreakpoint,
		HD:                hd,
		Device:            opts.Device,
	})
	v.theme = theme.New(store, theme.WithLogger(base.With("component", "theme")))
	v.theme.Init(opts.Platform)
	v.themeDirty = true

	v.bridge = bridge.New(bridge.Options{
		Poses:         v.sc,
		Choreo:        v.choreo,
		Edges:         v.sc.Edges,
		FocusDistance: cfg.Bridge.FocusDistance,
		Interval:      cfg.Bridge.TelemetryInterval,
		Logger:        base,
	})

	v.loader = model.NewLoader(model.Options{
		Scene: v.sc,
		Edges: v.sc.Edges,
		Placement: model.Placement{
			YawDegrees: cfg.Asset.YawDegrees,
			Lift:       cfg.Asset.Lift,
			TargetSize: cfg.Asset.TargetSize,
		},
		Fetch:    opts.Fetch,
		Logger:   base,
		OnCommit: v.commit,
	})

	path := cfg.Asset.Path
	if cfg.Asset.Watch && path != "" && !model.IsURL(path) {
		w, err := model.Watch(path, 0, base)
		if err != nil {
			log.Warn("asset watch disabled", "err", err)
		} else {
			v.watch = w
			go w.Run(v.ctx)
		}
	}
	if path != "" {
		if err := v.loader.Load(v.ctx, path); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Scene exposes the scene context.
func (v *Viewer) Scene() *scene.Context { return v.sc }

// Loader exposes the model loader.
func (v *Viewer) Loader() *model.Loader { return v.loader }

// Bridge exposes the framebuffer bridge.
func (v *Viewer) Bridge() *bridge.Bridge { return v.bridge }

// Theme returns the active theme.
func (v *Viewer) Theme() theme.Theme { return v.theme.Theme() }

// Layout reframes the scene for a new window size.
func (v *Viewer) Layout(w, h int) {
	if !v.sc.Resize(w, h) {
		return
	}
	if v.frame == nil || v.frame.Rect.Dx() != w || v.frame.Rect.Dy() != h {
		v.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}
}

// Frame returns the last composed frame.
func (v *Viewer) Frame() *image.RGBA { return v.frame }

// Step runs one frame.
func (v *Viewer) Step() (err error) {
	defer recoverFrame(v.h, v.frame, &err)

	for _, a := range drainKeys(v.h.Input()) {
		if v.handle(a) {
			return hal.ErrQuit
		}
	}
	if dx, dy := drainDrag(v.h.Input()); dx != 0 || dy != 0 {
		v.sc.Orbit.Drag(dx, dy, v.sc.Layout().Viewport.Dy())
	}

	v.pollWatcher()
	v.loader.Poll()

	if v.themeDirty {
		v.applyTheme()
	}

	m := v.loader.Model()
	if m != nil {
		m.Idle(float32(v.h.Time().Elapsed().Seconds()))
		m.Track()
	}

	v.choreo.Step(v.sc.Camera, v.sc.Orbit)
	v.sc.Orbit.Update(v.sc.Camera)

	v.bridge.Refresh()
	v.bridge.Sample(v.now())

	if v.frame == nil {
		return nil
	}
	v.compose()
	return nil
}

// Close stops background work and releases the screen texture.
func (v *Viewer) Close() {
	v.cancel()
	if v.watch != nil {
		v.watch.Close()
	}
	if v.bridge.Attached() {
		_ = v.bridge.Detach()
	}
	v.bridge.Close()
	v.loader.Unload()
}

// handle runs one input action and reports whether to quit.
func (v *Viewer) handle(a action) bool {
	switch a {
	case actionQuit:
		return true
	case actionTheme:
		t, err := v.theme.Toggle()
		if err != nil {
			v.log.Warn("theme not saved", "err", err)
		}
		v.log.Info("theme", "theme", t.String())
		v.themeDirty = true
	case actionQuality:
		hd := !v.sc.HD()
		v.sc.SetQuality(hd)
		if err := v.prefs.SetBool(prefs.KeyHD, hd); err != nil {
			v.log.Warn("quality not saved", "err", err)
		}
	case actionBridge:
		if err := v.bridge.Toggle(v.src); err != nil {
			v.log.Warn("bridge", "err", err)
		}
	case actionReload:
		v.reload = true
	case actionHome:
		p := v.sc.Home()
		v.choreo.SetTarget(choreo.ZoomTarget{Position: p.Position, LookAt: p.LookAt})
	case actionLeft:
		v.sc.Orbit.Rotate(orbitStep, 0)
	case actionRight:
		v.sc.Orbit.Rotate(-orbitStep, 0)
	case actionUp:
		v.sc.Orbit.Rotate(0, orbitStep)
	case actionDown:
		v.sc.Orbit.Rotate(0, -orbitStep)
	}
	return false
}

func (v *Viewer) pollWatcher() {
	if v.watch != nil {
		select {
		case <-v.watch.Changes():
			v.reload = true
		default:
		}
	}
	if !v.reload || v.loader.InFlight() {
		return
	}
	path := v.loader.Path()
	if path == "" {
		path = v.cfg.Asset.Path
	}
	if path == "" {
		v.reload = false
		return
	}
	v.bridge.Bind(nil, nil)
	if err := v.loader.Load(v.ctx, path); err != nil && !errors.Is(err, model.ErrLoadInFlight) {
		v.log.Error("reload", "err", err)
	}
	v.reload = false
}

func (v *Viewer) commit(m *model.Model) {
	v.bridge.Bind(m.Screen(), m.Materials())
	v.themeDirty = true
}

func (v *Viewer) applyTheme() {
	t := theme.Target{
		Ambient:    v.sc.Ambient,
		Key:        v.sc.Key,
		Fill:       v.sc.Fill,
		Edges:      v.sc.Edges,
		Background: &v.sc.Scene.Background,
	}
	if m := v.loader.Model(); m != nil {
		t.Materials = m.Materials()
	}
	v.theme.Apply(t)
	v.themeDirty = false
}

func (v *Viewer) compose() {
	img := v.sc.Render()
	bg := v.sc.Scene.Background
	c := canvas{img: v.frame}
	c.fill(v.frame.Rect, color.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 0xFF})
	blit(v.frame, v.sc.Layout().Viewport, img)

	drawHUD(v.frame, hud{
		theme:    v.theme.Theme(),
		hd:       v.sc.HD(),
		status:   loaderText(v.loader),
		attached: v.bridge.Attached(),
		line:     v.bridge.StatusLine(),
		panels:   v.bridge.Panels(),
		layout:   v.sc.Layout(),
	})
}
