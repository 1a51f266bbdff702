package app

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replica/hal"
	"replica/internal/asset/assettest"
	"replica/internal/config"
	"replica/internal/logx"
	"replica/internal/model"
	"replica/internal/prefs"
	"replica/internal/scene"
	"replica/internal/theme"
)

type fakeLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *fakeLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *fakeLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

type fakeKeyboard chan hal.KeyEvent

func (k fakeKeyboard) Events() <-chan hal.KeyEvent { return k }

type fakePointer chan hal.PointerEvent

func (p fakePointer) Events() <-chan hal.PointerEvent { return p }

type fakeInput struct {
	kbd fakeKeyboard
	ptr fakePointer
}

func (in fakeInput) Keyboard() hal.Keyboard { return in.kbd }
func (in fakeInput) Pointer() hal.Pointer   { return in.ptr }

type fakeTime struct{ frame uint64 }

func (t *fakeTime) Elapsed() time.Duration { return time.Duration(t.frame) * time.Second / 60 }
func (t *fakeTime) Frame() uint64          { return t.frame }

type fakeHAL struct {
	log *fakeLogger
	in  fakeInput
	t   *fakeTime
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		log: &fakeLogger{},
		in:  fakeInput{kbd: make(fakeKeyboard, 16), ptr: make(fakePointer, 16)},
		t:   &fakeTime{},
	}
}

func (h *fakeHAL) Logger() hal.Logger { return h.log }
func (h *fakeHAL) Input() hal.Input   { return h.in }
func (h *fakeHAL) Time() hal.Time     { return h.t }

func (h *fakeHAL) press(r rune)            { h.in.kbd <- hal.KeyEvent{Press: true, Rune: r} }
func (h *fakeHAL) pressCode(c hal.KeyCode) { h.in.kbd <- hal.KeyEvent{Press: true, Code: c} }

type fakeSource struct {
	fb      hal.Framebuffer
	running bool
}

func (f *fakeSource) Surface() hal.Framebuffer { return f.fb }
func (f *fakeSource) Run()                     { f.running = true }
func (f *fakeSource) Pause()                   { f.running = false }
func (f *fakeSource) Reset()                   {}
func (f *fakeSource) Running() bool            { return f.running }

func deviceGLB() []byte {
	return assettest.New().
		Box("Shell", [3]float32{0, 0, 0}, [3]float32{2, 4, 0.5}).
		Box("Dpad", [3]float32{-0.5, -1, 0.3}, [3]float32{0.4, 0.4, 0.1}).
		Box("Button", [3]float32{0.5, -1, 0.3}, [3]float32{0.2, 0.2, 0.1}).
		Quad("Screen", [3]float32{0, 0.8, 0.26}, 1.2, 0.9).
		Bytes()
}

func testConfig() config.Config {
	return config.Config{
		Asset:  config.AssetConfig{Path: "device.glb", YawDegrees: -90, Lift: 0.05, TargetSize: 1.5},
		Render: config.RenderConfig{CompactBreakpoint: scene.DefaultBreakpoint},
		Bridge: config.BridgeConfig{TelemetryInterval: 166 * time.Millisecond, FocusDistance: 3.5},
	}
}

type rig struct {
	h     *fakeHAL
	v     *Viewer
	store *prefs.Store
	src   *fakeSource
}

func newRig(t *testing.T, fetch model.Fetcher, mutate func(*Options)) *rig {
	t.Helper()
	h := newFakeHAL()
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.yaml"))
	require.NoError(t, err)
	src := &fakeSource{fb: hal.NewFramebuffer(24, 16)}
	opts := Options{
		Config: testConfig(),
		Prefs:  store,
		Source: src,
		Fetch:  fetch,
	}
	if mutate != nil {
		mutate(&opts)
	}
	v, err := New(h, opts)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	v.Layout(320, 200)
	return &rig{h: h, v: v, store: store, src: src}
}

func staticFetch(data []byte) model.Fetcher {
	return func(ctx context.Context, path string, progress func(model.Progress)) ([]byte, error) {
		return data, nil
	}
}

// stepUntil steps the viewer until done reports true.
func (r *rig) stepUntil(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		r.h.t.frame++
		require.NoError(t, r.v.Step())
		if done() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out stepping viewer")
}

func (r *rig) step(t *testing.T) {
	t.Helper()
	r.h.t.frame++
	require.NoError(t, r.v.Step())
}

func (r *rig) loaded(t *testing.T) {
	t.Helper()
	r.stepUntil(t, func() bool { return r.v.Loader().Model() != nil })
}

func TestCommitAppliesTheme(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), func(o *Options) {
		o.Platform = func() (bool, bool) { return true, true }
	})
	r.loaded(t)

	assert.Equal(t, theme.Dark, r.v.Theme())
	p := theme.For(theme.Dark)
	sc := r.v.Scene()
	assert.Equal(t, p.Background, sc.Scene.Background)
	assert.Equal(t, p.Ambient, sc.Ambient.Intensity)
	assert.Equal(t, p.EdgeColor, sc.Edges.Color)

	mats := r.v.Loader().Model().Materials()
	require.NotNil(t, mats)
	assert.Equal(t, p.Shell, mats.Shell.Opacity)
	assert.Equal(t, p.Detail, mats.Detail.Opacity)
	assert.Equal(t, "", loaderText(r.v.Loader()))
}

func TestThemeKeyPersists(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	r.loaded(t)
	require.Equal(t, theme.Light, r.v.Theme())

	r.h.press('t')
	r.step(t)
	assert.Equal(t, theme.Dark, r.v.Theme())
	assert.Equal(t, theme.For(theme.Dark).Background, r.v.Scene().Scene.Background)

	reopened, err := prefs.Open(r.store.Path())
	require.NoError(t, err)
	v, ok := reopened.Get(prefs.KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	r.h.press('T')
	r.step(t)
	assert.Equal(t, theme.Light, r.v.Theme())
}

func TestStoredThemeWinsOverPlatform(t *testing.T) {
	h := newFakeHAL()
	store := prefs.Memory()
	require.NoError(t, store.Set(prefs.KeyTheme, "light"))
	v, err := New(h, Options{
		Config:   testConfig(),
		Prefs:    store,
		Source:   &fakeSource{fb: hal.NewFramebuffer(8, 8)},
		Fetch:    staticFetch(deviceGLB()),
		Platform: func() (bool, bool) { return true, true },
	})
	require.NoError(t, err)
	defer v.Close()
	assert.Equal(t, theme.Light, v.Theme())
}

func TestQualityKeyPersists(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	require.False(t, r.v.Scene().HD())
	lowW := r.v.Scene().Layout().RenderW

	r.h.press('h')
	r.step(t)
	assert.True(t, r.v.Scene().HD())
	assert.Greater(t, r.v.Scene().Layout().RenderW, lowW)
	hd, ok := r.store.Bool(prefs.KeyHD)
	require.True(t, ok)
	assert.True(t, hd)
}

func TestStoredQualityWinsOverConfig(t *testing.T) {
	h := newFakeHAL()
	store := prefs.Memory()
	require.NoError(t, store.SetBool(prefs.KeyHD, true))
	v, err := New(h, Options{
		Config: testConfig(),
		Prefs:  store,
		Source: &fakeSource{fb: hal.NewFramebuffer(8, 8)},
		Fetch:  staticFetch(deviceGLB()),
	})
	require.NoError(t, err)
	defer v.Close()
	assert.True(t, v.Scene().HD())
}

func TestBridgeKeyToggles(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	r.loaded(t)
	screen := r.v.Loader().Model().Screen()
	require.NotNil(t, screen)
	static := screen.Mesh.Material

	r.h.press('e')
	r.step(t)
	require.True(t, r.v.Bridge().Attached())
	assert.True(t, r.src.running)
	assert.NotSame(t, static, screen.Mesh.Material)
	assert.Contains(t, r.v.Bridge().StatusLine(), "FRAME")

	r.h.press('e')
	r.step(t)
	assert.False(t, r.v.Bridge().Attached())
	assert.False(t, r.src.running)
	assert.Same(t, static, screen.Mesh.Material)
}

func TestReloadKeepsBridgeAttached(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	r.loaded(t)
	first := r.v.Loader().Model()

	r.h.press('e')
	r.step(t)
	require.True(t, r.v.Bridge().Attached())

	r.h.press('r')
	r.stepUntil(t, func() bool {
		m := r.v.Loader().Model()
		return m != nil && m != first
	})
	m := r.v.Loader().Model()
	assert.True(t, r.v.Bridge().Attached())
	assert.NotSame(t, m.Materials().Screen, m.Screen().Mesh.Material)
	assert.Equal(t, float32(0.4), m.Materials().Shell.OpacityScale)
}

func TestEscapeQuits(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	r.h.pressCode(hal.KeyEscape)
	assert.ErrorIs(t, r.v.Step(), hal.ErrQuit)
}

func TestHomeKeyStartsZoom(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	cam := r.v.Scene().Camera
	cam.Position.X = 2

	r.h.press(' ')
	r.step(t)
	assert.Less(t, cam.Position.X, float32(2))
	assert.Greater(t, cam.Position.X, float32(0))
}

func TestFailedLoadShowsError(t *testing.T) {
	fail := func(ctx context.Context, path string, progress func(model.Progress)) ([]byte, error) {
		return nil, errors.New("404")
	}
	r := newRig(t, fail, nil)
	r.stepUntil(t, func() bool { return r.v.Loader().Status() == model.StatusFailed })
	assert.Equal(t, model.ErrorText, loaderText(r.v.Loader()))
	assert.Nil(t, r.v.Loader().Model())
}

func TestComponentLoggersTaggedOnce(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	sink := &fakeLogger{}
	logx.SetDefault(sink, &logx.Options{Level: slog.LevelDebug})

	fail := func(ctx context.Context, path string, progress func(model.Progress)) ([]byte, error) {
		return nil, errors.New("404")
	}
	r := newRig(t, fail, nil)
	r.stepUntil(t, func() bool { return r.v.Loader().Status() == model.StatusFailed })

	sink.mu.Lock()
	defer sink.mu.Unlock()
	var failed string
	for _, ln := range sink.lines {
		assert.LessOrEqual(t, strings.Count(ln, "component="), 1, ln)
		if strings.Contains(ln, "load failed") {
			failed = ln
		}
	}
	assert.Contains(t, failed, "component=loader")
	assert.NotContains(t, failed, "component=viewer")
}

func TestFrameMatchesLayout(t *testing.T) {
	r := newRig(t, staticFetch(deviceGLB()), nil)
	r.step(t)
	require.NotNil(t, r.v.Frame())
	assert.Equal(t, image.Rect(0, 0, 320, 200), r.v.Frame().Rect)
	assert.Equal(t, scene.FramingCompact, r.v.Scene().Layout().Framing)
	assert.Equal(t, 120, r.v.Scene().Layout().Viewport.Dy())

	// Below the compact viewport the frame shows the theme background.
	bg := theme.For(theme.Light).Background
	px := r.v.Frame().RGBAAt(319, 199)
	assert.Equal(t, [3]uint8{bg.R, bg.G, bg.B}, [3]uint8{px.R, px.G, px.B})

	r.v.Layout(1024, 640)
	r.step(t)
	assert.Equal(t, image.Rect(0, 0, 1024, 640), r.v.Frame().Rect)
	assert.Equal(t, scene.FramingStandard, r.v.Scene().Layout().Framing)
}

func TestPanicBecomesError(t *testing.T) {
	h := newFakeHAL()
	frame := image.NewRGBA(image.Rect(0, 0, 200, 100))
	run := func() (err error) {
		defer recoverFrame(h, frame, &err)
		panic("boom")
	}
	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	require.NotEmpty(t, h.log.lines)
	assert.Equal(t, "Replica Panic:", h.log.lines[0])
	assert.Equal(t, "panic: boom", h.log.lines[1])
}
