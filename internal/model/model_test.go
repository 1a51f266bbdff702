package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replica/internal/asset/assettest"
	"replica/internal/render"
)

func deviceGLB() []byte {
	return assettest.New().
		Box("Shell", [3]float32{0, 0, 0}, [3]float32{2, 4, 0.5}).
		Box("Button", [3]float32{0.5, -1, 0.3}, [3]float32{0.2, 0.2, 0.1}).
		Quad("Screen", [3]float32{0, 0.8, 0.26}, 1.2, 0.9).
		Bytes()
}

func staticFetch(data []byte) Fetcher {
	return func(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
		return data, nil
	}
}

// pollUntil polls l until fn reports done or the deadline passes.
func pollUntil(t *testing.T, l *Loader, fn func(*Model) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fn(l.Poll()) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for loader")
}

func committed(m *Model) bool { return m != nil }

func newLoader(fetch Fetcher, s *render.Scene) *Loader {
	return NewLoader(Options{
		Scene: s,
		Edges: render.NewLineMaterial(render.Hex(0x222222), 0.8),
		Fetch: fetch,
	})
}

func TestLoadCommits(t *testing.T) {
	s := render.NewScene()
	var hooked *Model
	l := NewLoader(Options{
		Scene:    s,
		Edges:    render.NewLineMaterial(render.Hex(0x222222), 0.8),
		Fetch:    staticFetch(deviceGLB()),
		OnCommit: func(m *Model) { hooked = m },
	})
	require.NoError(t, l.Load(context.Background(), "device.glb"))
	assert.Equal(t, StatusLoading, l.Status())

	pollUntil(t, l, committed)
	m := l.Model()
	require.NotNil(t, m)
	assert.Same(t, m, hooked)
	assert.Equal(t, StatusReady, l.Status())
	assert.Same(t, s.Root, m.Root.Parent())

	require.NotNil(t, m.Screen())
	assert.Len(t, m.Parts.Bodies(), 2)
	assert.Len(t, m.Lines, 3)

	box := m.Root.WorldBox()
	assert.InDelta(t, 1.5, box.Size().MaxComponent(), 1e-4)
	c := box.Center()
	assert.InDelta(t, 0, c.X, 1e-4)
	assert.InDelta(t, 0.05, c.Y, 1e-4)
	assert.InDelta(t, 0, c.Z, 1e-4)
	assert.Equal(t, m.Root.Position, m.Rest)
}

func TestLoadInFlight(t *testing.T) {
	release := make(chan struct{})
	l := newLoader(func(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
		<-release
		return deviceGLB(), nil
	}, render.NewScene())

	require.NoError(t, l.Load(context.Background(), "a.glb"))
	assert.ErrorIs(t, l.Load(context.Background(), "b.glb"), ErrLoadInFlight)
	close(release)
	pollUntil(t, l, committed)
	assert.Equal(t, "a.glb", l.Model().Path)
}

func TestStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	l := newLoader(func(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
		if path == "old.glb" {
			<-release
		}
		return deviceGLB(), nil
	}, render.NewScene())

	require.NoError(t, l.Load(context.Background(), "old.glb"))
	l.Unload()
	require.NoError(t, l.Load(context.Background(), "new.glb"))
	pollUntil(t, l, committed)
	assert.Equal(t, "new.glb", l.Model().Path)

	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, l.Poll())
	assert.Equal(t, "new.glb", l.Model().Path)
}

func TestLoadFailure(t *testing.T) {
	s := render.NewScene()
	boom := errors.New("boom")
	l := newLoader(func(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
		return nil, boom
	}, s)
	require.NoError(t, l.Load(context.Background(), "x.glb"))
	pollUntil(t, l, func(*Model) bool { return l.Status() == StatusFailed })
	assert.ErrorIs(t, l.Err(), boom)
	assert.Nil(t, l.Model())
	assert.Empty(t, s.Root.Children())
	assert.False(t, l.InFlight())
}

func TestDecodeFailure(t *testing.T) {
	l := newLoader(staticFetch([]byte("not a glb")), render.NewScene())
	require.NoError(t, l.Load(context.Background(), "bad.glb"))
	pollUntil(t, l, func(*Model) bool { return l.Status() == StatusFailed })
	assert.Error(t, l.Err())
}

func TestProgressUnknownTotalOmitted(t *testing.T) {
	gate := make(chan struct{})
	l := newLoader(func(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
		progress(Progress{Received: 10})
		<-gate
		progress(Progress{Received: 10, Total: 40})
		<-gate
		return deviceGLB(), nil
	}, render.NewScene())
	require.NoError(t, l.Load(context.Background(), "p.glb"))

	time.Sleep(10 * time.Millisecond)
	l.Poll()
	_, ok := l.Progress()
	assert.False(t, ok)

	gate <- struct{}{}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		l.Poll()
		if _, ok := l.Progress(); ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	p, ok := l.Progress()
	require.True(t, ok)
	f, ok := p.Fraction()
	require.True(t, ok)
	assert.InDelta(t, 0.25, f, 1e-6)
	close(gate)
	pollUntil(t, l, committed)
}

func TestReloadFreesBeforeAllocating(t *testing.T) {
	var events []render.DeviceEvent
	dev := render.NewDevice()
	dev.OnEvent = func(e render.DeviceEvent) { events = append(events, e) }
	r := render.NewRenderer(dev)
	tgt := render.NewRGBATarget(32, 32)
	cam := render.NewCamera(24, 1, 0.1, 100)
	cam.Position = render.V3(0, 0.5, 4.5)

	s := render.NewScene()
	l := newLoader(staticFetch(deviceGLB()), s)
	require.NoError(t, l.Load(context.Background(), "a.glb"))
	pollUntil(t, l, committed)
	r.Render(tgt, s, cam)

	firstAllocs := len(events)
	require.Positive(t, firstAllocs)
	old := l.Model()

	require.NoError(t, l.Load(context.Background(), "b.glb"))
	assert.Equal(t, 0, dev.Stats().Live, "old buffers released on Load")
	assert.True(t, old.Materials().Shell.Disposed())
	assert.Empty(t, s.Root.Children())

	pollUntil(t, l, committed)
	r.Render(tgt, s, cam)

	after := events[firstAllocs:]
	sawAlloc := false
	frees := 0
	for _, e := range after {
		switch e.Kind {
		case render.EventAlloc:
			sawAlloc = true
		case render.EventFree:
			assert.False(t, sawAlloc, "free after a new allocation: %+v", e)
			frees++
		}
	}
	assert.Equal(t, firstAllocs, frees)
	assert.True(t, sawAlloc)
	assert.Len(t, s.Root.Children(), 1)
}

func TestFetchFileProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.glb")
	data := make([]byte, 100<<10)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var last Progress
	got, err := NewFetcher(nil)(context.Background(), path, func(p Progress) { last = p })
	require.NoError(t, err)
	assert.Len(t, got, len(data))
	assert.Equal(t, Progress{Received: int64(len(data)), Total: int64(len(data))}, last)
}

func TestIdleBob(t *testing.T) {
	assert.InDelta(t, 0.05, Bob(0.05, 0), 1e-6)
	for _, tt := range []float32{0.3, 1, 7, 100} {
		y := Bob(0.05, tt)
		assert.LessOrEqual(t, y, float32(0.075+1e-6))
		assert.GreaterOrEqual(t, y, float32(0.025-1e-6))
	}
}
