package hal

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFramebufferClearAndSnapshot(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	if fb.StrideBytes() != 8 {
		t.Fatalf("StrideBytes() = %d, want 8", fb.StrideBytes())
	}
	fb.ClearRGB(0xFF, 0, 0)
	snap := fb.Snapshot(nil)
	if len(snap) != 16 {
		t.Fatalf("len(Snapshot) = %d, want 16", len(snap))
	}
	p := uint16(snap[0]) | uint16(snap[1])<<8
	if p != 0xF800 {
		t.Fatalf("pixel = %#x, want 0xf800", p)
	}

	fb.Update(func(buf []byte) { buf[0], buf[1] = 0x1F, 0 })
	snap = fb.Snapshot(snap)
	r, g, b := rgb888From565(uint16(snap[0]) | uint16(snap[1])<<8)
	if r != 0 || g != 0 || b != 0xFF {
		t.Fatalf("pixel = (%d,%d,%d), want blue", r, g, b)
	}
}

func TestPointerDragEmitsDeltas(t *testing.T) {
	p := newHostPointer()
	p.drag(true, 10, 10)
	p.drag(true, 15, 8)
	p.drag(false, 40, 40)
	p.drag(true, 40, 40)

	select {
	case ev := <-p.Events():
		if ev.DX != 5 || ev.DY != -2 {
			t.Fatalf("drag = %+v, want {5 -2}", ev)
		}
	default:
		t.Fatal("expected a drag event")
	}
	select {
	case ev := <-p.Events():
		t.Fatalf("unexpected event after release: %+v", ev)
	default:
	}
}

func TestHostTimeAdvancesPerFrame(t *testing.T) {
	now := time.Unix(100, 0)
	ht := newHostTime()
	ht.clock = func() time.Time { return now }

	ht.step()
	now = now.Add(250 * time.Millisecond)
	ht.step()

	if ht.Frame() != 2 {
		t.Fatalf("Frame() = %d, want 2", ht.Frame())
	}
	if ht.Elapsed() != 250*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 250ms", ht.Elapsed())
	}
}

func TestHostLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	h := newHost(&buf)
	h.Logger().WriteLineString("a")
	h.Logger().WriteLineBytes([]byte("b"))
	if got := buf.String(); got != "a\nb\n" {
		t.Fatalf("log = %q", got)
	}
}

type countingApp struct {
	w, h  int
	steps int
	quit  int
	frame *image.RGBA
}

func (a *countingApp) Layout(w, h int) {
	a.w, a.h = w, h
	a.frame = image.NewRGBA(image.Rect(0, 0, w/2, h/2))
}

func (a *countingApp) Step() error {
	a.steps++
	if a.quit > 0 && a.steps >= a.quit {
		return ErrQuit
	}
	return nil
}

func (a *countingApp) Frame() *image.RGBA { return a.frame }

func TestRunHeadlessStopsAfterTicksAndWritesSnapshot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	app := &countingApp{}
	err := runHeadless(context.Background(), newHost(&bytes.Buffer{}), app, HeadlessConfig{
		Hz:       1000,
		Ticks:    3,
		Width:    64,
		Height:   32,
		Snapshot: out,
	})
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if app.steps != 3 {
		t.Fatalf("steps = %d, want 3", app.steps)
	}
	if app.w != 64 || app.h != 32 {
		t.Fatalf("layout = %dx%d, want 64x32", app.w, app.h)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Fatalf("snapshot size = %v", img.Bounds())
	}
}

func TestRunHeadlessQuit(t *testing.T) {
	app := &countingApp{quit: 2}
	err := runHeadless(context.Background(), newHost(&bytes.Buffer{}), app, HeadlessConfig{Hz: 1000})
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if app.steps != 2 {
		t.Fatalf("steps = %d, want 2", app.steps)
	}
}

func TestRunHeadlessRejectsBadHz(t *testing.T) {
	err := runHeadless(context.Background(), newHost(&bytes.Buffer{}), &countingApp{}, HeadlessConfig{Hz: 2_000_000_000})
	if err == nil || !strings.Contains(err.Error(), "invalid headless hz") {
		t.Fatalf("err = %v, want invalid hz", err)
	}
}
