package hal

import (
	"errors"
	"image"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a fixed-size RGB565 pixel buffer shared between a producer
// goroutine and the frame loop.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	ClearRGB(r, g, b uint8)

	// Update runs fn with exclusive access to the pixel buffer.
	Update(fn func(buf []byte))
	// Snapshot copies the buffer into dst, growing it if needed.
	Snapshot(dst []byte) []byte
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyHome
)

// KeyEvent is a keyboard event. Printable keys arrive with Code unset and
// Rune set.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// PointerEvent is a drag delta in window pixels.
type PointerEvent struct {
	DX, DY float32
}

// Pointer provides pointer drag events.
type Pointer interface {
	Events() <-chan PointerEvent
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// Time is the frame clock. It advances once per host frame.
type Time interface {
	Elapsed() time.Duration
	Frame() uint64
}

// HAL provides the only contact point between the app and the outside world.
type HAL interface {
	Logger() Logger
	Input() Input
	Time() Time
}

// App is driven by a host: Layout on every viewport change, Step once per
// frame, Frame to present the result.
type App interface {
	Layout(width, height int)
	Step() error
	// Frame returns the last composed frame. It may be smaller than the
	// viewport; hosts scale it to fit.
	Frame() *image.RGBA
}

// ErrQuit is returned by App.Step to end the host loop cleanly.
var ErrQuit = errors.New("quit")
