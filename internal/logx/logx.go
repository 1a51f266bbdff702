// Package logx routes log/slog records through a hal.Logger line sink.
package logx

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"replica/hal"

	"github.com/muesli/termenv"
)

// UserLevel is the level used by SetDefault when none is given.
var UserLevel = slog.LevelWarn

// LevelFromFlags returns the level for the given command line flags. Debug
// wins over verbose, and verbose wins over quiet.
func LevelFromFlags(debug, verbose, quiet bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ParseLevel reads a level name such as "debug" or "warn". An empty string
// is UserLevel.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return UserLevel, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return UserLevel, err
	}
	return l, nil
}

// Options configures a Handler.
type Options struct {
	Level slog.Leveler

	// Color, when non-nil, is the terminal whose color profile styles level
	// names. Nil disables color.
	Color io.Writer

	// Now overrides the clock. Nil omits timestamps.
	Now func() time.Time
}

// Handler formats records as single text lines.
type Handler struct {
	sink   hal.Logger
	level  slog.Leveler
	out    *termenv.Output
	now    func() time.Time
	prefix string
	attrs  []slog.Attr

	mu *sync.Mutex
}

func NewHandler(sink hal.Logger, opts *Options) *Handler {
	h := &Handler{sink: sink, level: UserLevel, mu: &sync.Mutex{}}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		if opts.Color != nil {
			h.out = termenv.NewOutput(opts.Color)
		}
		h.now = opts.Now
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if h.now != nil {
		t := r.Time
		if t.IsZero() {
			t = h.now()
		}
		b.WriteString(t.Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	b.WriteString(h.levelName(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink.WriteLineString(b.String())
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func (h *Handler) levelName(l slog.Level) string {
	name := l.String()
	if h.out == nil {
		return name
	}
	var c termenv.Color
	switch {
	case l >= slog.LevelError:
		c = h.out.Color("1")
	case l >= slog.LevelWarn:
		c = h.out.Color("3")
	case l >= slog.LevelInfo:
		c = h.out.Color("2")
	default:
		c = h.out.Color("4")
	}
	return h.out.String(name).Foreground(c).String()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			writeAttr(b, prefix+a.Key+".", g)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\"=") {
		v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	b.WriteString(v)
}

// New returns a logger writing through sink.
func New(sink hal.Logger, opts *Options) *slog.Logger {
	return slog.New(NewHandler(sink, opts))
}

// SetDefault installs a logger writing through sink as the slog default.
func SetDefault(sink hal.Logger, opts *Options) *slog.Logger {
	l := New(sink, opts)
	slog.SetDefault(l)
	return l
}
