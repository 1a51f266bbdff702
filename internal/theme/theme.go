// Package theme holds the light/dark appearance state of the viewer and the
// scene parameters that belong to each state.
package theme

import (
	"fmt"
	"log/slog"

	"replica/internal/classify"
	"replica/internal/render"
)

// Theme is one of the two appearance states.
type Theme uint8

const (
	Light Theme = iota
	Dark
)

func (t Theme) String() string {
	if t == Dark {
		return "dark"
	}
	return "light"
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Parse maps a persisted value back to a Theme.
func Parse(s string) (Theme, bool) {
	switch s {
	case "light":
		return Light, true
	case "dark":
		return Dark, true
	}
	return Light, false
}

// Params is the set of scene values driven by the theme.
type Params struct {
	Ambient float32
	Key     float32
	Fill    float32

	Shell  float32
	Mid    float32
	Detail float32

	EdgeColor   render.Color
	EdgeOpacity float32

	ScreenEmissive float32
	Background     render.Color
}

var table = [...]Params{
	Light: {
		Ambient: 2.0, Key: 2.5, Fill: 1.5,
		Shell: 0.03, Mid: 0.30, Detail: 0.42,
		EdgeColor: render.Hex(0x222222), EdgeOpacity: 0.25,
		ScreenEmissive: 0.15,
		Background:     render.Hex(0xf4f4f1),
	},
	Dark: {
		Ambient: 1.2, Key: 2.0, Fill: 1.1,
		Shell: 0.06, Mid: 0.34, Detail: 0.48,
		EdgeColor: render.Hex(0xaab4c0), EdgeOpacity: 0.30,
		ScreenEmissive: 0.35,
		Background:     render.Hex(0x121316),
	},
}

// For returns the parameters of t.
func For(t Theme) Params {
	if int(t) >= len(table) {
		return table[Light]
	}
	return table[t]
}

// Store persists the theme choice. *prefs.Store satisfies it.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Key is the preference key the theme is stored under.
const Key = "theme"

// Target names the scene parts a theme is applied to. Nil fields are
// skipped, so a target without a loaded model is valid.
type Target struct {
	Ambient    *render.AmbientLight
	Key        *render.DirectionalLight
	Fill       *render.DirectionalLight
	Materials  *classify.MaterialSet
	Edges      *render.LineMaterial
	Background *render.Color
}

// Controller owns the current theme.
type Controller struct {
	store Store
	theme Theme
	log   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a controller in the Light state. Call Init to load the
// persisted choice.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{store: store, log: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Init reads the stored theme. Without a stored value it falls back to
// the platform preference, then to Light.
func (c *Controller) Init(platform func() (dark, ok bool)) Theme {
	c.theme = Light
	if c.store != nil {
		if v, ok := c.store.Get(Key); ok {
			if t, ok := Parse(v); ok {
				c.theme = t
				return c.theme
			}
			c.log.Warn("ignoring stored theme", "value", v)
		}
	}
	if platform != nil {
		if dark, ok := platform(); ok && dark {
			c.theme = Dark
		}
	}
	return c.theme
}

func (c *Controller) Theme() Theme   { return c.theme }
func (c *Controller) Params() Params { return For(c.theme) }

// Toggle flips the theme and persists it. The state flips even when the
// store fails; the error is returned for logging.
func (c *Controller) Toggle() (Theme, error) {
	c.theme = c.theme.Toggle()
	if c.store == nil {
		return c.theme, nil
	}
	if err := c.store.Set(Key, c.theme.String()); err != nil {
		return c.theme, fmt.Errorf("persist theme: %w", err)
	}
	return c.theme, nil
}

// Apply writes the current parameters into t.
func (c *Controller) Apply(t Target) {
	Apply(c.theme, t)
}

// Apply writes the parameters of th into t. Applying twice has the same
// result as applying once.
func Apply(th Theme, t Target) {
	p := For(th)
	if t.Ambient != nil {
		t.Ambient.Intensity = p.Ambient
	}
	if t.Key != nil {
		t.Key.Intensity = p.Key
	}
	if t.Fill != nil {
		t.Fill.Intensity = p.Fill
	}
	if t.Edges != nil {
		t.Edges.Color = p.EdgeColor
		t.Edges.Opacity = p.EdgeOpacity
	}
	if t.Background != nil {
		*t.Background = p.Background
	}
	if m := t.Materials; m != nil {
		if m.Shell != nil {
			m.Shell.Opacity = p.Shell
		}
		if m.Mid != nil {
			m.Mid.Opacity = p.Mid
		}
		if m.Detail != nil {
			m.Detail.Opacity = p.Detail
		}
		if m.Screen != nil {
			m.Screen.EmissiveIntensity = p.ScreenEmissive
		}
	}
}
