// Package model loads the device asset in the background and commits it to
// the scene from the frame loop.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"replica/internal/asset"
	"replica/internal/classify"
	"replica/internal/outline"
	"replica/internal/render"
)

// ErrLoadInFlight is returned by Load while an earlier load has not been
// committed.
var ErrLoadInFlight = errors.New("model: load in flight")

// Status is the state of the loader.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrorText is shown to the user when a load fails.
const ErrorText = "LOAD ERROR"

// Model is a loaded, classified and outlined device.
type Model struct {
	Path  string
	Root  *render.Node
	Parts *classify.Result
	Lines []*render.Node
	Stats asset.Stats

	// Rest is the root position after normalisation.
	Rest render.Vec3

	outliner *outline.Outliner
}

// Materials returns the model's MaterialSet.
func (m *Model) Materials() *classify.MaterialSet {
	if m == nil || m.Parts == nil {
		return nil
	}
	return m.Parts.Materials
}

// Screen returns the Screen mesh, or nil.
func (m *Model) Screen() *render.Node {
	if m == nil || m.Parts == nil {
		return nil
	}
	return m.Parts.Screen
}

// Idle moves the model to its bobbing height at t seconds.
func (m *Model) Idle(t float32) {
	m.Root.Position.Y = Bob(m.Rest.Y, t)
}

// Track keeps the edge lines on their meshes.
func (m *Model) Track() {
	if m.outliner != nil {
		m.outliner.Track()
	}
}

// Dispose releases every buffer and material owned by the model.
func (m *Model) Dispose() {
	m.Root.Dispose()
	if mats := m.Materials(); mats != nil {
		mats.Dispose()
	}
	if m.outliner != nil {
		m.outliner.Reset()
	}
}

// Attacher is the part of the scene a model is attached to.
type Attacher interface {
	Add(n *render.Node)
	Remove(n *render.Node)
}

// Options configures a Loader.
type Options struct {
	Scene     Attacher
	Edges     *render.LineMaterial
	Placement Placement
	Fetch     Fetcher
	Logger    *slog.Logger
	// OnCommit runs on the frame loop after a model is attached.
	OnCommit func(*Model)
}

type result struct {
	gen   uint64
	path  string
	root  *render.Node
	stats asset.Stats
	err   error
}

type progressMsg struct {
	gen uint64
	p   Progress
}

// Loader fetches and decodes assets off the frame loop. All methods must be
// called from the frame loop.
type Loader struct {
	opts Options
	log  *slog.Logger

	results  chan result
	progress chan progressMsg

	gen      uint64
	inflight bool
	cancel   context.CancelFunc
	path     string

	model  *Model
	status Status
	err    error
	last   Progress
	hasPr  bool
}

func NewLoader(opts Options) *Loader {
	if opts.Fetch == nil {
		opts.Fetch = NewFetcher(nil)
	}
	if opts.Placement == (Placement{}) {
		opts.Placement = DefaultPlacement
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		opts:     opts,
		log:      log.With("component", "loader"),
		results:  make(chan result, 4),
		progress: make(chan progressMsg, 16),
	}
}

func (l *Loader) Model() *Model  { return l.model }
func (l *Loader) Status() Status { return l.status }
func (l *Loader) Err() error     { return l.err }
func (l *Loader) InFlight() bool { return l.inflight }
func (l *Loader) Path() string   { return l.path }

// Progress returns the latest fetch progress with a known total.
func (l *Loader) Progress() (Progress, bool) { return l.last, l.hasPr }

// Load detaches and disposes the current model, then starts fetching path.
func (l *Loader) Load(ctx context.Context, path string) error {
	if l.inflight {
		return ErrLoadInFlight
	}
	l.Unload()

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.gen++
	gen := l.gen
	l.inflight = true
	l.path = path
	l.status = StatusLoading
	l.err = nil
	l.last, l.hasPr = Progress{}, false
	l.log.Info("loading", "path", path, "gen", gen)

	go func() {
		defer cancel()
		r := result{gen: gen, path: path}
		data, err := l.opts.Fetch(ctx, path, func(p Progress) {
			if p.Total <= 0 {
				return
			}
			select {
			case l.progress <- progressMsg{gen: gen, p: p}:
			default:
			}
		})
		if err != nil {
			r.err = fmt.Errorf("fetch %s: %w", path, err)
		} else {
			r.root, r.stats, err = asset.Decode(data)
			if err != nil {
				r.err = fmt.Errorf("decode %s: %w", path, err)
			}
		}
		select {
		case l.results <- r:
		case <-ctx.Done():
		}
	}()
	return nil
}

// Unload cancels any in-flight load and detaches and disposes the current
// model.
func (l *Loader) Unload() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.inflight {
		l.gen++
		l.inflight = false
	}
	if m := l.model; m != nil {
		if l.opts.Scene != nil {
			l.opts.Scene.Remove(m.Root)
		}
		m.Dispose()
		l.model = nil
	}
	l.status = StatusIdle
}

// Poll drains progress and commits a finished load. It returns the model
// committed by this call, if any.
func (l *Loader) Poll() *Model {
drain:
	for {
		select {
		case pm := <-l.progress:
			if pm.gen == l.gen {
				l.last, l.hasPr = pm.p, true
			}
		default:
			break drain
		}
	}

	for {
		select {
		case r := <-l.results:
			if r.gen != l.gen || !l.inflight {
				l.log.Debug("discarding stale load", "path", r.path, "gen", r.gen)
				continue
			}
			l.inflight = false
			l.cancel = nil
			if r.err != nil {
				l.status = StatusFailed
				l.err = r.err
				l.log.Error("load failed", "err", r.err)
				return nil
			}
			return l.commit(r)
		default:
			return nil
		}
	}
}

func (l *Loader) commit(r result) *Model {
	Normalize(r.root, l.opts.Placement)
	m := &Model{
		Path:  r.path,
		Root:  r.root,
		Stats: r.stats,
		Rest:  r.root.Position,
	}
	m.Parts = classify.Classify(r.root)
	if l.opts.Edges != nil {
		m.outliner = outline.New(l.opts.Edges)
		m.Lines = m.outliner.Outline(r.root)
	}
	if l.opts.Scene != nil {
		l.opts.Scene.Add(r.root)
	}
	l.model = m
	l.status = StatusReady
	l.log.Info("loaded",
		slog.Group("asset", "path", r.path, "meshes", r.stats.Meshes, "triangles", r.stats.Triangles),
		"screen", m.Screen() != nil)
	if l.opts.OnCommit != nil {
		l.opts.OnCommit(m)
	}
	return m
}
