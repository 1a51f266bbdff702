// Package outline derives thick edge lines from triangle meshes.
package outline

import (
	"math"

	"replica/internal/render"

	"github.com/chewxy/math32"
)

// DefaultThreshold is the dihedral angle, in degrees, above which an edge
// between two faces is drawn.
const DefaultThreshold = 8

// RenderOrder places edge lines after bodies and the screen.
const RenderOrder = 3

const precision = 1e4

type vkey [3]int64

func keyOf(v render.Vec3) vkey {
	return vkey{
		int64(math.Round(float64(v.X) * precision)),
		int64(math.Round(float64(v.Y) * precision)),
		int64(math.Round(float64(v.Z) * precision)),
	}
}

type halfEdge struct {
	a, b   render.Vec3
	normal render.Vec3
	used   bool
}

// Edges returns segment pairs for every edge whose adjacent face normals
// differ by more than thresholdDeg, plus every boundary edge. Vertices are
// merged by position, so split-normal seams do not produce edges.
func Edges(g *render.Geometry, thresholdDeg float32) []render.Vec3 {
	if g == nil {
		return nil
	}
	thresholdDot := math32.Cos(render.Radians(thresholdDeg))

	open := map[[2]vkey]*halfEdge{}
	var order []*halfEdge
	var out []render.Vec3

	n := g.Triangles()
	for i := 0; i < n; i++ {
		ia, ib, ic := g.Triangle(i)
		if int(ia) >= len(g.Positions) || int(ib) >= len(g.Positions) || int(ic) >= len(g.Positions) {
			continue
		}
		v := [3]render.Vec3{g.Positions[ia], g.Positions[ib], g.Positions[ic]}
		k := [3]vkey{keyOf(v[0]), keyOf(v[1]), keyOf(v[2])}
		if k[0] == k[1] || k[1] == k[2] || k[2] == k[0] {
			continue
		}
		normal := render.Normalize(render.Cross(v[1].Sub(v[0]), v[2].Sub(v[0])))

		for j := 0; j < 3; j++ {
			next := (j + 1) % 3
			fwd := [2]vkey{k[j], k[next]}
			rev := [2]vkey{k[next], k[j]}
			if e, ok := open[rev]; ok && !e.used {
				if render.Dot(normal, e.normal) <= thresholdDot {
					out = append(out, e.a, e.b)
				}
				e.used = true
				delete(open, rev)
				continue
			}
			if _, ok := open[fwd]; ok {
				continue
			}
			e := &halfEdge{a: v[j], b: v[next], normal: normal}
			open[fwd] = e
			order = append(order, e)
		}
	}

	for _, e := range order {
		if !e.used {
			if _, ok := open[[2]vkey{keyOf(e.a), keyOf(e.b)}]; ok {
				out = append(out, e.a, e.b)
			}
		}
	}
	return out
}

type link struct {
	src  *render.Node
	line *render.Node
}

// Outliner builds and maintains one line node per mesh, all sharing one
// LineMaterial.
type Outliner struct {
	Material  *render.LineMaterial
	Threshold float32

	links []link
}

func New(mat *render.LineMaterial) *Outliner {
	return &Outliner{Material: mat, Threshold: DefaultThreshold}
}

// Outline adds a line node next to every mesh under model and returns them.
func (o *Outliner) Outline(model *render.Node) []*render.Node {
	if model == nil {
		return nil
	}
	var lines []*render.Node
	for _, src := range model.Meshes() {
		parent := src.Parent()
		if parent == nil || src.Mesh.Geometry == nil {
			continue
		}
		lg := render.NewLineGeometry(Edges(src.Mesh.Geometry, o.Threshold))
		lg.ComputeLineDistances()

		line := render.NewLineNode(src.Name+"_edges", lg, o.Material)
		line.RenderOrder = RenderOrder
		copyTransform(line, src)
		parent.Add(line)

		o.links = append(o.links, link{src: src, line: line})
		lines = append(lines, line)
	}
	return lines
}

// Track copies each source mesh's local transform and visibility onto its
// line so lines follow meshes that move.
func (o *Outliner) Track() {
	for _, l := range o.links {
		copyTransform(l.line, l.src)
		l.line.Visible = l.src.Visible
	}
}

// Lines returns the line nodes built since the last Reset.
func (o *Outliner) Lines() []*render.Node {
	out := make([]*render.Node, len(o.links))
	for i, l := range o.links {
		out[i] = l.line
	}
	return out
}

// Reset forgets every line. Disposal is left to the owner of the model.
func (o *Outliner) Reset() { o.links = nil }

func copyTransform(dst, src *render.Node) {
	dst.Position = src.Position
	dst.Rotation = src.Rotation
	dst.Scale = src.Scale
}
