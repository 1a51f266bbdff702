// Package classify assigns roles and material tiers to the meshes of a
// loaded model.
//
// A mesh named "screen" (any case) is the Screen: it is never ranked and
// gets the screen material. Every other mesh is a Body, ranked by the
// volume of its local bounding box (largest first, ties in traversal order)
// and split into thirds: shell, mid and detail.
package classify

import (
	"cmp"
	"slices"
	"strings"

	"replica/internal/render"
)

// ScreenName is the mesh name, compared case-insensitively, of the Screen.
const ScreenName = "screen"

// Render orders of the screen and of edge lines.
const (
	ScreenRenderOrder = 1
	EdgeRenderOrder   = 3
)

// Role is the part a mesh plays in the device.
type Role uint8

const (
	RoleBody Role = iota
	RoleScreen
)

func (r Role) String() string {
	if r == RoleScreen {
		return "screen"
	}
	return "body"
}

// Tier is a body material tier.
type Tier uint8

const (
	TierNone Tier = iota
	TierShell
	TierMid
	TierDetail
)

func (t Tier) String() string {
	switch t {
	case TierShell:
		return "shell"
	case TierMid:
		return "mid"
	case TierDetail:
		return "detail"
	default:
		return "-"
	}
}

// Part is the classification of one mesh.
type Part struct {
	Node   *render.Node
	Role   Role
	Tier   Tier
	Rank   int // -1 for the Screen
	Volume float32
}

// Result is the outcome of Classify.
type Result struct {
	// Parts lists every mesh in traversal order.
	Parts     []Part
	Screen    *render.Node
	Tiers     [3][]*render.Node
	Materials *MaterialSet
}

// Tier returns the meshes of tier t.
func (r *Result) Tier(t Tier) []*render.Node {
	if t < TierShell || t > TierDetail {
		return nil
	}
	return r.Tiers[t-TierShell]
}

// Bodies returns every ranked mesh, largest first.
func (r *Result) Bodies() []*render.Node {
	out := make([]*render.Node, 0, len(r.Tiers[0])+len(r.Tiers[1])+len(r.Tiers[2]))
	for _, t := range r.Tiers {
		out = append(out, t...)
	}
	return out
}

// TierBounds returns the rank boundaries for n bodies: ranks [0,t1) are
// shell, [t1,t2) mid and [t2,n) detail.
func TierBounds(n int) (t1, t2 int) {
	return (n + 2) / 3, (2*n + 2) / 3
}

// IsScreenName reports whether a mesh name designates the Screen.
func IsScreenName(name string) bool {
	return strings.EqualFold(name, ScreenName)
}

// Classify tags every mesh under model, assigns a fresh MaterialSet and
// projects screen UVs. A model without bodies or without a screen is valid.
func Classify(model *render.Node) *Result {
	res := &Result{Materials: NewMaterialSet()}
	if model == nil {
		return res
	}

	var bodies []int
	for _, n := range model.Meshes() {
		p := Part{Node: n, Rank: -1}
		if n.Mesh.Geometry != nil {
			p.Volume = n.Mesh.Geometry.BoundingBox().Volume()
		}
		if res.Screen == nil && IsScreenName(n.Name) {
			p.Role = RoleScreen
			res.Screen = n
		} else {
			bodies = append(bodies, len(res.Parts))
		}
		res.Parts = append(res.Parts, p)
	}

	slices.SortStableFunc(bodies, func(a, b int) int {
		return cmp.Compare(res.Parts[b].Volume, res.Parts[a].Volume)
	})
	t1, t2 := TierBounds(len(bodies))
	for rank, pi := range bodies {
		p := &res.Parts[pi]
		p.Rank = rank
		switch {
		case rank < t1:
			p.Tier = TierShell
		case rank < t2:
			p.Tier = TierMid
		default:
			p.Tier = TierDetail
		}
		p.Node.Mesh.Material = res.Materials.ForTier(p.Tier)
		res.Tiers[p.Tier-TierShell] = append(res.Tiers[p.Tier-TierShell], p.Node)
	}

	if s := res.Screen; s != nil {
		s.Mesh.Material = res.Materials.Screen
		s.RenderOrder = ScreenRenderOrder
		if s.Mesh.Geometry != nil {
			ProjectScreenUVs(s.Mesh.Geometry)
		}
	}
	return res
}

// ProjectScreenUVs replaces the UVs of g with a planar projection along
// its flattest local axis, so a framebuffer maps upright onto the screen.
func ProjectScreenUVs(g *render.Geometry) {
	bb := g.BoundingBox()
	mins := [3]float32{bb.Min.X, bb.Min.Y, bb.Min.Z}
	ext := bb.Size()
	exts := [3]float32{ext.X, ext.Y, ext.Z}

	var uAxis, vAxis int
	switch {
	case exts[0] <= exts[1] && exts[0] <= exts[2]:
		uAxis, vAxis = 2, 1
	case exts[1] <= exts[0] && exts[1] <= exts[2]:
		uAxis, vAxis = 0, 2
	default:
		uAxis, vAxis = 0, 1
	}

	coord := func(p [3]float32, axis int) float32 {
		if exts[axis] <= 0.001 {
			return 0.5
		}
		return 1 - (p[axis]-mins[axis])/exts[axis]
	}
	uvs := make([]render.Vec2, len(g.Positions))
	for i, p := range g.Positions {
		v := [3]float32{p.X, p.Y, p.Z}
		uvs[i] = render.V2(coord(v, vAxis), coord(v, uAxis))
	}
	g.SetUVs(uvs)
}
