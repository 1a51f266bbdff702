package render

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
)

// ToneMapping selects the output curve applied to shaded colors.
type ToneMapping uint8

const (
	ToneMappingNone ToneMapping = iota
	ToneMappingFilmic
)

func (t ToneMapping) String() string {
	if t == ToneMappingFilmic {
		return "filmic"
	}
	return "none"
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Meshes    int
	Lines     int
	Triangles int
	Segments  int
}

// Renderer is a software renderer for a Scene.
//
// Create it once and reuse it to avoid allocations.
type Renderer struct {
	Device      *Device
	ToneMapping ToneMapping
	Exposure    float32

	// Dither runs an ordered dither pass after drawing.
	Dither bool
	// Scanlines darkens odd rows after dithering.
	Scanlines bool

	Stats FrameStats

	depthBuf []float32
	items    []drawItem
}

type drawItem struct {
	node        *Node
	order       int
	z           float32
	transparent bool
}

func NewRenderer(dev *Device) *Renderer {
	if dev == nil {
		dev = NewDevice()
	}
	return &Renderer{Device: dev, Exposure: 1}
}

type frame struct {
	t      Target
	w, h   int
	vp     Mat4
	camPos Vec3
	scene  *Scene
}

// Render draws s as seen by cam into t.
func (r *Renderer) Render(t Target, s *Scene, cam *Camera) {
	if r == nil || t == nil || s == nil || cam == nil || s.Root == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(s.Background)
	r.resetDepth(w * h)
	r.Stats = FrameStats{}

	s.Root.UpdateWorld()
	view := cam.View()
	f := frame{t: t, w: w, h: h, vp: Mat4Mul(cam.Projection(), view), camPos: cam.Position, scene: s}

	r.items = r.items[:0]
	r.collect(s.Root, view)
	slices.SortStableFunc(r.items, func(a, b drawItem) int {
		if a.transparent != b.transparent {
			if a.transparent {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		if a.transparent {
			return cmp.Compare(b.z, a.z)
		}
		return cmp.Compare(a.z, b.z)
	})

	for _, it := range r.items {
		switch {
		case it.node.Mesh != nil:
			r.drawMesh(&f, it.node)
		case it.node.Lines != nil:
			r.drawLines(&f, it.node)
		}
	}
	if r.Dither {
		Dither(t)
	}
	if r.Scanlines {
		Scanlines(t)
	}
}

func (r *Renderer) resetDepth(n int) {
	if cap(r.depthBuf) < n {
		r.depthBuf = make([]float32, n)
	}
	r.depthBuf = r.depthBuf[:n]
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// collect gathers visible drawables with their view distance.
func (r *Renderer) collect(n *Node, view Mat4) {
	if !n.Visible {
		return
	}
	switch {
	case n.Mesh != nil && n.Mesh.Geometry != nil && n.Mesh.Material != nil && !n.Mesh.Geometry.Disposed():
		center := n.world.MulPoint(n.Mesh.Geometry.BoundingBox().Center())
		r.items = append(r.items, drawItem{
			node:        n,
			order:       n.RenderOrder,
			z:           -view.MulPoint(center).Z,
			transparent: n.Mesh.Material.Transparent,
		})
	case n.Lines != nil && n.Lines.Geometry != nil && n.Lines.Material != nil && !n.Lines.Geometry.Disposed():
		pos := V3(n.world[12], n.world[13], n.world[14])
		r.items = append(r.items, drawItem{
			node:        n,
			order:       n.RenderOrder,
			z:           -view.MulPoint(pos).Z,
			transparent: n.Lines.Material.Transparent,
		})
	}
	for _, c := range n.children {
		r.collect(c, view)
	}
}

type screenVert struct {
	x, y, z float32
	invW    float32
}

func (f *frame) project(p Vec3) (screenVert, bool) {
	c := Mat4MulV4(f.vp, Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
	if c.W <= 1e-5 {
		return screenVert{}, false
	}
	inv := 1 / c.W
	return screenVert{
		x:    (c.X*inv*0.5 + 0.5) * float32(f.w),
		y:    (1 - (c.Y*inv*0.5 + 0.5)) * float32(f.h),
		z:    c.Z*inv*0.5 + 0.5,
		invW: inv,
	}, true
}

func (r *Renderer) drawMesh(f *frame, n *Node) {
	g, m := n.Mesh.Geometry, n.Mesh.Material
	g.upload(r.Device)
	if m.Map != nil {
		m.Map.upload(r.Device)
	}
	if m.EmissiveMap != nil {
		m.EmissiveMap.upload(r.Device)
	}
	r.Stats.Meshes++

	hasUV := len(g.UVs) == len(g.Positions) && (m.Map != nil || m.EmissiveMap != nil)
	alpha := m.EffectiveOpacity()
	tri := g.Triangles()
	for i := 0; i < tri; i++ {
		ia, ib, ic := g.Triangle(i)
		if int(ia) >= len(g.Positions) || int(ib) >= len(g.Positions) || int(ic) >= len(g.Positions) {
			continue
		}
		w0 := n.world.MulPoint(g.Positions[ia])
		w1 := n.world.MulPoint(g.Positions[ib])
		w2 := n.world.MulPoint(g.Positions[ic])

		normal := Normalize(Cross(w1.Sub(w0), w2.Sub(w0)))
		centroid := w0.Add(w1).Add(w2).Mul(1.0 / 3)
		viewDir := Normalize(f.camPos.Sub(centroid))
		if Dot(normal, viewDir) < 0 {
			if m.Side != DoubleSide {
				continue
			}
			normal = normal.Mul(-1)
		}

		s0, ok0 := f.project(w0)
		s1, ok1 := f.project(w1)
		s2, ok2 := f.project(w2)
		if !ok0 || !ok1 || !ok2 {
			continue
		}

		lit := lighting(f.scene, m, normal, viewDir)
		var uv [3]Vec2
		if hasUV {
			uv = [3]Vec2{g.UVs[ia], g.UVs[ib], g.UVs[ic]}
		}
		r.fillTriangle(f, [3]screenVert{s0, s1, s2}, uv, hasUV, m, lit, alpha)
		r.Stats.Triangles++
	}
}

// lit holds the per-triangle light terms a fragment combines with its albedo.
type lit struct {
	diffuse  RGBf
	specular RGBf
	metal    float32
}

// lighting evaluates ambient, directional and environment light for a flat
// triangle with normal n seen along v.
func lighting(s *Scene, m *Material, n, v Vec3) lit {
	const invPi = 1 / math32.Pi
	var out lit
	out.metal = Clamp01(m.Metalness)

	if s.Ambient != nil {
		out.diffuse = out.diffuse.Add(s.Ambient.Color.Float().Scale(s.Ambient.Intensity * invPi))
	}

	rough := Clamp01(m.Roughness)
	gloss := 1 - rough
	shininess := 4 + 252*gloss*gloss
	ccShininess := 8 + 504*sq(1-Clamp01(m.ClearcoatRoughness))
	specTint := m.SpecularColor.Float().Scale(m.SpecularIntensity * gloss)

	for _, l := range s.Lights {
		if l == nil {
			continue
		}
		ld := l.Direction()
		ndotl := Dot(n, ld)
		if ndotl <= 0 {
			continue
		}
		radiance := l.Color.Float().Scale(l.Intensity * ndotl)
		out.diffuse = out.diffuse.Add(radiance.Scale(invPi))

		half := Normalize(ld.Add(v))
		ndoth := math32.Max(Dot(n, half), 0)
		out.specular = out.specular.Add(radiance.Mul(specTint).Scale(math32.Pow(ndoth, shininess) * 0.25))
		if m.Clearcoat > 0 {
			out.specular = out.specular.Add(radiance.Scale(m.Clearcoat * math32.Pow(ndoth, ccShininess) * 0.25))
		}
	}

	if e := s.Environment; e != nil && m.EnvIntensity > 0 {
		out.diffuse = out.diffuse.Add(e.Radiance(n).Scale(m.EnvIntensity))
		nv := math32.Max(Dot(n, v), 0)
		fresnel := 0.04 + 0.96*math32.Pow(1-nv, 5)
		refl := n.Mul(2 * Dot(n, v)).Sub(v)
		env := e.Radiance(refl).Scale(m.EnvIntensity * fresnel * gloss)
		out.specular = out.specular.Add(env)
		if m.Clearcoat > 0 {
			out.specular = out.specular.Add(e.Radiance(refl).Scale(m.EnvIntensity * m.Clearcoat * fresnel))
		}
	}
	return out
}

func sq(v float32) float32 { return v * v }

func (r *Renderer) fragment(l lit, albedo, emissive RGBf) RGBf {
	diffuse := albedo.Mul(l.diffuse).Scale(1 - l.metal)
	spec := l.specular.Lerp(l.specular.Mul(albedo), l.metal)
	return r.toneMap(diffuse.Add(spec).Add(emissive))
}

func (r *Renderer) toneMap(c RGBf) RGBf {
	if r.ToneMapping != ToneMappingFilmic {
		return c
	}
	e := r.Exposure
	if e <= 0 {
		e = 1
	}
	return RGBf{R: filmic(c.R * e), G: filmic(c.G * e), B: filmic(c.B * e)}
}

// filmic is the Narkowicz ACES fit.
func filmic(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return Clamp01((x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14))
}

func (r *Renderer) fillTriangle(f *frame, v [3]screenVert, uv [3]Vec2, hasUV bool, m *Material, l lit, alpha float32) {
	area := edgeFn(v[0].x, v[0].y, v[1].x, v[1].y, v[2].x, v[2].y)
	if area == 0 {
		return
	}
	minX := int(math32.Floor(min3f(v[0].x, v[1].x, v[2].x)))
	maxX := int(math32.Ceil(max3f(v[0].x, v[1].x, v[2].x)))
	minY := int(math32.Floor(min3f(v[0].y, v[1].y, v[2].y)))
	maxY := int(math32.Ceil(max3f(v[0].y, v[1].y, v[2].y)))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, f.w-1), min(maxY, f.h-1)
	if minX > maxX || minY > maxY {
		return
	}
	invArea := 1 / area

	albedo := m.Color.Float()
	emissive := m.Emissive.Float().Scale(m.EmissiveIntensity)
	flat := r.fragment(l, albedo, emissive)
	textured := hasUV && (m.Map != nil || m.EmissiveMap != nil)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			a0 := edgeFn(v[1].x, v[1].y, v[2].x, v[2].y, px, py) * invArea
			a1 := edgeFn(v[2].x, v[2].y, v[0].x, v[0].y, px, py) * invArea
			a2 := 1 - a0 - a1
			if a0 < 0 || a1 < 0 || a2 < 0 {
				continue
			}
			z := a0*v[0].z + a1*v[1].z + a2*v[2].z
			if !r.depthTest(f.w, x, y, z) {
				continue
			}
			c := flat
			if textured {
				b0, b1, b2 := a0*v[0].invW, a1*v[1].invW, a2*v[2].invW
				inv := 1 / (b0 + b1 + b2)
				u := (b0*uv[0].X + b1*uv[1].X + b2*uv[2].X) * inv
				vv := (b0*uv[0].Y + b1*uv[1].Y + b2*uv[2].Y) * inv
				a, e := albedo, emissive
				if m.Map != nil {
					a = a.Mul(m.Map.Sample(u, vv))
				}
				if m.EmissiveMap != nil {
					e = e.Mul(m.EmissiveMap.Sample(u, vv))
				}
				c = r.fragment(l, a, e)
			}
			if m.DepthWrite {
				r.depthBuf[y*f.w+x] = z
			}
			if alpha >= 1 {
				f.t.SetPixel(x, y, c.Bytes(0xFF))
			} else {
				f.t.SetPixel(x, y, blend(f.t.Pixel(x, y), c, alpha))
			}
		}
	}
}

func (r *Renderer) depthTest(w, x, y int, z float32) bool {
	if z < 0 || z > 1 {
		return false
	}
	return z < r.depthBuf[y*w+x]
}

func (r *Renderer) drawLines(f *frame, n *Node) {
	g, m := n.Lines.Geometry, n.Lines.Material
	g.upload(r.Device)
	r.Stats.Lines++

	width := m.Width
	if m.Resolution.X > 0 {
		width *= float32(f.w) / m.Resolution.X
	}
	alpha := m.EffectiveOpacity()
	if width < 1 {
		alpha *= width
		width = 1
	}
	c := r.toneMap(m.Color.Float())
	radius := int((width - 1) / 2)
	dashed := m.Dashed && len(g.Distances) == len(g.Segments) && m.DashSize+m.GapSize > 0

	for i := 0; i+1 < len(g.Segments); i += 2 {
		a, okA := f.project(n.world.MulPoint(g.Segments[i]))
		b, okB := f.project(n.world.MulPoint(g.Segments[i+1]))
		if !okA || !okB {
			continue
		}
		r.Stats.Segments++
		dx, dy := b.x-a.x, b.y-a.y
		steps := int(math32.Ceil(math32.Max(math32.Abs(dx), math32.Abs(dy))))
		if steps < 1 {
			steps = 1
		}
		lastX, lastY := -1, -1
		for s := 0; s <= steps; s++ {
			t := float32(s) / float32(steps)
			x := int(a.x + dx*t)
			y := int(a.y + dy*t)
			if x == lastX && y == lastY {
				continue
			}
			lastX, lastY = x, y
			if dashed {
				d := g.Distances[i] + (g.Distances[i+1]-g.Distances[i])*t
				if math32.Mod(d, m.DashSize+m.GapSize) > m.DashSize {
					continue
				}
			}
			z := a.z + (b.z-a.z)*t - 1e-4
			for oy := -radius; oy <= radius; oy++ {
				for ox := -radius; ox <= radius; ox++ {
					r.linePixel(f, x+ox, y+oy, z, c, alpha, m.DepthWrite)
				}
			}
		}
	}
}

func (r *Renderer) linePixel(f *frame, x, y int, z float32, c RGBf, alpha float32, write bool) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	if !r.depthTest(f.w, x, y, z) {
		return
	}
	if write {
		r.depthBuf[y*f.w+x] = z
	}
	f.t.SetPixel(x, y, blend(f.t.Pixel(x, y), c, alpha))
}

func edgeFn(x0, y0, x1, y1, x, y float32) float32 {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func min3f(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }
func max3f(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }
