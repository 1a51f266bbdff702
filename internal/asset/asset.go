// Package asset decodes binary glTF (GLB) documents into render node trees.
package asset

import (
	"bytes"
	"errors"
	"fmt"

	"replica/internal/render"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var (
	// ErrEmpty is returned for zero-length input.
	ErrEmpty = errors.New("asset: empty input")
	// ErrNoScene is returned when the document has no nodes to show.
	ErrNoScene = errors.New("asset: document has no scene")
)

// DefaultColor is the base color of primitives without a material.
var DefaultColor = render.Hex(0xcccccc)

// Stats summarizes a decoded asset.
type Stats struct {
	Nodes     int
	Meshes    int
	Triangles int
	Skipped   int // non-triangle primitives
}

// Decode parses GLB (or embedded-buffer glTF JSON) bytes and returns the
// default scene as a node tree rooted at a node named "model".
func Decode(data []byte) (*render.Node, Stats, error) {
	var st Stats
	if len(data) == 0 {
		return nil, st, ErrEmpty
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, st, fmt.Errorf("asset: decode: %w", err)
	}

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, st, err
	}
	d := &decoder{doc: doc, stats: &st, materials: map[int]*render.Material{}}
	root := render.NewNode("model")
	for _, i := range roots {
		n, err := d.node(i, 0)
		if err != nil {
			return nil, st, err
		}
		root.Add(n)
	}
	return root, st, nil
}

func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) > 0 {
		si := 0
		if s, ok := idx(doc.Scene); ok && s < len(doc.Scenes) {
			si = s
		}
		var out []int
		for _, n := range doc.Scenes[si].Nodes {
			out = append(out, int(n))
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrNoScene
	}
	// No scene: treat parentless nodes as roots.
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(child) {
				child[int(c)] = true
			}
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !child[i] {
			out = append(out, i)
		}
	}
	return out, nil
}

// idx dereferences an optional glTF index.
func idx[T ~int | ~uint32](p *T) (int, bool) {
	if p == nil {
		return 0, false
	}
	return int(*p), true
}

type decoder struct {
	doc       *gltf.Document
	stats     *Stats
	materials map[int]*render.Material
}

const maxDepth = 64

func (d *decoder) node(i, depth int) (*render.Node, error) {
	if i < 0 || i >= len(d.doc.Nodes) {
		return nil, fmt.Errorf("asset: node index %d out of range", i)
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("asset: node hierarchy deeper than %d", maxDepth)
	}
	src := d.doc.Nodes[i]
	d.stats.Nodes++

	n := render.NewNode(src.Name)
	setTransform(n, src)

	if mi, ok := idx(src.Mesh); ok {
		if err := d.mesh(n, mi); err != nil {
			return nil, err
		}
	}
	for _, c := range src.Children {
		child, err := d.node(int(c), depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func setTransform(n *render.Node, src *gltf.Node) {
	m := src.MatrixOrDefault()
	if m != identity {
		var mm render.Mat4
		for i, v := range m {
			mm[i] = float32(v)
		}
		n.SetLocalMatrix(mm)
		return
	}
	t := src.TranslationOrDefault()
	r := src.RotationOrDefault()
	s := src.ScaleOrDefault()
	n.Position = render.V3(float32(t[0]), float32(t[1]), float32(t[2]))
	n.Rotation = render.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	n.Scale = render.V3(float32(s[0]), float32(s[1]), float32(s[2]))
}

// mesh attaches the primitives of mesh mi to n. A single primitive makes n
// itself the mesh; several become child mesh nodes.
func (d *decoder) mesh(n *render.Node, mi int) error {
	if mi < 0 || mi >= len(d.doc.Meshes) {
		return fmt.Errorf("asset: mesh index %d out of range", mi)
	}
	src := d.doc.Meshes[mi]
	if n.Name == "" {
		n.Name = src.Name
	}
	var parts []*render.Mesh
	for pi, p := range src.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			d.stats.Skipped++
			continue
		}
		g, err := d.geometry(p)
		if err != nil {
			return fmt.Errorf("asset: mesh %q primitive %d: %w", src.Name, pi, err)
		}
		parts = append(parts, &render.Mesh{Geometry: g, Material: d.material(p)})
		d.stats.Meshes++
		d.stats.Triangles += g.Triangles()
	}
	switch len(parts) {
	case 0:
	case 1:
		n.Mesh = parts[0]
	default:
		for i, part := range parts {
			c := render.NewMeshNode(fmt.Sprintf("%s_%d", n.Name, i), part.Geometry, part.Material)
			n.Add(c)
		}
	}
	return nil
}

func (d *decoder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(d.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", i)
	}
	return d.doc.Accessors[i], nil
}

func (d *decoder) geometry(p *gltf.Primitive) (*render.Geometry, error) {
	pa, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("missing POSITION")
	}
	acr, err := d.accessor(int(pa))
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadPosition(d.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read POSITION: %w", err)
	}
	positions := make([]render.Vec3, len(raw))
	for i, v := range raw {
		positions[i] = render.V3(v[0], v[1], v[2])
	}

	var normals []render.Vec3
	if na, ok := p.Attributes[gltf.NORMAL]; ok {
		acr, err := d.accessor(int(na))
		if err != nil {
			return nil, err
		}
		raw, err := modeler.ReadNormal(d.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read NORMAL: %w", err)
		}
		normals = make([]render.Vec3, len(raw))
		for i, v := range raw {
			normals[i] = render.V3(v[0], v[1], v[2])
		}
	}

	var uvs []render.Vec2
	if ta, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := d.accessor(int(ta))
		if err != nil {
			return nil, err
		}
		raw, err := modeler.ReadTextureCoord(d.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read TEXCOORD_0: %w", err)
		}
		uvs = make([]render.Vec2, len(raw))
		for i, v := range raw {
			uvs[i] = render.V2(v[0], v[1])
		}
	}

	var indices []uint32
	if ii, ok := idx(p.Indices); ok {
		acr, err := d.accessor(ii)
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(d.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for _, v := range indices {
			if int(v) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range (%d vertices)", v, len(positions))
			}
		}
	}
	return render.NewGeometry(positions, normals, uvs, indices), nil
}

// material converts the primitive's PBR factors. Primitives sharing a glTF
// material share the render material.
func (d *decoder) material(p *gltf.Primitive) *render.Material {
	mi, ok := idx(p.Material)
	if !ok || mi >= len(d.doc.Materials) {
		return render.NewMaterial(DefaultColor)
	}
	if m, ok := d.materials[mi]; ok {
		return m
	}
	src := d.doc.Materials[mi]
	m := render.NewMaterial(DefaultColor)
	m.Name = src.Name
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.Color = render.RGBf{R: float32(c[0]), G: float32(c[1]), B: float32(c[2])}.Bytes(0xFF)
		m.Metalness = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if c[3] < 1 {
			m.Transparent = true
			m.Opacity = float32(c[3])
		}
	}
	if src.DoubleSided {
		m.Side = render.DoubleSide
	}
	d.materials[mi] = m
	return m
}
