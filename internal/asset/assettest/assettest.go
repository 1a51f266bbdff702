// Package assettest builds small GLB documents for tests.
package assettest

import (
	"bytes"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Builder accumulates mesh nodes under one root node named "device".
type Builder struct {
	doc      *gltf.Document
	children []int
}

func New() *Builder {
	return &Builder{doc: &gltf.Document{
		Asset:  gltf.Asset{Version: "2.0", Generator: "replica assettest"},
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Name: "scene"}},
	}}
}

// Box adds a mesh node with an axis-aligned box of the given size centered at
// the node origin, translated to center.
func (b *Builder) Box(name string, center, size [3]float32) *Builder {
	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2
	pos := [][3]float32{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	idx := []uint32{
		4, 5, 6, 4, 6, 7,
		1, 0, 3, 1, 3, 2,
		5, 1, 2, 5, 2, 6,
		0, 4, 7, 0, 7, 3,
		7, 6, 2, 7, 2, 3,
		0, 1, 5, 0, 5, 4,
	}
	return b.Mesh(name, center, pos, idx)
}

// Quad adds a flat w x h rectangle in the node's XY plane.
func (b *Builder) Quad(name string, center [3]float32, w, h float32) *Builder {
	pos := [][3]float32{{-w / 2, -h / 2, 0}, {w / 2, -h / 2, 0}, {w / 2, h / 2, 0}, {-w / 2, h / 2, 0}}
	return b.Mesh(name, center, pos, []uint32{0, 1, 2, 0, 2, 3})
}

// Mesh adds an arbitrary indexed triangle mesh node.
func (b *Builder) Mesh(name string, translation [3]float32, pos [][3]float32, indices []uint32) *Builder {
	doc := b.doc
	if len(doc.Buffers) == 0 {
		doc.Buffers = append(doc.Buffers, new(gltf.Buffer))
	}
	posAcc := modeler.WritePosition(doc, pos)
	idxAcc := modeler.WriteIndices(doc, indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: posAcc},
			Indices:    gltf.Index(idxAcc),
		}},
	})
	b.children = append(b.children, len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        name,
		Mesh:        gltf.Index(len(doc.Meshes) - 1),
		Translation: [3]float64{float64(translation[0]), float64(translation[1]), float64(translation[2])},
	})
	return b
}

// Bytes encodes the document as GLB. The builder can keep growing after.
func (b *Builder) Bytes() []byte {
	doc := *b.doc
	doc.Nodes = append(append([]*gltf.Node{}, b.doc.Nodes...), &gltf.Node{
		Name:     "device",
		Children: append([]int{}, b.children...),
	})
	doc.Scenes = []*gltf.Scene{{Name: "scene", Nodes: []int{len(doc.Nodes) - 1}}}

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(&doc); err != nil {
		panic(err)
	}
	return out.Bytes()
}
