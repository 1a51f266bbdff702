package outline

import (
	"testing"

	"replica/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube() *render.Geometry {
	p := []render.Vec3{
		render.V3(-0.5, -0.5, -0.5), render.V3(0.5, -0.5, -0.5), render.V3(0.5, 0.5, -0.5), render.V3(-0.5, 0.5, -0.5),
		render.V3(-0.5, -0.5, 0.5), render.V3(0.5, -0.5, 0.5), render.V3(0.5, 0.5, 0.5), render.V3(-0.5, 0.5, 0.5),
	}
	idx := []uint32{
		4, 5, 6, 4, 6, 7,
		1, 0, 3, 1, 3, 2,
		5, 1, 2, 5, 2, 6,
		0, 4, 7, 0, 7, 3,
		7, 6, 2, 7, 2, 3,
		0, 1, 5, 0, 5, 4,
	}
	return render.NewGeometry(p, nil, nil, idx)
}

func TestEdgesOfCube(t *testing.T) {
	segs := Edges(cube(), DefaultThreshold)
	// 12 hard edges; face diagonals are coplanar and dropped.
	assert.Len(t, segs, 24)
}

func TestEdgesOfQuadAreBoundary(t *testing.T) {
	g := render.NewGeometry([]render.Vec3{
		render.V3(0, 0, 0), render.V3(1, 0, 0), render.V3(1, 1, 0), render.V3(0, 1, 0),
	}, nil, nil, []uint32{0, 1, 2, 0, 2, 3})
	assert.Len(t, Edges(g, DefaultThreshold), 8, "four boundary edges")
}

func TestEdgesShallowFoldBelowThreshold(t *testing.T) {
	// Two triangles folded by about 5.7 degrees along the shared edge.
	g := render.NewGeometry([]render.Vec3{
		render.V3(0, 0, 0), render.V3(1, 0, 0), render.V3(0, 1, 0), render.V3(1, 1, 0.07),
	}, nil, nil, []uint32{0, 1, 2, 1, 3, 2})
	assert.Len(t, Edges(g, DefaultThreshold), 8, "shared edge is suppressed")
	assert.Len(t, Edges(g, 2), 10, "shared edge is kept under a lower threshold")
}

func TestOutlineParentsAndTracks(t *testing.T) {
	root := render.NewNode("model")
	group := render.NewNode("device")
	root.Add(group)
	mesh := render.NewMeshNode("body", cube(), render.NewMaterial(render.Hex(0xffffff)))
	mesh.Position = render.V3(1, 2, 3)
	mesh.Scale = render.V3(2, 2, 2)
	group.Add(mesh)

	mat := render.NewLineMaterial(render.Hex(0x222222), 0.8)
	o := New(mat)
	lines := o.Outline(root)
	require.Len(t, lines, 1)
	line := lines[0]

	assert.Same(t, group, line.Parent())
	assert.Same(t, mat, line.Lines.Material)
	assert.Equal(t, RenderOrder, line.RenderOrder)
	assert.Equal(t, mesh.Position, line.Position)
	assert.Equal(t, mesh.Scale, line.Scale)
	require.Len(t, line.Lines.Geometry.Distances, len(line.Lines.Geometry.Segments))

	mesh.Position = render.V3(0, 5, 0)
	mesh.Visible = false
	o.Track()
	assert.Equal(t, render.V3(0, 5, 0), line.Position)
	assert.False(t, line.Visible)

	o.Reset()
	assert.Empty(t, o.Lines())
}
