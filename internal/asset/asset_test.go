package asset

import (
	"errors"
	"testing"

	"replica/internal/asset/assettest"
	"replica/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHierarchy(t *testing.T) {
	data := assettest.New().
		Box("Shell", [3]float32{0, 0, 0}, [3]float32{2, 3, 0.5}).
		Box("Button", [3]float32{0.4, -0.5, 0.3}, [3]float32{0.2, 0.2, 0.1}).
		Quad("Screen", [3]float32{0, 0.6, 0.26}, 1.2, 0.8).
		Bytes()

	root, st, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "model", root.Name)
	require.Len(t, root.Children(), 1)
	device := root.Children()[0]
	assert.Equal(t, "device", device.Name)

	meshes := root.Meshes()
	require.Len(t, meshes, 3)
	assert.Equal(t, []string{"Shell", "Button", "Screen"}, []string{meshes[0].Name, meshes[1].Name, meshes[2].Name})
	assert.Equal(t, 3, st.Meshes)
	assert.Equal(t, 12+12+2, st.Triangles)

	assert.InDelta(t, 3.0, meshes[0].Mesh.Geometry.BoundingBox().Volume(), 1e-5)
	assert.InDelta(t, 0.4, meshes[1].Position.X, 1e-6)
	assert.Equal(t, render.V3(1, 1, 1), meshes[1].Scale)
	assert.Equal(t, DefaultColor, meshes[0].Mesh.Material.Color)
}

func TestDecodeNoMeshes(t *testing.T) {
	root, st, err := Decode(assettest.New().Bytes())
	require.NoError(t, err)
	assert.Empty(t, root.Meshes())
	assert.Equal(t, 1, st.Nodes)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(nil)
	assert.True(t, errors.Is(err, ErrEmpty))

	_, _, err = Decode([]byte("definitely not a model"))
	assert.Error(t, err)

	good := assettest.New().Box("a", [3]float32{}, [3]float32{1, 1, 1}).Bytes()
	_, _, err = Decode(good[:len(good)-40])
	assert.Error(t, err, "truncated binary chunk")
}
