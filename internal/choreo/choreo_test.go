package choreo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replica/internal/render"
)

func TestStepConverges(t *testing.T) {
	cam := render.NewCamera(24, 1, 0.1, 100)
	cam.Position = render.V3(0, 0.5, 4.5)
	orbit := render.NewOrbitController()

	var c Choreographer
	dest := render.V3(0, 0, 3.5)
	look := render.V3(0, 0.05, 0)
	c.SetTarget(ZoomTarget{Position: dest, LookAt: look})

	steps := 0
	for c.Step(cam, orbit) {
		steps++
		require.Less(t, steps, 1000, "never converged")
	}
	_, active := c.Active()
	assert.False(t, active)
	assert.Less(t, cam.Position.DistanceTo(dest), float32(DefaultTolerance))
	assert.InDelta(t, 0.05, orbit.Target.Y, 0.01)
	// (1-0.03)^n * 1.118 < 0.01 → n ≈ 155
	assert.InDelta(t, 155, steps, 3)
}

func TestFirstStepIsThreePercent(t *testing.T) {
	cam := render.NewCamera(24, 1, 0.1, 100)
	cam.Position = render.V3(0, 0, 10)
	var c Choreographer
	c.SetTarget(ZoomTarget{Position: render.V3(0, 0, 0)})
	c.Step(cam, nil)
	assert.InDelta(t, 9.7, cam.Position.Z, 1e-5)
}

func TestSetTargetReplaces(t *testing.T) {
	var c Choreographer
	c.SetTarget(ZoomTarget{Position: render.V3(1, 0, 0)})
	c.SetTarget(ZoomTarget{Position: render.V3(2, 0, 0), Tolerance: 0.5})
	got, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, float32(2), got.Position.X)
	assert.Equal(t, float32(0.5), got.Tolerance)
}

func TestStepIdle(t *testing.T) {
	var c Choreographer
	cam := render.NewCamera(24, 1, 0.1, 100)
	cam.Position = render.V3(1, 2, 3)
	assert.False(t, c.Step(cam, nil))
	assert.Equal(t, render.V3(1, 2, 3), cam.Position)
}
