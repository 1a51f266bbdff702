package render

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestOrbitClampsPolarAngle(t *testing.T) {
	c := NewOrbitController()
	c.EnableDamping = false
	c.MinPolarAngle = 0.3 * math32.Pi
	c.MaxPolarAngle = 0.62 * math32.Pi

	cam := NewCamera(24, 1, 0.1, 100)
	cam.Position = V3(0, 0.5, 4.5)
	dist := Len(cam.Position)

	c.Rotate(0, 10)
	c.Update(cam)
	phi := math32.Acos(cam.Position.Y / Len(cam.Position))
	if !near(phi, c.MinPolarAngle) {
		t.Fatalf("phi = %v, want %v", phi, c.MinPolarAngle)
	}
	if !near(Len(cam.Position), dist) {
		t.Fatalf("distance = %v, want %v", Len(cam.Position), dist)
	}
}

func TestOrbitDampingDecays(t *testing.T) {
	c := NewOrbitController()
	c.DampingFactor = 0.04
	cam := NewCamera(24, 1, 0.1, 100)
	cam.Position = V3(0, 0, 4)

	c.Drag(100, 0, 400)
	if !c.Pending() {
		t.Fatalf("Pending() = false after drag")
	}
	prev := cam.Position
	var moved float32
	for i := 0; i < 600; i++ {
		c.Update(cam)
		step := cam.Position.DistanceTo(prev)
		if i > 0 && step > moved+1e-6 {
			t.Fatalf("step %d grew: %v > %v", i, step, moved)
		}
		moved = step
		prev = cam.Position
	}
	if c.Pending() {
		t.Fatalf("rotation still pending after 600 frames")
	}
}
