package model

import (
	"github.com/chewxy/math32"

	"replica/internal/render"
)

// Placement describes how a freshly decoded model is fitted into the scene.
type Placement struct {
	// YawDegrees is a fixed rotation about +Y applied once.
	YawDegrees float32
	// Lift raises the centred model.
	Lift float32
	// TargetSize is the largest dimension after scaling.
	TargetSize float32
}

// DefaultPlacement matches the bundled asset.
var DefaultPlacement = Placement{YawDegrees: -90, Lift: 0.05, TargetSize: 1.5}

// Normalize rotates, scales and centres root in place so its bounding box
// is centred at (0, Lift, 0) with its largest side equal to TargetSize.
func Normalize(root *render.Node, p Placement) {
	root.Position = render.Vec3{}
	root.Rotation = render.QuatFromAxisAngle(render.V3(0, 1, 0), render.Radians(p.YawDegrees))
	root.Scale = render.V3(1, 1, 1)

	box := root.WorldBox()
	if box.IsEmpty() {
		root.Position.Y = p.Lift
		return
	}
	if maxDim := box.Size().MaxComponent(); maxDim > 0 && p.TargetSize > 0 {
		s := p.TargetSize / maxDim
		root.Scale = render.V3(s, s, s)
		box = root.WorldBox()
	}
	c := box.Center()
	root.Position = render.V3(-c.X, p.Lift-c.Y, -c.Z)
}

// Bob returns the idle height of a model resting at restY after t seconds.
func Bob(restY, t float32) float32 {
	return restY + math32.Sin(t*0.7)*0.025
}
