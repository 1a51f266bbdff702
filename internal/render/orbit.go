package render

import "github.com/chewxy/math32"

// OrbitController rotates a camera around Target on a sphere. Input is
// accumulated with Rotate and applied gradually by Update, which must run
// once per frame when damping is enabled.
//
// It does not depend on any input system.
type OrbitController struct {
	Target Vec3

	EnableDamping bool
	DampingFactor float32

	// Polar angle limits in radians, measured from +Y.
	MinPolarAngle float32
	MaxPolarAngle float32

	EnablePan  bool
	EnableZoom bool

	// RotateSpeed scales pixel drags passed to Drag.
	RotateSpeed float32

	deltaTheta float32
	deltaPhi   float32
}

func NewOrbitController() *OrbitController {
	return &OrbitController{
		EnableDamping: true,
		DampingFactor: 0.05,
		MinPolarAngle: 0,
		MaxPolarAngle: math32.Pi,
		RotateSpeed:   1,
	}
}

// Rotate queues an azimuth (left) and polar (up) rotation in radians.
func (c *OrbitController) Rotate(left, up float32) {
	c.deltaTheta -= left
	c.deltaPhi -= up
}

// Drag converts a pointer drag in pixels over a viewport of the given height.
func (c *OrbitController) Drag(dx, dy float32, height int) {
	if height <= 0 {
		return
	}
	k := 2 * math32.Pi * c.RotateSpeed / float32(height)
	c.Rotate(dx*k, dy*k)
}

// Pending reports whether queued rotation has not yet been applied.
func (c *OrbitController) Pending() bool {
	return math32.Abs(c.deltaTheta) > 1e-6 || math32.Abs(c.deltaPhi) > 1e-6
}

// Stop discards queued rotation.
func (c *OrbitController) Stop() { c.deltaTheta, c.deltaPhi = 0, 0 }

// Update moves cam around Target, keeping its distance, and points it at
// Target.
func (c *OrbitController) Update(cam *Camera) {
	if cam == nil {
		return
	}
	offset := cam.Position.Sub(c.Target)
	radius := Len(offset)
	if radius == 0 {
		cam.Target = c.Target
		return
	}
	theta := math32.Atan2(offset.X, offset.Z)
	phi := math32.Acos(clampF32(offset.Y/radius, -1, 1))

	if c.EnableDamping {
		theta += c.deltaTheta * c.DampingFactor
		phi += c.deltaPhi * c.DampingFactor
	} else {
		theta += c.deltaTheta
		phi += c.deltaPhi
	}

	const eps = 1e-6
	phi = clampF32(phi, c.MinPolarAngle, c.MaxPolarAngle)
	phi = clampF32(phi, eps, math32.Pi-eps)

	sinPhi := math32.Sin(phi)
	offset = Vec3{
		X: radius * sinPhi * math32.Sin(theta),
		Y: radius * math32.Cos(phi),
		Z: radius * sinPhi * math32.Cos(theta),
	}
	cam.Position = c.Target.Add(offset)
	cam.Target = c.Target

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
	} else {
		c.Stop()
	}
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
