// Package choreo eases the camera toward a transient pose.
package choreo

import "replica/internal/render"

const (
	// Factor is the fraction of the remaining distance covered per step.
	Factor = 0.03
	// DefaultTolerance is the distance under which a target counts as reached.
	DefaultTolerance = 0.01
)

// ZoomTarget is a pose the camera is moving toward.
type ZoomTarget struct {
	Position  render.Vec3
	LookAt    render.Vec3
	Tolerance float32
}

// Choreographer holds at most one active ZoomTarget.
type Choreographer struct {
	target *ZoomTarget
}

// SetTarget replaces any active target. A zero tolerance uses
// DefaultTolerance.
func (c *Choreographer) SetTarget(t ZoomTarget) {
	if t.Tolerance <= 0 {
		t.Tolerance = DefaultTolerance
	}
	c.target = &t
}

// Active returns the current target, if any.
func (c *Choreographer) Active() (ZoomTarget, bool) {
	if c.target == nil {
		return ZoomTarget{}, false
	}
	return *c.target, true
}

// Cancel drops the active target without moving the camera.
func (c *Choreographer) Cancel() { c.target = nil }

// Step moves cam and the orbit target one increment toward the active
// target and clears it once the camera is within tolerance. It reports
// whether a target was active.
func (c *Choreographer) Step(cam *render.Camera, orbit *render.OrbitController) bool {
	t := c.target
	if t == nil || cam == nil {
		return false
	}
	cam.Position = cam.Position.Lerp(t.Position, Factor)
	if orbit != nil {
		orbit.Target = orbit.Target.Lerp(t.LookAt, Factor)
		cam.Target = orbit.Target
	} else {
		cam.Target = cam.Target.Lerp(t.LookAt, Factor)
	}
	if cam.Position.DistanceTo(t.Position) < t.Tolerance {
		c.target = nil
	}
	return true
}
