package render

// Camera is a perspective camera.
type Camera struct {
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position Vec3
	Target   Vec3
	Up       Vec3
}

func NewCamera(fov, aspect, near, far float32) *Camera {
	return &Camera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     V3(0, 1, 0),
	}
}

// LookAt points the camera at p.
func (c *Camera) LookAt(p Vec3) { c.Target = p }

func (c *Camera) View() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

func (c *Camera) Projection() Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	fov := c.FOV
	if fov <= 0 {
		fov = 50
	}
	return Mat4Perspective(Radians(fov), aspect, c.Near, c.Far)
}
