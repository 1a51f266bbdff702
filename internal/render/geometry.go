package render

// Geometry is an indexed triangle mesh in local space.
//
// Indices may be nil, in which case every three positions form a triangle.
type Geometry struct {
	Positions []Vec3
	Normals   []Vec3
	UVs       []Vec2
	Indices   []uint32

	bounds      Box3
	boundsValid bool

	dev      *Device
	vbuf     BufferID
	ibuf     BufferID
	disposed bool
}

func NewGeometry(positions, normals []Vec3, uvs []Vec2, indices []uint32) *Geometry {
	return &Geometry{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
}

// BoundingBox returns the local bounding box, computing it on first use.
func (g *Geometry) BoundingBox() Box3 {
	if !g.boundsValid {
		g.ComputeBoundingBox()
	}
	return g.bounds
}

func (g *Geometry) ComputeBoundingBox() {
	b := EmptyBox()
	for _, p := range g.Positions {
		b = b.ExpandByPoint(p)
	}
	g.bounds = b
	g.boundsValid = true
}

// SetUVs replaces the texture coordinates and schedules a re-upload.
func (g *Geometry) SetUVs(uvs []Vec2) {
	g.UVs = uvs
	g.release()
}

// Triangles returns the number of triangles described by the geometry.
func (g *Geometry) Triangles() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c uint32) {
	if g.Indices != nil {
		return g.Indices[3*i], g.Indices[3*i+1], g.Indices[3*i+2]
	}
	n := uint32(3 * i)
	return n, n + 1, n + 2
}

// Uploaded reports whether the geometry currently holds device buffers.
func (g *Geometry) Uploaded() bool { return g.vbuf != 0 }

// Buffers returns the device buffers held by the geometry.
func (g *Geometry) Buffers() []BufferID {
	var out []BufferID
	if g.vbuf != 0 {
		out = append(out, g.vbuf)
	}
	if g.ibuf != 0 {
		out = append(out, g.ibuf)
	}
	return out
}

func (g *Geometry) Disposed() bool { return g.disposed }

// Dispose releases the device buffers. The geometry must not be drawn again.
func (g *Geometry) Dispose() {
	g.release()
	g.disposed = true
}

func (g *Geometry) release() {
	if g.dev != nil {
		g.dev.Free(g.vbuf)
		g.dev.Free(g.ibuf)
	}
	g.vbuf, g.ibuf = 0, 0
}

func (g *Geometry) upload(dev *Device) {
	if g.disposed || dev == nil || g.vbuf != 0 {
		return
	}
	g.dev = dev
	stride := 12
	if len(g.Normals) == len(g.Positions) {
		stride += 12
	}
	if len(g.UVs) == len(g.Positions) {
		stride += 8
	}
	g.vbuf = dev.Alloc(BufferVertex, stride*len(g.Positions))
	if g.Indices != nil {
		g.ibuf = dev.Alloc(BufferIndex, 4*len(g.Indices))
	}
}

// LineGeometry is a list of independent segments: Segments[2i] to
// Segments[2i+1].
type LineGeometry struct {
	Segments []Vec3

	// Distances holds the cumulative length at each segment endpoint.
	Distances []float32

	dev      *Device
	buf      BufferID
	disposed bool
}

func NewLineGeometry(segments []Vec3) *LineGeometry {
	return &LineGeometry{Segments: segments}
}

func (g *LineGeometry) SegmentCount() int { return len(g.Segments) / 2 }

// ComputeLineDistances fills Distances with the running length along the
// segments, so dashes stay continuous across them.
func (g *LineGeometry) ComputeLineDistances() {
	d := make([]float32, len(g.Segments))
	var total float32
	for i := 0; i+1 < len(g.Segments); i += 2 {
		d[i] = total
		total += g.Segments[i].DistanceTo(g.Segments[i+1])
		d[i+1] = total
	}
	g.Distances = d
}

func (g *LineGeometry) Uploaded() bool { return g.buf != 0 }
func (g *LineGeometry) Disposed() bool { return g.disposed }

// Buffer returns the device buffer, or zero when not uploaded.
func (g *LineGeometry) Buffer() BufferID { return g.buf }

func (g *LineGeometry) Dispose() {
	if g.dev != nil {
		g.dev.Free(g.buf)
	}
	g.buf = 0
	g.disposed = true
}

func (g *LineGeometry) upload(dev *Device) {
	if g.disposed || dev == nil || g.buf != 0 {
		return
	}
	g.dev = dev
	g.buf = dev.Alloc(BufferLine, 16*len(g.Segments))
}
