package render

// Mesh is the drawable payload of a triangle node.
type Mesh struct {
	Geometry *Geometry
	Material *Material
}

// Lines is the drawable payload of a thick-line node.
type Lines struct {
	Geometry *LineGeometry
	Material *LineMaterial
}

// Node is an element of the scene graph. A node carries at most one of Mesh
// or Lines; group nodes carry neither.
type Node struct {
	Name string

	Position Vec3
	Rotation Quat
	Scale    Vec3

	Visible     bool
	RenderOrder int

	Mesh  *Mesh
	Lines *Lines

	parent   *Node
	children []*Node
	world    Mat4
}

// NewNode returns an empty, visible group node.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: QuatIdentity(),
		Scale:    V3(1, 1, 1),
		Visible:  true,
		world:    Mat4Identity(),
	}
}

func NewMeshNode(name string, g *Geometry, m *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: g, Material: m}
	return n
}

func NewLineNode(name string, g *LineGeometry, m *LineMaterial) *Node {
	n := NewNode(name)
	n.Lines = &Lines{Geometry: g, Material: m}
	return n
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Add reparents child under n.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It is a no-op when child is not a child of n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Traverse visits n and its descendants depth first, parents before
// children. The tree must not be restructured during the walk.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Meshes returns the mesh nodes under n in traversal order.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.Mesh != nil {
			out = append(out, c)
		}
	})
	return out
}

// LocalMatrix composes Position, Rotation and Scale.
func (n *Node) LocalMatrix() Mat4 {
	return Mat4Compose(n.Position, n.Rotation, n.Scale)
}

// SetLocalMatrix decomposes m into Position, Rotation and Scale.
func (n *Node) SetLocalMatrix(m Mat4) {
	n.Position, n.Rotation, n.Scale = m.Decompose()
}

// World returns the world matrix computed by the last UpdateWorld.
func (n *Node) World() Mat4 { return n.world }

// UpdateWorld recomputes world matrices for n and its descendants.
func (n *Node) UpdateWorld() {
	parent := Mat4Identity()
	if n.parent != nil {
		parent = n.parent.world
	}
	n.updateWorld(parent)
}

func (n *Node) updateWorld(parent Mat4) {
	n.world = Mat4Mul(parent, n.LocalMatrix())
	for _, c := range n.children {
		c.updateWorld(n.world)
	}
}

// WorldBox returns the world-space bounding box of every mesh under n.
func (n *Node) WorldBox() Box3 {
	n.UpdateWorld()
	b := EmptyBox()
	n.Traverse(func(c *Node) {
		if c.Mesh == nil || c.Mesh.Geometry == nil {
			return
		}
		b = b.Union(c.Mesh.Geometry.BoundingBox().Transform(c.world))
	})
	return b
}

// Dispose releases the device resources of every drawable under n and marks
// their materials disposed. Shared line materials are left alone.
func (n *Node) Dispose() {
	n.Traverse(func(c *Node) {
		if c.Mesh != nil {
			if c.Mesh.Geometry != nil {
				c.Mesh.Geometry.Dispose()
			}
			if c.Mesh.Material != nil {
				c.Mesh.Material.Dispose()
			}
		}
		if c.Lines != nil && c.Lines.Geometry != nil {
			c.Lines.Geometry.Dispose()
		}
	})
}
