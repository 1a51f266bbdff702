package render

// AmbientLight lights every surface evenly.
type AmbientLight struct {
	Color     Color
	Intensity float32
}

// DirectionalLight shines from Position toward the origin.
type DirectionalLight struct {
	Name      string
	Color     Color
	Intensity float32
	Position  Vec3
}

// Direction returns the unit vector pointing from the surface to the light.
func (l *DirectionalLight) Direction() Vec3 { return Normalize(l.Position) }

// Environment is a sky/ground gradient used for image-based lighting.
type Environment struct {
	Sky       Color
	Ground    Color
	Intensity float32
}

// RoomEnvironment returns a soft neutral studio gradient.
func RoomEnvironment() *Environment {
	return &Environment{Sky: Hex(0xbcc4cc), Ground: Hex(0x3a3c40), Intensity: 0.35}
}

// Radiance returns the environment color seen along direction n.
func (e *Environment) Radiance(n Vec3) RGBf {
	t := Clamp01(n.Y*0.5 + 0.5)
	return e.Ground.Float().Lerp(e.Sky.Float(), t).Scale(e.Intensity)
}

// Scene groups the graph root with its lighting.
type Scene struct {
	Root        *Node
	Ambient     *AmbientLight
	Lights      []*DirectionalLight
	Environment *Environment
	Background  Color
}

func NewScene() *Scene {
	return &Scene{Root: NewNode("scene"), Background: RGB(0, 0, 0)}
}

func (s *Scene) Add(n *Node)    { s.Root.Add(n) }
func (s *Scene) Remove(n *Node) { s.Root.Remove(n) }
