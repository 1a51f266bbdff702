package render

// Side selects which triangle faces are drawn.
type Side uint8

const (
	FrontSide Side = iota
	DoubleSide
)

// Material is a physically flavoured surface description.
//
// Effective opacity is Opacity*OpacityScale and only applies when
// Transparent is set. Use NewMaterial so OpacityScale starts at 1.
type Material struct {
	Name string

	Color     Color
	Metalness float32
	Roughness float32

	Opacity      float32
	OpacityScale float32
	Transparent  bool
	DepthWrite   bool
	Side         Side

	Clearcoat          float32
	ClearcoatRoughness float32
	SpecularIntensity  float32
	SpecularColor      Color

	Emissive          Color
	EmissiveIntensity float32
	EmissiveMap       *Texture
	Map               *Texture

	// EnvIntensity scales the environment contribution.
	EnvIntensity float32

	disposed bool
}

// NewMaterial returns an opaque, front-sided material.
func NewMaterial(c Color) *Material {
	return &Material{
		Color:             c,
		Roughness:         1,
		Opacity:           1,
		OpacityScale:      1,
		DepthWrite:        true,
		SpecularIntensity: 1,
		SpecularColor:     RGB(0xFF, 0xFF, 0xFF),
		EmissiveIntensity: 1,
		EnvIntensity:      1,
	}
}

// EffectiveOpacity returns the opacity used for blending.
func (m *Material) EffectiveOpacity() float32 {
	if !m.Transparent {
		return 1
	}
	return Clamp01(m.Opacity * m.OpacityScale)
}

func (m *Material) Disposed() bool { return m.disposed }

// Dispose marks the material released. Textures are owned by their creator
// and are not disposed here.
func (m *Material) Dispose() { m.disposed = true }

// LineMaterial styles thick lines. Width is in pixels at Resolution; the
// renderer scales it to the actual target size.
type LineMaterial struct {
	Color        Color
	Width        float32
	Opacity      float32
	OpacityScale float32
	Transparent  bool
	DepthWrite   bool
	Resolution   Vec2

	Dashed   bool
	DashSize float32
	GapSize  float32
}

func NewLineMaterial(c Color, width float32) *LineMaterial {
	return &LineMaterial{
		Color:        c,
		Width:        width,
		Opacity:      1,
		OpacityScale: 1,
		DepthWrite:   true,
		DashSize:     1,
		GapSize:      1,
	}
}

func (m *LineMaterial) EffectiveOpacity() float32 {
	if !m.Transparent {
		return 1
	}
	return Clamp01(m.Opacity * m.OpacityScale)
}

// SetResolution records the render target size lines are measured against.
func (m *LineMaterial) SetResolution(w, h int) {
	m.Resolution = V2(float32(w), float32(h))
}
