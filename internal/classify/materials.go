package classify

import "replica/internal/render"

// MaterialSet holds the four materials of one loaded model. It is rebuilt
// on every load and disposed with the model.
type MaterialSet struct {
	Shell  *render.Material
	Mid    *render.Material
	Detail *render.Material
	Screen *render.Material
}

type bodyOpts struct {
	color     uint32
	metalness float32
	roughness float32
	opacity   float32
	clearcoat float32
}

func bodyMaterial(name string, o bodyOpts) *render.Material {
	m := render.NewMaterial(render.Hex(o.color))
	m.Name = name
	m.Metalness = o.metalness
	m.Roughness = o.roughness
	m.EnvIntensity = 0.5
	m.Transparent = true
	m.Opacity = o.opacity
	m.Side = render.DoubleSide
	m.Clearcoat = o.clearcoat
	m.ClearcoatRoughness = 0.15
	m.SpecularIntensity = 0.3
	m.SpecularColor = render.Hex(0xa0a0a8)
	m.DepthWrite = false
	return m
}

// NewMaterialSet returns the default (light theme) materials.
func NewMaterialSet() *MaterialSet {
	screen := render.NewMaterial(render.Hex(0x1a1a1a))
	screen.Name = "screen"
	screen.Roughness = 0.09
	screen.Emissive = render.Hex(0x111111)
	screen.EmissiveIntensity = 0.15
	screen.EnvIntensity = 0.03
	screen.Side = render.DoubleSide
	screen.Clearcoat = 1
	screen.ClearcoatRoughness = 0.03
	screen.SpecularIntensity = 1.2
	screen.SpecularColor = render.Hex(0xcccccc)
	screen.DepthWrite = true

	return &MaterialSet{
		Shell:  bodyMaterial("shell", bodyOpts{color: 0x494949, metalness: 0.1, roughness: 0.35, opacity: 0.03, clearcoat: 0.3}),
		Mid:    bodyMaterial("mid", bodyOpts{color: 0x858590, metalness: 0.1, roughness: 0.25, opacity: 0.30, clearcoat: 0.5}),
		Detail: bodyMaterial("detail", bodyOpts{color: 0x9a9aa0, metalness: 0.18, roughness: 0.5, opacity: 0.42, clearcoat: 0.3}),
		Screen: screen,
	}
}

// ForTier returns the material of a body tier.
func (s *MaterialSet) ForTier(t Tier) *render.Material {
	switch t {
	case TierShell:
		return s.Shell
	case TierMid:
		return s.Mid
	case TierDetail:
		return s.Detail
	default:
		return nil
	}
}

// Tiers returns the body materials in tier order.
func (s *MaterialSet) Tiers() [3]*render.Material {
	return [3]*render.Material{s.Shell, s.Mid, s.Detail}
}

// Dispose marks every material released.
func (s *MaterialSet) Dispose() {
	for _, m := range []*render.Material{s.Shell, s.Mid, s.Detail, s.Screen} {
		if m != nil {
			m.Dispose()
		}
	}
}
