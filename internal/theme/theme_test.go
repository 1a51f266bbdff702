package theme

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replica/internal/classify"
	"replica/internal/prefs"
	"replica/internal/render"
)

type failingStore struct{}

func (failingStore) Get(string) (string, bool) { return "", false }
func (failingStore) Set(string, string) error  { return errors.New("disk full") }

func platform(dark bool) func() (bool, bool) {
	return func() (bool, bool) { return dark, true }
}

func TestInitOrder(t *testing.T) {
	s := prefs.Memory()
	c := New(s)
	assert.Equal(t, Light, c.Init(nil))
	assert.Equal(t, Dark, c.Init(platform(true)))

	require.NoError(t, s.Set(Key, "light"))
	assert.Equal(t, Light, c.Init(platform(true)), "stored value wins over platform")

	require.NoError(t, s.Set(Key, "purple"))
	assert.Equal(t, Dark, c.Init(platform(true)), "bad stored value falls through")
}

func TestToggleTwiceRestores(t *testing.T) {
	c := New(prefs.Memory())
	c.Init(nil)
	before := c.Params()
	_, err := c.Toggle()
	require.NoError(t, err)
	assert.NotEqual(t, before, c.Params())
	_, err = c.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Light, c.Theme())
	assert.Equal(t, before, c.Params())
}

func TestTogglePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	s, err := prefs.Open(path)
	require.NoError(t, err)

	c := New(s)
	c.Init(nil)
	got, err := c.Toggle()
	require.NoError(t, err)
	require.Equal(t, Dark, got)

	s2, err := prefs.Open(path)
	require.NoError(t, err)
	v, ok := s2.Get(Key)
	require.True(t, ok)
	assert.Equal(t, "dark", v)
	assert.Equal(t, Dark, New(s2).Init(nil))
}

func TestToggleStoreFailureStillFlips(t *testing.T) {
	c := New(failingStore{})
	c.Init(nil)
	got, err := c.Toggle()
	assert.Error(t, err)
	assert.Equal(t, Dark, got)
}

func TestApply(t *testing.T) {
	amb := &render.AmbientLight{Intensity: 9}
	key := &render.DirectionalLight{Intensity: 9}
	edges := render.NewLineMaterial(render.Hex(0), 1)
	var bg render.Color
	mats := classify.NewMaterialSet()

	target := Target{Ambient: amb, Key: key, Materials: mats, Edges: edges, Background: &bg}
	Apply(Dark, target)
	Apply(Dark, target)

	p := For(Dark)
	assert.Equal(t, p.Ambient, amb.Intensity)
	assert.Equal(t, p.Key, key.Intensity)
	assert.Equal(t, p.EdgeColor, edges.Color)
	assert.Equal(t, p.EdgeOpacity, edges.Opacity)
	assert.Equal(t, p.Background, bg)
	assert.Equal(t, p.Shell, mats.Shell.Opacity)
	assert.Equal(t, p.Detail, mats.Detail.Opacity)
	assert.Equal(t, p.ScreenEmissive, mats.Screen.EmissiveIntensity)

	// missing parts are skipped
	Apply(Light, Target{})
	Apply(Light, Target{Materials: &classify.MaterialSet{}})
}

func TestTierOpacityOrder(t *testing.T) {
	for _, th := range []Theme{Light, Dark} {
		p := For(th)
		assert.LessOrEqual(t, p.Shell, p.Mid, th.String())
		assert.LessOrEqual(t, p.Mid, p.Detail, th.String())
	}
}

func TestParse(t *testing.T) {
	for _, th := range []Theme{Light, Dark} {
		got, ok := Parse(th.String())
		assert.True(t, ok)
		assert.Equal(t, th, got)
	}
	_, ok := Parse("")
	assert.False(t, ok)
}
