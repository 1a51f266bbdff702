package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replica/internal/asset/assettest"
)

func TestRunInfo(t *testing.T) {
	glb := assettest.New().
		Box("Shell", [3]float32{0, 0, 0}, [3]float32{2, 4, 0.5}).
		Box("Button", [3]float32{0.5, -1, 0.3}, [3]float32{0.2, 0.2, 0.1}).
		Quad("Screen", [3]float32{0, 0.8, 0.26}, 1.2, 0.9).
		Bytes()
	path := filepath.Join(t.TempDir(), "device.glb")
	require.NoError(t, os.WriteFile(path, glb, 0o644))

	var out bytes.Buffer
	require.NoError(t, runInfo(&out, path))

	s := out.String()
	assert.Contains(t, s, "File:       device.glb")
	assert.Contains(t, s, "Meshes:     3")
	assert.NotContains(t, s, "Screen:     none")

	rows := map[string][]string{}
	for _, line := range strings.Split(s, "\n") {
		f := strings.Fields(line)
		if len(f) == 5 {
			rows[f[0]] = f
		}
	}
	require.Contains(t, rows, "Shell")
	assert.Equal(t, []string{"body", "shell", "0"}, rows["Shell"][1:4])
	assert.Equal(t, []string{"screen", "-", "-"}, rows["Screen"][1:4])
	assert.Equal(t, []string{"body", "mid", "1"}, rows["Button"][1:4])
}

func TestRunInfoMissingFile(t *testing.T) {
	err := runInfo(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.glb"))
	assert.ErrorContains(t, err, "cannot access file")
}

func TestRootFlagsBindConfig(t *testing.T) {
	cmd := rootCmd()
	for _, name := range []string{"asset", "watch", "headless", "hz", "ticks", "snapshot", "width", "height", "hd", "log", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	_, _, err := cmd.Find([]string{"info"})
	assert.NoError(t, err)
}

func TestHDFlagDefaultsOn(t *testing.T) {
	f := rootCmd().Flags().Lookup("hd")
	require.NotNil(t, f)
	assert.Equal(t, "true", f.DefValue)
}
