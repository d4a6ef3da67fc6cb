package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Viewports, 4)
	assert.Equal(t, [3]float32{-3, 2, 3}, cfg.Viewports[3].Camera)
	assert.Equal(t, 20, cfg.Particles.Count)
	assert.True(t, cfg.Ghost.InitialMode)
	assert.Equal(t, "float", cfg.Animation.OnLoad)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "viewer.toml", `
tick_rate = 30

[ghost]
initial_mode = false
opacity = 0.5

[animation]
on_load = "rotate"
initial_speed = 9.0

[[viewports]]
name = "only"
camera = [1.0, 2.0, 3.0]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.TickRate)
	assert.False(t, cfg.Ghost.InitialMode)
	assert.InDelta(t, 0.5, cfg.Ghost.Opacity, 1e-6)
	assert.Equal(t, "rotate", cfg.Animation.OnLoad)
	assert.Equal(t, MaxSpeed, cfg.Animation.InitialSpeed)
	require.Len(t, cfg.Viewports, 1)
	assert.Equal(t, "only", cfg.Viewports[0].Name)
	assert.Equal(t, 20, cfg.Particles.Count)
}

func TestLoadYAMLKeepsDefaultViewports(t *testing.T) {
	path := writeFile(t, "viewer.yaml", `
particles:
  count: 7
voice:
  backend: websocket
  url: ws://localhost:9000/transcripts
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Particles.Count)
	assert.Equal(t, "websocket", cfg.Voice.Backend)
	assert.Len(t, cfg.Viewports, 4)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeFile(t, "viewer.ini", "tick_rate=1")
	_, err = Load(path)
	assert.ErrorIs(t, err, errUnknownFileType)

	path = writeFile(t, "bad.toml", "[window]\nwidth = -1\nheight = 10\n")
	_, err = Load(path)
	assert.ErrorIs(t, err, errBadWindowSize)
}

func TestValidateNormalizes(t *testing.T) {
	cfg := Default()
	cfg.TickRate = 0
	cfg.Particles.Count = -3
	cfg.Ghost.Opacity = 4
	cfg.Animation.InitialSpeed = 0.1
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60.0, cfg.TickRate)
	assert.Equal(t, 0, cfg.Particles.Count)
	assert.InDelta(t, 0.7, cfg.Ghost.Opacity, 1e-6)
	assert.Equal(t, MinSpeed, cfg.Animation.InitialSpeed)

	cfg.Viewports = nil
	assert.ErrorIs(t, cfg.Validate(), errNoViewports)
}
