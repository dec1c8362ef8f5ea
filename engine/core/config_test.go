package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[window]
title = "demo"
width = 640

[renderer]
max_lights = 4
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, 4, cfg.Renderer.MaxLights)
	assert.Equal(t, "oit", cfg.Renderer.Translucency)
	assert.Equal(t, "opengl", cfg.Renderer.Backend)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	_, err := ParseConfig([]byte("[renderer]\ntranslucency = \"sorted\"\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("[renderer]\nmax_lights = 0\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("not toml at all ==="))
	assert.Error(t, err)
}

func TestLoadConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lumen.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
