package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_emptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func Test_Load_missingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func Test_Load_decodesOverridesOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fgrammar.toml")
	contents := `
max_depth = 64
warmup_modules = ["words", "numbers"]

[server]
listen_address = "0.0.0.0:9000"
token_secret = "shh"

[cache]
enabled = true
data_dir = "/var/lib/fgrammar-cache"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.Equal(t, []string{"words", "numbers"}, cfg.WarmupModules)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddress)
	assert.Equal(t, "shh", cfg.Server.TokenSecret)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/var/lib/fgrammar-cache", cfg.Cache.DataDir)
}

func Test_Load_nonPositiveMaxDepthFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fgrammar.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth = 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
}

func Test_Load_malformedTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fgrammar.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
