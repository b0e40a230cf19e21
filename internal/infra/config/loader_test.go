package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/tasklist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644)
	require.NoError(t, err)
}

func TestLoader_Load_NoFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewLoaderWithDir(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.NewDefaultConfig(dir), cfg)
	assert.Equal(t, filepath.Join(dir, domain.DBFileName), cfg.Server.DBPath)
	assert.Equal(t, filepath.Join(dir, "logs"), cfg.Log.Dir)
}

func TestLoader_Load_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[client]
backend = "sqlite"
base_url = "http://tasks.internal:9000"
timeout = "3s"

[server]
addr = "127.0.0.1:9000"
store = "json"
redis_url = "redis://localhost:6379/0"
cache_ttl = 30
debug = true

[log]
level = "debug"

[templates]
stats = "{{.ItemsLeft}} to go"
`)

	cfg, err := NewLoaderWithDir(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.BackendSQLite, cfg.Client.Backend)
	assert.Equal(t, "http://tasks.internal:9000", cfg.Client.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, domain.BackendJSON, cfg.Server.Store)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Server.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "{{.ItemsLeft}} to go", cfg.Templates.Stats)

	// Untouched keys keep their defaults.
	assert.Equal(t, domain.DefaultItemTemplate, cfg.Templates.Item)
	assert.Equal(t, domain.DBPath(dir), cfg.Server.DBPath)
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_Warnings(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[client]
timeout = "soon"
colour = "blue"

[widgets]
size = 3
`)

	cfg, err := NewLoaderWithDir(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"invalid duration in [client]: timeout = soon",
		"unknown key in [client]: colour",
		"unknown section: widgets",
	}, cfg.Warnings)
	assert.Equal(t, domain.DefaultClientTimeout, cfg.Client.Timeout)
}

func TestLoader_Load_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[client\nbackend = ")

	_, err := NewLoaderWithDir(dir).Load()
	assert.Error(t, err)
}

func TestLoader_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, path, loader.Path())
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDefaultDir_UsesXDGConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	assert.Equal(t, filepath.Join(home, domain.AppDirName), DefaultDir())
	assert.Equal(t, domain.GlobalConfigPath(home), NewLoader("").Path())
}

func TestRender_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := domain.NewDefaultConfig(dir)
	cfg.Client.Timeout = 1500 * time.Millisecond
	cfg.Server.Debug = true

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "1.5s")

	var raw map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &raw))
	got := mergeConfigs(domain.NewDefaultConfig(dir), convertRawToDomainConfig(raw))
	assert.Equal(t, cfg, got)
}

func TestConfigTemplate_ParsesWithoutWarnings(t *testing.T) {
	var raw map[string]any
	require.NoError(t, toml.Unmarshal([]byte(domain.ConfigTemplate()), &raw))

	cfg := convertRawToDomainConfig(raw)
	assert.Empty(t, cfg.Warnings)
}
