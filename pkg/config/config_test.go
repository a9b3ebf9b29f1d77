package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, Init(filepath.Join(dir, "config.toml")))
	return dir
}

// TestGetConfigDir validates config directory access
func TestGetConfigDir(t *testing.T) {
	dir := initTemp(t)

	assert.Equal(t, dir, GetConfigDir())
	_, err := os.Stat(GetConfigDir())
	assert.NoError(t, err)
}

func TestGetCredentialsPath(t *testing.T) {
	dir := initTemp(t)

	assert.Equal(t, filepath.Join(dir, "session.json"), GetCredentialsPath())
}

// TestConfigDirectoryCreation validates directory is created
func TestConfigDirectoryCreation(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "new", "config", "location", "config.toml")

	require.NoError(t, Init(configPath))

	_, err := os.Stat(filepath.Join(tempDir, "new", "config", "location"))
	assert.NoError(t, err)
}

func TestDefaults(t *testing.T) {
	initTemp(t)

	assert.Equal(t, "http://localhost:8000", GetString("api.base_url"))
	assert.Equal(t, 30, GetInt("api.timeout"))
	assert.Equal(t, 30*time.Second, GetDuration("cache.ttl"))
	assert.Equal(t, 300*time.Millisecond, GetDuration("search.debounce"))
	assert.Equal(t, 20, GetInt("search.limit"))
	assert.Equal(t, "text", GetString("output.format"))
}

func TestLoad(t *testing.T) {
	dir := initTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 3, cfg.Feed.ScrollThreshold)
	assert.Equal(t, filepath.Join(dir, "local.db"), cfg.Storage.Path)
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[api]\nbase_url = \"https://campus.example.edu\"\n\n[search]\ndebounce = \"150ms\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	require.NoError(t, Init(path))

	assert.Equal(t, "https://campus.example.edu", GetString("api.base_url"))
	assert.Equal(t, 150*time.Millisecond, GetDuration("search.debounce"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~/campus.log", filepath.Join(home, "campus.log")},
		{"/var/log/campus.log", "/var/log/campus.log"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandPath(tt.in), tt.in)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CAMPUS_API_BASE_URL", "https://campus.example")
	t.Setenv("CAMPUS_SEARCH_DEBOUNCE", "500ms")
	initTemp(t)

	assert.Equal(t, "https://campus.example", GetString("api.base_url"))
	assert.Equal(t, 500*time.Millisecond, GetDuration("search.debounce"))
}
