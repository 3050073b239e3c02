package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:3000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "https://wilayah.id/api", cfg.Wilayah.UpstreamURL)
	assert.Equal(t, 5*time.Second, cfg.Wilayah.Wait)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "./data/dashboard.db", cfg.SQLite.Path)
	assert.Equal(t, "dashboard-gateway", cfg.Tracing.ServiceName)
	assert.Equal(t, "local", cfg.Tracing.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TransitionGuard)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", " https://api.example.com/ ")
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("REGION_WAIT_TIMEOUT", "750ms")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("ORDER_TRANSITION_GUARD", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Wilayah.Wait)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.TransitionGuard)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9090\nSQLITE_PATH=/tmp/x.db\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/x.db", cfg.SQLite.Path)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"HTTP_TIMEOUT", "soon"},
		{"REGION_WAIT_TIMEOUT", "-1s"},
		{"ORDER_TRANSITION_GUARD", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
