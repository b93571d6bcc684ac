package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/litebind"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LITEBIND_ENGINE", "LITEBIND_LIB", "LITEBIND_DB", "LITEBIND_URI", "LITEBIND_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, litebind.EngineModernc, cfg.Engine)
	assert.Equal(t, litebind.MemoryPath, cfg.Database)
	assert.True(t, cfg.URI)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Empty(t, cfg.LibraryPath)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LITEBIND_ENGINE", "purego")
	t.Setenv("LITEBIND_LIB", "/opt/sqlite/libsqlite3.so")
	t.Setenv("LITEBIND_URI", "false")
	t.Setenv("LITEBIND_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, litebind.EnginePurego, cfg.Engine)
	assert.Equal(t, "/opt/sqlite/libsqlite3.so", cfg.LibraryPath)
	assert.False(t, cfg.URI)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	bc := cfg.Binding(nil)
	assert.Equal(t, "purego", bc.Engine)
	assert.Len(t, cfg.OpenOptions(), 1)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LITEBIND_URI", "maybe")
	t.Setenv("LITEBIND_LOG_LEVEL", "loud")

	cfg := Load()
	assert.True(t, cfg.URI)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LITEBIND_DB=app.db\nLITEBIND_LOG_LEVEL=info\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LITEBIND_DB")
		os.Unsetenv("LITEBIND_LOG_LEVEL")
	})

	cfg, err := LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "app.db", cfg.Database)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)

	_, err = LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
