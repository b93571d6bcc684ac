// Package config reads litebind settings from the environment.
package config

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/connerohnesorge/litebind"
)

// Config holds the settings shared by the CLI and the database/sql driver.
type Config struct {
	// Engine is "modernc" or "purego".
	Engine string
	// LibraryPath is an explicit SQLite shared library for the purego engine.
	LibraryPath string
	// Database is the default database path for the CLI.
	Database string
	// URI allows "file:" URIs as database paths.
	URI bool
	// LogLevel is the minimum slog level.
	LogLevel slog.Level
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Engine:      getEnv("LITEBIND_ENGINE", litebind.EngineModernc),
		LibraryPath: getEnv("LITEBIND_LIB", ""),
		Database:    getEnv("LITEBIND_DB", litebind.MemoryPath),
		URI:         getEnvBool("LITEBIND_URI", true),
		LogLevel:    getEnvLevel("LITEBIND_LOG_LEVEL", slog.LevelWarn),
	}
}

// LoadEnv loads .env files into the environment, then reads the
// configuration. Missing files are ignored.
func LoadEnv(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return Load(), nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// Binding returns the litebind configuration for c.
func (c *Config) Binding(logger *slog.Logger) litebind.Config {
	return litebind.Config{
		Engine:      c.Engine,
		LibraryPath: c.LibraryPath,
		Logger:      logger,
	}
}

// OpenOptions returns the connection options for c.
func (c *Config) OpenOptions() []litebind.OpenOption {
	return []litebind.OpenOption{litebind.WithURI(c.URI)}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	if value, ok := os.LookupEnv(key); ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err == nil {
			return level
		}
	}
	return fallback
}
