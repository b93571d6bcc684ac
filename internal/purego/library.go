//go:build !windows

package purego

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

// LibDirEnv names a directory searched first for the SQLite library.
const LibDirEnv = "LITEBIND_LIB_DIR"

// sqliteLibraries returns the library names for the current platform
func sqliteLibraries() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libsqlite3.dylib", "libsqlite3.0.dylib"}
	default: // linux, *bsd, etc
		return []string{"libsqlite3.so", "libsqlite3.so.0"}
	}
}

// Library represents a loaded SQLite shared library
type Library struct {
	handle uintptr
	path   string
}

// LoadLibrary loads the SQLite shared library. An explicit path wins over
// the LITEBIND_LIB_DIR directory, which wins over the system search path.
func LoadLibrary(path string) (*Library, error) {
	var libNames []string
	if path != "" {
		libNames = append(libNames, path)
	}

	// Check environment variable for custom location (e.g., from Nix)
	if libDir := os.Getenv(LibDirEnv); libDir != "" {
		for _, name := range sqliteLibraries() {
			libNames = append(libNames, filepath.Join(libDir, name))
		}
	}
	libNames = append(libNames, sqliteLibraries()...)

	var lastErr error
	for _, libName := range libNames {
		handle, err := purego.Dlopen(libName, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return &Library{handle: handle, path: libName}, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to load SQLite library from any location: %w", lastErr)
}

// Path is the name the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Close closes the loaded library
func (l *Library) Close() error {
	if l.handle != 0 {
		err := purego.Dlclose(l.handle)
		l.handle = 0
		return err
	}
	return nil
}

// RegisterFunc registers a function from the library
func (l *Library) RegisterFunc(fn interface{}, name string) error {
	sym, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fn, sym)
	return nil
}
