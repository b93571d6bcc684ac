package purego

import "errors"

// LibDirEnv names a directory searched first for the SQLite library.
const LibDirEnv = "LITEBIND_LIB_DIR"

// Library is unavailable on windows; use the modernc engine there.
type Library struct{}

// LoadLibrary always fails on windows.
func LoadLibrary(path string) (*Library, error) {
	return nil, errors.New("loading the SQLite library is not supported on windows")
}

// Path returns an empty string.
func (l *Library) Path() string { return "" }

// Close is a no-op.
func (l *Library) Close() error { return nil }

// RegisterFunc always fails.
func (l *Library) RegisterFunc(fn interface{}, name string) error {
	return errors.New("not supported on windows")
}
