package litebind

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/connerohnesorge/litebind/internal/engine"
	"github.com/connerohnesorge/litebind/internal/modernc"
	"github.com/connerohnesorge/litebind/internal/purego"
)

// Engine names accepted by Config.Engine.
const (
	EngineModernc = "modernc"
	EnginePurego  = "purego"
)

// Config selects and configures the engine behind a Binding.
type Config struct {
	// Engine is EngineModernc (the default) or EnginePurego.
	Engine string
	// LibraryPath is the SQLite shared library for EnginePurego. Empty
	// searches LITEBIND_LIB_DIR and then the system library path.
	LibraryPath string
	Logger      *slog.Logger // Optional, defaults to slog.Default()
}

// Binding is the entry point of the package: it owns the loaded engine and
// opens connections on it.
type Binding struct {
	engine engine.Engine
	logger *slog.Logger
}

// New loads the configured engine.
func New(cfg Config) (*Binding, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var eng engine.Engine
	switch cfg.Engine {
	case "", EngineModernc:
		eng = modernc.New()
	case EnginePurego:
		lib, err := purego.New(cfg.LibraryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		logger.Debug("loaded SQLite library", "path", lib.LibraryPath(), "version", lib.Version())
		eng = lib
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}

	return &Binding{engine: eng, logger: logger}, nil
}

var defaultBinding = sync.OnceValues(func() (*Binding, error) {
	return New(Config{})
})

// Default returns the shared Binding on the transpiled engine.
func Default() *Binding {
	b, _ := defaultBinding() // the modernc engine cannot fail to load
	return b
}

// Open opens a connection on the Default binding.
func Open(path string, opts ...OpenOption) (*Conn, error) {
	return Default().Open(path, opts...)
}

// EngineName reports the engine in use.
func (b *Binding) EngineName() string { return b.engine.Name() }

// EngineVersion reports the SQLite version of the engine.
func (b *Binding) EngineVersion() string { return b.engine.Version() }

// Close releases the engine. Connections opened from b must be closed first.
func (b *Binding) Close() error {
	return b.engine.Close()
}

// Open opens or creates the database at path, read/write and in full-mutex
// mode. An empty path opens a private in-memory database.
func (b *Binding) Open(path string, opts ...OpenOption) (*Conn, error) {
	o := openOptions{uri: true, logger: b.logger}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		path = MemoryPath
	}

	flags := engine.OpenFullMutex
	if o.readOnly {
		flags |= engine.OpenReadOnly
	} else {
		flags |= engine.OpenReadWrite | engine.OpenCreate
	}
	if o.uri {
		flags |= engine.OpenURI
	}

	db, rc := b.engine.Open(path, flags)
	if rc != engine.OK {
		msg := ""
		if db != nil {
			msg = db.ErrMsg()
			db.Close()
		}
		if msg == "" {
			msg = b.engine.ErrStr(rc)
		}
		return nil, engineError(OpenError, rc, msg)
	}

	id := uuid.NewString()
	c := &Conn{
		id:      id,
		path:    path,
		binding: b,
		logger:  o.logger.With("conn_id", id, "engine", b.engine.Name()),
		db:      db,
		stmts:   make(map[*statement]struct{}),
	}
	runtime.SetFinalizer(c, (*Conn).finalize)

	c.logger.Debug("opened database", "path", path)
	return c, nil
}
