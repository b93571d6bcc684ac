// Package modernc implements the litebind engine on top of the SQLite C
// library transpiled to Go. It needs neither cgo nor a shared library.
package modernc

import (
	"sync"
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/connerohnesorge/litebind/internal/engine"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// transient is SQLITE_TRANSIENT: SQLite copies bound text and blobs.
const transient = ^uintptr(0)

// Engine is the transpiled SQLite engine.
type Engine struct{}

// New returns the transpiled engine. It holds no resources.
func New() *Engine {
	return &Engine{}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "modernc" }

// Version implements engine.Engine.
func (e *Engine) Version() string { return sqlite3.SQLITE_VERSION }

// Close implements engine.Engine.
func (e *Engine) Close() error { return nil }

// ErrStr implements engine.Engine.
func (e *Engine) ErrStr(code engine.Code) string {
	tls := libc.NewTLS()
	defer tls.Close()
	return libc.GoString(sqlite3.Xsqlite3_errstr(tls, int32(code)))
}

// Open implements engine.Engine.
func (e *Engine) Open(path string, flags engine.OpenFlags) (engine.DB, engine.Code) {
	tls := libc.NewTLS()
	pp := libc.Xmalloc(tls, types.Size_t(ptrSize))
	if pp == 0 {
		tls.Close()
		return nil, engine.NoMem
	}
	defer libc.Xfree(tls, pp)
	*(*uintptr)(unsafe.Pointer(pp)) = 0

	name, err := libc.CString(path)
	if err != nil {
		tls.Close()
		return nil, engine.NoMem
	}
	defer libc.Xfree(tls, name)

	rc := engine.Code(sqlite3.Xsqlite3_open_v2(tls, name, pp, int32(flags), 0))
	handle := *(*uintptr)(unsafe.Pointer(pp))
	if handle == 0 {
		tls.Close()
		return nil, rc
	}
	return &DB{tls: tls, db: handle}, rc
}

// DB is an open sqlite3 handle. A libc.TLS must not be used by two
// goroutines at once, so every call holds mu.
type DB struct {
	mu  sync.Mutex
	tls *libc.TLS
	db  uintptr
}

func (d *DB) malloc(n int) uintptr {
	if n == 0 {
		n = 1
	}
	return libc.Xmalloc(d.tls, types.Size_t(n))
}

func (d *DB) free(p uintptr) {
	if p != 0 {
		libc.Xfree(d.tls, p)
	}
}

// Prepare implements engine.DB.
func (d *DB) Prepare(sql string) (engine.Stmt, string, engine.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == 0 {
		return nil, "", engine.Misuse
	}

	zSQL, err := libc.CString(sql)
	if err != nil {
		return nil, "", engine.NoMem
	}
	defer d.free(zSQL)

	out := d.malloc(int(2 * ptrSize))
	if out == 0 {
		return nil, "", engine.NoMem
	}
	defer d.free(out)
	ppStmt, pzTail := out, out+ptrSize
	*(*uintptr)(unsafe.Pointer(ppStmt)) = 0
	*(*uintptr)(unsafe.Pointer(pzTail)) = 0

	rc := engine.Code(sqlite3.Xsqlite3_prepare_v2(d.tls, d.db, zSQL, -1, ppStmt, pzTail))
	pstmt := *(*uintptr)(unsafe.Pointer(ppStmt))
	if rc != engine.OK {
		if pstmt != 0 {
			sqlite3.Xsqlite3_finalize(d.tls, pstmt)
		}
		return nil, "", rc
	}

	tail := ""
	if t := *(*uintptr)(unsafe.Pointer(pzTail)); t != 0 {
		if off := int(t - zSQL); off >= 0 && off < len(sql) {
			tail = sql[off:]
		}
	}
	if pstmt == 0 {
		return nil, tail, engine.OK
	}
	return &Stmt{db: d, stmt: pstmt}, tail, engine.OK
}

// NextStmt implements engine.DB.
func (d *DB) NextStmt(prev engine.Stmt) engine.Stmt {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == 0 {
		return nil
	}

	var p uintptr
	if s, ok := prev.(*Stmt); ok && s != nil {
		p = s.stmt
	}
	next := sqlite3.Xsqlite3_next_stmt(d.tls, d.db, p)
	if next == 0 {
		return nil
	}
	return &Stmt{db: d, stmt: next}
}

// Exec implements engine.DB.
func (d *DB) Exec(sql string) engine.Code {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == 0 {
		return engine.Misuse
	}

	zSQL, err := libc.CString(sql)
	if err != nil {
		return engine.NoMem
	}
	defer d.free(zSQL)
	return engine.Code(sqlite3.Xsqlite3_exec(d.tls, d.db, zSQL, 0, 0, 0))
}

// Changes implements engine.DB.
func (d *DB) Changes() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == 0 {
		return 0
	}
	return int64(sqlite3.Xsqlite3_changes(d.tls, d.db))
}

// LastInsertRowID implements engine.DB.
func (d *DB) LastInsertRowID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == 0 {
		return 0
	}
	return sqlite3.Xsqlite3_last_insert_rowid(d.tls, d.db)
}

// ErrMsg implements engine.DB. A closed DB reports the misuse text.
func (d *DB) ErrMsg() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == 0 {
		return "bad parameter or other API misuse"
	}
	return libc.GoString(sqlite3.Xsqlite3_errmsg(d.tls, d.db))
}

// Close implements engine.DB. The TLS is released only once the handle is
// actually closed, so a Busy result leaves the DB usable.
func (d *DB) Close() engine.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == 0 {
		return engine.OK
	}
	rc := engine.Code(sqlite3.Xsqlite3_close(d.tls, d.db))
	if rc != engine.OK {
		return rc
	}
	d.db = 0
	d.tls.Close()
	d.tls = nil
	return engine.OK
}

// Stmt is a prepared sqlite3_stmt.
type Stmt struct {
	db   *DB
	stmt uintptr
}

func (s *Stmt) lock() func() {
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

// Reset implements engine.Stmt.
func (s *Stmt) Reset() engine.Code {
	defer s.lock()()
	return engine.Code(sqlite3.Xsqlite3_reset(s.db.tls, s.stmt))
}

// ClearBindings implements engine.Stmt.
func (s *Stmt) ClearBindings() engine.Code {
	defer s.lock()()
	return engine.Code(sqlite3.Xsqlite3_clear_bindings(s.db.tls, s.stmt))
}

// BindParameterCount implements engine.Stmt.
func (s *Stmt) BindParameterCount() int {
	defer s.lock()()
	return int(sqlite3.Xsqlite3_bind_parameter_count(s.db.tls, s.stmt))
}

// BindNull implements engine.Stmt.
func (s *Stmt) BindNull(i int) engine.Code {
	defer s.lock()()
	return engine.Code(sqlite3.Xsqlite3_bind_null(s.db.tls, s.stmt, int32(i)))
}

// BindInt64 implements engine.Stmt.
func (s *Stmt) BindInt64(i int, v int64) engine.Code {
	defer s.lock()()
	return engine.Code(sqlite3.Xsqlite3_bind_int64(s.db.tls, s.stmt, int32(i), v))
}

// BindDouble implements engine.Stmt.
func (s *Stmt) BindDouble(i int, v float64) engine.Code {
	defer s.lock()()
	return engine.Code(sqlite3.Xsqlite3_bind_double(s.db.tls, s.stmt, int32(i), v))
}

// BindText implements engine.Stmt. The bytes are copied into C memory and
// bound with SQLITE_TRANSIENT, so embedded NULs survive.
func (s *Stmt) BindText(i int, v string) engine.Code {
	defer s.lock()()

	p := s.db.malloc(len(v))
	if p == 0 {
		return engine.NoMem
	}
	defer s.db.free(p)
	if len(v) > 0 {
		copy((*libc.RawMem)(unsafe.Pointer(p))[:len(v):len(v)], v)
	}
	return engine.Code(sqlite3.Xsqlite3_bind_text(s.db.tls, s.stmt, int32(i), p, int32(len(v)), transient))
}

// BindBlob implements engine.Stmt.
func (s *Stmt) BindBlob(i int, v []byte) engine.Code {
	defer s.lock()()

	p := s.db.malloc(len(v))
	if p == 0 {
		return engine.NoMem
	}
	defer s.db.free(p)
	if len(v) > 0 {
		copy((*libc.RawMem)(unsafe.Pointer(p))[:len(v):len(v)], v)
	}
	return engine.Code(sqlite3.Xsqlite3_bind_blob(s.db.tls, s.stmt, int32(i), p, int32(len(v)), transient))
}

// Step implements engine.Stmt.
func (s *Stmt) Step() engine.Code {
	defer s.lock()()
	if s.db.db == 0 || s.stmt == 0 {
		return engine.Misuse
	}
	return engine.Code(sqlite3.Xsqlite3_step(s.db.tls, s.stmt))
}

// Finalize implements engine.Stmt.
func (s *Stmt) Finalize() engine.Code {
	defer s.lock()()

	if s.stmt == 0 || s.db.db == 0 {
		return engine.OK
	}
	rc := engine.Code(sqlite3.Xsqlite3_finalize(s.db.tls, s.stmt))
	s.stmt = 0
	return rc
}

// ColumnCount implements engine.Stmt.
func (s *Stmt) ColumnCount() int {
	defer s.lock()()
	return int(sqlite3.Xsqlite3_column_count(s.db.tls, s.stmt))
}

// ColumnName implements engine.Stmt.
func (s *Stmt) ColumnName(i int) string {
	defer s.lock()()
	return libc.GoString(sqlite3.Xsqlite3_column_name(s.db.tls, s.stmt, int32(i)))
}

// ColumnType implements engine.Stmt.
func (s *Stmt) ColumnType(i int) engine.ColumnType {
	defer s.lock()()
	return engine.ColumnType(sqlite3.Xsqlite3_column_type(s.db.tls, s.stmt, int32(i)))
}

// ColumnInt64 implements engine.Stmt.
func (s *Stmt) ColumnInt64(i int) int64 {
	defer s.lock()()
	return sqlite3.Xsqlite3_column_int64(s.db.tls, s.stmt, int32(i))
}

// ColumnDouble implements engine.Stmt.
func (s *Stmt) ColumnDouble(i int) float64 {
	defer s.lock()()
	return sqlite3.Xsqlite3_column_double(s.db.tls, s.stmt, int32(i))
}

// ColumnText implements engine.Stmt.
func (s *Stmt) ColumnText(i int) string {
	defer s.lock()()

	p := sqlite3.Xsqlite3_column_text(s.db.tls, s.stmt, int32(i))
	n := int(sqlite3.Xsqlite3_column_bytes(s.db.tls, s.stmt, int32(i)))
	if p == 0 || n == 0 {
		return ""
	}
	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return string(b)
}

// ColumnBlob implements engine.Stmt. An empty blob is a non-nil empty slice.
func (s *Stmt) ColumnBlob(i int) []byte {
	defer s.lock()()

	p := sqlite3.Xsqlite3_column_blob(s.db.tls, s.stmt, int32(i))
	n := int(sqlite3.Xsqlite3_column_bytes(s.db.tls, s.stmt, int32(i)))
	b := make([]byte, n)
	if p != 0 && n > 0 {
		copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	}
	return b
}
