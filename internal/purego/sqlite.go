// Package purego implements the litebind engine by loading the system SQLite
// library at run time through purego, without cgo.
package purego

import (
	"fmt"
	"unsafe"

	"github.com/connerohnesorge/litebind/internal/engine"
)

// transient is SQLITE_TRANSIENT: SQLite copies bound text and blobs.
const transient = ^uintptr(0)

// SQLite represents a loaded SQLite library with its C API functions
type SQLite struct {
	lib *Library

	// Core database functions
	sqlite3Libversion func() string
	sqlite3Errstr     func(rc int32) string
	sqlite3OpenV2     func(filename string, ppDb *uintptr, flags int32, zVfs uintptr) int32
	sqlite3Close      func(db uintptr) int32
	sqlite3Errmsg     func(db uintptr) string
	sqlite3Exec       func(db uintptr, sql string, cb uintptr, arg uintptr, errmsg uintptr) int32
	sqlite3Changes    func(db uintptr) int32
	sqlite3LastInsert func(db uintptr) int64
	sqlite3NextStmt   func(db uintptr, stmt uintptr) uintptr

	// Statement functions
	sqlite3PrepareV2     func(db uintptr, sql *byte, nByte int32, ppStmt *uintptr, pzTail *uintptr) int32
	sqlite3Step          func(stmt uintptr) int32
	sqlite3Reset         func(stmt uintptr) int32
	sqlite3Finalize      func(stmt uintptr) int32
	sqlite3ClearBindings func(stmt uintptr) int32

	// Parameter binding functions
	sqlite3BindParameterCount func(stmt uintptr) int32
	sqlite3BindNull           func(stmt uintptr, i int32) int32
	sqlite3BindInt64          func(stmt uintptr, i int32, v int64) int32
	sqlite3BindDouble         func(stmt uintptr, i int32, v float64) int32
	sqlite3BindText           func(stmt uintptr, i int32, p *byte, n int32, destructor uintptr) int32
	sqlite3BindBlob           func(stmt uintptr, i int32, p *byte, n int32, destructor uintptr) int32

	// Column functions
	sqlite3ColumnCount  func(stmt uintptr) int32
	sqlite3ColumnName   func(stmt uintptr, i int32) string
	sqlite3ColumnType   func(stmt uintptr, i int32) int32
	sqlite3ColumnInt64  func(stmt uintptr, i int32) int64
	sqlite3ColumnDouble func(stmt uintptr, i int32) float64
	sqlite3ColumnText   func(stmt uintptr, i int32) unsafe.Pointer
	sqlite3ColumnBlob   func(stmt uintptr, i int32) unsafe.Pointer
	sqlite3ColumnBytes  func(stmt uintptr, i int32) int32
}

// New loads the SQLite library and registers its functions. path may be
// empty to search the default locations.
func New(path string) (*SQLite, error) {
	lib, err := LoadLibrary(path)
	if err != nil {
		return nil, err
	}

	s := &SQLite{lib: lib}

	err = s.registerFunctions()
	if err != nil {
		_ = lib.Close() // Library closing errors not critical in error path
		return nil, err
	}

	return s, nil
}

// registerFunctions registers all SQLite C API functions
func (s *SQLite) registerFunctions() error {
	funcs := []struct {
		fn   interface{}
		name string
	}{
		{&s.sqlite3Libversion, "sqlite3_libversion"},
		{&s.sqlite3Errstr, "sqlite3_errstr"},
		{&s.sqlite3OpenV2, "sqlite3_open_v2"},
		{&s.sqlite3Close, "sqlite3_close"},
		{&s.sqlite3Errmsg, "sqlite3_errmsg"},
		{&s.sqlite3Exec, "sqlite3_exec"},
		{&s.sqlite3Changes, "sqlite3_changes"},
		{&s.sqlite3LastInsert, "sqlite3_last_insert_rowid"},
		{&s.sqlite3NextStmt, "sqlite3_next_stmt"},
		{&s.sqlite3PrepareV2, "sqlite3_prepare_v2"},
		{&s.sqlite3Step, "sqlite3_step"},
		{&s.sqlite3Reset, "sqlite3_reset"},
		{&s.sqlite3Finalize, "sqlite3_finalize"},
		{&s.sqlite3ClearBindings, "sqlite3_clear_bindings"},
		{&s.sqlite3BindParameterCount, "sqlite3_bind_parameter_count"},
		{&s.sqlite3BindNull, "sqlite3_bind_null"},
		{&s.sqlite3BindInt64, "sqlite3_bind_int64"},
		{&s.sqlite3BindDouble, "sqlite3_bind_double"},
		{&s.sqlite3BindText, "sqlite3_bind_text"},
		{&s.sqlite3BindBlob, "sqlite3_bind_blob"},
		{&s.sqlite3ColumnCount, "sqlite3_column_count"},
		{&s.sqlite3ColumnName, "sqlite3_column_name"},
		{&s.sqlite3ColumnType, "sqlite3_column_type"},
		{&s.sqlite3ColumnInt64, "sqlite3_column_int64"},
		{&s.sqlite3ColumnDouble, "sqlite3_column_double"},
		{&s.sqlite3ColumnText, "sqlite3_column_text"},
		{&s.sqlite3ColumnBlob, "sqlite3_column_blob"},
		{&s.sqlite3ColumnBytes, "sqlite3_column_bytes"},
	}
	for _, f := range funcs {
		if err := s.lib.RegisterFunc(f.fn, f.name); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

// Name implements engine.Engine.
func (s *SQLite) Name() string { return "purego" }

// Version implements engine.Engine.
func (s *SQLite) Version() string { return s.sqlite3Libversion() }

// LibraryPath is the location the library was loaded from.
func (s *SQLite) LibraryPath() string { return s.lib.Path() }

// Close unloads the library. No handle opened through it may be used after.
func (s *SQLite) Close() error { return s.lib.Close() }

// ErrStr implements engine.Engine.
func (s *SQLite) ErrStr(code engine.Code) string { return s.sqlite3Errstr(int32(code)) }

// Open implements engine.Engine.
func (s *SQLite) Open(path string, flags engine.OpenFlags) (engine.DB, engine.Code) {
	var handle uintptr
	rc := engine.Code(s.sqlite3OpenV2(path, &handle, int32(flags), 0))
	if handle == 0 {
		return nil, rc
	}
	return &DB{lib: s, db: handle}, rc
}

// DB is an open sqlite3 handle. The library is opened in full-mutex mode,
// so no Go-side locking is needed.
type DB struct {
	lib *SQLite
	db  uintptr
}

// Prepare implements engine.DB.
func (d *DB) Prepare(sql string) (engine.Stmt, string, engine.Code) {
	buf := make([]byte, len(sql)+1)
	copy(buf, sql)
	base := &buf[0]

	var stmt, tail uintptr
	rc := engine.Code(d.lib.sqlite3PrepareV2(d.db, base, int32(len(buf)), &stmt, &tail))
	if rc != engine.OK {
		if stmt != 0 {
			d.lib.sqlite3Finalize(stmt)
		}
		return nil, "", rc
	}

	rest := ""
	if tail != 0 {
		if off := int(tail - uintptr(unsafe.Pointer(base))); off >= 0 && off < len(sql) {
			rest = sql[off:]
		}
	}
	if stmt == 0 {
		return nil, rest, engine.OK
	}
	return &Stmt{lib: d.lib, stmt: stmt}, rest, engine.OK
}

// NextStmt implements engine.DB.
func (d *DB) NextStmt(prev engine.Stmt) engine.Stmt {
	var p uintptr
	if s, ok := prev.(*Stmt); ok && s != nil {
		p = s.stmt
	}
	next := d.lib.sqlite3NextStmt(d.db, p)
	if next == 0 {
		return nil
	}
	return &Stmt{lib: d.lib, stmt: next}
}

// Exec implements engine.DB.
func (d *DB) Exec(sql string) engine.Code {
	return engine.Code(d.lib.sqlite3Exec(d.db, sql, 0, 0, 0))
}

// Changes implements engine.DB.
func (d *DB) Changes() int64 { return int64(d.lib.sqlite3Changes(d.db)) }

// LastInsertRowID implements engine.DB.
func (d *DB) LastInsertRowID() int64 { return d.lib.sqlite3LastInsert(d.db) }

// ErrMsg implements engine.DB.
func (d *DB) ErrMsg() string { return d.lib.sqlite3Errmsg(d.db) }

// Close implements engine.DB.
func (d *DB) Close() engine.Code {
	if d.db == 0 {
		return engine.OK
	}
	rc := engine.Code(d.lib.sqlite3Close(d.db))
	if rc == engine.OK {
		d.db = 0
	}
	return rc
}

// Stmt is a prepared sqlite3_stmt.
type Stmt struct {
	lib  *SQLite
	stmt uintptr
}

// Reset implements engine.Stmt.
func (s *Stmt) Reset() engine.Code { return engine.Code(s.lib.sqlite3Reset(s.stmt)) }

// ClearBindings implements engine.Stmt.
func (s *Stmt) ClearBindings() engine.Code { return engine.Code(s.lib.sqlite3ClearBindings(s.stmt)) }

// BindParameterCount implements engine.Stmt.
func (s *Stmt) BindParameterCount() int { return int(s.lib.sqlite3BindParameterCount(s.stmt)) }

// BindNull implements engine.Stmt.
func (s *Stmt) BindNull(i int) engine.Code {
	return engine.Code(s.lib.sqlite3BindNull(s.stmt, int32(i)))
}

// BindInt64 implements engine.Stmt.
func (s *Stmt) BindInt64(i int, v int64) engine.Code {
	return engine.Code(s.lib.sqlite3BindInt64(s.stmt, int32(i), v))
}

// BindDouble implements engine.Stmt.
func (s *Stmt) BindDouble(i int, v float64) engine.Code {
	return engine.Code(s.lib.sqlite3BindDouble(s.stmt, int32(i), v))
}

// BindText implements engine.Stmt.
func (s *Stmt) BindText(i int, v string) engine.Code {
	p, n := bytesPtr([]byte(v))
	return engine.Code(s.lib.sqlite3BindText(s.stmt, int32(i), p, n, transient))
}

// BindBlob implements engine.Stmt.
func (s *Stmt) BindBlob(i int, v []byte) engine.Code {
	p, n := bytesPtr(v)
	return engine.Code(s.lib.sqlite3BindBlob(s.stmt, int32(i), p, n, transient))
}

// bytesPtr never returns nil: SQLite binds NULL for a nil pointer, and an
// empty value must stay empty text or an empty blob.
func bytesPtr(b []byte) (*byte, int32) {
	if len(b) == 0 {
		return new(byte), 0
	}
	return &b[0], int32(len(b))
}

// Step implements engine.Stmt.
func (s *Stmt) Step() engine.Code { return engine.Code(s.lib.sqlite3Step(s.stmt)) }

// Finalize implements engine.Stmt.
func (s *Stmt) Finalize() engine.Code {
	if s.stmt == 0 {
		return engine.OK
	}
	rc := engine.Code(s.lib.sqlite3Finalize(s.stmt))
	s.stmt = 0
	return rc
}

// ColumnCount implements engine.Stmt.
func (s *Stmt) ColumnCount() int { return int(s.lib.sqlite3ColumnCount(s.stmt)) }

// ColumnName implements engine.Stmt.
func (s *Stmt) ColumnName(i int) string { return s.lib.sqlite3ColumnName(s.stmt, int32(i)) }

// ColumnType implements engine.Stmt.
func (s *Stmt) ColumnType(i int) engine.ColumnType {
	return engine.ColumnType(s.lib.sqlite3ColumnType(s.stmt, int32(i)))
}

// ColumnInt64 implements engine.Stmt.
func (s *Stmt) ColumnInt64(i int) int64 { return s.lib.sqlite3ColumnInt64(s.stmt, int32(i)) }

// ColumnDouble implements engine.Stmt.
func (s *Stmt) ColumnDouble(i int) float64 { return s.lib.sqlite3ColumnDouble(s.stmt, int32(i)) }

// ColumnText implements engine.Stmt.
func (s *Stmt) ColumnText(i int) string {
	p := s.lib.sqlite3ColumnText(s.stmt, int32(i))
	n := int(s.lib.sqlite3ColumnBytes(s.stmt, int32(i)))
	if p == nil || n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// ColumnBlob implements engine.Stmt.
func (s *Stmt) ColumnBlob(i int) []byte {
	p := s.lib.sqlite3ColumnBlob(s.stmt, int32(i))
	n := int(s.lib.sqlite3ColumnBytes(s.stmt, int32(i)))
	b := make([]byte, n)
	if p != nil && n > 0 {
		copy(b, unsafe.Slice((*byte)(p), n))
	}
	return b
}
