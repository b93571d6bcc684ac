// Package engine defines the subset of the SQLite C API that litebind drives.
//
// Implementations are thin: every method maps onto one C call and reports the
// raw result code. Interpreting codes and fetching error text is left to the
// caller, which keeps error attribution in one place.
package engine

import "fmt"

// Code is a SQLite primary result code.
type Code int

// Result codes used by litebind.
const (
	OK     Code = 0
	Error  Code = 1
	Busy   Code = 5
	Locked Code = 6
	NoMem  Code = 7
	Misuse Code = 21
	Range  Code = 25
	Row    Code = 100
	Done   Code = 101
)

func (c Code) String() string {
	switch c {
	case OK:
		return "SQLITE_OK"
	case Error:
		return "SQLITE_ERROR"
	case Busy:
		return "SQLITE_BUSY"
	case Locked:
		return "SQLITE_LOCKED"
	case NoMem:
		return "SQLITE_NOMEM"
	case Misuse:
		return "SQLITE_MISUSE"
	case Range:
		return "SQLITE_RANGE"
	case Row:
		return "SQLITE_ROW"
	case Done:
		return "SQLITE_DONE"
	default:
		return fmt.Sprintf("SQLITE_CODE(%d)", int(c))
	}
}

// Primary strips extended result code bits.
func (c Code) Primary() Code {
	return c & 0xff
}

// ColumnType is the runtime storage class of a column value.
type ColumnType int

// Storage classes as reported by sqlite3_column_type.
const (
	Integer ColumnType = 1
	Float   ColumnType = 2
	Text    ColumnType = 3
	Blob    ColumnType = 4
	Null    ColumnType = 5
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	case Null:
		return "NULL"
	default:
		return fmt.Sprintf("TYPE(%d)", int(t))
	}
}

// OpenFlags are sqlite3_open_v2 flags.
type OpenFlags int

// Open flags.
const (
	OpenReadOnly  OpenFlags = 0x00000001
	OpenReadWrite OpenFlags = 0x00000002
	OpenCreate    OpenFlags = 0x00000004
	OpenURI       OpenFlags = 0x00000040
	OpenFullMutex OpenFlags = 0x00010000
)

// Engine loads and opens databases.
type Engine interface {
	// Name identifies the implementation ("modernc", "purego").
	Name() string
	// Version is the SQLite library version string.
	Version() string
	// Open calls sqlite3_open_v2. On failure the returned DB may still be
	// non-nil so its ErrMsg can be read; the caller must Close it.
	Open(path string, flags OpenFlags) (DB, Code)
	// ErrStr is sqlite3_errstr, for failures that have no handle.
	ErrStr(code Code) string
	// Close releases engine resources such as a loaded shared library.
	Close() error
}

// DB is one sqlite3* handle.
type DB interface {
	// Prepare compiles the first statement in sql. The returned Stmt is nil
	// when sql holds no statement (only whitespace or comments). tail is the
	// unconsumed remainder of sql.
	Prepare(sql string) (stmt Stmt, tail string, code Code)
	// NextStmt is sqlite3_next_stmt; a nil prev starts the walk.
	NextStmt(prev Stmt) Stmt
	// Exec runs sql with sqlite3_exec and no callback.
	Exec(sql string) Code
	Changes() int64
	LastInsertRowID() int64
	ErrMsg() string
	// Close calls sqlite3_close. It fails with Busy while statements remain.
	Close() Code
}

// Stmt is one sqlite3_stmt* handle. Bind indexes are 1-based, column indexes
// are 0-based.
type Stmt interface {
	Reset() Code
	ClearBindings() Code
	BindParameterCount() int
	BindNull(i int) Code
	BindInt64(i int, v int64) Code
	BindDouble(i int, v float64) Code
	BindText(i int, v string) Code
	BindBlob(i int, v []byte) Code
	Step() Code
	Finalize() Code
	ColumnCount() int
	ColumnName(i int) string
	ColumnType(i int) ColumnType
	ColumnInt64(i int) int64
	ColumnDouble(i int) float64
	ColumnText(i int) string
	ColumnBlob(i int) []byte
}
