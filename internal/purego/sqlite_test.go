//go:build !windows

package purego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/litebind/internal/engine"
)

func loadOrSkip(t *testing.T) *SQLite {
	t.Helper()
	lib, err := New("")
	if err != nil {
		t.Skipf("SQLite library not available: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestLoadLibrary(t *testing.T) {
	lib := loadOrSkip(t)

	assert.NotEmpty(t, lib.Version())
	assert.NotEmpty(t, lib.LibraryPath())
	assert.Equal(t, "purego", lib.Name())
}

func TestLoadLibraryBadPath(t *testing.T) {
	t.Setenv(LibDirEnv, t.TempDir())
	lib, err := LoadLibrary("/nonexistent/libsqlite3.so")
	if err == nil {
		// the system library was still found on the default path
		_ = lib.Close()
		return
	}
	assert.Contains(t, err.Error(), "failed to load SQLite library")
}

func TestRoundTrip(t *testing.T) {
	lib := loadOrSkip(t)

	db, rc := lib.Open(":memory:", engine.OpenReadWrite|engine.OpenCreate|engine.OpenFullMutex)
	require.Equal(t, engine.OK, rc)
	defer db.Close()

	require.Equal(t, engine.OK, db.Exec("create table t(a integer, b text, c blob)"))

	stmt, tail, rc := db.Prepare("insert into t values (?, ?, ?); select 1")
	require.Equal(t, engine.OK, rc)
	assert.Equal(t, " select 1", tail)
	assert.Equal(t, engine.OK, stmt.BindInt64(1, 7))
	assert.Equal(t, engine.OK, stmt.BindText(2, ""))
	assert.Equal(t, engine.OK, stmt.BindBlob(3, []byte{0, 1, 2}))
	assert.Equal(t, engine.Done, stmt.Step())
	assert.Equal(t, engine.OK, stmt.Finalize())
	assert.Equal(t, int64(1), db.LastInsertRowID())

	sel, _, rc := db.Prepare("select a, b, c from t")
	require.Equal(t, engine.OK, rc)
	require.Equal(t, engine.Row, sel.Step())
	assert.Equal(t, "b", sel.ColumnName(1))
	assert.Equal(t, int64(7), sel.ColumnInt64(0))
	assert.Equal(t, engine.Text, sel.ColumnType(1))
	assert.Equal(t, "", sel.ColumnText(1))
	assert.Equal(t, []byte{0, 1, 2}, sel.ColumnBlob(2))

	assert.Equal(t, engine.Busy, db.Close())
	assert.Equal(t, engine.OK, sel.Finalize())
	assert.Equal(t, engine.OK, db.Close())
}

func TestPrepareError(t *testing.T) {
	lib := loadOrSkip(t)

	db, rc := lib.Open(":memory:", engine.OpenReadWrite|engine.OpenCreate)
	require.Equal(t, engine.OK, rc)
	defer db.Close()

	stmt, _, rc := db.Prepare("selec 1")
	assert.Equal(t, engine.Error, rc)
	assert.Nil(t, stmt)
	assert.Contains(t, db.ErrMsg(), "syntax error")
}
