package modernc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/litebind/internal/engine"
)

func openMemory(t *testing.T) engine.DB {
	t.Helper()
	db, rc := New().Open(":memory:", engine.OpenReadWrite|engine.OpenCreate|engine.OpenFullMutex)
	require.Equal(t, engine.OK, rc)
	require.NotNil(t, db)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPrepareTail(t *testing.T) {
	db := openMemory(t)

	stmt, tail, rc := db.Prepare("select 1; select 2;")
	require.Equal(t, engine.OK, rc)
	require.NotNil(t, stmt)
	assert.Equal(t, " select 2;", tail)
	assert.Equal(t, engine.OK, stmt.Finalize())

	stmt, tail, rc = db.Prepare("  -- nothing here\n")
	assert.Equal(t, engine.OK, rc)
	assert.Nil(t, stmt)
	assert.Empty(t, tail)
}

func TestPrepareError(t *testing.T) {
	db := openMemory(t)

	stmt, _, rc := db.Prepare("select from where")
	assert.Equal(t, engine.Error, rc)
	assert.Nil(t, stmt)
	assert.Contains(t, db.ErrMsg(), "syntax error")
}

func TestBindAndColumns(t *testing.T) {
	db := openMemory(t)
	require.Equal(t, engine.OK, db.Exec("create table t(i integer, f real, s text, b blob, n)"))

	ins, _, rc := db.Prepare("insert into t values (?, ?, ?, ?, ?)")
	require.Equal(t, engine.OK, rc)
	assert.Equal(t, 5, ins.BindParameterCount())
	assert.Equal(t, engine.OK, ins.BindInt64(1, 42))
	assert.Equal(t, engine.OK, ins.BindDouble(2, 1.5))
	assert.Equal(t, engine.OK, ins.BindText(3, "a\x00b"))
	assert.Equal(t, engine.OK, ins.BindBlob(4, []byte{}))
	assert.Equal(t, engine.OK, ins.BindNull(5))
	assert.Equal(t, engine.Done, ins.Step())
	assert.Equal(t, engine.OK, ins.Finalize())
	assert.Equal(t, int64(1), db.Changes())
	assert.Equal(t, int64(1), db.LastInsertRowID())

	sel, _, rc := db.Prepare("select i, f, s, b, n from t")
	require.Equal(t, engine.OK, rc)
	defer sel.Finalize()
	require.Equal(t, 5, sel.ColumnCount())
	assert.Equal(t, "s", sel.ColumnName(2))
	require.Equal(t, engine.Row, sel.Step())

	assert.Equal(t, engine.Integer, sel.ColumnType(0))
	assert.Equal(t, int64(42), sel.ColumnInt64(0))
	assert.Equal(t, engine.Float, sel.ColumnType(1))
	assert.Equal(t, 1.5, sel.ColumnDouble(1))
	assert.Equal(t, engine.Text, sel.ColumnType(2))
	assert.Equal(t, "a\x00b", sel.ColumnText(2))
	assert.Equal(t, engine.Blob, sel.ColumnType(3))
	assert.Equal(t, []byte{}, sel.ColumnBlob(3))
	assert.Equal(t, engine.Null, sel.ColumnType(4))
	assert.Equal(t, engine.Done, sel.Step())
}

func TestNextStmtAndClose(t *testing.T) {
	db, rc := New().Open("", engine.OpenReadWrite|engine.OpenCreate)
	require.Equal(t, engine.OK, rc)

	_, _, rc = db.Prepare("select 1")
	require.Equal(t, engine.OK, rc)
	assert.Equal(t, engine.Busy, db.Close())

	for s := db.NextStmt(nil); s != nil; s = db.NextStmt(nil) {
		s.Finalize()
	}
	assert.Equal(t, engine.OK, db.Close())
	assert.Equal(t, engine.OK, db.Close())
}

func TestErrStr(t *testing.T) {
	assert.Equal(t, "out of memory", New().ErrStr(engine.NoMem))
}

func TestClosedDBIsMisuse(t *testing.T) {
	db, rc := New().Open("", engine.OpenReadWrite|engine.OpenCreate)
	require.Equal(t, engine.OK, rc)
	require.Equal(t, engine.OK, db.Close())

	stmt, _, rc := db.Prepare("select 1")
	assert.Nil(t, stmt)
	assert.Equal(t, engine.Misuse, rc)
	assert.Equal(t, engine.Misuse, db.Exec("select 1"))
	assert.Nil(t, db.NextStmt(nil))
	assert.Zero(t, db.Changes())
	assert.Zero(t, db.LastInsertRowID())
	assert.NotEmpty(t, db.ErrMsg())
}
