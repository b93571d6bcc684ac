package litebind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorIteration(t *testing.T) {
	conn := openMemory(t)
	_, err := conn.ExecuteBatch(`
		create table foo(id integer primary key, text text, f float);
		insert into foo(text, f) values ('foo', 1.5);
		insert into foo(text, f) values ('bar', 2.5);
	`)
	require.NoError(t, err)

	cur, err := conn.Execute("select * from foo order by id")
	require.NoError(t, err)
	defer cur.Close()

	fields := []string{"id", "text", "f"}
	assert.Equal(t, fields, cur.Fields())
	assert.False(t, cur.EOF())

	row, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, Row{Int(1), Text("foo"), Float(1.5)}, row)
	assert.Equal(t, fields, cur.Fields())

	row, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, Row{Int(2), Text("bar"), Float(2.5)}, row)
	assert.False(t, cur.EOF())

	row, err = cur.Next()
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.True(t, cur.EOF())

	for i := 0; i < 3; i++ {
		row, err = cur.Next()
		require.NoError(t, err)
		assert.Nil(t, row, "no rows after end of data")
		assert.True(t, cur.EOF())
	}
	assert.Equal(t, fields, cur.Fields())
}

func TestCursorRowsAreFresh(t *testing.T) {
	conn := openMemory(t)

	cur, err := conn.Execute("select 'a' union all select 'b'")
	require.NoError(t, err)
	defer cur.Close()

	first, err := cur.Next()
	require.NoError(t, err)
	second, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, Text("a"), first[0])
	assert.Equal(t, Text("b"), second[0])
}

func TestCursorFieldsCopy(t *testing.T) {
	conn := openMemory(t)

	cur, err := conn.Execute("select 1 as one")
	require.NoError(t, err)
	defer cur.Close()

	f := cur.Fields()
	f[0] = "changed"
	assert.Equal(t, []string{"one"}, cur.Fields())
}

func TestCursorClose(t *testing.T) {
	conn := openMemory(t)

	cur, err := conn.Execute("select 1")
	require.NoError(t, err)
	assert.Equal(t, 1, openStatements(t, conn))

	require.NoError(t, cur.Close())
	require.NoError(t, cur.Close())
	assert.True(t, cur.Closed())
	assert.Zero(t, openStatements(t, conn))

	row, err := cur.Next()
	assert.Nil(t, row)
	assert.ErrorIs(t, err, ErrCursorClosed)
	assert.ErrorIs(t, err, ErrStep)
	assert.Equal(t, StepError, KindOf(err))
	assert.Equal(t, "litebind: step: cursor closed", err.Error())
}

func TestCursorStepAndFinalizeErrors(t *testing.T) {
	conn := openMemory(t)
	_, err := conn.ExecuteBatch("create table t(a not null)")
	require.NoError(t, err)

	cur, err := conn.Execute("insert into t values (?)", nil)
	require.NoError(t, err)

	row, err := cur.Next()
	assert.Nil(t, row)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStep)
	assert.Contains(t, err.Error(), "NOT NULL constraint failed")
	assert.False(t, cur.EOF())

	// finalize reports the failure of the last step again
	err = cur.Close()
	assert.ErrorIs(t, err, ErrFinalize)
	assert.NoError(t, cur.Close())
}

func TestCursorAll(t *testing.T) {
	conn := openMemory(t)

	cur, err := conn.Execute("select value from (select 1 as value union all select 2 union all select 3)")
	require.NoError(t, err)

	rows, err := cur.All()
	require.NoError(t, err)
	assert.Equal(t, []Row{{Int(1)}, {Int(2)}, {Int(3)}}, rows)
	assert.True(t, cur.Closed())
}

func TestCursorOutlivesConnClose(t *testing.T) {
	conn, err := Open("")
	require.NoError(t, err)

	cur, err := conn.Execute("select 1")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = cur.Next()
	assert.True(t, errors.Is(err, ErrCursorClosed))
	assert.NoError(t, cur.Close())
}

func TestCursorEach(t *testing.T) {
	conn := openMemory(t)

	cur, err := conn.Execute("select value, value * 2 as twice from (select 1 as value union all select 2 union all select 3)")
	require.NoError(t, err)

	first, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, Row{Int(1), Int(2)}, first)

	var rows []Row
	err = cur.Each(func(row Row, fields []string) error {
		assert.Equal(t, []string{"value", "twice"}, fields)
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Row{{Int(2), Int(4)}, {Int(3), Int(6)}}, rows)
	assert.True(t, cur.Closed())
	assert.Zero(t, openStatements(t, conn))
}

func TestCursorEachStops(t *testing.T) {
	conn := openMemory(t)

	cur, err := conn.Execute("select 1 union all select 2")
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = cur.Each(func(Row, []string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
	assert.True(t, cur.Closed())

	// a nil fn drains
	cur, err = conn.Execute("select 1")
	require.NoError(t, err)
	require.NoError(t, cur.Each(nil))
	assert.True(t, cur.Closed())
}
