package litebind

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/litebind/internal/engine"
)

func TestNewDefaultEngine(t *testing.T) {
	b, err := New(Config{})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, EngineModernc, b.EngineName())
	assert.NotEmpty(t, b.EngineVersion())
	assert.Same(t, Default(), Default())
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New(Config{Engine: "oracle"})
	assert.ErrorContains(t, err, `unknown engine "oracle"`)
}

func TestPuregoEngine(t *testing.T) {
	b, err := New(Config{
		Engine: EnginePurego,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if err != nil {
		t.Skipf("SQLite library not available: %v", err)
	}
	defer b.Close()

	conn, err := b.Open("")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, EnginePurego, conn.EngineName())

	_, err = conn.ExecuteBatch("create table t(a integer, b text, c blob, d float)")
	require.NoError(t, err)
	require.NoError(t, conn.ExecuteEach("insert into t values (?, ?, ?, ?)", nil, true, "x", []byte{}, 0.25))

	cur, err := conn.Execute("select a, b, c, d from t")
	require.NoError(t, err)
	rows, err := cur.All()
	require.NoError(t, err)
	assert.Equal(t, []Row{{Int(1), Text("x"), Blob([]byte{}), Float(0.25)}}, rows)
}

func TestEngineErrorAllocation(t *testing.T) {
	err := engineError(PrepareError, engine.NoMem, "out of memory")
	assert.Equal(t, AllocationError, err.Kind)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.NotErrorIs(t, err, ErrPrepare)

	// extended codes keep the primary code in the low byte
	err = engineError(StepError, engine.NoMem|(1<<8), "out of memory")
	assert.Equal(t, AllocationError, err.Kind)
}

func TestErrorFormat(t *testing.T) {
	err := engineError(PrepareError, engine.Error, `near "selec": syntax error`)
	assert.Equal(t, `litebind: prepare: near "selec": syntax error (SQLITE_ERROR)`, err.Error())

	err = newError(BindingError, "invalid argument")
	assert.Equal(t, "litebind: bind: invalid argument", err.Error())
	assert.Zero(t, KindOf(os.ErrNotExist))
}
