package litebind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"string", "héllo", Text("héllo")},
		{"empty string", "", Text("")},
		{"bytes", []byte{1, 2}, Blob([]byte{1, 2})},
		{"nil bytes", []byte(nil), Null()},
		{"int", 42, Int(42)},
		{"int8", int8(-8), Int(-8)},
		{"int32", int32(1 << 30), Int(1 << 30)},
		{"int64", int64(math.MaxInt64), Int(math.MaxInt64)},
		{"uint16", uint16(65535), Int(65535)},
		{"uint64", uint64(7), Int(7)},
		{"float32", float32(0.5), Float(0.5)},
		{"float64", 3.25, Float(3.25)},
		{"true", true, Bool(true)},
		{"false", false, Bool(false)},
		{"value", Int(9), Int(9)},
		{"nil value pointer", (*Value)(nil), Null()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueOfUnsupported(t *testing.T) {
	for _, in := range []any{
		map[string]any{"a": 1},
		[]int{1, 2},
		struct{ A int }{1},
		make(chan int),
		uint64(math.MaxUint64),
	} {
		_, err := ValueOf(in)
		require.Error(t, err, "%T", in)
		assert.ErrorIs(t, err, ErrBinding)
		assert.Equal(t, BindingError, KindOf(err))
	}
}

func TestValueAccessors(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.Nil(t, Null().Any())
	assert.Equal(t, "NULL", Null().String())

	assert.Equal(t, int64(1), Bool(true).Int())
	assert.Equal(t, true, Bool(true).Any())
	assert.False(t, Bool(false).Bool())

	assert.Equal(t, 2.0, Int(2).Float())
	assert.Equal(t, int64(2), Float(2.9).Int())
	assert.Equal(t, "2.5", Float(2.5).String())

	assert.Equal(t, "ab", Blob([]byte("ab")).Text())
	assert.Equal(t, []byte("ab"), Text("ab").Blob())
	assert.Equal(t, "x'0102'", Blob([]byte{1, 2}).String())

	row := Row{Int(1), Text("x"), Null()}
	assert.Equal(t, []any{int64(1), "x", nil}, row.Any())
}
