package litebind

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the type tag of a Value.
type Kind uint8

// Value kinds. Bool exists only on the way in: SQLite stores it as an
// integer and it reads back as KindInteger.
const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindBool:
		return "bool"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a scalar crossing the binding boundary. The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Row is one result row, one Value per column in column order.
type Row []Value

// Null returns the NULL value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInteger, i: v} }

// Float returns a floating-point value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text returns a text value. Its byte length is kept exactly.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Blob returns a blob value. A nil slice is NULL.
func Blob(v []byte) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindBlob, b: v}
}

// Bool returns a boolean value, bound as 1 or 0.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// ValueOf converts a Go value. Unsupported kinds fail with a BindingError.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return *x, nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Value{}, newError(BindingError, fmt.Sprintf("integer %d overflows int64", x))
		}
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, newError(BindingError, fmt.Sprintf("integer %d overflows int64", x))
		}
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	default:
		return Value{}, newError(BindingError, fmt.Sprintf("invalid argument: unsupported type %T", v))
	}
}

// Kind reports the type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer content, converting floats and booleans.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInteger, KindBool:
		return v.i
	case KindFloat:
		return int64(v.f)
	default:
		return 0
	}
}

// Float returns the floating-point content, converting integers.
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInteger, KindBool:
		return float64(v.i)
	default:
		return 0
	}
}

// Text returns text content, or the bytes of a blob.
func (v Value) Text() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindBlob:
		return string(v.b)
	default:
		return ""
	}
}

// Blob returns blob content, or the bytes of a text value.
func (v Value) Blob() []byte {
	switch v.kind {
	case KindBlob:
		return v.b
	case KindText:
		return []byte(v.s)
	default:
		return nil
	}
}

// Bool reports whether v is a true boolean or a non-zero number.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool, KindInteger:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	default:
		return false
	}
}

// Any returns the Go value: nil, int64, float64, string, []byte or bool.
func (v Value) Any() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	case KindBool:
		return v.i != 0
	default:
		return nil
	}
}

// String formats v for display. NULL prints as "NULL".
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return fmt.Sprintf("x'%x'", v.b)
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	default:
		return "NULL"
	}
}

// Any converts every value of the row.
func (r Row) Any() []any {
	out := make([]any, len(r))
	for i, v := range r {
		out[i] = v.Any()
	}
	return out
}
