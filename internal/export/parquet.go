package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/snappy"
)

// parquetSample is how many rows are buffered to choose column types.
const parquetSample = 256

type columnType int

const (
	columnUnknown columnType = iota
	columnInt64
	columnDouble
	columnBoolean
	columnBytes
	columnString
)

// ParquetEncoder writes a snappy compressed Parquet file. Every column is
// optional. Column types come from the first rows: integers widen to doubles
// when mixed with floats, and anything mixed with text becomes a string.
type ParquetEncoder struct {
	w       io.Writer
	names   []string
	types   []columnType
	index   []int
	pending [][]interface{}
	writer  *parquet.Writer
	err     error
	closed  bool
}

// NewParquetEncoder creates a new Parquet encoder.
func NewParquetEncoder(w io.Writer) *ParquetEncoder {
	return &ParquetEncoder{w: w}
}

// WriteHeader records the column names. Duplicates get a numeric suffix.
func (e *ParquetEncoder) WriteHeader(columns []string) error {
	used := make(map[string]bool, len(columns))
	e.names = make([]string, len(columns))
	for i, c := range columns {
		if c == "" {
			c = "column_" + strconv.Itoa(i+1)
		}
		name := c
		for n := 2; used[name]; n++ {
			name = c + "_" + strconv.Itoa(n)
		}
		used[name] = true
		e.names[i] = name
	}
	e.types = make([]columnType, len(columns))
	return nil
}

// WriteRow buffers rows until the schema is known, then writes them.
func (e *ParquetEncoder) WriteRow(values []interface{}) error {
	if e.err != nil {
		return e.err
	}
	if len(values) != len(e.names) {
		e.err = fmt.Errorf("parquet: row has %d values, want %d", len(values), len(e.names))
		return e.err
	}

	if e.writer == nil {
		row := make([]interface{}, len(values))
		copy(row, values)
		e.pending = append(e.pending, row)
		for i, v := range values {
			e.types[i] = widen(e.types[i], v)
		}
		if len(e.pending) < parquetSample {
			return nil
		}
		return e.start()
	}
	return e.write([][]interface{}{values})
}

func (e *ParquetEncoder) start() error {
	if len(e.names) == 0 {
		e.err = fmt.Errorf("parquet: result has no columns")
		return e.err
	}
	group := make(parquet.Group, len(e.names))
	for i, name := range e.names {
		group[name] = parquet.Optional(node(e.types[i]))
	}
	schema := parquet.NewSchema("row", group)

	e.index = make([]int, len(e.names))
	for i, name := range e.names {
		leaf, ok := schema.Lookup(name)
		if !ok {
			e.err = fmt.Errorf("parquet: column %q missing from schema", name)
			return e.err
		}
		e.index[i] = leaf.ColumnIndex
	}

	e.writer = parquet.NewWriter(e.w, schema, parquet.Compression(&snappy.Codec{}))
	pending := e.pending
	e.pending = nil
	return e.write(pending)
}

func (e *ParquetEncoder) write(rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	out := make([]parquet.Row, len(rows))
	for r, values := range rows {
		row := make(parquet.Row, len(values))
		for i, v := range values {
			pv, err := e.value(i, v)
			if err != nil {
				e.err = err
				return err
			}
			row[e.index[i]] = pv
		}
		out[r] = row
	}
	if _, err := e.writer.WriteRows(out); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *ParquetEncoder) value(i int, v interface{}) (parquet.Value, error) {
	col := e.index[i]
	if v == nil {
		return parquet.NullValue().Level(0, 0, col), nil
	}

	var pv parquet.Value
	switch e.types[i] {
	case columnInt64:
		switch v := v.(type) {
		case int64:
			pv = parquet.Int64Value(v)
		case bool:
			pv = parquet.Int64Value(boolInt(v))
		}
	case columnDouble:
		switch v := v.(type) {
		case float64:
			pv = parquet.DoubleValue(v)
		case int64:
			pv = parquet.DoubleValue(float64(v))
		case bool:
			pv = parquet.DoubleValue(float64(boolInt(v)))
		}
	case columnBoolean:
		if b, ok := v.(bool); ok {
			pv = parquet.BooleanValue(b)
		}
	case columnBytes:
		switch v := v.(type) {
		case []byte:
			pv = parquet.ByteArrayValue(v)
		case string:
			pv = parquet.ByteArrayValue([]byte(v))
		}
	default:
		switch v := v.(type) {
		case string:
			pv = parquet.ByteArrayValue([]byte(v))
		case []byte:
			pv = parquet.ByteArrayValue(v)
		default:
			pv = parquet.ByteArrayValue([]byte(rawString(v)))
		}
	}
	if pv.IsNull() {
		return pv, fmt.Errorf("parquet: column %q: cannot store %T after the type was chosen", e.names[i], v)
	}
	return pv.Level(0, 1, col), nil
}

// Flush writes buffered rows. Parquet output is only complete after Close.
func (e *ParquetEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if e.writer == nil {
		if err := e.start(); err != nil {
			return err
		}
	}
	if err := e.writer.Flush(); err != nil {
		e.err = err
	}
	return e.err
}

// Error returns the first encoding error.
func (e *ParquetEncoder) Error() error {
	return e.err
}

// Close writes the footer.
func (e *ParquetEncoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	if e.writer == nil {
		if err := e.start(); err != nil {
			return err
		}
	}
	if err := e.writer.Close(); err != nil {
		e.err = err
	}
	return e.err
}

func node(t columnType) parquet.Node {
	switch t {
	case columnInt64:
		return parquet.Int(64)
	case columnDouble:
		return parquet.Leaf(parquet.DoubleType)
	case columnBoolean:
		return parquet.Leaf(parquet.BooleanType)
	case columnBytes:
		return parquet.Leaf(parquet.ByteArrayType)
	default:
		return parquet.String()
	}
}

// widen folds one observed value into the column type.
func widen(t columnType, v interface{}) columnType {
	var next columnType
	switch v.(type) {
	case nil:
		return t
	case int64:
		next = columnInt64
	case float64:
		next = columnDouble
	case bool:
		next = columnBoolean
	case []byte:
		next = columnBytes
	default:
		next = columnString
	}

	switch {
	case t == columnUnknown || t == next:
		return next
	case isNumeric(t) && isNumeric(next):
		if t == columnDouble || next == columnDouble {
			return columnDouble
		}
		return columnInt64
	default:
		return columnString
	}
}

func isNumeric(t columnType) bool {
	return t == columnInt64 || t == columnDouble || t == columnBoolean
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func rawString(v interface{}) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
