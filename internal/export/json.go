package export

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
)

// JSONEncoder writes JSON Lines: one object per row keyed by column name.
type JSONEncoder struct {
	buf     *bufio.Writer
	enc     *json.Encoder
	columns []string
	err     error
}

// NewJSONEncoder creates a new JSON Lines encoder.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	buf := bufio.NewWriter(w)
	return &JSONEncoder{buf: buf, enc: json.NewEncoder(buf)}
}

// WriteHeader records the column names used as keys.
func (e *JSONEncoder) WriteHeader(columns []string) error {
	e.columns = columns
	return nil
}

// WriteRow writes one object. Blobs become base64 strings, as encoding/json
// does for []byte.
func (e *JSONEncoder) WriteRow(values []interface{}) error {
	if e.err != nil {
		return e.err
	}

	row := make(map[string]interface{}, len(values))
	for i, v := range values {
		name := columnName(e.columns, i)
		row[name] = v
	}

	if err := e.enc.Encode(row); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Flush writes buffered lines.
func (e *JSONEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.buf.Flush(); err != nil {
		e.err = err
	}
	return e.err
}

// Error returns the first encoding error.
func (e *JSONEncoder) Error() error {
	return e.err
}

// Close flushes and satisfies io.Closer.
func (e *JSONEncoder) Close() error {
	return e.Flush()
}

func columnName(columns []string, i int) string {
	if i < len(columns) && columns[i] != "" {
		return columns[i]
	}
	return "column_" + strconv.Itoa(i+1)
}
