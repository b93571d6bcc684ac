package driver

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/connerohnesorge/litebind"
)

// Rows implements the database/sql/driver.Rows interface
type Rows struct {
	cursor *litebind.Cursor // nil when the query held no statement
	ctx    context.Context  // Context for cancellation
}

// Columns returns the column names
func (r *Rows) Columns() []string {
	if r.cursor == nil {
		return nil
	}
	return r.cursor.Fields()
}

// Close closes the rows iterator
func (r *Rows) Close() error {
	if r.cursor == nil {
		return nil
	}
	// a failed step is reported again by finalize; Next already returned it
	_ = r.cursor.Close()
	return nil
}

// Next populates the provided slice with the next row values
func (r *Rows) Next(dest []driver.Value) error {
	// Check context cancellation
	if r.ctx != nil {
		select {
		case <-r.ctx.Done():
			return r.ctx.Err()
		default:
		}
	}

	if r.cursor == nil {
		return io.EOF
	}
	row, err := r.cursor.Next()
	if err != nil {
		return wrapErr(err)
	}
	if row == nil {
		return io.EOF
	}

	if len(dest) > len(row) {
		return fmt.Errorf("destination has more columns than result")
	}
	for i := range dest {
		dest[i] = row[i].Any()
	}
	return nil
}
