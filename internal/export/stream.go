package export

import (
	"context"
	"fmt"
	"time"

	"github.com/connerohnesorge/litebind"
)

// Result contains stats about an export.
type Result struct {
	RowsProcessed int64
	Duration      time.Duration
}

// Stream writes every remaining row of cur to enc, then closes both. Rows are
// read one at a time so memory use does not grow with the result.
func Stream(ctx context.Context, cur *litebind.Cursor, enc RowEncoder) (res *Result, err error) {
	start := time.Now()
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			res, err = nil, cerr
		}
	}()

	if err := enc.WriteHeader(cur.Fields()); err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	var rows int64
	for {
		if err := ctx.Err(); err != nil {
			enc.Close()
			return nil, err
		}

		row, err := cur.Next()
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("rows iteration error: %w", err)
		}
		if row == nil {
			break
		}
		if err := enc.WriteRow(row.Any()); err != nil {
			enc.Close()
			return nil, fmt.Errorf("row write failed: %w", err)
		}
		rows++
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flush error: %w", err)
	}
	if err := enc.Error(); err != nil {
		return nil, fmt.Errorf("flush error: %w", err)
	}

	return &Result{
		RowsProcessed: rows,
		Duration:      time.Since(start),
	}, nil
}

// Query runs sql on conn and streams its rows to enc. A statement that
// produces no cursor still writes an empty output.
func Query(ctx context.Context, conn *litebind.Conn, sql string, enc RowEncoder, params ...any) (*Result, error) {
	cur, err := conn.Execute(sql, params...)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if cur == nil {
		start := time.Now()
		if err := enc.WriteHeader(nil); err != nil {
			enc.Close()
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return &Result{Duration: time.Since(start)}, nil
	}
	return Stream(ctx, cur, enc)
}
