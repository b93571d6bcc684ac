package driver

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/connerohnesorge/litebind"
)

// Conn implements the database/sql/driver.Conn interface
type Conn struct {
	conn *litebind.Conn
}

// Prepare returns a prepared statement
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext returns a prepared statement. The SQL is compiled when the
// statement runs, so syntax errors surface from Exec or Query.
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if c.conn == nil {
		return nil, driver.ErrBadConn
	}
	return &Stmt{
		conn:  c,
		query: query,
	}, nil
}

// Close closes the connection
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Begin starts a transaction
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts a transaction with options
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := c.conn.Begin(); err != nil {
		return nil, wrapErr(err)
	}

	return &Tx{conn: c}, nil
}

// ExecContext executes a query that doesn't return rows. Every statement in
// query runs; args bind to the first one.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	// Check context cancellation before starting
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	params, err := toParams(args)
	if err != nil {
		return nil, err
	}
	changes, err := c.conn.ExecuteBatch(query, params...)
	if err != nil {
		return nil, wrapErr(err)
	}
	lastID, err := c.conn.LastInsertID()
	if err != nil {
		return nil, wrapErr(err)
	}
	return &Result{lastInsertId: lastID, rowsAffected: changes}, nil
}

// QueryContext executes a query that returns rows
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	// Check context cancellation before starting
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	params, err := toParams(args)
	if err != nil {
		return nil, err
	}
	cursor, err := c.conn.Execute(query, params...)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &Rows{
		cursor: cursor,
		ctx:    ctx,
	}, nil
}

// Ping verifies the connection
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.ExecuteEach("select 1", nil); err != nil {
		return wrapErr(err)
	}
	return nil
}

// IsValid reports whether the connection can be reused
func (c *Conn) IsValid() bool {
	_, err := c.conn.Changes()
	return err == nil
}

// ResetSession is called before a connection is reused
func (c *Conn) ResetSession(ctx context.Context) error {
	if !c.IsValid() {
		return driver.ErrBadConn
	}
	return nil
}

// CheckNamedValue is called to check named values. Values litebind does not
// accept directly go through the default database/sql conversion.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	if nv.Name != "" {
		return fmt.Errorf("named parameter %q is not supported", nv.Name)
	}
	if t, ok := nv.Value.(time.Time); ok {
		nv.Value = t.Format(time.RFC3339Nano)
		return nil
	}
	if _, err := litebind.ValueOf(nv.Value); err != nil {
		return driver.ErrSkip
	}
	return nil
}

// toParams converts driver arguments to litebind parameters in ordinal order
func toParams(args []driver.NamedValue) ([]any, error) {
	params := make([]any, len(args))
	for _, arg := range args {
		if arg.Name != "" {
			return nil, fmt.Errorf("named parameter %q is not supported", arg.Name)
		}
		if arg.Ordinal < 1 || arg.Ordinal > len(args) {
			return nil, fmt.Errorf("parameter ordinal %d out of range", arg.Ordinal)
		}
		v := arg.Value
		if t, ok := v.(time.Time); ok {
			v = t.Format(time.RFC3339Nano)
		}
		params[arg.Ordinal-1] = v
	}
	return params, nil
}

// wrapErr maps a closed connection to driver.ErrBadConn so database/sql
// discards it
func wrapErr(err error) error {
	if errors.Is(err, litebind.ErrClosed) {
		return driver.ErrBadConn
	}
	return err
}

// Result implements driver.Result
type Result struct {
	lastInsertId int64
	rowsAffected int64
}

// LastInsertId returns the last insert ID
func (r *Result) LastInsertId() (int64, error) {
	return r.lastInsertId, nil
}

// RowsAffected returns the number of affected rows
func (r *Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
