package litebind

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/connerohnesorge/litebind/internal/engine"
)

// RowFunc receives each row of ExecuteEach with the statement's column
// names. Returning an error stops the iteration.
type RowFunc func(row Row, fields []string) error

// Conn is one open database handle.
//
// A Conn may be shared between goroutines: the engine runs in full-mutex
// mode, every operation holds mu for reading while it uses the handle and
// Close holds it for writing. Calls are not atomic with respect to each
// other, so interleaving statements from several goroutines on one Conn is
// the caller's concern.
type Conn struct {
	id      string
	path    string
	binding *Binding
	logger  *slog.Logger

	mu sync.RWMutex
	db engine.DB

	stmtsMu sync.Mutex
	stmts   map[*statement]struct{}
}

// ID identifies the connection in log output.
func (c *Conn) ID() string { return c.id }

// Path is the path the connection was opened with.
func (c *Conn) Path() string { return c.path }

// EngineName reports the engine behind the connection.
func (c *Conn) EngineName() string { return c.binding.EngineName() }

// acquire read-locks the connection for one operation. On success the
// caller must release it with c.mu.RUnlock. Callers must not re-enter the
// Conn while holding it: a pending Close would block the nested read lock.
func (c *Conn) acquire() (engine.DB, error) {
	c.mu.RLock()
	if c.db == nil {
		c.mu.RUnlock()
		return nil, ErrClosed
	}
	return c.db, nil
}

// errMsg returns the connection's last error text, falling back to the
// generic text for rc once the handle is gone.
func (c *Conn) errMsg(rc engine.Code) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db != nil {
		if msg := c.db.ErrMsg(); msg != "" {
			return msg
		}
	}
	return c.binding.engine.ErrStr(rc)
}

func (c *Conn) track(s *statement) {
	c.stmtsMu.Lock()
	defer c.stmtsMu.Unlock()
	c.stmts[s] = struct{}{}
}

func (c *Conn) untrack(s *statement) {
	c.stmtsMu.Lock()
	defer c.stmtsMu.Unlock()
	delete(c.stmts, s)
}

// prepare compiles the first statement of sql, binds params and tracks the
// result so Close can finalize it. It returns a nil statement when sql
// contains none.
func (c *Conn) prepare(sql string, params []any) (*statement, error) {
	db, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	stmt, _, rc := db.Prepare(sql)
	if rc != engine.OK {
		return nil, engineError(PrepareError, rc, db.ErrMsg())
	}
	if stmt == nil {
		return nil, nil
	}
	if len(params) > 0 {
		if err := bindParams(db, stmt, params); err != nil {
			stmt.Finalize()
			return nil, err
		}
	}

	s := &statement{stmt: stmt, fields: columnNames(stmt)}
	c.track(s)
	return s, nil
}

// Execute prepares the first statement of sql, binds params and returns a
// Cursor over its rows. The caller owns the Cursor and must close it.
// Text after the first statement is ignored. Execute returns a nil Cursor
// and no error when sql holds no statement.
func (c *Conn) Execute(sql string, params ...any) (*Cursor, error) {
	s, err := c.prepare(sql, params)
	if err != nil || s == nil {
		return nil, err
	}
	return newCursor(c, s), nil
}

// ExecuteEach runs the first statement of sql to completion, calling fn for
// every row. The statement is finalized before ExecuteEach returns, also
// when fn fails or panics. An error from fn is returned unchanged.
func (c *Conn) ExecuteEach(sql string, fn RowFunc, params ...any) (err error) {
	s, err := c.prepare(sql, params)
	if err != nil || s == nil {
		return err
	}
	defer func() {
		rc, open := s.finalize()
		c.untrack(s)
		if open && rc != engine.OK && err == nil {
			err = engineError(FinalizeError, rc, c.errMsg(rc))
		}
	}()

	for {
		row, rc, ok := s.step()
		if !ok {
			return ErrClosed
		}
		switch rc {
		case engine.Row:
			if fn == nil {
				continue
			}
			if err := fn(row, s.fields); err != nil {
				return err
			}
		case engine.Done:
			return nil
		default:
			return engineError(ExecutionError, rc, c.errMsg(rc))
		}
	}
}

// ExecuteBatch runs every statement of sql in order, discarding rows, and
// returns the change count of the last statement.
//
// params are bound to the first statement only. Later statements run
// without parameters, so a batch whose later statements have placeholders
// binds them to NULL.
//
// The first failure aborts the rest of the batch. Statements already run
// are not undone; wrap the batch in a transaction for that.
func (c *Conn) ExecuteBatch(sql string, params ...any) (int64, error) {
	db, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.mu.RUnlock()

	rest := sql
	for strings.TrimSpace(rest) != "" {
		stmt, tail, rc := db.Prepare(rest)
		if rc != engine.OK {
			return 0, engineError(PrepareError, rc, db.ErrMsg())
		}
		if stmt == nil {
			if len(tail) >= len(rest) {
				break
			}
			rest = tail
			continue
		}
		rest = tail

		if len(params) > 0 {
			err := bindParams(db, stmt, params)
			params = nil
			if err != nil {
				stmt.Finalize()
				return 0, err
			}
		}

		if err := runToCompletion(db, stmt); err != nil {
			return 0, err
		}
	}
	return db.Changes(), nil
}

func runToCompletion(db engine.DB, stmt engine.Stmt) error {
	for {
		switch rc := stmt.Step(); rc {
		case engine.Row:
		case engine.Done:
			if rc := stmt.Finalize(); rc != engine.OK {
				return engineError(FinalizeError, rc, db.ErrMsg())
			}
			return nil
		default:
			err := engineError(ExecutionError, rc, db.ErrMsg())
			stmt.Finalize()
			return err
		}
	}
}

// LastInsertID returns the rowid of the most recent successful insert.
func (c *Conn) LastInsertID() (int64, error) {
	db, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.mu.RUnlock()
	return db.LastInsertRowID(), nil
}

// Changes returns the rows modified by the most recently completed
// statement.
func (c *Conn) Changes() (int64, error) {
	db, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.mu.RUnlock()
	return db.Changes(), nil
}

func (c *Conn) exec(sql string) error {
	db, err := c.acquire()
	if err != nil {
		return err
	}
	defer c.mu.RUnlock()
	if rc := db.Exec(sql); rc != engine.OK {
		return engineError(ExecutionError, rc, db.ErrMsg())
	}
	return nil
}

// Begin starts a transaction. Nesting is reported by the engine.
func (c *Conn) Begin() error { return c.exec("begin") }

// Commit commits the current transaction.
func (c *Conn) Commit() error { return c.exec("commit") }

// Rollback rolls back the current transaction.
func (c *Conn) Rollback() error { return c.exec("rollback") }

// Transaction runs fn between Begin and Commit. If fn returns an error or
// panics the transaction is rolled back instead.
func (c *Conn) Transaction(fn func(*Conn) error) (err error) {
	if err := c.Begin(); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = c.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := c.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return
		}
		err = c.Commit()
	}()
	return fn(c)
}

// Close finalizes every statement still open on the connection, then closes
// the handle. It waits for operations in flight on other goroutines.
// Closing a closed Conn is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db := c.db
	if db == nil {
		return nil
	}

	c.stmtsMu.Lock()
	stmts := c.stmts
	c.stmts = make(map[*statement]struct{})
	c.stmtsMu.Unlock()

	for s := range stmts {
		s.finalize()
	}
	// no operation holds the read lock, so anything left is unowned
	swept := 0
	for stmt := db.NextStmt(nil); stmt != nil; stmt = db.NextStmt(nil) {
		stmt.Finalize()
		swept++
	}

	if rc := db.Close(); rc != engine.OK {
		return engineError(CloseError, rc, db.ErrMsg())
	}
	c.db = nil

	c.logger.Debug("closed database", "cursors", len(stmts), "swept", swept)
	return nil
}

func (c *Conn) finalize() {
	c.mu.RLock()
	open := c.db != nil
	c.mu.RUnlock()
	if !open {
		return
	}
	c.logger.Warn("connection garbage collected without Close", "path", c.path)
	if err := c.Close(); err != nil {
		c.logger.Warn("failed to close leaked connection", "error", err)
	}
}
