package litebind

import (
	"runtime"
	"sync"

	"github.com/connerohnesorge/litebind/internal/engine"
)

// statement is a prepared statement tracked by its Conn. It never points
// back at the Conn, so a Conn and its cursors do not form a cycle that
// would keep finalizers from running.
type statement struct {
	mu     sync.Mutex
	stmt   engine.Stmt
	fields []string
	eof    bool
}

// step advances once. ok is false when the statement was already finalized.
// After Done the statement is not stepped again: SQLite would reset it and
// start over.
func (s *statement) step() (row Row, rc engine.Code, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stmt == nil {
		return nil, 0, false
	}
	if s.eof {
		return nil, engine.Done, true
	}
	rc = s.stmt.Step()
	switch rc {
	case engine.Row:
		return decodeRow(s.stmt, len(s.fields)), rc, true
	case engine.Done:
		s.eof = true
	}
	return nil, rc, true
}

// finalize releases the statement. open is false if it was already released.
func (s *statement) finalize() (rc engine.Code, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stmt == nil {
		return engine.OK, false
	}
	rc = s.stmt.Finalize()
	s.stmt = nil
	return rc, true
}

func (s *statement) state() (eof, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eof, s.stmt == nil
}

// Cursor iterates the rows of a statement returned by Conn.Execute.
type Cursor struct {
	conn *Conn
	s    *statement
}

func newCursor(conn *Conn, s *statement) *Cursor {
	cur := &Cursor{conn: conn, s: s}
	runtime.SetFinalizer(cur, (*Cursor).finalize)
	return cur
}

// Next returns the next row. At the end of the rows it returns nil and no
// error, and keeps doing so on later calls.
func (cur *Cursor) Next() (Row, error) {
	row, rc, ok := cur.s.step()
	if !ok {
		return nil, &Error{Kind: StepError, Msg: "cursor closed", Err: ErrCursorClosed}
	}
	switch rc {
	case engine.Row:
		return row, nil
	case engine.Done:
		return nil, nil
	default:
		return nil, engineError(StepError, rc, cur.conn.errMsg(rc))
	}
}

// Close finalizes the statement. Closing a closed Cursor is a no-op.
func (cur *Cursor) Close() error {
	rc, open := cur.s.finalize()
	if !open {
		return nil
	}
	cur.conn.untrack(cur.s)
	if rc != engine.OK {
		return engineError(FinalizeError, rc, cur.conn.errMsg(rc))
	}
	return nil
}

// Fields returns the column names captured when the statement was prepared.
func (cur *Cursor) Fields() []string {
	out := make([]string, len(cur.s.fields))
	copy(out, cur.s.fields)
	return out
}

// EOF reports whether Next has reached the end of the rows.
func (cur *Cursor) EOF() bool {
	eof, _ := cur.s.state()
	return eof
}

// Closed reports whether the cursor, or its connection, has been closed.
func (cur *Cursor) Closed() bool {
	_, closed := cur.s.state()
	return closed
}

// All reads the remaining rows and closes the cursor.
func (cur *Cursor) All() (rows []Row, err error) {
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		row, err := cur.Next()
		if err != nil {
			return rows, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// Each calls fn for every remaining row, then closes the cursor. An error
// from fn stops the iteration and is returned unchanged.
func (cur *Cursor) Each(fn RowFunc) (err error) {
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		row, err := cur.Next()
		if err != nil || row == nil {
			return err
		}
		if fn == nil {
			continue
		}
		if err := fn(row, cur.s.fields); err != nil {
			return err
		}
	}
}

func (cur *Cursor) finalize() {
	if _, closed := cur.s.state(); closed {
		return
	}
	cur.conn.logger.Warn("cursor garbage collected without Close", "fields", cur.s.fields)
	_ = cur.Close()
}
