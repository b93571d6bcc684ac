package litebind

import (
	"fmt"

	"github.com/connerohnesorge/litebind/internal/engine"
)

// bindParams resets stmt, clears its bindings and binds params to positions
// 1..n. More params than the statement has placeholders is a BindingError;
// fewer leaves the rest NULL. It stops at the first parameter that cannot be
// converted or bound; bindings made before it stay in place until the next
// reset.
func bindParams(db engine.DB, stmt engine.Stmt, params []any) error {
	if n := stmt.BindParameterCount(); len(params) > n {
		return engineError(BindingError, engine.Range,
			fmt.Sprintf("%d parameters given, statement takes %d", len(params), n))
	}

	stmt.Reset()
	stmt.ClearBindings()

	for i, p := range params {
		v, err := ValueOf(p)
		if err != nil {
			return fmt.Errorf("parameter %d: %w", i+1, err)
		}
		if rc := bindValue(stmt, i+1, v); rc != engine.OK {
			return engineError(BindingError, rc, db.ErrMsg())
		}
	}
	return nil
}

func bindValue(stmt engine.Stmt, pos int, v Value) engine.Code {
	switch v.kind {
	case KindNull:
		return stmt.BindNull(pos)
	case KindInteger, KindBool:
		return stmt.BindInt64(pos, v.i)
	case KindFloat:
		return stmt.BindDouble(pos, v.f)
	case KindText:
		return stmt.BindText(pos, v.s)
	case KindBlob:
		return stmt.BindBlob(pos, v.b)
	default:
		return engine.Misuse
	}
}

// decodeRow reads the current row by each column's runtime storage class.
func decodeRow(stmt engine.Stmt, n int) Row {
	row := make(Row, n)
	for i := 0; i < n; i++ {
		switch stmt.ColumnType(i) {
		case engine.Integer:
			row[i] = Int(stmt.ColumnInt64(i))
		case engine.Float:
			row[i] = Float(stmt.ColumnDouble(i))
		case engine.Text:
			row[i] = Text(stmt.ColumnText(i))
		case engine.Blob:
			row[i] = Value{kind: KindBlob, b: stmt.ColumnBlob(i)}
		default:
			row[i] = Null()
		}
	}
	return row
}

func columnNames(stmt engine.Stmt) []string {
	n := stmt.ColumnCount()
	names := make([]string, n)
	for i := range names {
		names[i] = stmt.ColumnName(i)
	}
	return names
}
