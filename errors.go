package litebind

import (
	"errors"
	"fmt"

	"github.com/connerohnesorge/litebind/internal/engine"
)

// ErrorKind classifies a failure by the operation that produced it.
type ErrorKind int

// Error kinds.
const (
	OpenError ErrorKind = iota + 1
	PrepareError
	BindingError
	ExecutionError
	StepError
	FinalizeError
	CloseError
	AllocationError
)

func (k ErrorKind) String() string {
	switch k {
	case OpenError:
		return "open"
	case PrepareError:
		return "prepare"
	case BindingError:
		return "bind"
	case ExecutionError:
		return "execute"
	case StepError:
		return "step"
	case FinalizeError:
		return "finalize"
	case CloseError:
		return "close"
	case AllocationError:
		return "allocation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrOpen       = errors.New("litebind: open failed")
	ErrPrepare    = errors.New("litebind: prepare failed")
	ErrBinding    = errors.New("litebind: bind failed")
	ErrExecution  = errors.New("litebind: execution failed")
	ErrStep       = errors.New("litebind: step failed")
	ErrFinalize   = errors.New("litebind: finalize failed")
	ErrClose      = errors.New("litebind: close failed")
	ErrAllocation = errors.New("litebind: out of memory")
)

var (
	// ErrClosed is returned by operations on a closed Conn.
	ErrClosed = errors.New("litebind: connection closed")
	// ErrCursorClosed is returned by Next on a closed Cursor.
	ErrCursorClosed = errors.New("litebind: cursor closed")
)

var kindSentinels = map[ErrorKind]error{
	OpenError:       ErrOpen,
	PrepareError:    ErrPrepare,
	BindingError:    ErrBinding,
	ExecutionError:  ErrExecution,
	StepError:       ErrStep,
	FinalizeError:   ErrFinalize,
	CloseError:      ErrClose,
	AllocationError: ErrAllocation,
}

// Error is a failure reported by the engine or by value conversion. Msg is
// the engine's diagnostic text, verbatim.
type Error struct {
	Kind ErrorKind
	// Code is the SQLite result code, or 0 when the failure happened before
	// any engine call.
	Code int
	Msg  string
	// Err is an underlying cause, such as ErrCursorClosed.
	Err error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("litebind: %s: %s (%s)", e.Kind, e.Msg, engine.Code(e.Code))
	}
	return fmt.Sprintf("litebind: %s: %s", e.Kind, e.Msg)
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// engineError builds an *Error from a failed engine call. Out of memory is
// reported as AllocationError whatever the operation.
func engineError(kind ErrorKind, rc engine.Code, msg string) *Error {
	if rc.Primary() == engine.NoMem {
		kind = AllocationError
	}
	return &Error{Kind: kind, Code: int(rc), Msg: msg}
}
