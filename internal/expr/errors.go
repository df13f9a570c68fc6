package expr

import (
	"errors"
	"fmt"
)

// ErrKind classifies evaluator failures so callers can react to the
// category without string matching.
type ErrKind int

const (
	ErrEmptyExpression ErrKind = iota + 1
	ErrSyntax
	ErrUnsupportedConstruct
	ErrDivisionByZero
	ErrTypeMismatch
)

func (k ErrKind) String() string {
	switch k {
	case ErrEmptyExpression:
		return "empty expression"
	case ErrSyntax:
		return "syntax error"
	case ErrUnsupportedConstruct:
		return "unsupported construct"
	case ErrDivisionByZero:
		return "division by zero"
	case ErrTypeMismatch:
		return "type mismatch"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is the concrete error type produced by Parse and Eval. Pos is a
// byte offset into the source string, or -1 when no position applies.
type Error struct {
	Kind ErrKind
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// KindOf extracts the ErrKind from err, or 0 if err did not originate
// in this package.
func KindOf(err error) ErrKind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return 0
}

func errAt(kind ErrKind, pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
