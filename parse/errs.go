package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signadot/yay/token"
)

var (
	ErrParse     = errors.New("parse error")
	ErrKeyTag    = fmt.Errorf("%w: key cannot be tagged", ErrParse)
	ErrDirective = fmt.Errorf("%w: malformed directive", ErrParse)
	ErrExpr      = fmt.Errorf("%w: malformed expression", ErrParse)
)

// Error is a parse failure anchored at Pos. errors.Is(err, ErrParse)
// holds for any Error.
type Error struct {
	Kind error
	Msg  string
	Pos  *token.Pos
	Err  error
}

func (e *Error) Error() string {
	buf := &strings.Builder{}
	if e.Pos != nil && e.Pos.Line != 0 {
		buf.WriteString(e.Pos.String())
		buf.WriteString(": ")
	}
	buf.WriteString(e.Kind.Error())
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func errorf(kind error, pos *token.Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// PosOf returns the position of the parse error in err, if any.
func PosOf(err error) *token.Pos {
	var e *Error
	if !errors.As(err, &e) || e.Pos == nil || e.Pos.Line == 0 {
		return nil
	}
	return e.Pos
}
