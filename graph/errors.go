package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signadot/yay/token"
)

var (
	ErrType            = errors.New("type error")
	ErrNoSuchKey       = errors.New("no such key")
	ErrNoMatchingMacro = errors.New("no matching macro")
	ErrNoPredecessor   = errors.New("no predecessor")
	ErrParadox         = errors.New("paradox")
	ErrInclude         = errors.New("include error")
	ErrMismatch        = errors.New("structural mismatch")
)

// Error is a resolution failure of kind Kind anchored at Pos.
// errors.Is(err, Kind) holds for any Error.
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

func newError(kind error, pos *token.Pos, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func wrapError(kind error, pos *token.Pos, err error, format string, args ...any) *Error {
	e := newError(kind, pos, format, args...)
	e.Err = err
	return e
}

// blame anchors an unanchored error at pos, the position of the node
// which consumed the failing lookup.
func blame(err error, pos *token.Pos) error {
	var e *Error
	if errors.As(err, &e) && e.Pos == nil {
		e.Pos = pos
	}
	return err
}

// PosOf returns the position of the outermost anchored Error in err.
func PosOf(err error) *token.Pos {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return nil
		}
		if e.Pos != nil && e.Pos.Line != 0 {
			return e.Pos
		}
		err = e.Err
	}
	return nil
}

func isMiss(err error) bool {
	return errors.Is(err, ErrNoSuchKey) || errors.Is(err, ErrNoPredecessor)
}
