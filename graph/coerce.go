package graph

import (
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// The As* coercions resolve n and view the result as the requested type.
// Failures are ErrType errors anchored at blame when it is non-nil, so that
// the consuming expression is reported rather than the definition.

func AsInt(r *Resolver, n Node, blame *token.Pos) (int64, error) {
	v, err := r.Resolve(n)
	if err != nil {
		return 0, err
	}
	i, ok := intOf(v)
	if !ok {
		return 0, typeError(n, blame, "integer", v)
	}
	return i, nil
}

func AsFloat(r *Resolver, n Node, blame *token.Pos) (float64, error) {
	v, err := r.Resolve(n)
	if err != nil {
		return 0, err
	}
	num, ok := numberOf(v)
	if !ok {
		return 0, typeError(n, blame, "float", v)
	}
	f, _ := num.Number()
	return f, nil
}

// AsNumber returns an integer or float number node.
func AsNumber(r *Resolver, n Node, blame *token.Pos) (*ir.Node, error) {
	v, err := r.Resolve(n)
	if err != nil {
		return nil, err
	}
	num, ok := numberOf(v)
	if !ok {
		return nil, typeError(n, blame, "number", v)
	}
	return num, nil
}

func AsString(r *Resolver, n Node, blame *token.Pos) (string, error) {
	v, err := r.Resolve(n)
	if err != nil {
		return "", err
	}
	s, ok := stringOf(v)
	if !ok {
		return "", typeError(n, blame, "string", v)
	}
	return s, nil
}

// AsSafeString is AsString with secrets masked.
func AsSafeString(r *Resolver, n Node, blame *token.Pos) (string, error) {
	e, err := r.Expand(n)
	if err != nil {
		return "", err
	}
	switch x := e.(type) {
	case *Literal:
		if x.secret {
			return secretMask, nil
		}
	case *Template:
		buf := &strings.Builder{}
		for _, p := range x.parts {
			s, err := AsSafeString(r, p, blame)
			if err != nil {
				return "", err
			}
			buf.WriteString(s)
		}
		return buf.String(), nil
	}
	return AsString(r, e, blame)
}

func AsIterable(r *Resolver, n Node, blame *token.Pos) (iter.Seq2[Node, error], error) {
	seq, err := r.Iterate(n)
	if err != nil {
		if blame != nil {
			if e, ok := err.(*Error); ok && e.Kind == ErrType {
				e.Pos = blame
			}
		}
		return nil, err
	}
	return seq, nil
}

func typeError(n Node, blame *token.Pos, want string, got *ir.Node) error {
	pos := blame
	if pos == nil {
		pos = n.Pos()
	}
	return newError(ErrType, pos, "expected %s, got %s", want, describe(got))
}

func describe(v *ir.Node) string {
	switch v.Type {
	case ir.StringType:
		return strconv.Quote(v.String)
	case ir.NumberType, ir.BoolType, ir.NullType:
		s, _ := stringOf(v)
		if v.Type == ir.NullType {
			s = "null"
		}
		return v.Type.String() + " " + s
	}
	return v.Type.String()
}

func intOf(v *ir.Node) (int64, bool) {
	switch v.Type {
	case ir.NumberType:
		if v.Int64 != nil {
			return *v.Int64, true
		}
		if v.Float64 != nil && !math.IsInf(*v.Float64, 0) && !math.IsNaN(*v.Float64) {
			return int64(*v.Float64), true
		}
	case ir.StringType:
		i, err := strconv.ParseInt(strings.TrimSpace(v.String), 10, 64)
		if err == nil {
			return i, true
		}
	case ir.BoolType:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func numberOf(v *ir.Node) (*ir.Node, bool) {
	switch v.Type {
	case ir.NumberType:
		return v, true
	case ir.StringType:
		s := strings.TrimSpace(v.String)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ir.FromInt(i), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ir.FromFloat(f), true
		}
	case ir.BoolType:
		if v.Bool {
			return ir.FromInt(1), true
		}
		return ir.FromInt(0), true
	}
	return nil, false
}

func stringOf(v *ir.Node) (string, bool) {
	switch v.Type {
	case ir.StringType:
		return v.String, true
	case ir.NumberType:
		if v.Int64 != nil {
			return strconv.FormatInt(*v.Int64, 10), true
		}
		if v.Float64 != nil {
			return strconv.FormatFloat(*v.Float64, 'g', -1, 64), true
		}
	case ir.BoolType:
		return strconv.FormatBool(v.Bool), true
	}
	return "", false
}

func kindOf(n Node) string {
	switch x := n.(type) {
	case *Mapping:
		return "mapping"
	case *Sequence:
		return "sequence"
	case *Literal:
		return strings.ToLower(x.value.Type.String())
	case *Template:
		return "string"
	case *For, *Extend:
		return "sequence"
	}
	return "value"
}

// Lift builds graph nodes for an already resolved value.
func Lift(v *ir.Node, pos *token.Pos) Node {
	switch v.Type {
	case ir.ArrayType:
		items := make([]Node, len(v.Values))
		for i, elt := range v.Values {
			items[i] = Lift(elt, pos)
		}
		return NewSequence(pos, items...)
	case ir.ObjectType:
		m := NewMapping(pos)
		for i, f := range v.Fields {
			m.Set(f, Lift(v.Values[i], pos))
		}
		return m
	}
	return NewLiteral(v, pos)
}
