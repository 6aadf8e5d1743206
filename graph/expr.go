package graph

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Identifier is a variable reference, looked up in lexical scope.
type Identifier struct {
	base
	name string
}

func NewIdentifier(name string, pos *token.Pos) *Identifier {
	return &Identifier{base: base{pos: pos}, name: name}
}

func (n *Identifier) Name() string { return n.name }

func (n *Identifier) Expand(r *Resolver) (Node, error) {
	v, err := n.GetContext(r, n.name)
	if err != nil {
		return nil, blame(err, n.pos)
	}
	return r.Expand(v)
}

func (n *Identifier) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *Identifier) Dynamic() bool { return true }
func (n *Identifier) Simplify(r *Resolver) (Node, error) { return n, nil }
func (n *Identifier) Clone() Node { return NewIdentifier(n.name, n.pos) }

func resolveExpanded(r *Resolver, n Node) (*ir.Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Resolve(e)
}

// Binary applies an arithmetic, comparison or membership operator to
// resolved operands.
type Binary struct {
	base
	op       string
	lhs, rhs Node
}

func NewBinary(op string, lhs, rhs Node, pos *token.Pos) *Binary {
	n := &Binary{base: base{pos: pos}, op: op, lhs: lhs, rhs: rhs}
	lhs.SetParent(n)
	rhs.SetParent(n)
	return n
}

func (n *Binary) Op() string { return n.op }

func (n *Binary) Expand(r *Resolver) (Node, error) { return n, nil }

func (n *Binary) Resolve(r *Resolver) (*ir.Node, error) {
	l, err := r.Resolve(n.lhs)
	if err != nil {
		return nil, err
	}
	rv, err := r.Resolve(n.rhs)
	if err != nil {
		return nil, err
	}
	return n.apply(l, rv)
}

func (n *Binary) apply(l, r *ir.Node) (*ir.Node, error) {
	switch n.op {
	case "==":
		return ir.FromBool(ir.Equal(l, r)), nil
	case "!=":
		return ir.FromBool(!ir.Equal(l, r)), nil
	case "<", ">", "<=", ">=":
		c, err := n.order(l, r)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case "<":
			return ir.FromBool(c < 0), nil
		case ">":
			return ir.FromBool(c > 0), nil
		case "<=":
			return ir.FromBool(c <= 0), nil
		}
		return ir.FromBool(c >= 0), nil
	case "in":
		return n.in(l, r)
	case "not in":
		v, err := n.in(l, r)
		if err != nil {
			return nil, err
		}
		return ir.FromBool(!v.Bool), nil
	case "contains", "startsWith", "endsWith", "matches":
		return n.strings(l, r)
	case "+":
		if l.Type == ir.ArrayType && r.Type == ir.ArrayType {
			return ir.FromSlice(append(append([]*ir.Node{}, l.Values...), r.Values...)), nil
		}
		ln, lok := numberOf(l)
		rn, rok := numberOf(r)
		if lok && rok {
			return arith(n, "+", ln, rn)
		}
		ls, lok := stringOf(l)
		rs, rok := stringOf(r)
		if !lok || !rok {
			return nil, newError(ErrType, n.pos, "cannot add %s and %s", describe(l), describe(r))
		}
		return ir.FromString(ls + rs), nil
	}
	ln, ok := numberOf(l)
	if !ok {
		return nil, typeError(n.lhs, n.pos, "number", l)
	}
	rn, ok := numberOf(r)
	if !ok {
		return nil, typeError(n.rhs, n.pos, "number", r)
	}
	return arith(n, n.op, ln, rn)
}

func (n *Binary) order(l, r *ir.Node) (int, error) {
	_, lnum := numberOf(l)
	_, rnum := numberOf(r)
	switch {
	case l.Type == ir.NumberType && r.Type == ir.NumberType,
		l.Type == ir.StringType && r.Type == ir.StringType:
		return ir.Compare(l, r), nil
	case lnum && rnum:
		ln, _ := numberOf(l)
		rn, _ := numberOf(r)
		return ir.Compare(ln, rn), nil
	}
	return 0, newError(ErrType, n.pos, "cannot order %s and %s", describe(l), describe(r))
}

func (n *Binary) in(l, r *ir.Node) (*ir.Node, error) {
	switch r.Type {
	case ir.ArrayType:
		for _, v := range r.Values {
			if ir.Equal(l, v) {
				return ir.FromBool(true), nil
			}
		}
		return ir.FromBool(false), nil
	case ir.ObjectType:
		k, ok := stringOf(l)
		if !ok {
			return nil, typeError(n.lhs, n.pos, "string", l)
		}
		return ir.FromBool(ir.Get(r, k) != nil), nil
	case ir.StringType:
		s, ok := stringOf(l)
		if !ok {
			return nil, typeError(n.lhs, n.pos, "string", l)
		}
		return ir.FromBool(strings.Contains(r.String, s)), nil
	}
	return nil, newError(ErrType, n.pos, "cannot test membership in %s", describe(r))
}

func (n *Binary) strings(l, r *ir.Node) (*ir.Node, error) {
	ls, ok := stringOf(l)
	if !ok {
		return nil, typeError(n.lhs, n.pos, "string", l)
	}
	rs, ok := stringOf(r)
	if !ok {
		return nil, typeError(n.rhs, n.pos, "string", r)
	}
	switch n.op {
	case "contains":
		return ir.FromBool(strings.Contains(ls, rs)), nil
	case "startsWith":
		return ir.FromBool(strings.HasPrefix(ls, rs)), nil
	case "endsWith":
		return ir.FromBool(strings.HasSuffix(ls, rs)), nil
	}
	re, err := regexp.Compile(rs)
	if err != nil {
		return nil, wrapError(ErrType, n.pos, err, "bad pattern %q", rs)
	}
	return ir.FromBool(re.MatchString(ls)), nil
}

// arith applies op to two numbers. Integer operands give integer results
// except for inexact division, negative powers and results overflowing
// int64, which are computed as floats.
func arith(n Node, op string, l, r *ir.Node) (*ir.Node, error) {
	if l.Int64 != nil && r.Int64 != nil {
		a, b := *l.Int64, *r.Int64
		switch op {
		case "+":
			if c, ok := addInt(a, b); ok {
				return ir.FromInt(c), nil
			}
		case "-":
			if c, ok := subInt(a, b); ok {
				return ir.FromInt(c), nil
			}
		case "*":
			if c, ok := mulInt(a, b); ok {
				return ir.FromInt(c), nil
			}
		case "/":
			if b == 0 {
				return nil, newError(ErrType, n.Pos(), "division by zero")
			}
			if a%b == 0 && (a != math.MinInt64 || b != -1) {
				return ir.FromInt(a / b), nil
			}
		case "%":
			if b == 0 {
				return nil, newError(ErrType, n.Pos(), "division by zero")
			}
			return ir.FromInt(a % b), nil
		case "**", "^":
			if b >= 0 {
				if c, ok := powInt(a, b); ok {
					return ir.FromInt(c), nil
				}
			}
		}
	}
	a, _ := l.Number()
	b, _ := r.Number()
	switch op {
	case "+":
		return ir.FromFloat(a + b), nil
	case "-":
		return ir.FromFloat(a - b), nil
	case "*":
		return ir.FromFloat(a * b), nil
	case "/":
		if b == 0 {
			return nil, newError(ErrType, n.Pos(), "division by zero")
		}
		return ir.FromFloat(a / b), nil
	case "%":
		if b == 0 {
			return nil, newError(ErrType, n.Pos(), "division by zero")
		}
		return ir.FromFloat(math.Mod(a, b)), nil
	case "**", "^":
		return ir.FromFloat(math.Pow(a, b)), nil
	}
	return nil, newError(ErrType, n.Pos(), "unknown operator %q", op)
}

func addInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, c/b == a
}

// powInt computes a**b, b >= 0, by repeated squaring.
func powInt(a, b int64) (int64, bool) {
	res := int64(1)
	for {
		if b&1 == 1 {
			var ok bool
			if res, ok = mulInt(res, a); !ok {
				return 0, false
			}
		}
		b >>= 1
		if b == 0 {
			return res, true
		}
		var ok bool
		if a, ok = mulInt(a, a); !ok {
			return 0, false
		}
	}
}

func (n *Binary) Dynamic() bool { return n.lhs.Dynamic() || n.rhs.Dynamic() }

func (n *Binary) Simplify(r *Resolver) (Node, error) {
	if !n.Dynamic() {
		return fold(r, n), nil
	}
	lhs, err := n.lhs.Simplify(r)
	if err != nil {
		return nil, err
	}
	rhs, err := n.rhs.Simplify(r)
	if err != nil {
		return nil, err
	}
	return NewBinary(n.op, lhs, rhs, n.pos), nil
}

func (n *Binary) Clone() Node {
	return NewBinary(n.op, n.lhs.Clone(), n.rhs.Clone(), n.pos)
}

// And is short-circuiting conjunction. It yields the first falsy operand,
// or the last one.
type And struct {
	base
	lhs, rhs Node
}

func NewAnd(lhs, rhs Node, pos *token.Pos) *And {
	n := &And{base: base{pos: pos}, lhs: lhs, rhs: rhs}
	lhs.SetParent(n)
	rhs.SetParent(n)
	return n
}

func (n *And) Expand(r *Resolver) (Node, error) { return n, nil }

func (n *And) Resolve(r *Resolver) (*ir.Node, error) {
	l, err := r.Resolve(n.lhs)
	if err != nil {
		return nil, err
	}
	if !ir.Truth(l) {
		return l, nil
	}
	return r.Resolve(n.rhs)
}

func (n *And) Dynamic() bool { return n.lhs.Dynamic() || n.rhs.Dynamic() }

// Simplify drops constant operands. A constant false operand makes the
// whole expression false without touching the other side.
func (n *And) Simplify(r *Resolver) (Node, error) {
	ld, rd := n.lhs.Dynamic(), n.rhs.Dynamic()
	switch {
	case ld && rd:
		lhs, err := n.lhs.Simplify(r)
		if err != nil {
			return nil, err
		}
		rhs, err := n.rhs.Simplify(r)
		if err != nil {
			return nil, err
		}
		return NewAnd(lhs, rhs, n.pos), nil
	case ld:
		t, err := r.Truth(n.rhs)
		if err != nil {
			return nil, err
		}
		if !t {
			return NewLiteral(ir.FromBool(false), n.pos), nil
		}
		return n.lhs.Simplify(r)
	case rd:
		t, err := r.Truth(n.lhs)
		if err != nil {
			return nil, err
		}
		if !t {
			return NewLiteral(ir.FromBool(false), n.pos), nil
		}
		return n.rhs.Simplify(r)
	}
	v, err := n.Resolve(r)
	if err != nil {
		return nil, err
	}
	return NewLiteral(v, n.pos), nil
}

func (n *And) Clone() Node { return NewAnd(n.lhs.Clone(), n.rhs.Clone(), n.pos) }

// Or is short-circuiting disjunction. A left operand which is not defined
// falls back to the right one. With nullish set, only an undefined or null
// left operand falls back.
type Or struct {
	base
	lhs, rhs Node
	nullish  bool
}

func NewOr(lhs, rhs Node, pos *token.Pos) *Or {
	n := &Or{base: base{pos: pos}, lhs: lhs, rhs: rhs}
	lhs.SetParent(n)
	rhs.SetParent(n)
	return n
}

// NewDefault returns lhs unless it is undefined or null.
func NewDefault(lhs, rhs Node, pos *token.Pos) *Or {
	n := NewOr(lhs, rhs, pos)
	n.nullish = true
	return n
}

func (n *Or) Expand(r *Resolver) (Node, error) { return n, nil }

func (n *Or) Resolve(r *Resolver) (*ir.Node, error) {
	l, err := r.Resolve(n.lhs)
	if err != nil {
		if errors.Is(err, ErrNoSuchKey) {
			return r.Resolve(n.rhs)
		}
		return nil, err
	}
	if n.nullish {
		if l.Type == ir.NullType {
			return r.Resolve(n.rhs)
		}
		return l, nil
	}
	if ir.Truth(l) {
		return l, nil
	}
	return r.Resolve(n.rhs)
}

func (n *Or) Dynamic() bool { return n.lhs.Dynamic() || n.rhs.Dynamic() }

// Simplify drops constant operands. A constant truthy left operand makes
// the right one irrelevant.
func (n *Or) Simplify(r *Resolver) (Node, error) {
	ld, rd := n.lhs.Dynamic(), n.rhs.Dynamic()
	if !ld {
		l, err := r.Resolve(n.lhs)
		if err != nil {
			return nil, err
		}
		keep := ir.Truth(l)
		if n.nullish {
			keep = l.Type != ir.NullType
		}
		if keep {
			return NewLiteral(l, n.pos), nil
		}
		return n.rhs.Simplify(r)
	}
	lhs, err := n.lhs.Simplify(r)
	if err != nil {
		return nil, err
	}
	if !rd && !n.nullish {
		t, err := r.Truth(n.rhs)
		if err != nil {
			return nil, err
		}
		if !t {
			return lhs, nil
		}
	}
	rhs, err := n.rhs.Simplify(r)
	if err != nil {
		return nil, err
	}
	res := NewOr(lhs, rhs, n.pos)
	res.nullish = n.nullish
	return res, nil
}

func (n *Or) Clone() Node {
	res := NewOr(n.lhs.Clone(), n.rhs.Clone(), n.pos)
	res.nullish = n.nullish
	return res
}

// Unary applies "not", "-" or "+" to its operand.
type Unary struct {
	base
	op    string
	value Node
}

func NewUnary(op string, value Node, pos *token.Pos) *Unary {
	n := &Unary{base: base{pos: pos}, op: op, value: value}
	value.SetParent(n)
	return n
}

func (n *Unary) Expand(r *Resolver) (Node, error) { return n, nil }

func (n *Unary) Resolve(r *Resolver) (*ir.Node, error) {
	if n.op == "not" {
		t, err := r.Truth(n.value)
		if err != nil {
			return nil, err
		}
		return ir.FromBool(!t), nil
	}
	v, err := AsNumber(r, n.value, n.pos)
	if err != nil {
		return nil, err
	}
	if n.op == "+" {
		return v, nil
	}
	if v.Int64 != nil {
		return ir.FromInt(-*v.Int64), nil
	}
	return ir.FromFloat(-*v.Float64), nil
}

func (n *Unary) Dynamic() bool { return n.value.Dynamic() }

func (n *Unary) Simplify(r *Resolver) (Node, error) {
	if !n.Dynamic() {
		return fold(r, n), nil
	}
	v, err := n.value.Simplify(r)
	if err != nil {
		return nil, err
	}
	return NewUnary(n.op, v, n.pos), nil
}

func (n *Unary) Clone() Node { return NewUnary(n.op, n.value.Clone(), n.pos) }

// Conditional resolves only the branch selected by its condition.
type Conditional struct {
	base
	cond, then, els Node
}

func NewConditional(cond, then, els Node, pos *token.Pos) *Conditional {
	n := &Conditional{base: base{pos: pos}, cond: cond, then: then, els: els}
	cond.SetParent(n)
	then.SetParent(n)
	els.SetParent(n)
	return n
}

func (n *Conditional) branch(r *Resolver) (Node, error) {
	t, err := r.Truth(n.cond)
	if err != nil {
		return nil, err
	}
	if t {
		return n.then, nil
	}
	return n.els, nil
}

func (n *Conditional) Expand(r *Resolver) (Node, error) {
	b, err := n.branch(r)
	if err != nil {
		return nil, err
	}
	return r.Expand(b)
}

func (n *Conditional) Resolve(r *Resolver) (*ir.Node, error) {
	b, err := n.branch(r)
	if err != nil {
		return nil, err
	}
	return r.Resolve(b)
}

func (n *Conditional) Dynamic() bool {
	return n.cond.Dynamic() || n.then.Dynamic() || n.els.Dynamic()
}

func (n *Conditional) Simplify(r *Resolver) (Node, error) {
	if n.cond.Dynamic() {
		return n, nil
	}
	b, err := n.branch(r)
	if err != nil {
		return n, nil
	}
	return b.Simplify(r)
}

func (n *Conditional) Clone() Node {
	return NewConditional(n.cond.Clone(), n.then.Clone(), n.els.Clone(), n.pos)
}
