package graph

import (
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Case is one arm of a Select.
type Case struct {
	Key  *ir.Node
	Body Node
}

// Select dispatches on the value of an expression to the case with an
// equal key.
type Select struct {
	base
	expr  Node
	cases []Case
}

func NewSelect(expr Node, cases []Case, pos *token.Pos) *Select {
	n := &Select{base: base{pos: pos}, expr: expr, cases: cases}
	expr.SetParent(n)
	for _, c := range cases {
		c.Body.SetParent(n)
		attachPredecessor(c.Body, newStandin(n))
	}
	return n
}

func (n *Select) Cases() []Case { return n.cases }

func (n *Select) probe(r *Resolver) (int, error) {
	v, err := r.Resolve(n.expr)
	if err != nil {
		return 0, err
	}
	for i, c := range n.cases {
		if ir.Equal(c.Key, v) {
			return i, nil
		}
	}
	return -1, nil
}

func (n *Select) decide(r *Resolver) (int, error) {
	if m, ok := r.mark(n); ok {
		if m.passthrough {
			return -1, nil
		}
		return m.outcome.(int), nil
	}
	return settle(r, n, func() (int, error) { return n.probe(r) }, func(a, b int) bool { return a == b })
}

// target returns the selected body. While the Select is undecided it
// returns nil, deferring to the predecessor.
func (n *Select) target(r *Resolver) (Node, error) {
	if m, ok := r.mark(n); ok && m.passthrough {
		return nil, nil
	}
	i, err := n.decide(r)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		v, err := r.Resolve(n.expr)
		if err != nil {
			return nil, err
		}
		return nil, newError(ErrNoSuchKey, n.pos, "no case matches %s", describe(v))
	}
	return n.cases[i].Body, nil
}

func (n *Select) Get(r *Resolver, key string) (Node, error) {
	t, err := n.target(r)
	if err != nil {
		return nil, err
	}
	if t == nil {
		p, err := predecessorOf(r, n)
		if err != nil {
			return nil, err
		}
		return r.Get(p, key)
	}
	return r.Get(t, key)
}

func (n *Select) Expand(r *Resolver) (Node, error) {
	t, err := n.target(r)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return predecessorOf(r, n)
	}
	return r.Expand(t)
}

func (n *Select) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }

func (n *Select) GetCallable(r *Resolver, name string) (*Define, error) {
	t, err := n.target(r)
	if err != nil {
		return nil, err
	}
	if c, ok := t.(Callable); ok {
		return c.GetCallable(r, name)
	}
	return nil, newError(ErrNoMatchingMacro, nil, "no macro named %q", name)
}

func (n *Select) Dynamic() bool { return true }

func (n *Select) Simplify(r *Resolver) (Node, error) {
	if n.expr.Dynamic() {
		return n, nil
	}
	t, err := n.target(r)
	if err != nil || t == nil {
		return n, nil
	}
	return t.Simplify(r)
}

func (n *Select) Clone() Node {
	cases := make([]Case, len(n.cases))
	for i, c := range n.cases {
		cases[i] = Case{Key: c.Key, Body: c.Body.Clone()}
	}
	return NewSelect(n.expr.Clone(), cases, n.pos)
}
