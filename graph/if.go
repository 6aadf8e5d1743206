package graph

import (
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Guard is one if or elif clause.
type Guard struct {
	Cond Node
	Body Node
}

// If selects the body of the first guard whose condition holds, or the
// else body. With neither, it is transparent: lookups go to whatever it
// overlays.
type If struct {
	base
	guards []Guard
	els    Node
}

func NewIf(guards []Guard, els Node, pos *token.Pos) *If {
	n := &If{base: base{pos: pos}, guards: guards, els: els}
	for _, g := range guards {
		g.Cond.SetParent(n)
		g.Body.SetParent(n)
		attachPredecessor(g.Body, newStandin(n))
	}
	if els != nil {
		els.SetParent(n)
		attachPredecessor(els, newStandin(n))
	}
	return n
}

func (n *If) Guards() []Guard { return n.guards }
func (n *If) Else() Node { return n.els }

// probe returns the index of the first guard which holds, len(guards)
// for else and -1 when nothing applies.
func (n *If) probe(r *Resolver) (int, error) {
	for i, g := range n.guards {
		t, err := r.Truth(g.Cond)
		if err != nil {
			return 0, err
		}
		if t {
			return i, nil
		}
	}
	if n.els != nil {
		return len(n.guards), nil
	}
	return -1, nil
}

// target returns the node answering for the If, or nil if it defers to
// its predecessor.
func (n *If) target(r *Resolver) (Node, error) {
	i, err := n.decide(r)
	if err != nil {
		return nil, err
	}
	switch {
	case i < 0:
		return nil, nil
	case i < len(n.guards):
		return n.guards[i].Body, nil
	}
	return n.els, nil
}

func (n *If) decide(r *Resolver) (int, error) {
	if m, ok := r.mark(n); ok {
		if m.passthrough {
			return -1, nil
		}
		return m.outcome.(int), nil
	}
	return settle(r, n, func() (int, error) { return n.probe(r) }, func(a, b int) bool { return a == b })
}

func (n *If) Get(r *Resolver, key string) (Node, error) {
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

func (n *If) Expand(r *Resolver) (Node, error) {
	t, err := n.target(r)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return predecessorOf(r, n)
	}
	return r.Expand(t)
}

func (n *If) Resolve(r *Resolver) (*ir.Node, error) {
	t, err := n.target(r)
	if err != nil {
		return nil, err
	}
	if t == nil {
		p, err := predecessorOf(r, n)
		if err != nil {
			return nil, err
		}
		return r.Resolve(p)
	}
	return r.Resolve(t)
}

func (n *If) GetCallable(r *Resolver, name string) (*Define, error) {
	t, err := n.target(r)
	if err != nil {
		return nil, err
	}
	if c, ok := t.(Callable); ok {
		return c.GetCallable(r, name)
	}
	return nil, newError(ErrNoMatchingMacro, nil, "no macro named %q", name)
}

func (n *If) Dynamic() bool {
	for _, g := range n.guards {
		if g.Cond.Dynamic() || g.Body.Dynamic() {
			return true
		}
	}
	return n.els != nil && n.els.Dynamic()
}

// Simplify replaces an If whose conditions are all constant by the body
// it selects.
func (n *If) Simplify(r *Resolver) (Node, error) {
	for _, g := range n.guards {
		if g.Cond.Dynamic() {
			return n, nil
		}
	}
	t, err := n.target(r)
	if err != nil || t == nil {
		return n, nil
	}
	return t.Simplify(r)
}

func (n *If) Clone() Node {
	guards := make([]Guard, len(n.guards))
	for i, g := range n.guards {
		guards[i] = Guard{Cond: g.Cond.Clone(), Body: g.Body.Clone()}
	}
	return NewIf(guards, cloneOpt(n.els), n.pos)
}
