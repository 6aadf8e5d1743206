package graph

import (
	"maps"
	"slices"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Context is a lexical frame binding variable names for the subtree it
// wraps. Lookups of unbound names continue with the frame's parent.
type Context struct {
	base
	value    Node
	bindings map[string]Node
}

// NewContext wraps value. The bound nodes keep their own parents so that
// they are evaluated in the scope they were written in.
func NewContext(value Node, bindings map[string]Node, pos *token.Pos) *Context {
	c := &Context{base: base{pos: pos}, value: value, bindings: bindings}
	value.SetParent(c)
	return c
}

func (n *Context) Value() Node { return n.value }

func (n *Context) Names() []string {
	return slices.Sorted(maps.Keys(n.bindings))
}

func (n *Context) GetContext(r *Resolver, key string) (Node, error) {
	if v, ok := n.bindings[key]; ok {
		return v, nil
	}
	return n.base.GetContext(r, key)
}

func (n *Context) Resolve(r *Resolver) (*ir.Node, error) { return r.Resolve(n.value) }
func (n *Context) Expand(r *Resolver) (Node, error) { return r.Expand(n.value) }
func (n *Context) Get(r *Resolver, key string) (Node, error) { return r.Get(n.value, key) }

func (n *Context) Dynamic() bool { return true }
func (n *Context) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Context) Clone() Node {
	bindings := make(map[string]Node, len(n.bindings))
	for k, v := range n.bindings {
		bindings[k] = cloneInScope(v)
	}
	return NewContext(n.value.Clone(), bindings, n.pos)
}

// cloneInScope clones n keeping it in the lexical scope of n.
func cloneInScope(n Node) Node {
	c := n.Clone()
	c.SetParent(n.Parent())
	return c
}
