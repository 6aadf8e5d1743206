package graph

import (
	"errors"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Stanzas chains a block of definitions and directives. Each stanza
// overlays the one before it; the first overlays whatever precedes the
// block itself.
type Stanzas struct {
	base
	source string
	top    Node
	bottom *standin
}

func NewStanzas(pos *token.Pos, stanzas ...Node) *Stanzas {
	n := &Stanzas{base: base{pos: pos}}
	n.bottom = newStandin(n)
	n.bottom.SetParent(n)
	n.top = n.bottom
	for _, s := range stanzas {
		n.Append(s)
	}
	return n
}

// Source names the document a top level block was loaded from.
func (n *Stanzas) Source() string { return n.source }
func (n *Stanzas) SetSource(src string) { n.source = src }

func (n *Stanzas) Append(s Node) {
	attachPredecessor(s, n.top)
	s.SetParent(n)
	n.top = s
}

// Stanzas returns the stanzas, first to last.
func (n *Stanzas) Stanzas() []Node {
	var res []Node
	for s := n.top; s != nil && s != Node(n.bottom); s = s.Predecessor() {
		if s.Parent() != Node(n) {
			break
		}
		res = append(res, s)
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}

func (n *Stanzas) GetCallable(r *Resolver, name string) (*Define, error) {
	for _, s := range n.chain() {
		c, ok := s.(Callable)
		if !ok {
			continue
		}
		d, err := c.GetCallable(r, name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrNoMatchingMacro) {
			return nil, err
		}
	}
	return nil, newError(ErrNoMatchingMacro, nil, "no macro named %q", name)
}

// chain lists the stanzas and their local redefinitions, last first.
func (n *Stanzas) chain() []Node {
	var res []Node
	for s := n.top; s != nil && s != Node(n.bottom); s = s.Predecessor() {
		if _, ok := s.(*lazyPredecessor); ok {
			break
		}
		res = append(res, s)
	}
	return res
}

func (n *Stanzas) Get(r *Resolver, key string) (Node, error) { return r.Get(n.top, key) }
func (n *Stanzas) Expand(r *Resolver) (Node, error) { return r.Expand(n.top) }
func (n *Stanzas) Resolve(r *Resolver) (*ir.Node, error) { return r.Resolve(n.top) }
func (n *Stanzas) Dynamic() bool { return true }
func (n *Stanzas) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Stanzas) Clone() Node {
	res := NewStanzas(n.pos)
	res.source = n.source
	for _, s := range n.Stanzas() {
		res.Append(s.Clone())
	}
	return res
}
