package graph

import (
	"strings"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Template is a string interpolating expressions. A template consisting of
// a single expression resolves to the raw value of that expression.
type Template struct {
	base
	parts []Node
}

func NewTemplate(pos *token.Pos, parts ...Node) *Template {
	t := &Template{base: base{pos: pos}, parts: parts}
	for _, p := range parts {
		p.SetParent(t)
	}
	return t
}

func (n *Template) Parts() []Node { return n.parts }

func (n *Template) Resolve(r *Resolver) (*ir.Node, error) {
	if err := checkMask(r, n); err != nil {
		return nil, err
	}
	if len(n.parts) == 1 {
		return r.Resolve(n.parts[0])
	}
	buf := &strings.Builder{}
	for _, p := range n.parts {
		s, err := AsString(r, p, p.Pos())
		if err != nil {
			return nil, err
		}
		buf.WriteString(s)
	}
	return ir.FromString(buf.String()), nil
}

func (n *Template) Expand(r *Resolver) (Node, error) {
	if len(n.parts) == 1 {
		return r.Expand(n.parts[0])
	}
	return n, nil
}

func (n *Template) Dynamic() bool {
	for _, p := range n.parts {
		if p.Dynamic() {
			return true
		}
	}
	return false
}

func (n *Template) Simplify(r *Resolver) (Node, error) {
	if n.Dynamic() {
		return n, nil
	}
	return fold(r, n), nil
}

func (n *Template) Clone() Node {
	parts := make([]Node, len(n.parts))
	for i, p := range n.parts {
		parts[i] = p.Clone()
	}
	return NewTemplate(n.pos, parts...)
}

// fold replaces a constant node by its value. Failures leave the node in
// place so that they surface when it is resolved.
func fold(r *Resolver, n Node) Node {
	v, err := r.Resolve(n)
	if err != nil {
		return n
	}
	return NewLiteral(v, n.Pos())
}
