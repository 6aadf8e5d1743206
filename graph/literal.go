package graph

import (
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

const secretMask = "*****"

// Literal is an already resolved primitive value.
type Literal struct {
	base
	value  *ir.Node
	secret bool
}

func NewLiteral(v *ir.Node, pos *token.Pos) *Literal {
	return &Literal{base: base{pos: pos}, value: v}
}

// NewSecret returns a string literal which AsSafeString masks.
func NewSecret(s string, pos *token.Pos) *Literal {
	return &Literal{base: base{pos: pos}, value: ir.FromString(s), secret: true}
}

func (n *Literal) Value() *ir.Node { return n.value }
func (n *Literal) Secret() bool { return n.secret }

func (n *Literal) Resolve(r *Resolver) (*ir.Node, error) {
	if err := checkMask(r, n); err != nil {
		return nil, err
	}
	return n.value, nil
}

func (n *Literal) Expand(r *Resolver) (Node, error) { return n, nil }
func (n *Literal) Dynamic() bool { return false }
func (n *Literal) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Literal) Clone() Node {
	return &Literal{base: n.cloneBase(), value: n.value, secret: n.secret}
}

// checkMask rejects a non-mapping value redefining a mapping, whether the
// mapping is a local definition or comes from an earlier stanza, include
// or layer. A predecessor which cannot be expanded is replaced, not
// checked: n overrides it either way.
func checkMask(r *Resolver, n Node) error {
	pred := n.Predecessor()
	if pred == nil {
		return nil
	}
	e, err := r.Expand(pred)
	if err != nil {
		return nil
	}
	p, ok := e.(*Mapping)
	if !ok {
		return nil
	}
	return newError(ErrMismatch, n.Pos(), "cannot replace mapping defined at %s with a %s", p.Pos(), kindOf(n))
}
