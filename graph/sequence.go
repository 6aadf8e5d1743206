package graph

import (
	"iter"
	"strconv"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Sequence is an ordered list of nodes.
type Sequence struct {
	base
	items []Node
}

func NewSequence(pos *token.Pos, items ...Node) *Sequence {
	s := &Sequence{base: base{pos: pos}}
	for _, item := range items {
		s.Append(item)
	}
	return s
}

// newView is a sequence over nodes owned elsewhere, such as the result of
// slicing.
func newView(pos *token.Pos, items []Node) *Sequence {
	return &Sequence{base: base{pos: pos}, items: items}
}

func (n *Sequence) Append(item Node) {
	item.SetParent(n)
	n.items = append(n.items, item)
}

func (n *Sequence) Items() []Node { return n.items }
func (n *Sequence) Len() int { return len(n.items) }

func (n *Sequence) Get(r *Resolver, key string) (Node, error) {
	i, err := strconv.Atoi(key)
	if err != nil {
		return nil, newError(ErrType, nil, "sequence index %q is not an integer", key)
	}
	if i < 0 || i >= len(n.items) {
		return nil, newError(ErrNoSuchKey, nil, "index %d out of range [0, %d)", i, len(n.items))
	}
	return n.items[i], nil
}

func (n *Sequence) Stream(r *Resolver) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for _, item := range n.items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (n *Sequence) Resolve(r *Resolver) (*ir.Node, error) {
	if err := checkMask(r, n); err != nil {
		return nil, err
	}
	res := make([]*ir.Node, len(n.items))
	for i, item := range n.items {
		v, err := r.Resolve(item)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return ir.FromSlice(res), nil
}

func (n *Sequence) Expand(r *Resolver) (Node, error) { return n, nil }

func (n *Sequence) Dynamic() bool {
	for _, item := range n.items {
		if item.Dynamic() {
			return true
		}
	}
	return false
}

func (n *Sequence) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Sequence) Clone() Node {
	res := &Sequence{base: n.cloneBase()}
	for _, item := range n.items {
		res.Append(item.Clone())
	}
	return res
}
