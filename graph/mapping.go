package graph

import (
	"errors"
	"maps"
	"slices"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Mapping is a collection of named entries. Each entry overlays the
// previous definition of the same key, locally or in the mapping's
// predecessor.
type Mapping struct {
	base
	keys   []string
	values map[string]Node
}

func NewMapping(pos *token.Pos) *Mapping {
	return &Mapping{base: base{pos: pos}, values: map[string]Node{}}
}

// Set defines key as v. A previous local definition becomes the
// predecessor of v; without one, the predecessor is the same key in the
// mapping's own predecessor, looked up lazily.
func (n *Mapping) Set(key string, v Node) {
	prev, ok := n.values[key]
	if !ok {
		prev = newLazyPredecessor(n, key)
		n.keys = append(n.keys, key)
	}
	v.SetParent(n)
	n.values[key] = v
	attachPredecessor(v, prev)
}

// Local returns the latest local definition of key.
func (n *Mapping) Local(key string) (Node, bool) {
	v, ok := n.values[key]
	return v, ok
}

// LocalKeys returns the locally defined keys in definition order.
func (n *Mapping) LocalKeys() []string { return n.keys }

func (n *Mapping) Get(r *Resolver, key string) (Node, error) {
	if v, ok := n.values[key]; ok {
		return v, nil
	}
	if n.pred == nil {
		return nil, newError(ErrNoSuchKey, nil, "%q", key)
	}
	p, err := r.Expand(n.pred)
	if err != nil {
		if errors.Is(err, ErrNoPredecessor) {
			return nil, newError(ErrNoSuchKey, nil, "%q", key)
		}
		return nil, err
	}
	return r.Get(p, key)
}

func (n *Mapping) Keys(r *Resolver) ([]string, error) {
	set := map[string]struct{}{}
	p, err := n.predecessor(r)
	if err != nil {
		return nil, err
	}
	if p != nil {
		keys, err := p.Keys(r)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			set[k] = struct{}{}
		}
	}
	for _, k := range n.keys {
		set[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set)), nil
}

// predecessor expands the predecessor, which must be mapping-like. It
// returns nil when there is none.
func (n *Mapping) predecessor(r *Resolver) (*Mapping, error) {
	if n.pred == nil {
		return nil, nil
	}
	e, err := r.Expand(n.pred)
	if err != nil {
		if errors.Is(err, ErrNoPredecessor) {
			return nil, nil
		}
		return nil, err
	}
	m, ok := e.(*Mapping)
	if !ok {
		return nil, newError(ErrMismatch, n.pos, "mapping cannot replace %s defined at %s", kindOf(e), e.Pos())
	}
	return m, nil
}

func (n *Mapping) Resolve(r *Resolver) (*ir.Node, error) {
	res := map[string]*ir.Node{}
	p, err := n.predecessor(r)
	if err != nil {
		return nil, err
	}
	if p != nil {
		pv, err := r.Resolve(n.pred)
		if err != nil {
			return nil, err
		}
		maps.Copy(res, ir.ToMap(pv))
	}
	for _, k := range n.keys {
		v, err := r.Resolve(n.values[k])
		if err != nil {
			return nil, err
		}
		res[k] = v
	}
	return ir.FromMap(res), nil
}

func (n *Mapping) Expand(r *Resolver) (Node, error) { return n, nil }

func (n *Mapping) Dynamic() bool {
	for _, v := range n.values {
		if v.Dynamic() {
			return true
		}
	}
	return false
}

func (n *Mapping) Simplify(r *Resolver) (Node, error) { return n, nil }

// Clone copies the mapping including local redefinitions, which are
// relinked in the copy.
func (n *Mapping) Clone() Node {
	res := NewMapping(n.pos)
	for _, k := range n.keys {
		var chain []Node
		for v := n.values[k]; v != nil && v.Parent() == Node(n); v = v.Predecessor() {
			chain = append(chain, v)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			res.Set(k, chain[i].Clone())
		}
	}
	return res
}
