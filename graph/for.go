package graph

import (
	"iter"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// For produces one copy of its body per element of a sequence, with the
// loop variable bound to the element. Bodies which are themselves
// sequences are spliced into the result.
type For struct {
	base
	name   string
	in     Node
	filter Node
	body   Node
}

func NewFor(name string, in, filter, body Node, pos *token.Pos) *For {
	n := &For{base: base{pos: pos}, name: name, in: in, filter: filter, body: body}
	in.SetParent(n)
	if filter != nil {
		filter.SetParent(n)
	}
	body.SetParent(n)
	return n
}

func (n *For) Name() string { return n.name }

// Frames returns the bound copies of the body, one per element which
// passes the filter.
func (n *For) Frames(r *Resolver) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		seq, err := AsIterable(r, n.in, n.pos)
		if err != nil {
			yield(nil, err)
			return
		}
		for item, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			frame := NewContext(n.body.Clone(), map[string]Node{n.name: cloneInScope(item)}, n.pos)
			frame.SetParent(n)
			if n.filter != nil {
				f := n.filter.Clone()
				f.SetParent(frame)
				ok, err := r.Truth(f)
				if err != nil {
					yield(nil, err)
					return
				}
				if !ok {
					continue
				}
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}

func (n *For) Stream(r *Resolver) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for frame, err := range n.Frames(r) {
			if err != nil {
				yield(nil, err)
				return
			}
			e, err := r.Expand(frame)
			if err != nil {
				yield(nil, err)
				return
			}
			s, ok := e.(Streamer)
			if !ok {
				if !yield(frame, nil) {
					return
				}
				continue
			}
			for item, err := range s.Stream(r) {
				if !yield(item, err) || err != nil {
					return
				}
			}
		}
	}
}

func (n *For) Expand(r *Resolver) (Node, error) {
	items, err := collect(n.Stream(r))
	if err != nil {
		return nil, err
	}
	return newView(n.pos, items), nil
}

func (n *For) Get(r *Resolver, key string) (Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Get(e, key)
}

func (n *For) Resolve(r *Resolver) (*ir.Node, error) {
	if err := checkMask(r, n); err != nil {
		return nil, err
	}
	return resolveExpanded(r, n)
}

func (n *For) Dynamic() bool { return true }
func (n *For) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *For) Clone() Node {
	return NewFor(n.name, n.in.Clone(), cloneOpt(n.filter), n.body.Clone(), n.pos)
}

// Extend appends to the sequence it overlays.
type Extend struct {
	base
	value Node
}

func NewExtend(value Node, pos *token.Pos) *Extend {
	n := &Extend{base: base{pos: pos}, value: value}
	value.SetParent(n)
	return n
}

func (n *Extend) Stream(r *Resolver) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		p, err := predecessorOf(r, n)
		switch {
		case err == nil:
			if _, ok := p.(*Mapping); ok {
				yield(nil, newError(ErrType, n.pos, "cannot extend mapping defined at %s", p.Pos()))
				return
			}
			seq, err := AsIterable(r, p, n.pos)
			if err != nil {
				yield(nil, err)
				return
			}
			for item, err := range seq {
				if !yield(item, err) || err != nil {
					return
				}
			}
		case !isMiss(err):
			yield(nil, err)
			return
		}
		seq, err := AsIterable(r, n.value, n.pos)
		if err != nil {
			yield(nil, err)
			return
		}
		for item, err := range seq {
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

func (n *Extend) Expand(r *Resolver) (Node, error) {
	items, err := collect(n.Stream(r))
	if err != nil {
		return nil, err
	}
	return newView(n.pos, items), nil
}

func (n *Extend) Get(r *Resolver, key string) (Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Get(e, key)
}

func (n *Extend) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *Extend) Dynamic() bool { return true }
func (n *Extend) Simplify(r *Resolver) (Node, error) { return n, nil }
func (n *Extend) Clone() Node { return NewExtend(n.value.Clone(), n.pos) }
