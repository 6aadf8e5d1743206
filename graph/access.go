package graph

import (
	"strconv"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Attribute is a structural lookup with a name known at parse time, as in
// a.b.
type Attribute struct {
	base
	primary Node
	name    string
}

func NewAttribute(primary Node, name string, pos *token.Pos) *Attribute {
	n := &Attribute{base: base{pos: pos}, primary: primary, name: name}
	primary.SetParent(n)
	return n
}

func (n *Attribute) Expand(r *Resolver) (Node, error) {
	return lookup(r, n.primary, n.name, n.pos)
}

func (n *Attribute) Get(r *Resolver, key string) (Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Get(e, key)
}

func (n *Attribute) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *Attribute) Dynamic() bool { return n.primary.Dynamic() }
func (n *Attribute) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Attribute) Clone() Node {
	return NewAttribute(n.primary.Clone(), n.name, n.pos)
}

func lookup(r *Resolver, primary Node, key string, pos *token.Pos) (Node, error) {
	p, err := r.Expand(primary)
	if err != nil {
		return nil, err
	}
	v, err := r.Get(p, key)
	if err != nil {
		return nil, blame(err, pos)
	}
	v, err = r.Expand(v)
	if err != nil {
		return nil, blame(err, pos)
	}
	return v, nil
}

// Subscript is a structural lookup with a computed key, as in a[k]. Keys
// are stringified, negative integers index sequences from the end.
type Subscript struct {
	base
	primary, key Node
}

func NewSubscript(primary, key Node, pos *token.Pos) *Subscript {
	n := &Subscript{base: base{pos: pos}, primary: primary, key: key}
	primary.SetParent(n)
	key.SetParent(n)
	return n
}

func (n *Subscript) Expand(r *Resolver) (Node, error) {
	k, err := r.Resolve(n.key)
	if err != nil {
		return nil, err
	}
	key, ok := stringOf(k)
	if !ok {
		return nil, typeError(n.key, n.pos, "key", k)
	}
	if k.Int64 != nil && *k.Int64 < 0 {
		p, err := r.Expand(n.primary)
		if err != nil {
			return nil, err
		}
		if s, ok := p.(*Sequence); ok {
			key = strconv.FormatInt(int64(s.Len())+*k.Int64, 10)
		}
	}
	return lookup(r, n.primary, key, n.pos)
}

func (n *Subscript) Get(r *Resolver, key string) (Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Get(e, key)
}

func (n *Subscript) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *Subscript) Dynamic() bool { return n.primary.Dynamic() || n.key.Dynamic() }
func (n *Subscript) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Subscript) Clone() Node {
	return NewSubscript(n.primary.Clone(), n.key.Clone(), n.pos)
}

// Slice selects a range of a sequence or string, as in a[1:3]. Missing
// bounds default to the ends, negative bounds count from the end.
type Slice struct {
	base
	primary, from, to, step Node
}

func NewSlice(primary, from, to, step Node, pos *token.Pos) *Slice {
	n := &Slice{base: base{pos: pos}, primary: primary, from: from, to: to, step: step}
	for _, c := range []Node{primary, from, to, step} {
		if c != nil {
			c.SetParent(n)
		}
	}
	return n
}

func (n *Slice) bound(r *Resolver, b Node, def int64, length int) (int, error) {
	i := def
	if b != nil {
		v, err := AsInt(r, b, n.pos)
		if err != nil {
			return 0, err
		}
		i = v
		if i < 0 {
			i += int64(length)
		}
	}
	return int(max(0, min(i, int64(length)))), nil
}

func (n *Slice) indices(r *Resolver, length int) ([]int, error) {
	step := int64(1)
	if n.step != nil {
		s, err := AsInt(r, n.step, n.pos)
		if err != nil {
			return nil, err
		}
		if s <= 0 {
			return nil, newError(ErrType, n.pos, "slice step must be positive, got %d", s)
		}
		step = s
	}
	from, err := n.bound(r, n.from, 0, length)
	if err != nil {
		return nil, err
	}
	to, err := n.bound(r, n.to, int64(length), length)
	if err != nil {
		return nil, err
	}
	var res []int
	for i := from; i < to; {
		res = append(res, i)
		if step > int64(to-i) {
			break
		}
		i += int(step)
	}
	return res, nil
}

func (n *Slice) Expand(r *Resolver) (Node, error) {
	p, err := r.Expand(n.primary)
	if err != nil {
		return nil, err
	}
	if _, ok := p.(Streamer); !ok {
		v, err := r.Resolve(p)
		if err != nil {
			return nil, err
		}
		switch v.Type {
		case ir.StringType:
			rs := []rune(v.String)
			idx, err := n.indices(r, len(rs))
			if err != nil {
				return nil, err
			}
			res := make([]rune, len(idx))
			for i, j := range idx {
				res[i] = rs[j]
			}
			return NewLiteral(ir.FromString(string(res)), n.pos), nil
		case ir.ArrayType:
			p = Lift(v, p.Pos())
		default:
			return nil, typeError(n.primary, n.pos, "sequence or string", v)
		}
	}
	items, err := collect(p.(Streamer).Stream(r))
	if err != nil {
		return nil, err
	}
	idx, err := n.indices(r, len(items))
	if err != nil {
		return nil, err
	}
	res := make([]Node, len(idx))
	for i, j := range idx {
		res[i] = items[j]
	}
	return newView(n.pos, res), nil
}

func (n *Slice) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *Slice) Dynamic() bool { return true }
func (n *Slice) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Slice) Clone() Node {
	return NewSlice(n.primary.Clone(), cloneOpt(n.from), cloneOpt(n.to), cloneOpt(n.step), n.pos)
}

func cloneOpt(n Node) Node {
	if n == nil {
		return nil
	}
	return n.Clone()
}
