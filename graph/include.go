package graph

import (
	"errors"
	"slices"
	"strings"

	"github.com/signadot/yay/debug"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Include overlays the documents named by its expression, in order, on
// whatever precedes it. An expression resolving to null or an empty
// string or list includes nothing.
type Include struct {
	base
	expr Node
}

type includeKey struct {
	node  Node
	paths string
	index int
}

type includeGet struct {
	node  Node
	key   string
	level int
}

func NewInclude(expr Node, pos *token.Pos) *Include {
	n := &Include{base: base{pos: pos}, expr: expr}
	expr.SetParent(n)
	return n
}

func (n *Include) Expr() Node { return n.expr }

func (n *Include) probe(r *Resolver) ([]string, error) {
	v, err := r.Resolve(n.expr)
	if err != nil {
		return nil, err
	}
	var res []string
	add := func(p *ir.Node) error {
		s, ok := stringOf(p)
		if !ok {
			return typeError(n.expr, n.pos, "path", p)
		}
		if s != "" && !slices.Contains(res, s) {
			res = append(res, s)
		}
		return nil
	}
	switch v.Type {
	case ir.NullType:
	case ir.ArrayType:
		for _, p := range v.Values {
			if err := add(p); err != nil {
				return nil, err
			}
		}
	default:
		if err := add(v); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Paths returns the paths the Include loads, settling its expression.
func (n *Include) Paths(r *Resolver) ([]string, error) {
	if m, ok := r.mark(n); ok {
		if m.passthrough {
			return nil, nil
		}
		return m.outcome.([]string), nil
	}
	return settle(r, n, func() ([]string, error) { return n.probe(r) }, func(a, b []string) bool { return slices.Equal(a, b) })
}

// docs loads the included documents, each overlaying the previous one.
func (n *Include) docs(r *Resolver) ([]Node, error) {
	paths, err := n.Paths(r)
	if err != nil {
		return nil, err
	}
	joined := strings.Join(paths, "\x00")
	res := make([]Node, len(paths))
	for i, p := range paths {
		k := includeKey{node: n, paths: joined, index: i}
		doc, ok := r.includes[k]
		if !ok {
			doc, err = n.load(r, p)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				attachPredecessor(doc, newStandin(n))
			} else {
				attachPredecessor(doc, res[i-1])
			}
			r.includes[k] = doc
		}
		res[i] = doc
	}
	return res, nil
}

func (n *Include) load(r *Resolver, path string) (Node, error) {
	if r.loader == nil {
		return nil, newError(ErrInclude, n.pos, "cannot include %q: no loader", path)
	}
	if debug.Include() {
		debug.Logf("include %s from %s\n", path, n.pos)
	}
	doc, err := r.loader.Load(path)
	if err != nil {
		return nil, wrapError(ErrInclude, n.pos, err, "cannot include %q", path)
	}
	doc.SetParent(n)
	if s, ok := doc.(*Stanzas); ok && s.source != "" {
		for p := n.parent; p != nil; p = p.Parent() {
			if ps, ok := p.(*Stanzas); ok && ps.source == s.source {
				return nil, newError(ErrParadox, n.pos, "include cycle through %s", s.source)
			}
		}
	}
	return doc, nil
}

// top returns the last included document, or nil when nothing is
// included.
func (n *Include) top(r *Resolver) (Node, error) {
	docs, err := n.docs(r)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[len(docs)-1], nil
}

func (n *Include) Get(r *Resolver, key string) (Node, error) {
	g := includeGet{node: n, key: key, level: len(r.marks)}
	if _, ok := r.includeGets[g]; ok {
		return nil, newError(ErrNoSuchKey, nil, "%q", key)
	}
	r.includeGets[g] = struct{}{}
	defer delete(r.includeGets, g)
	t, err := n.top(r)
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

func (n *Include) Expand(r *Resolver) (Node, error) {
	t, err := n.top(r)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return predecessorOf(r, n)
	}
	return r.Expand(t)
}

func (n *Include) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }

func (n *Include) GetCallable(r *Resolver, name string) (*Define, error) {
	docs, err := n.docs(r)
	if err != nil {
		return nil, err
	}
	for _, doc := range slices.Backward(docs) {
		c, ok := doc.(Callable)
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

func (n *Include) Dynamic() bool { return true }
func (n *Include) Simplify(r *Resolver) (Node, error) { return n, nil }
func (n *Include) Clone() Node { return NewInclude(n.expr.Clone(), n.pos) }
