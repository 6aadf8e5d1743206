package graph

import (
	"iter"

	"github.com/signadot/yay/debug"
	"github.com/signadot/yay/ir"
)

// DefaultMaxDepth bounds the nesting of resolution steps in one pass.
const DefaultMaxDepth = 4096

// Loader parses the document at path. Include uses it to fetch the
// documents it names.
type Loader interface {
	Load(path string) (Node, error)
}

// Resolver holds the state of one resolution pass: memoized values,
// in-flight markers used to detect cycles, the guards currently being
// decided and the documents included so far.
//
// A Resolver must not be shared between goroutines.
type Resolver struct {
	loader   Loader
	maxDepth int
	depth    int

	memo      map[Node]*ir.Node
	expanded  map[Node]Node
	decisions map[Node]any

	// marks holds the directives whose guard is being decided: either
	// passing lookups through to their predecessor or committed to a
	// tentative outcome.
	marks    map[Node]mark
	inflight map[flight]struct{}

	includes    map[includeKey]Node
	includeGets map[includeGet]struct{}
}

type mark struct {
	passthrough bool
	outcome     any
}

type op byte

const (
	opResolve op = iota
	opExpand
)

type flight struct {
	node  Node
	op    op
	level int
}

func NewResolver(loader Loader) *Resolver {
	return &Resolver{
		loader:      loader,
		maxDepth:    DefaultMaxDepth,
		memo:        map[Node]*ir.Node{},
		expanded:    map[Node]Node{},
		decisions:   map[Node]any{},
		marks:       map[Node]mark{},
		inflight:    map[flight]struct{}{},
		includes:    map[includeKey]Node{},
		includeGets: map[includeGet]struct{}{},
	}
}

// settled reports whether no guard is being decided, in which case
// results are final and may be memoized.
func (r *Resolver) settled() bool {
	return len(r.marks) == 0
}

func (r *Resolver) enter(n Node, o op) (func(), error) {
	f := flight{node: n, op: o, level: len(r.marks)}
	if _, ok := r.inflight[f]; ok {
		return nil, newError(ErrParadox, n.Pos(), "value depends on itself")
	}
	if r.depth >= r.maxDepth {
		return nil, newError(ErrParadox, n.Pos(), "resolution nested deeper than %d", r.maxDepth)
	}
	r.inflight[f] = struct{}{}
	r.depth++
	return func() {
		r.depth--
		delete(r.inflight, f)
	}, nil
}

// Resolve resolves n.
func (r *Resolver) Resolve(n Node) (*ir.Node, error) {
	memo := r.settled()
	if memo {
		if v, ok := r.memo[n]; ok {
			return v, nil
		}
	}
	leave, err := r.enter(n, opResolve)
	if err != nil {
		return nil, err
	}
	defer leave()
	v, err := n.Resolve(r)
	if err != nil {
		return nil, err
	}
	if debug.Resolve() {
		debug.Logf("resolve %s %T -> %s\n", n.Pos(), n, v.Type)
	}
	if memo {
		r.memo[n] = v
	}
	return v, nil
}

// Expand expands n.
func (r *Resolver) Expand(n Node) (Node, error) {
	memo := r.settled()
	if memo {
		if e, ok := r.expanded[n]; ok {
			return e, nil
		}
	}
	leave, err := r.enter(n, opExpand)
	if err != nil {
		return nil, err
	}
	defer leave()
	e, err := n.Expand(r)
	if err != nil {
		return nil, err
	}
	if memo {
		r.expanded[n] = e
	}
	return e, nil
}

// Get performs a structural lookup of key in n.
func (r *Resolver) Get(n Node, key string) (Node, error) {
	if g, ok := n.(Getter); ok {
		return g.Get(r, key)
	}
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	if g, ok := e.(Getter); ok {
		return g.Get(r, key)
	}
	return nil, newError(ErrType, n.Pos(), "cannot look up %q in %s", key, kindOf(e))
}

// Keys lists the keys of a mapping-like node.
func (r *Resolver) Keys(n Node) ([]string, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	k, ok := e.(Keyer)
	if !ok {
		return nil, newError(ErrType, n.Pos(), "%s has no keys", kindOf(e))
	}
	return k.Keys(r)
}

// Truth resolves n and reports whether the value is truthy.
func (r *Resolver) Truth(n Node) (bool, error) {
	v, err := r.Resolve(n)
	if err != nil {
		return false, err
	}
	return ir.Truth(v), nil
}

func (r *Resolver) mark(n Node) (mark, bool) {
	m, ok := r.marks[n]
	return m, ok
}

func (r *Resolver) push(n Node, m mark) func() {
	r.marks[n] = m
	return func() {
		delete(r.marks, n)
	}
}

// settle decides the outcome of directive n, such as the branch an If
// takes. probe is first evaluated with n passing lookups through to its
// predecessor, then again with n committed to the first outcome. Differing
// outcomes mean the decision changes what it was based on, which is a
// paradox.
func settle[T any](r *Resolver, n Node, probe func() (T, error), same func(a, b T) bool) (T, error) {
	var zero T
	outer := r.settled()
	if outer {
		if v, ok := r.decisions[n]; ok {
			return v.(T), nil
		}
	}
	pop := r.push(n, mark{passthrough: true})
	first, err := probe()
	pop()
	if err != nil {
		return zero, err
	}
	pop = r.push(n, mark{outcome: first})
	again, err := probe()
	pop()
	if err != nil {
		return zero, err
	}
	if debug.Guard() {
		debug.Logf("guard %s %T: %v then %v\n", n.Pos(), n, first, again)
	}
	if !same(first, again) {
		return zero, newError(ErrParadox, n.Pos(), "condition changes its own outcome (%v when undecided, %v when decided)", first, again)
	}
	if outer {
		r.decisions[n] = first
	}
	return first, nil
}

// Iterate returns an iteration over the elements of n: the items of a
// sequence, the keys of a mapping or the values of a resolved array.
func (r *Resolver) Iterate(n Node) (iter.Seq2[Node, error], error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	switch x := e.(type) {
	case Streamer:
		return x.Stream(r), nil
	case *Mapping:
		keys, err := x.Keys(r)
		if err != nil {
			return nil, err
		}
		return func(yield func(Node, error) bool) {
			for _, k := range keys {
				if !yield(NewLiteral(ir.FromString(k), x.pos), nil) {
					return
				}
			}
		}, nil
	}
	v, err := r.Resolve(e)
	if err != nil {
		return nil, err
	}
	switch v.Type {
	case ir.ArrayType, ir.ObjectType:
		return r.Iterate(Lift(v, e.Pos()))
	case ir.StringType:
		return func(yield func(Node, error) bool) {
			for _, c := range v.String {
				if !yield(NewLiteral(ir.FromString(string(c)), e.Pos()), nil) {
					return
				}
			}
		}, nil
	}
	return nil, newError(ErrType, n.Pos(), "expected iterable, got %s", v.Type)
}

// collect drains an iteration.
func collect(seq iter.Seq2[Node, error]) ([]Node, error) {
	var res []Node
	for n, err := range seq {
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}
