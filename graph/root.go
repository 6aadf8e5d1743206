package graph

import (
	"errors"

	"github.com/signadot/yay/ir"
)

// Root is the top of a document graph. Variables not bound anywhere else
// are looked up as top level keys of the document.
type Root struct {
	base
	node Node
}

func NewRoot(node Node) *Root {
	n := &Root{base: base{pos: node.Pos()}, node: node}
	node.SetParent(n)
	return n
}

func (n *Root) Node() Node { return n.node }

func (n *Root) GetContext(r *Resolver, key string) (Node, error) {
	v, err := r.Get(n.node, key)
	if err != nil {
		if isMiss(err) {
			return nil, newError(ErrNoSuchKey, nil, "%q is not defined", key)
		}
		return nil, err
	}
	return v, nil
}

func (n *Root) GetCallable(r *Resolver, name string) (*Define, error) {
	if c, ok := n.node.(Callable); ok {
		return c.GetCallable(r, name)
	}
	return nil, newError(ErrNoMatchingMacro, nil, "no macro named %q", name)
}

func (n *Root) Get(r *Resolver, key string) (Node, error) {
	v, err := r.Get(n.node, key)
	if errors.Is(err, ErrNoPredecessor) {
		return nil, newError(ErrNoSuchKey, nil, "%q", key)
	}
	return v, err
}

// Expand and Resolve treat an empty document as an empty mapping.

func (n *Root) Expand(r *Resolver) (Node, error) {
	e, err := r.Expand(n.node)
	if errors.Is(err, ErrNoPredecessor) {
		return NewMapping(n.pos), nil
	}
	return e, err
}

func (n *Root) Resolve(r *Resolver) (*ir.Node, error) {
	v, err := r.Resolve(n.node)
	if errors.Is(err, ErrNoPredecessor) {
		return ir.FromMap(nil), nil
	}
	return v, err
}

func (n *Root) Dynamic() bool { return n.node.Dynamic() }
func (n *Root) Simplify(r *Resolver) (Node, error) { return n.node.Simplify(r) }
func (n *Root) Clone() Node { return NewRoot(n.node.Clone()) }

// Document is a parsed document ready for resolution. Each of its
// methods runs a separate resolution pass.
type Document struct {
	root     *Root
	loader   Loader
	maxDepth int
}

type Option func(*Document)

// WithLoader sets the loader used by includes.
func WithLoader(l Loader) Option {
	return func(d *Document) { d.loader = l }
}

// WithMaxDepth bounds the nesting of resolution steps.
func WithMaxDepth(n int) Option {
	return func(d *Document) { d.maxDepth = n }
}

func NewDocument(node Node, opts ...Option) *Document {
	d := &Document{root: NewRoot(node), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) Root() *Root { return d.root }

// Resolver starts a resolution pass over the document.
func (d *Document) Resolver() *Resolver {
	r := NewResolver(d.loader)
	r.maxDepth = d.maxDepth
	return r
}

// Resolve resolves the whole document.
func (d *Document) Resolve() (*ir.Node, error) {
	return d.Resolver().Resolve(d.root)
}

// Lookup returns the expanded node at path.
func (d *Document) Lookup(path ...string) (Node, error) {
	return d.lookup(d.Resolver(), path)
}

func (d *Document) lookup(r *Resolver, path []string) (Node, error) {
	var n Node = d.root
	for _, k := range path {
		v, err := r.Get(n, k)
		if err != nil {
			return nil, blame(err, n.Pos())
		}
		n, err = r.Expand(v)
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Get resolves the value at path.
func (d *Document) Get(path ...string) (*ir.Node, error) {
	r := d.Resolver()
	n, err := d.lookup(r, path)
	if err != nil {
		return nil, err
	}
	return r.Resolve(n)
}

// Context looks up a variable as an expression at the top level would.
func (d *Document) Context(key string) (Node, error) {
	return d.root.GetContext(d.Resolver(), key)
}

// Macro returns the macro called name.
func (d *Document) Macro(name string) (*Define, error) {
	return d.root.GetCallable(d.Resolver(), name)
}
