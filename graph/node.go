package graph

import (
	"errors"
	"iter"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Node is an element of a document graph.
//
// Every node has at most one parent, which owns it, and at most one
// predecessor, the value it overlays. Lexical lookups (GetContext) walk
// parents, structural lookups (Get) walk predecessors.
//
// Callers should go through the Resolver (r.Resolve, r.Expand, r.Get)
// rather than calling Resolve and Expand on a node directly, so that
// memoization and cycle detection apply.
type Node interface {
	Parent() Node
	SetParent(Node)
	Predecessor() Node
	SetPredecessor(Node)
	Pos() *token.Pos

	// Resolve forces the node to a value.
	Resolve(r *Resolver) (*ir.Node, error)
	// Expand returns a node one step closer to a concrete value.
	Expand(r *Resolver) (Node, error)
	// Dynamic reports whether the value depends on context.
	Dynamic() bool
	// Simplify returns an equivalent node with constants folded.
	Simplify(r *Resolver) (Node, error)
	// GetContext looks up a variable in lexical scope.
	GetContext(r *Resolver, key string) (Node, error)
	// Clone deep copies the subtree. The copy has no parent and
	// no predecessor.
	Clone() Node
}

// Getter is implemented by nodes supporting structural lookup.
type Getter interface {
	Get(r *Resolver, key string) (Node, error)
}

// Keyer is implemented by mapping-like nodes.
type Keyer interface {
	Keys(r *Resolver) ([]string, error)
}

// Streamer is implemented by sequence-like nodes. Each call to Stream
// starts a fresh iteration.
type Streamer interface {
	Stream(r *Resolver) iter.Seq2[Node, error]
}

// Callable is implemented by nodes which can contain macro definitions.
type Callable interface {
	GetCallable(r *Resolver, name string) (*Define, error)
}

type base struct {
	parent Node
	pred   Node
	pos    *token.Pos
}

func (b *base) Parent() Node { return b.parent }
func (b *base) SetParent(p Node) { b.parent = p }
func (b *base) Predecessor() Node { return b.pred }
func (b *base) SetPredecessor(p Node) { b.pred = p }
func (b *base) Pos() *token.Pos { return b.pos }
func (b *base) cloneBase() base { return base{pos: b.pos} }

func (b *base) GetContext(r *Resolver, key string) (Node, error) {
	if b.parent == nil {
		return nil, newError(ErrNoSuchKey, nil, "%q is not defined", key)
	}
	return b.parent.GetContext(r, key)
}

// attachPredecessor sets pred at the end of v's own predecessor chain, so
// that an existing chain is extended rather than replaced.
func attachPredecessor(v, pred Node) {
	tail := v
	for {
		p := tail.Predecessor()
		if p == nil {
			break
		}
		if _, ok := p.(*lazyPredecessor); ok {
			break
		}
		tail = p
	}
	tail.SetPredecessor(pred)
}

// predecessorOf expands the predecessor of n, failing with ErrNoPredecessor
// when there is none.
func predecessorOf(r *Resolver, n Node) (Node, error) {
	p := n.Predecessor()
	if p == nil {
		return nil, newError(ErrNoPredecessor, n.Pos(), "nothing precedes this definition")
	}
	return r.Expand(p)
}

// standin stands for whatever precedes node. It is the bottom of stanza
// chains and the predecessor of directive bodies.
type standin struct {
	base
	node Node
}

func newStandin(node Node) *standin {
	return &standin{base: base{pos: node.Pos()}, node: node}
}

func (n *standin) Resolve(r *Resolver) (*ir.Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Resolve(e)
}

func (n *standin) Expand(r *Resolver) (Node, error) {
	return predecessorOf(r, n.node)
}

func (n *standin) Dynamic() bool { return true }
func (n *standin) Simplify(r *Resolver) (Node, error) { return n, nil }
func (n *standin) Clone() Node { return newStandin(n.node) }

// lazyPredecessor is the predecessor of a mapping entry with no earlier
// local definition: the same key looked up in the mapping's own
// predecessor.
type lazyPredecessor struct {
	base
	owner Node
	key   string
}

func newLazyPredecessor(owner Node, key string) *lazyPredecessor {
	return &lazyPredecessor{base: base{pos: owner.Pos()}, owner: owner, key: key}
}

func (n *lazyPredecessor) Resolve(r *Resolver) (*ir.Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Resolve(e)
}

func (n *lazyPredecessor) Expand(r *Resolver) (Node, error) {
	p, err := predecessorOf(r, n.owner)
	if err != nil {
		return nil, err
	}
	v, err := r.Get(p, n.key)
	if err != nil {
		if errors.Is(err, ErrNoSuchKey) {
			return nil, wrapError(ErrNoPredecessor, n.pos, err, "%q is not defined earlier", n.key)
		}
		return nil, err
	}
	return r.Expand(v)
}

func (n *lazyPredecessor) Dynamic() bool { return true }
func (n *lazyPredecessor) Simplify(r *Resolver) (Node, error) { return n, nil }
func (n *lazyPredecessor) Clone() Node { return newLazyPredecessor(n.owner, n.key) }
