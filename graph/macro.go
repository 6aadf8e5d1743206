package graph

import (
	"errors"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Define declares a macro. It contributes nothing to the value of the
// block it appears in.
type Define struct {
	base
	name string
	body Node
}

func NewDefine(name string, body Node, pos *token.Pos) *Define {
	n := &Define{base: base{pos: pos}, name: name, body: body}
	body.SetParent(n)
	return n
}

func (n *Define) Name() string { return n.name }
func (n *Define) Body() Node { return n.body }

func (n *Define) GetCallable(r *Resolver, name string) (*Define, error) {
	if name == n.name {
		return n, nil
	}
	return nil, newError(ErrNoMatchingMacro, nil, "no macro named %q", name)
}

func (n *Define) Get(r *Resolver, key string) (Node, error) {
	p, err := predecessorOf(r, n)
	if err != nil {
		return nil, err
	}
	return r.Get(p, key)
}

func (n *Define) Expand(r *Resolver) (Node, error) { return predecessorOf(r, n) }
func (n *Define) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *Define) Dynamic() bool { return true }
func (n *Define) Simplify(r *Resolver) (Node, error) { return n, nil }
func (n *Define) Clone() Node { return NewDefine(n.name, n.body.Clone(), n.pos) }

// CallMacro instantiates a macro. The body is copied and evaluated with
// the arguments bound as variables; the arguments themselves are
// evaluated where the call is written.
type CallMacro struct {
	base
	name string
	args *Mapping
}

func NewCallMacro(name string, args *Mapping, pos *token.Pos) *CallMacro {
	if args == nil {
		args = NewMapping(pos)
	}
	n := &CallMacro{base: base{pos: pos}, name: name, args: args}
	args.SetParent(n)
	return n
}

func (n *CallMacro) Name() string { return n.name }

// lookupMacro finds the macro named name visible from n.
func lookupMacro(r *Resolver, n Node, name string) (*Define, error) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *Stanzas, *Root:
		default:
			continue
		}
		d, err := p.(Callable).GetCallable(r, name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrNoMatchingMacro) {
			return nil, err
		}
	}
	return nil, newError(ErrNoMatchingMacro, n.Pos(), "no macro named %q", name)
}

func (n *CallMacro) Expand(r *Resolver) (Node, error) {
	d, err := lookupMacro(r, n, n.name)
	if err != nil {
		return nil, blame(err, n.pos)
	}
	body := d.body.Clone()
	if n.pred != nil {
		attachPredecessor(body, n.pred)
	}
	bindings := map[string]Node{}
	for _, k := range n.args.LocalKeys() {
		v, _ := n.args.Local(k)
		bindings[k] = v
	}
	frame := NewContext(body, bindings, n.pos)
	frame.SetParent(n)
	return r.Expand(frame)
}

func (n *CallMacro) Get(r *Resolver, key string) (Node, error) {
	e, err := r.Expand(n)
	if err != nil {
		return nil, err
	}
	return r.Get(e, key)
}

func (n *CallMacro) Resolve(r *Resolver) (*ir.Node, error) { return resolveExpanded(r, n) }
func (n *CallMacro) Dynamic() bool { return true }
func (n *CallMacro) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *CallMacro) Clone() Node {
	return NewCallMacro(n.name, n.args.Clone().(*Mapping), n.pos)
}
