package graph

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// Call applies a builtin function. Calling a name which is not a builtin
// with a single mapping argument invokes the macro of that name with the
// mapping as its arguments.
type Call struct {
	base
	name string
	args []Node
}

func NewCall(name string, pos *token.Pos, args ...Node) *Call {
	n := &Call{base: base{pos: pos}, name: name, args: args}
	for _, a := range args {
		a.SetParent(n)
	}
	return n
}

func (n *Call) Name() string { return n.name }

type builtin struct {
	min, max int
	fn       func(r *Resolver, n *Call) (*ir.Node, error)
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"range":   {1, 3, callRange},
		"replace": {3, 3, callReplace},
		"sub":     {3, 3, callSub},
		"len":     {1, 1, callLen},
		"upper":   {1, 1, stringFunc(strings.ToUpper)},
		"lower":   {1, 1, stringFunc(strings.ToLower)},
		"trim":    {1, 1, stringFunc(strings.TrimSpace)},
		"join":    {1, 2, callJoin},
		"split":   {2, 2, callSplit},
		"int":     {1, 1, callInt},
		"float":   {1, 1, callFloat},
		"string":  {1, 1, callString},
		"keys":    {1, 1, callKeys},
		"values":  {1, 1, callValues},
		"min":     {1, -1, extremum(-1)},
		"max":     {1, -1, extremum(1)},
		"abs":     {1, 1, callAbs},
	}
}

// IsBuiltin reports whether name is a builtin function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func (n *Call) macroArgs() (*Mapping, bool) {
	if IsBuiltin(n.name) {
		return nil, false
	}
	if len(n.args) == 0 {
		return NewMapping(n.pos), true
	}
	if len(n.args) != 1 {
		return nil, false
	}
	m, ok := n.args[0].(*Mapping)
	return m, ok
}

func (n *Call) Expand(r *Resolver) (Node, error) {
	if args, ok := n.macroArgs(); ok {
		c := NewCallMacro(n.name, args.Clone().(*Mapping), n.pos)
		c.SetParent(n)
		return r.Expand(c)
	}
	v, err := r.Resolve(n)
	if err != nil {
		return nil, err
	}
	return Lift(v, n.pos), nil
}

func (n *Call) Resolve(r *Resolver) (*ir.Node, error) {
	if _, ok := n.macroArgs(); ok {
		return resolveExpanded(r, n)
	}
	b, ok := builtins[n.name]
	if !ok {
		return nil, newError(ErrType, n.pos, "unknown function %q", n.name)
	}
	if len(n.args) < b.min || (b.max >= 0 && len(n.args) > b.max) {
		return nil, newError(ErrType, n.pos, "wrong number of arguments to %s: %d", n.name, len(n.args))
	}
	return b.fn(r, n)
}

func (n *Call) Dynamic() bool { return true }
func (n *Call) Simplify(r *Resolver) (Node, error) { return n, nil }

func (n *Call) Clone() Node {
	args := make([]Node, len(n.args))
	for i, a := range n.args {
		args[i] = a.Clone()
	}
	return NewCall(n.name, n.pos, args...)
}

func (n *Call) ints(r *Resolver) ([]int64, error) {
	res := make([]int64, len(n.args))
	for i, a := range n.args {
		v, err := AsInt(r, a, n.pos)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

func (n *Call) strings(r *Resolver) ([]string, error) {
	res := make([]string, len(n.args))
	for i, a := range n.args {
		v, err := AsString(r, a, n.pos)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

func callRange(r *Resolver, n *Call) (*ir.Node, error) {
	a, err := n.ints(r)
	if err != nil {
		return nil, err
	}
	start, stop, step := int64(0), a[0], int64(1)
	if len(a) > 1 {
		start, stop = a[0], a[1]
	}
	if len(a) > 2 {
		step = a[2]
	}
	if step == 0 {
		return nil, newError(ErrType, n.pos, "range step must not be zero")
	}
	var res []*ir.Node
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); {
		res = append(res, ir.FromInt(i))
		next, ok := addInt(i, step)
		if !ok {
			break
		}
		i = next
	}
	return ir.FromSlice(res), nil
}

func callReplace(r *Resolver, n *Call) (*ir.Node, error) {
	a, err := n.strings(r)
	if err != nil {
		return nil, err
	}
	return ir.FromString(strings.ReplaceAll(a[0], a[1], a[2])), nil
}

// callSub is sub(pattern, replacement, input).
func callSub(r *Resolver, n *Call) (*ir.Node, error) {
	a, err := n.strings(r)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(a[0])
	if err != nil {
		return nil, wrapError(ErrType, n.pos, err, "bad pattern %q", a[0])
	}
	return ir.FromString(re.ReplaceAllString(a[2], a[1])), nil
}

func callLen(r *Resolver, n *Call) (*ir.Node, error) {
	v, err := r.Resolve(n.args[0])
	if err != nil {
		return nil, err
	}
	switch v.Type {
	case ir.ArrayType, ir.ObjectType:
		return ir.FromInt(int64(len(v.Values))), nil
	case ir.StringType:
		return ir.FromInt(int64(len([]rune(v.String)))), nil
	}
	return nil, typeError(n.args[0], n.pos, "sequence, mapping or string", v)
}

func stringFunc(f func(string) string) func(*Resolver, *Call) (*ir.Node, error) {
	return func(r *Resolver, n *Call) (*ir.Node, error) {
		s, err := AsString(r, n.args[0], n.pos)
		if err != nil {
			return nil, err
		}
		return ir.FromString(f(s)), nil
	}
}

func callJoin(r *Resolver, n *Call) (*ir.Node, error) {
	sep := ""
	if len(n.args) == 2 {
		s, err := AsString(r, n.args[1], n.pos)
		if err != nil {
			return nil, err
		}
		sep = s
	}
	seq, err := AsIterable(r, n.args[0], n.pos)
	if err != nil {
		return nil, err
	}
	var parts []string
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		s, err := AsString(r, item, n.pos)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return ir.FromString(strings.Join(parts, sep)), nil
}

func callSplit(r *Resolver, n *Call) (*ir.Node, error) {
	a, err := n.strings(r)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(a[0], a[1])
	res := make([]*ir.Node, len(parts))
	for i, p := range parts {
		res[i] = ir.FromString(p)
	}
	return ir.FromSlice(res), nil
}

func callInt(r *Resolver, n *Call) (*ir.Node, error) {
	i, err := AsInt(r, n.args[0], n.pos)
	if err != nil {
		return nil, err
	}
	return ir.FromInt(i), nil
}

func callFloat(r *Resolver, n *Call) (*ir.Node, error) {
	f, err := AsFloat(r, n.args[0], n.pos)
	if err != nil {
		return nil, err
	}
	return ir.FromFloat(f), nil
}

func callString(r *Resolver, n *Call) (*ir.Node, error) {
	s, err := AsString(r, n.args[0], n.pos)
	if err != nil {
		return nil, err
	}
	return ir.FromString(s), nil
}

func callKeys(r *Resolver, n *Call) (*ir.Node, error) {
	keys, err := r.Keys(n.args[0])
	if err != nil {
		return nil, blame(err, n.pos)
	}
	res := make([]*ir.Node, len(keys))
	for i, k := range keys {
		res[i] = ir.FromString(k)
	}
	return ir.FromSlice(res), nil
}

func callValues(r *Resolver, n *Call) (*ir.Node, error) {
	v, err := r.Resolve(n.args[0])
	if err != nil {
		return nil, err
	}
	if v.Type != ir.ObjectType {
		return nil, typeError(n.args[0], n.pos, "mapping", v)
	}
	return ir.FromSlice(slices.Clone(v.Values)), nil
}

// extremum returns the least (sign -1) or greatest (sign 1) argument. A
// single argument is iterated.
func extremum(sign int) func(*Resolver, *Call) (*ir.Node, error) {
	return func(r *Resolver, n *Call) (*ir.Node, error) {
		items := n.args
		if len(items) == 1 {
			seq, err := AsIterable(r, n.args[0], n.pos)
			if err != nil {
				return nil, err
			}
			items, err = collect(seq)
			if err != nil {
				return nil, err
			}
		}
		var res *ir.Node
		for _, item := range items {
			v, err := AsNumber(r, item, n.pos)
			if err != nil {
				return nil, err
			}
			if res == nil || ir.Compare(v, res)*sign > 0 {
				res = v
			}
		}
		if res == nil {
			return nil, newError(ErrType, n.pos, "%s of empty sequence", n.name)
		}
		return res, nil
	}
}

func callAbs(r *Resolver, n *Call) (*ir.Node, error) {
	v, err := AsNumber(r, n.args[0], n.pos)
	if err != nil {
		return nil, err
	}
	if v.Int64 != nil {
		if *v.Int64 < 0 {
			return ir.FromInt(-*v.Int64), nil
		}
		return v, nil
	}
	return ir.FromFloat(math.Abs(*v.Float64)), nil
}
