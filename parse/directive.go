package parse

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml/ast"

	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

var (
	identRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	forRe    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s+in\s+`)
	keywords = map[string]bool{
		"if":      true,
		"elif":    true,
		"else":    true,
		"select":  true,
		"for":     true,
		"include": true,
		"define":  true,
		"macro":   true,
		"call":    true,
		"extend":  true,
	}
)

// entry is a mapping entry with merge keys expanded.
type entry struct {
	key    string
	quoted bool
	pos    *token.Pos
	value  ast.Node
}

// directive returns the keyword and argument of a directive key.
// Quoted keys are always data.
func (e *entry) directive() (kind, arg string, argPos *token.Pos, ok bool) {
	if e.quoted {
		return "", "", nil, false
	}
	word, rest, _ := strings.Cut(e.key, " ")
	if !keywords[word] {
		return "", "", nil, false
	}
	arg = strings.TrimSpace(rest)
	if arg == "" && word != "else" && word != "include" {
		return "", "", nil, false
	}
	off := len(e.key) - len(strings.TrimLeft(rest, " \t"))
	if arg == "" {
		off = len(e.key)
	}
	return word, arg, e.pos.Shift(utf8.RuneCountInString(e.key[:off])), true
}

func (p *parser) entries(values []*ast.MappingValueNode) ([]entry, error) {
	var merged, res []entry
	for _, mv := range values {
		if mv.Key.IsMergeKey() {
			es, err := p.merge(mv.Value)
			if err != nil {
				return nil, err
			}
			merged = append(merged, es...)
			continue
		}
		e, err := p.entry(mv.Key)
		if err != nil {
			return nil, err
		}
		e.value = mv.Value
		res = append(res, e)
	}
	return append(merged, res...), nil
}

func (p *parser) entry(k ast.Node) (entry, error) {
	switch x := k.(type) {
	case *ast.MappingKeyNode:
		return p.entry(x.Value)
	case *ast.TagNode:
		return entry{}, &Error{Kind: ErrKeyTag, Pos: p.pos(x.GetToken()), Msg: x.Start.Value}
	case *ast.AnchorNode, *ast.AliasNode:
		t, err := p.deref(x)
		if err != nil {
			return entry{}, err
		}
		e, err := p.entry(t)
		if err != nil {
			return entry{}, err
		}
		e.pos = p.pos(k.GetToken())
		return e, nil
	case *ast.NullNode:
		return entry{key: "null", pos: p.pos(x.GetToken())}, nil
	}
	s, err := p.scalar(k)
	if err != nil {
		return entry{}, err
	}
	tk := k.GetToken()
	return entry{key: s, quoted: quoted(tk), pos: p.pos(tk)}, nil
}

// merge expands the value of a << key. Earlier mappings of a merged
// list take precedence, so they come last.
func (p *parser) merge(v ast.Node) ([]entry, error) {
	v, err := p.deref(v)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *ast.MappingNode:
		return p.entries(x.Values)
	case *ast.MappingValueNode:
		return p.entries([]*ast.MappingValueNode{x})
	case *ast.SequenceNode:
		var res []entry
		for _, item := range slices.Backward(x.Values) {
			es, err := p.merge(item)
			if err != nil {
				return nil, err
			}
			res = append(res, es...)
		}
		return res, nil
	}
	return nil, errorf(ErrParse, p.pos(v.GetToken()), "cannot merge %s", v.Type())
}

func (p *parser) mapping(values []*ast.MappingValueNode, pos *token.Pos) (graph.Node, error) {
	es, err := p.entries(values)
	if err != nil {
		return nil, err
	}
	b := &block{p: p, pos: pos}
	for i := range es {
		if err := b.add(&es[i]); err != nil {
			return nil, err
		}
	}
	return b.finish(), nil
}

// block groups the entries of a mapping into stanzas: runs of data
// entries form mappings, each directive is a stanza of its own.
type block struct {
	p        *parser
	pos      *token.Pos
	stanzas  []graph.Node
	run      *graph.Mapping
	guards   []graph.Guard
	guardPos *token.Pos
}

func (b *block) mapping() *graph.Mapping {
	if b.run == nil {
		b.run = graph.NewMapping(b.pos)
	}
	return b.run
}

func (b *block) flushIf(els graph.Node) {
	if b.guards == nil {
		return
	}
	b.stanzas = append(b.stanzas, graph.NewIf(b.guards, els, b.guardPos))
	b.guards = nil
}

func (b *block) flush() {
	b.flushIf(nil)
	if b.run != nil {
		b.stanzas = append(b.stanzas, b.run)
		b.run = nil
	}
}

func (b *block) add(e *entry) error {
	kind, arg, argPos, ok := e.directive()
	switch {
	case !ok:
		b.flushIf(nil)
		v, err := b.p.node(e.value)
		if err != nil {
			return err
		}
		b.mapping().Set(e.key, v)
		return nil
	case kind == "extend":
		b.flushIf(nil)
		v, err := b.p.node(e.value)
		if err != nil {
			return err
		}
		b.mapping().Set(arg, graph.NewExtend(v, e.pos))
		return nil
	case kind == "if":
		b.flush()
		g, err := b.guard(arg, argPos, e)
		if err != nil {
			return err
		}
		b.guards = []graph.Guard{g}
		b.guardPos = e.pos
		return nil
	case kind == "elif":
		if b.guards == nil {
			return errorf(ErrDirective, e.pos, "elif without if")
		}
		g, err := b.guard(arg, argPos, e)
		if err != nil {
			return err
		}
		b.guards = append(b.guards, g)
		return nil
	case kind == "else":
		if arg != "" {
			return errorf(ErrDirective, argPos, "else takes no condition")
		}
		if b.guards == nil {
			return errorf(ErrDirective, e.pos, "else without if")
		}
		els, err := b.p.node(e.value)
		if err != nil {
			return err
		}
		b.flushIf(els)
		return nil
	}
	b.flush()
	n, err := b.p.directive(kind, arg, argPos, e)
	if err != nil {
		return err
	}
	b.stanzas = append(b.stanzas, n)
	return nil
}

func (b *block) guard(arg string, argPos *token.Pos, e *entry) (graph.Guard, error) {
	cond, err := ParseExpr(arg, argPos)
	if err != nil {
		return graph.Guard{}, err
	}
	body, err := b.p.node(e.value)
	if err != nil {
		return graph.Guard{}, err
	}
	return graph.Guard{Cond: cond, Body: body}, nil
}

func (b *block) finish() graph.Node {
	b.flushIf(nil)
	if len(b.stanzas) == 0 {
		return b.mapping()
	}
	b.flush()
	if len(b.stanzas) == 1 {
		switch b.stanzas[0].(type) {
		case *graph.For, *graph.Select, *graph.CallMacro:
			return b.stanzas[0]
		}
	}
	return graph.NewStanzas(b.pos, b.stanzas...)
}

func (p *parser) directive(kind, arg string, argPos *token.Pos, e *entry) (graph.Node, error) {
	switch kind {
	case "select":
		return p.selectDirective(arg, argPos, e)
	case "for":
		return p.forDirective(arg, argPos, e)
	case "include":
		if arg == "" {
			v, err := p.node(e.value)
			if err != nil {
				return nil, err
			}
			return graph.NewInclude(v, e.pos), nil
		}
		if !isNull(e.value) {
			return nil, errorf(ErrDirective, e.pos, "include %s takes no value", arg)
		}
		expr, err := ParseExpr(arg, argPos)
		if err != nil {
			return nil, err
		}
		return graph.NewInclude(expr, e.pos), nil
	case "define", "macro":
		if !identRe.MatchString(arg) {
			return nil, errorf(ErrDirective, argPos, "bad macro name %q", arg)
		}
		body, err := p.node(e.value)
		if err != nil {
			return nil, err
		}
		return graph.NewDefine(arg, body, e.pos), nil
	case "call":
		if !identRe.MatchString(arg) {
			return nil, errorf(ErrDirective, argPos, "bad macro name %q", arg)
		}
		if isNull(e.value) {
			return graph.NewCallMacro(arg, nil, e.pos), nil
		}
		v, err := p.deref(e.value)
		if err != nil {
			return nil, err
		}
		args, err := p.node(v)
		if err != nil {
			return nil, err
		}
		m, ok := args.(*graph.Mapping)
		if !ok {
			return nil, errorf(ErrDirective, e.pos, "arguments of call %s must be a mapping", arg)
		}
		return graph.NewCallMacro(arg, m, e.pos), nil
	}
	return nil, errorf(ErrDirective, e.pos, "unknown directive %s", kind)
}

func (p *parser) selectDirective(arg string, argPos *token.Pos, e *entry) (graph.Node, error) {
	expr, err := ParseExpr(arg, argPos)
	if err != nil {
		return nil, err
	}
	var values []*ast.MappingValueNode
	v, err := p.deref(e.value)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil, *ast.NullNode:
	case *ast.MappingNode:
		values = x.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{x}
	default:
		return nil, errorf(ErrDirective, e.pos, "select %s needs a mapping of cases", arg)
	}
	cases := make([]graph.Case, 0, len(values))
	for _, mv := range values {
		key, err := p.caseKey(mv.Key)
		if err != nil {
			return nil, err
		}
		body, err := p.node(mv.Value)
		if err != nil {
			return nil, err
		}
		cases = append(cases, graph.Case{Key: key, Body: body})
	}
	return graph.NewSelect(expr, cases, e.pos), nil
}

// caseKey keeps the YAML type of a case key, so that 1: matches the
// number 1 and not the string "1".
func (p *parser) caseKey(k ast.Node) (*ir.Node, error) {
	k, err := p.deref(k)
	if err != nil {
		return nil, err
	}
	if mk, ok := k.(*ast.MappingKeyNode); ok {
		return p.caseKey(mk.Value)
	}
	switch x := k.(type) {
	case *ast.NullNode:
		return ir.Null(), nil
	case *ast.BoolNode:
		return ir.FromBool(x.Value), nil
	case *ast.IntegerNode:
		return ir.FromAny(x.Value)
	case *ast.FloatNode:
		return ir.FromFloat(x.Value), nil
	}
	e, err := p.entry(k)
	if err != nil {
		return nil, err
	}
	return ir.FromString(e.key), nil
}

func (p *parser) forDirective(arg string, argPos *token.Pos, e *entry) (graph.Node, error) {
	m := forRe.FindStringSubmatchIndex(arg)
	if m == nil {
		return nil, errorf(ErrDirective, argPos, "expected for <name> in <expr>, got %q", arg)
	}
	name := arg[m[2]:m[3]]
	start := m[1]
	at := func(i int) *token.Pos { return argPos.Shift(utf8.RuneCountInString(arg[:i])) }
	inSrc := arg[start:]
	var filter graph.Node
	if i := lastTopLevel(inSrc, " if "); i >= 0 {
		fstart := start + i + len(" if ")
		f, err := ParseExpr(arg[fstart:], at(fstart))
		if err != nil {
			return nil, err
		}
		filter = f
		inSrc = inSrc[:i]
	}
	in, err := ParseExpr(inSrc, at(start))
	if err != nil {
		return nil, err
	}
	body, err := p.node(e.value)
	if err != nil {
		return nil, err
	}
	return graph.NewFor(name, in, filter, body, e.pos), nil
}

// lastTopLevel returns the index of the last occurrence of sep in s
// outside of brackets and quotes, or -1.
func lastTopLevel(s, sep string) int {
	res := -1
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		case c == '"' || c == '\'' || c == '`':
			quote = c
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
			continue
		case c == ')' || c == ']' || c == '}':
			depth--
			continue
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			res = i
		}
	}
	return res
}
