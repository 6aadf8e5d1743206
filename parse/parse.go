package parse

import (
	"errors"
	"math"

	"github.com/goccy/go-yaml/ast"
	yamlparser "github.com/goccy/go-yaml/parser"
	yamltoken "github.com/goccy/go-yaml/token"

	"github.com/signadot/yay/debug"
	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// maxAliasDepth bounds alias expansion, which copies the anchored node.
const maxAliasDepth = 64

// Parse parses a yay document. Each YAML document in d becomes a stanza
// of the result, overlaying the ones before it.
func Parse(d []byte, opts ...ParseOption) (*graph.Stanzas, error) {
	pOpts := &parseOpts{}
	for _, f := range opts {
		f(pOpts)
	}
	src := d
	if !pOpts.raw {
		src = quoteTemplates(d)
	}
	f, err := yamlparser.ParseBytes(src, 0, yamlparser.AllowDuplicateMapKey())
	if err != nil {
		return nil, yamlError(err, pOpts.source)
	}
	p := &parser{opts: pOpts, anchors: map[string]ast.Node{}}
	res := graph.NewStanzas(&token.Pos{Source: pOpts.source, Line: 1, Col: 1})
	res.SetSource(pOpts.source)
	for _, doc := range f.Docs {
		if doc.Body == nil {
			continue
		}
		if _, ok := doc.Body.(*ast.CommentGroupNode); ok {
			continue
		}
		n, err := p.node(doc.Body)
		if err != nil {
			return nil, err
		}
		res.Append(n)
	}
	if debug.Parse() {
		debug.Logf("parsed %q: %d stanzas\n", pOpts.source, len(res.Stanzas()))
	}
	return res, nil
}

func ParseString(s string, opts ...ParseOption) (*graph.Stanzas, error) {
	return Parse([]byte(s), opts...)
}

type yamlErr interface {
	GetToken() *yamltoken.Token
	GetMessage() string
}

func yamlError(err error, source string) error {
	var ye yamlErr
	if errors.As(err, &ye) && ye.GetToken() != nil {
		p := &parser{opts: &parseOpts{source: source}}
		return &Error{Kind: ErrParse, Pos: p.pos(ye.GetToken()), Msg: ye.GetMessage()}
	}
	return &Error{Kind: ErrParse, Pos: &token.Pos{Source: source}, Err: err}
}

type parser struct {
	opts    *parseOpts
	anchors map[string]ast.Node
	aliases int
}

func (p *parser) pos(tk *yamltoken.Token) *token.Pos {
	if tk == nil || tk.Position == nil {
		return &token.Pos{Source: p.opts.source}
	}
	return &token.Pos{
		Source: p.opts.source,
		Line:   tk.Position.Line,
		Col:    tk.Position.Column,
		Offset: tk.Position.Offset,
	}
}

func quoted(tk *yamltoken.Token) bool {
	if tk == nil {
		return false
	}
	return tk.Type == yamltoken.DoubleQuoteType || tk.Type == yamltoken.SingleQuoteType
}

func (p *parser) node(n ast.Node) (graph.Node, error) {
	if n == nil {
		return graph.NewLiteral(ir.Null(), nil), nil
	}
	pos := p.pos(n.GetToken())
	switch x := n.(type) {
	case *ast.NullNode:
		return graph.NewLiteral(ir.Null(), pos), nil
	case *ast.BoolNode:
		return graph.NewLiteral(ir.FromBool(x.Value), pos), nil
	case *ast.IntegerNode:
		v, err := ir.FromAny(x.Value)
		if err != nil {
			return nil, errorf(ErrParse, pos, "integer %s: %v", x.GetToken().Value, err)
		}
		return graph.NewLiteral(v, pos), nil
	case *ast.FloatNode:
		return graph.NewLiteral(ir.FromFloat(x.Value), pos), nil
	case *ast.InfinityNode:
		return graph.NewLiteral(ir.FromFloat(x.Value), pos), nil
	case *ast.NanNode:
		return graph.NewLiteral(ir.FromFloat(math.NaN()), pos), nil
	case *ast.StringNode:
		if quoted(x.Token) {
			pos = pos.Shift(1)
		}
		return p.str(x.Value, pos)
	case *ast.LiteralNode:
		return p.str(x.Value.Value, p.pos(x.Value.GetToken()))
	case *ast.TagNode:
		return p.tag(x, pos)
	case *ast.AnchorNode:
		p.anchors[nameOf(x.Name)] = x.Value
		return p.node(x.Value)
	case *ast.AliasNode:
		target, err := p.alias(x)
		if err != nil {
			return nil, err
		}
		p.aliases++
		defer func() { p.aliases-- }()
		return p.node(target)
	case *ast.MappingNode:
		return p.mapping(x.Values, pos)
	case *ast.MappingValueNode:
		return p.mapping([]*ast.MappingValueNode{x}, pos)
	case *ast.SequenceNode:
		res := graph.NewSequence(pos)
		for _, v := range x.Values {
			item, err := p.node(v)
			if err != nil {
				return nil, err
			}
			res.Append(item)
		}
		return res, nil
	}
	return nil, errorf(ErrParse, pos, "unsupported %s", n.Type())
}

func (p *parser) str(s string, pos *token.Pos) (graph.Node, error) {
	n, err := ParseTemplate(s, pos)
	if err != nil {
		return nil, err
	}
	if _, ok := n.(*graph.Literal); ok && p.opts.secrets {
		return graph.NewSecret(s, pos), nil
	}
	return n, nil
}

func (p *parser) tag(x *ast.TagNode, pos *token.Pos) (graph.Node, error) {
	switch x.Start.Value {
	case "!secret":
		s, err := p.scalar(x.Value)
		if err != nil {
			return nil, err
		}
		return graph.NewSecret(s, p.pos(x.Value.GetToken())), nil
	case "!!str":
		s, err := p.scalar(x.Value)
		if err != nil {
			return nil, err
		}
		return graph.NewLiteral(ir.FromString(s), p.pos(x.Value.GetToken())), nil
	case "!!null", "!!bool", "!!int", "!!float", "!!map", "!!seq":
		return p.node(x.Value)
	}
	return nil, errorf(ErrParse, pos, "unknown tag %s", x.Start.Value)
}

// scalar returns the text of a scalar node.
func (p *parser) scalar(n ast.Node) (string, error) {
	n, err := p.deref(n)
	if err != nil {
		return "", err
	}
	switch x := n.(type) {
	case *ast.StringNode:
		return x.Value, nil
	case *ast.LiteralNode:
		return x.Value.Value, nil
	case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode, *ast.TagNode:
		return "", errorf(ErrParse, p.pos(n.GetToken()), "expected a scalar, got %s", n.Type())
	}
	return n.GetToken().Value, nil
}

// deref follows anchors and aliases to the node they name.
func (p *parser) deref(n ast.Node) (ast.Node, error) {
	for range maxAliasDepth {
		switch x := n.(type) {
		case *ast.AnchorNode:
			p.anchors[nameOf(x.Name)] = x.Value
			n = x.Value
		case *ast.AliasNode:
			t, err := p.alias(x)
			if err != nil {
				return nil, err
			}
			n = t
		default:
			return n, nil
		}
	}
	return nil, errorf(ErrParse, p.pos(n.GetToken()), "aliases nested too deeply")
}

func (p *parser) alias(x *ast.AliasNode) (ast.Node, error) {
	name := nameOf(x.Value)
	if p.aliases >= maxAliasDepth {
		return nil, errorf(ErrParse, p.pos(x.GetToken()), "alias *%s nested too deeply", name)
	}
	t, ok := p.anchors[name]
	if !ok {
		return nil, errorf(ErrParse, p.pos(x.GetToken()), "unknown alias *%s", name)
	}
	return t, nil
}

func isNull(n ast.Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(*ast.NullNode)
	return ok
}

func nameOf(n ast.Node) string {
	if s, ok := n.(*ast.StringNode); ok {
		return s.Value
	}
	return n.GetToken().Value
}
