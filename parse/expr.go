package parse

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
	exprparser "github.com/expr-lang/expr/parser"

	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// ParseExpr parses an expression. pos is the position of the first
// character of src.
func ParseExpr(src string, pos *token.Pos) (graph.Node, error) {
	tree, err := exprparser.Parse(src)
	if err != nil {
		var fe *file.Error
		if errors.As(err, &fe) {
			return nil, errorf(ErrExpr, pos.Shift(fe.From), "%s in %q", fe.Message, src)
		}
		return nil, &Error{Kind: ErrExpr, Pos: pos, Err: err}
	}
	c := &exprConv{src: src, pos: pos}
	return c.node(tree.Node)
}

type exprConv struct {
	src string
	pos *token.Pos
}

func (c *exprConv) at(n ast.Node) *token.Pos {
	return c.pos.Shift(n.Location().From)
}

func (c *exprConv) unsupported(n ast.Node, what string) error {
	return errorf(ErrExpr, c.at(n), "%s not supported in %q", what, c.src)
}

func (c *exprConv) nodes(ns []ast.Node) ([]graph.Node, error) {
	res := make([]graph.Node, len(ns))
	for i, n := range ns {
		g, err := c.node(n)
		if err != nil {
			return nil, err
		}
		res[i] = g
	}
	return res, nil
}

func (c *exprConv) node(n ast.Node) (graph.Node, error) {
	pos := c.at(n)
	switch x := n.(type) {
	case *ast.NilNode:
		return graph.NewLiteral(ir.Null(), pos), nil
	case *ast.BoolNode:
		return graph.NewLiteral(ir.FromBool(x.Value), pos), nil
	case *ast.IntegerNode:
		return graph.NewLiteral(ir.FromInt(int64(x.Value)), pos), nil
	case *ast.FloatNode:
		return graph.NewLiteral(ir.FromFloat(x.Value), pos), nil
	case *ast.StringNode:
		return graph.NewLiteral(ir.FromString(x.Value), pos), nil
	case *ast.ConstantNode:
		v, err := ir.FromAny(x.Value)
		if err != nil {
			return nil, errorf(ErrExpr, pos, "constant %v: %v", x.Value, err)
		}
		return graph.NewLiteral(v, pos), nil
	case *ast.IdentifierNode:
		switch x.Value {
		case "null", "None":
			return graph.NewLiteral(ir.Null(), pos), nil
		case "True":
			return graph.NewLiteral(ir.FromBool(true), pos), nil
		case "False":
			return graph.NewLiteral(ir.FromBool(false), pos), nil
		}
		return graph.NewIdentifier(x.Value, pos), nil
	case *ast.UnaryNode:
		v, err := c.node(x.Node)
		if err != nil {
			return nil, err
		}
		op := x.Operator
		if op == "!" {
			op = "not"
		}
		return graph.NewUnary(op, v, pos), nil
	case *ast.BinaryNode:
		return c.binary(x, pos)
	case *ast.ChainNode:
		return c.node(x.Node)
	case *ast.MemberNode:
		return c.member(x, pos)
	case *ast.SliceNode:
		prim, err := c.node(x.Node)
		if err != nil {
			return nil, err
		}
		var from, to graph.Node
		if x.From != nil {
			if from, err = c.node(x.From); err != nil {
				return nil, err
			}
		}
		if x.To != nil {
			if to, err = c.node(x.To); err != nil {
				return nil, err
			}
		}
		return graph.NewSlice(prim, from, to, nil, pos), nil
	case *ast.CallNode:
		id, ok := x.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, c.unsupported(n, "method call")
		}
		args, err := c.nodes(x.Arguments)
		if err != nil {
			return nil, err
		}
		return graph.NewCall(id.Value, pos, args...), nil
	case *ast.BuiltinNode:
		if !graph.IsBuiltin(x.Name) {
			return nil, c.unsupported(n, fmt.Sprintf("function %s", x.Name))
		}
		args, err := c.nodes(x.Arguments)
		if err != nil {
			return nil, err
		}
		return graph.NewCall(x.Name, pos, args...), nil
	case *ast.ConditionalNode:
		cond, err := c.node(x.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.node(x.Exp1)
		if err != nil {
			return nil, err
		}
		els, err := c.node(x.Exp2)
		if err != nil {
			return nil, err
		}
		return graph.NewConditional(cond, then, els, pos), nil
	case *ast.ArrayNode:
		items, err := c.nodes(x.Nodes)
		if err != nil {
			return nil, err
		}
		return graph.NewSequence(pos, items...), nil
	case *ast.MapNode:
		m := graph.NewMapping(pos)
		for _, p := range x.Pairs {
			pair := p.(*ast.PairNode)
			k, err := c.key(pair.Key)
			if err != nil {
				return nil, err
			}
			v, err := c.node(pair.Value)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	case *ast.VariableDeclaratorNode:
		v, err := c.node(x.Value)
		if err != nil {
			return nil, err
		}
		body, err := c.node(x.Expr)
		if err != nil {
			return nil, err
		}
		ctx := graph.NewContext(body, map[string]graph.Node{x.Name: v}, pos)
		v.SetParent(ctx)
		return ctx, nil
	case *ast.SequenceNode:
		return nil, c.unsupported(n, "expression sequence")
	case *ast.PredicateNode, *ast.PointerNode:
		return nil, c.unsupported(n, "predicate")
	}
	return nil, c.unsupported(n, fmt.Sprintf("%T", n))
}

func (c *exprConv) key(n ast.Node) (string, error) {
	switch x := n.(type) {
	case *ast.StringNode:
		return x.Value, nil
	case *ast.IdentifierNode:
		return x.Value, nil
	case *ast.IntegerNode:
		return fmt.Sprint(x.Value), nil
	case *ast.BoolNode:
		return fmt.Sprint(x.Value), nil
	}
	return "", c.unsupported(n, "computed key")
}

func (c *exprConv) binary(x *ast.BinaryNode, pos *token.Pos) (graph.Node, error) {
	lhs, err := c.node(x.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := c.node(x.Right)
	if err != nil {
		return nil, err
	}
	switch x.Operator {
	case "and", "&&":
		return graph.NewAnd(lhs, rhs, pos), nil
	case "or", "||":
		return graph.NewOr(lhs, rhs, pos), nil
	case "??":
		return graph.NewDefault(lhs, rhs, pos), nil
	case "..":
		// inclusive in expr, exclusive in range
		one := graph.NewLiteral(ir.FromInt(1), pos)
		return graph.NewCall("range", pos, lhs, graph.NewBinary("+", rhs, one, pos)), nil
	}
	return graph.NewBinary(x.Operator, lhs, rhs, pos), nil
}

func (c *exprConv) member(x *ast.MemberNode, pos *token.Pos) (graph.Node, error) {
	if x.Method {
		return nil, c.unsupported(x, "method call")
	}
	prim, err := c.node(x.Node)
	if err != nil {
		return nil, err
	}
	var res graph.Node
	if s, ok := x.Property.(*ast.StringNode); ok {
		res = graph.NewAttribute(prim, s.Value, pos)
	} else {
		key, err := c.node(x.Property)
		if err != nil {
			return nil, err
		}
		res = graph.NewSubscript(prim, key, pos)
	}
	if x.Optional {
		res = graph.NewDefault(res, graph.NewLiteral(ir.Null(), pos), pos)
	}
	return res, nil
}
