package graph

import (
	"fmt"
	"testing"

	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

func lit(v any) *Literal {
	n, err := ir.FromAny(v)
	if err != nil {
		panic(err)
	}
	return NewLiteral(n, nil)
}

func ident(name string) *Identifier { return NewIdentifier(name, nil) }

// mapping builds a mapping from alternating keys and nodes.
func mapping(kvs ...any) *Mapping {
	m := NewMapping(nil)
	for i := 0; i < len(kvs); i += 2 {
		m.Set(kvs[i].(string), kvs[i+1].(Node))
	}
	return m
}

func seq(items ...Node) *Sequence { return NewSequence(nil, items...) }

func at(line int) *token.Pos { return &token.Pos{Source: "test.yay", Line: line, Col: 1} }

func resolveDoc(t *testing.T, n Node, opts ...Option) any {
	t.Helper()
	v, err := NewDocument(n, opts...).Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return ir.ToAny(v)
}

func resolveErr(n Node, opts ...Option) error {
	_, err := NewDocument(n, opts...).Resolve()
	return err
}

// memLoader serves documents built on demand, named by path.
type memLoader map[string]func() Node

func (l memLoader) Load(path string) (Node, error) {
	f, ok := l[path]
	if !ok {
		return nil, fmt.Errorf("no document %q", path)
	}
	return f(), nil
}

func doc(source string, stanzas ...Node) *Stanzas {
	s := NewStanzas(nil, stanzas...)
	s.SetSource(source)
	return s
}

func toAny(v *ir.Node) any { return ir.ToAny(v) }
