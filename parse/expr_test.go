package parse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 + 2", `3`},
		{"not true", `false`},
		{"!false", `true`},
		{"-(2 * 3)", `-6`},
		{"2 ** 3", `8`},
		{"7 / 2", `3.5`},
		{"[1, 2, 3][1:]", `[2,3]`},
		{"[1, 2, 3][-1]", `3`},
		{"{a: 1}.a", `1`},
		{"{'a': {b: 2}}['a'].b", `2`},
		{"'abc' startsWith 'a'", `true`},
		{"'abc' contains 'd'", `false`},
		{"1 in [1, 2]", `true`},
		{"3 not in [1, 2]", `true`},
		{"len('abc')", `3`},
		{"upper('a') + lower('B')", `"Ab"`},
		{"true ? 1 : 2", `1`},
		{"nil ?? 4", `4`},
		{"null", `null`},
		{"1..3", `[1,2,3]`},
		{"range(0, 6, 2)", `[0,2,4]`},
		{"false or 'x'", `"x"`},
		{"let a = 2; a * a", `4`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseExpr(tt.in, nil)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			v, err := graph.NewDocument(n).Resolve()
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			d, err := ir.MarshalJSON(v)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, string(d)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	pos := &token.Pos{Source: "x.yay", Line: 3, Col: 10}
	tests := []string{
		"1 +",
		"a.b()",
		"map([1], # + 1)",
		"(",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseExpr(in, pos)
			if !errors.Is(err, ErrExpr) {
				t.Fatalf("got %v, want %v", err, ErrExpr)
			}
			if p := PosOf(err); p == nil || p.Line != 3 || p.Col < 10 {
				t.Errorf("got position %v", p)
			}
		})
	}
}

func TestParseExprPos(t *testing.T) {
	pos := &token.Pos{Source: "x.yay", Line: 2, Col: 5}
	n, err := ParseExpr("a + bb", pos)
	if err != nil {
		t.Fatal(err)
	}
	m := graph.NewMapping(nil)
	m.Set("x", n)
	_, err = graph.NewDocument(m).Resolve()
	if !errors.Is(err, graph.ErrNoSuchKey) {
		t.Fatalf("got %v", err)
	}
	p := graph.PosOf(err)
	if p == nil || p.Line != 2 || p.Col != 5 {
		t.Errorf("got position %v, want x.yay:2:5", p)
	}
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		in    string
		parts int
		want  string
	}{
		{"plain", 0, `"plain"`},
		{"{{ 1 }}", 1, `1`},
		{"x{{ 1 }}y", 3, `"x1y"`},
		{"{{ 1 }}{{ 2 }}", 2, `"12"`},
		{"{{ {'a': 1}.a }}!", 2, `"1!"`},
		{"{{ '}}' }}", 1, `"}}"`},
		{"{{ true }} {{ 1.5 }}", 3, `"true 1.5"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseTemplate(tt.in, nil)
			if err != nil {
				t.Fatal(err)
			}
			parts := 0
			if tpl, ok := n.(*graph.Template); ok {
				parts = len(tpl.Parts())
			}
			if parts != tt.parts {
				t.Errorf("got %d parts, want %d", parts, tt.parts)
			}
			v, err := graph.NewDocument(n).Resolve()
			if err != nil {
				t.Fatal(err)
			}
			d, err := ir.MarshalJSON(v)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, string(d)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuoteTemplates(t *testing.T) {
	in := "a: {{ b }}\n- {{ c }}\nd: |\n  e: {{ f }}\ng: \"{{ h }}\"\ni: {{ 'j' }}\nk: x {{ l }}\n"
	want := "a: '{{ b }}'\n- '{{ c }}'\nd: |\n  e: {{ f }}\ng: \"{{ h }}\"\ni: '{{ ''j'' }}'\nk: x {{ l }}\n"
	if diff := cmp.Diff(want, string(quoteTemplates([]byte(in)))); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLastTopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"xs", -1},
		{"xs if x", 2},
		{"f(a if b) if c", 9},
		{"'a if b'", -1},
		{"a if b if c", 6},
	}
	for _, tt := range tests {
		if got := lastTopLevel(tt.in, " if "); got != tt.want {
			t.Errorf("lastTopLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
