package parse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
)

// strLoader parses included documents from memory.
type strLoader map[string]string

func (l strLoader) Load(path string) (graph.Node, error) {
	s, ok := l[path]
	if !ok {
		return nil, fmt.Errorf("no document %q", path)
	}
	return ParseString(s, WithSource(path))
}

func resolveJSON(t *testing.T, src string, opts ...graph.Option) string {
	t.Helper()
	doc, err := ParseString(src, WithSource("test.yay"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := graph.NewDocument(doc, opts...).Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	d, err := ir.MarshalJSON(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(d)
}

func TestParseResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain",
			in:   "a: 1\nb: [x, true, null, 1.5]\n",
			want: `{"a":1,"b":["x",true,null,1.5]}`,
		},
		{
			name: "template",
			in:   "a: 1\nb: \"{{ a + 1 }}\"\nc: \"n={{ a }}\"\n",
			want: `{"a":1,"b":2,"c":"n=1"}`,
		},
		{
			name: "unquoted template",
			in:   "a: 2\nb: {{ a * 3 }}\nc: {{ 'x' + 'y' }}\n",
			want: `{"a":2,"b":6,"c":"xy"}`,
		},
		{
			name: "block scalar template",
			in:   "n: 2\ns: |\n  n is {{ n }}\n",
			want: `{"n":2,"s":"n is 2\n"}`,
		},
		{
			name: "documents overlay",
			in:   "a: 1\nb: {c: 1, d: 2}\n---\nb:\n  c: 3\n",
			want: `{"a":1,"b":{"c":3,"d":2}}`,
		},
		{
			name: "if elif else",
			in: `x: 2
if x == 1:
  y: one
elif x == 2:
  y: two
else:
  y: other
`,
			want: `{"x":2,"y":"two"}`,
		},
		{
			name: "if without match",
			in: `x: 3
if x == 1:
  y: one
z: 1
`,
			want: `{"x":3,"z":1}`,
		},
		{
			name: "select",
			in: `env: prod
select env:
  prod:
    replicas: 3
  dev:
    replicas: 1
`,
			want: `{"env":"prod","replicas":3}`,
		},
		{
			name: "select numeric case",
			in:   "n: 1\nselect n:\n  1: {v: one}\n  2: {v: two}\n",
			want: `{"n":1,"v":"one"}`,
		},
		{
			name: "for with filter",
			in: `items: [1, 2, 3]
out:
  for i in items if i > 1:
    - "{{ i * 10 }}"
`,
			want: `{"items":[1,2,3],"out":[20,30]}`,
		},
		{
			name: "for mapping body",
			in: `names: [a, b]
out:
  for x in names:
    name: "{{ x }}"
`,
			want: `{"names":["a","b"],"out":[{"name":"a"},{"name":"b"}]}`,
		},
		{
			name: "macro",
			in: `define greeting:
  hello: "{{ who }}"
a:
  call greeting:
    who: world
`,
			want: `{"a":{"hello":"world"}}`,
		},
		{
			name: "extend",
			in:   "list: [1, 2]\n---\nextend list: [3]\n",
			want: `{"list":[1,2,3]}`,
		},
		{
			name: "merge key",
			in: `base: &b
  a: 1
  b: 2
derived:
  <<: *b
  b: 3
`,
			want: `{"base":{"a":1,"b":2},"derived":{"a":1,"b":3}}`,
		},
		{
			name: "quoted key is data",
			in:   "\"if x\": 1\n",
			want: `{"if x":1}`,
		},
		{
			name: "let",
			in:   "a: \"{{ let y = 2; y * 3 }}\"\n",
			want: `{"a":6}`,
		},
		{
			name: "range",
			in:   "a: \"{{ 1..3 }}\"\n",
			want: `{"a":[1,2,3]}`,
		},
		{
			name: "optional member",
			in:   "a: \"{{ missing?.b ?? 5 }}\"\n",
			want: `{"a":5}`,
		},
		{
			name: "empty",
			in:   "",
			want: `{}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, resolveJSON(t, tt.in)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseInclude(t *testing.T) {
	loader := strLoader{
		"base.yay": "replicas: 1\nname: base\n",
	}
	tests := []struct {
		name string
		in   string
	}{
		{"expression", "include \"base.yay\":\nname: app\n"},
		{"value", "include: base.yay\nname: app\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveJSON(t, tt.in, graph.WithLoader(loader))
			if diff := cmp.Diff(`{"name":"app","replicas":1}`, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSource(t *testing.T) {
	doc, err := ParseString("a: 1\n", WithSource("a.yay"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source() != "a.yay" {
		t.Errorf("got source %q", doc.Source())
	}
	n, err := graph.NewDocument(doc).Lookup("a")
	if err != nil {
		t.Fatal(err)
	}
	if p := n.Pos(); p.Source != "a.yay" || p.Line != 1 || p.Col != 4 {
		t.Errorf("got position %s", p)
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []ParseOption
	}{
		{"tag", "password: !secret hunter2\n", nil},
		{"option", "password: hunter2\n", []ParseOption{ParseSecret()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.in, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			d := graph.NewDocument(doc)
			n, err := d.Lookup("password")
			if err != nil {
				t.Fatal(err)
			}
			l, ok := n.(*graph.Literal)
			if !ok || !l.Secret() {
				t.Fatalf("got %T, want a secret literal", n)
			}
			s, err := graph.AsSafeString(d.Resolver(), n, nil)
			if err != nil {
				t.Fatal(err)
			}
			if s != "*****" {
				t.Errorf("safe string %q", s)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind error
		line int
	}{
		{"yaml", "a: [1, 2\n", ErrParse, 0},
		{"expression", "a: 1\nb: \"{{ a + }}\"\n", ErrExpr, 2},
		{"unterminated", "a: 1\nb: \"{{ a\"\n", ErrExpr, 2},
		{"directive expression", "x: 1\nif x +:\n  y: 2\n", ErrExpr, 2},
		{"elif without if", "elif x: 1\n", ErrDirective, 1},
		{"else after data", "if x: {a: 1}\nb: 2\nelse: {a: 2}\n", ErrDirective, 3},
		{"bad for", "for 1 in x: []\n", ErrDirective, 1},
		{"include with value", "include \"a.yay\": 1\n", ErrDirective, 1},
		{"bad macro name", "define a-b: 1\n", ErrDirective, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.in, WithSource("test.yay"))
			if !errors.Is(err, tt.kind) {
				t.Fatalf("got %v, want %v", err, tt.kind)
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("%v is not a parse error", err)
			}
			if tt.line == 0 {
				return
			}
			p := PosOf(err)
			if p == nil || p.Line != tt.line {
				t.Errorf("got position %v, want line %d", p, tt.line)
			}
		})
	}
}
