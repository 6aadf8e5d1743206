package encode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/yay/format"
	"github.com/signadot/yay/ir"
)

func sample() *ir.Node {
	return ir.FromMap(map[string]*ir.Node{
		"name":     ir.FromString("app"),
		"replicas": ir.FromInt(3),
		"ratio":    ir.FromFloat(0.5),
		"debug":    ir.FromBool(false),
		"extra":    ir.Null(),
		"ports":    ir.FromSlice([]*ir.Node{ir.FromInt(80), ir.FromInt(443)}),
		"quoted":   ir.FromString("true"),
	})
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   *ir.Node
		opts []EncodeOption
		want string
	}{
		{
			name: "yaml",
			in:   sample(),
			want: `debug: false
extra: null
name: app
ports:
  - 80
  - 443
quoted: "true"
ratio: 0.5
replicas: 3
`,
		},
		{
			name: "json",
			in:   sample(),
			opts: []EncodeOption{EncodeFormat(format.JSONFormat)},
			want: `{
  "debug": false,
  "extra": null,
  "name": "app",
  "ports": [
    80,
    443
  ],
  "quoted": "true",
  "ratio": 0.5,
  "replicas": 3
}
`,
		},
		{
			name: "json indent",
			in:   ir.FromMap(map[string]*ir.Node{"a": ir.FromInt(1)}),
			opts: []EncodeOption{EncodeFormat(format.JSONFormat), EncodeIndent(4)},
			want: "{\n    \"a\": 1\n}\n",
		},
		{
			name: "field order",
			in: &ir.Node{
				Type:   ir.ObjectType,
				Fields: []string{"z", "a"},
				Values: []*ir.Node{ir.FromInt(1), ir.FromInt(2)},
			},
			want: "z: 1\na: 2\n",
		},
		{
			name: "scalar",
			in:   ir.FromString("hello"),
			want: "hello\n",
		},
		{
			name: "literal",
			in:   ir.FromMap(map[string]*ir.Node{"s": ir.FromString("a\nb\n")}),
			want: "s: |\n  a\n  b\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := Encode(tt.in, buf, tt.opts...); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatFromOpts(t *testing.T) {
	if f := FormatFromOpts(EncodeIndent(3), EncodeFormat(format.JSONFormat)); f != format.JSONFormat {
		t.Errorf("got %s", f)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString(ir.FromSlice([]*ir.Node{ir.FromInt(1)})); got != "- 1" {
		t.Errorf("got %q", got)
	}
}

// markColors tags each colored token with its class.
func markColors() *Colors {
	mark := func(tag string) func(string, ...any) string {
		return func(s string, _ ...any) string { return "<" + tag + ":" + s + ">" }
	}
	return &Colors{
		Default: colorDefault,
		Map: map[Colorable]func(string, ...any) string{
			{Type: ir.ObjectType, Attr: FieldColor}: mark("k"),
			{Type: ir.StringType, Attr: ValueColor}: mark("s"),
			{Type: ir.NumberType, Attr: ValueColor}: mark("n"),
			{Type: ir.BoolType, Attr: ValueColor}:   mark("b"),
			{Type: ir.NullType, Attr: ValueColor}:   mark("z"),
		},
	}
}

func TestColorize(t *testing.T) {
	got := Colorize("name: app\nn: 3\nok: true\nx: null\n", markColors())
	for _, want := range []string{"<k:name>", "<s:app>", "<k:n>", "<n:3>", "<b:true>", "<z:null>"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q does not contain %q", got, want)
		}
	}
	got = Colorize(`{"a": [1, "x"]}`, markColors())
	for _, want := range []string{`<k:"a">`, "<n:1>", `<s:"x">`} {
		if !strings.Contains(got, want) {
			t.Errorf("%q does not contain %q", got, want)
		}
	}
}

func TestColorizePlain(t *testing.T) {
	plain := &Colors{Default: colorDefault}
	src := "a:\n  - 1\n  - two # c\nb: |\n  x\n  y\nc: {d: 'e'}"
	if diff := cmp.Diff(src, Colorize(src, plain)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEncodeColors(t *testing.T) {
	buf := &bytes.Buffer{}
	err := Encode(ir.FromMap(map[string]*ir.Node{"a": ir.FromInt(1)}), buf, EncodeColors(markColors()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<k:a>") || !strings.Contains(buf.String(), "<n:1>") {
		t.Errorf("got %q", buf.String())
	}
}
