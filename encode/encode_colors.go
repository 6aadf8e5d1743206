package encode

import (
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/token"

	"github.com/signadot/yay/ir"
)

type Colorable struct {
	Type ir.Type
	Attr ColorAttr
}

type ColorAttr int

const (
	CommentColor ColorAttr = iota
	TagColor
	FieldColor
	ValueColor
	SepColor
	LiteralMultiColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	for _, t := range ir.Types() {
		able := Colorable{
			Type: t,
			Attr: TagColor,
		}
		colors.Map[able] = color.RGB(74, 92, 138).SprintfFunc()
		able.Attr = CommentColor
		colors.Map[able] = color.BlueString
		able.Attr = SepColor
		colors.Map[able] = color.RGB(255, 0, 196).SprintfFunc()
	}
	able := Colorable{Attr: ValueColor}

	able.Type = ir.NumberType
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()

	able.Type = ir.NullType
	colors.Map[able] = color.RGB(168, 0, 196).SprintfFunc()

	able.Type = ir.BoolType
	colors.Map[able] = color.CyanString

	able.Type = ir.ObjectType
	able.Attr = FieldColor
	colors.Map[able] = color.RGB(128, 168, 196).SprintfFunc()
	able.Attr = SepColor
	colors.Map[able] = color.RGB(196, 128, 128).SprintfFunc()

	able.Type = ir.StringType
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(8, 196, 16).SprintfFunc()
	able.Attr = LiteralMultiColor
	colors.Map[able] = color.RGB(198, 198, 46).SprintfFunc()
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.ReplaceAll(v, "%", "%%"))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(t ir.Type, a ColorAttr, s string) string {
	return c.Get(t, a)(s)
}

func (c *Colors) Get(t ir.Type, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Type: t, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}

// Colorize colors YAML or JSON text. The text is otherwise unchanged.
func Colorize(src string, c *Colors) string {
	buf := &strings.Builder{}
	for _, tk := range lexer.Tokenize(src) {
		t, a := classify(tk)
		for i, line := range strings.Split(tk.Origin, "\n") {
			if i > 0 {
				buf.WriteByte('\n')
			}
			core := strings.TrimSpace(line)
			if core == "" {
				buf.WriteString(line)
				continue
			}
			start := strings.Index(line, core)
			buf.WriteString(line[:start])
			buf.WriteString(c.Color(t, a, core))
			buf.WriteString(line[start+len(core):])
		}
	}
	return buf.String()
}

func classify(tk *token.Token) (ir.Type, ColorAttr) {
	switch tk.PreviousType() {
	case token.LiteralType, token.FoldedType:
		if tk.Type == token.StringType {
			return ir.StringType, LiteralMultiColor
		}
	}
	if tk.NextType() == token.MappingValueType {
		return ir.ObjectType, FieldColor
	}
	switch tk.Type {
	case token.CommentType:
		return ir.StringType, CommentColor
	case token.TagType, token.AnchorType, token.AliasType:
		return ir.StringType, TagColor
	case token.NullType, token.ImplicitNullType:
		return ir.NullType, ValueColor
	case token.BoolType:
		return ir.BoolType, ValueColor
	case token.IntegerType, token.BinaryIntegerType, token.OctetIntegerType,
		token.HexIntegerType, token.FloatType, token.InfinityType, token.NanType:
		return ir.NumberType, ValueColor
	case token.StringType, token.SingleQuoteType, token.DoubleQuoteType:
		return ir.StringType, ValueColor
	case token.LiteralType, token.FoldedType:
		return ir.StringType, LiteralMultiColor
	case token.MappingValueType, token.MappingStartType, token.MappingEndType:
		return ir.ObjectType, SepColor
	case token.SequenceEntryType, token.SequenceStartType, token.SequenceEndType, token.CollectEntryType:
		return ir.ArrayType, SepColor
	}
	return ir.NullType, TagColor
}
