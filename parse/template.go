package parse

import (
	"bytes"
	"regexp"
	"slices"
	"strings"

	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/token"
)

// ParseTemplate converts s into a literal string or, if it contains
// {{ }} expressions, a template interpolating them.
func ParseTemplate(s string, pos *token.Pos) (graph.Node, error) {
	var parts []graph.Node
	off := 0
	for {
		rest := s[off:]
		i := strings.Index(rest, "{{")
		if i < 0 {
			break
		}
		j := closeIndex(rest[i+2:])
		if j < 0 {
			return nil, errorf(ErrExpr, pos.Advance(s[:off+i]), "unterminated {{")
		}
		if i > 0 {
			parts = append(parts, graph.NewLiteral(ir.FromString(rest[:i]), pos.Advance(s[:off])))
		}
		start := off + i + 2
		e, err := ParseExpr(s[start:start+j], pos.Advance(s[:start]))
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
		off = start + j + 2
	}
	if len(parts) == 0 {
		return graph.NewLiteral(ir.FromString(s), pos), nil
	}
	if off < len(s) {
		parts = append(parts, graph.NewLiteral(ir.FromString(s[off:]), pos.Advance(s[:off])))
	}
	return graph.NewTemplate(pos, parts...), nil
}

// closeIndex returns the index of the "}}" closing an interpolation
// which starts at s, skipping braces and quotes of the expression.
func closeIndex(s string) int {
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
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
				continue
			}
			if i+1 < len(s) && s[i+1] == '}' {
				return i
			}
		}
	}
	return -1
}

var (
	templateLine = regexp.MustCompile(`^((?:[ \t]*-[ \t]+)*[ \t]*(?:[^\s'"{#-][^#]*?:[ \t]+)?)(\{\{.*\}\})[ \t]*$`)
	blockHeader  = regexp.MustCompile(`(?:^|[:-])[ \t]*[|>][-+0-9]*[ \t]*(?:#.*)?$`)
)

// quoteTemplates single quotes plain values starting with {{, which YAML
// would otherwise read as flow mappings. Block scalars are left alone.
func quoteTemplates(d []byte) []byte {
	lines := bytes.Split(d, []byte("\n"))
	block := -1
	changed := false
	for i, line := range lines {
		indent := len(line) - len(bytes.TrimLeft(line, " \t"))
		if block >= 0 {
			if len(bytes.TrimSpace(line)) == 0 || indent > block {
				continue
			}
			block = -1
		}
		if blockHeader.Match(line) {
			block = indent
			continue
		}
		m := templateLine.FindSubmatchIndex(line)
		if m == nil || len(bytes.TrimSpace(line[m[2]:m[3]])) == 0 {
			continue
		}
		v := string(line[m[4]:m[5]])
		quoted := "'" + strings.ReplaceAll(v, "'", "''") + "'"
		res := slices.Clone(line[:m[4]])
		res = append(res, quoted...)
		lines[i] = append(res, line[m[5]:]...)
		changed = true
	}
	if !changed {
		return d
	}
	return bytes.Join(lines, []byte("\n"))
}
