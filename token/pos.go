package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pos is the source position of a node. The zero Line means the position
// is unknown.
type Pos struct {
	Source string
	Line   int
	Col    int
	Offset int
}

func (p *Pos) String() string {
	if p == nil || p.Line == 0 {
		return "<unknown>"
	}
	src := p.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", src, p.Line, p.Col)
}

// Shift returns a copy of p moved n columns to the right, used to point
// into interpolated expressions.
func (p *Pos) Shift(n int) *Pos {
	if p == nil {
		return nil
	}
	res := *p
	res.Col += n
	res.Offset += n
	return &res
}

// Advance returns a copy of p moved past text, which may span lines.
func (p *Pos) Advance(text string) *Pos {
	if p == nil {
		return nil
	}
	nl := strings.LastIndexByte(text, '\n')
	if nl < 0 {
		res := p.Shift(utf8.RuneCountInString(text))
		res.Offset += len(text) - utf8.RuneCountInString(text)
		return res
	}
	res := *p
	res.Line += strings.Count(text, "\n")
	res.Col = utf8.RuneCountInString(text[nl+1:]) + 1
	res.Offset += len(text)
	return &res
}

// Snippet renders the line of doc containing p followed by a caret under
// the column of p.
func (p *Pos) Snippet(doc []byte) string {
	if p == nil || p.Line == 0 {
		return ""
	}
	lines := strings.Split(string(doc), "\n")
	if p.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[p.Line-1], "\r")
	col := max(p.Col, 1)
	prefix := fmt.Sprintf("%4d | ", p.Line)
	buf := &strings.Builder{}
	buf.WriteString(prefix)
	buf.WriteString(line)
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(" ", len(prefix)-2))
	buf.WriteString("| ")
	for i := 0; i < col-1 && i < len(line); i++ {
		if line[i] == '\t' {
			buf.WriteByte('\t')
			continue
		}
		buf.WriteByte(' ')
	}
	buf.WriteByte('^')
	return buf.String()
}
