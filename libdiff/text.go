package libdiff

import (
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type textOpts struct {
	color   bool
	context int
}

type TextOption func(*textOpts)

// TextColor colors removed lines red and added lines green.
func TextColor(v bool) TextOption {
	return func(o *textOpts) { o.color = v }
}

// TextContext keeps n unchanged lines around each change, all of them
// when n is negative.
func TextContext(n int) TextOption {
	return func(o *textOpts) { o.context = n }
}

// Text returns a line diff of from and to, each line prefixed by "-",
// "+" or " ". Runs of unchanged lines beyond the context are elided as
// "...". Equal texts give "".
func Text(from, to string, opts ...TextOption) string {
	o := &textOpts{context: 3}
	for _, f := range opts {
		f(o)
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	del, ins := plain, plain
	if o.color {
		red, green := color.New(color.FgRed), color.New(color.FgGreen)
		red.EnableColor()
		green.EnableColor()
		del, ins = red.Sprint, green.Sprint
	}
	changed := false
	buf := &strings.Builder{}
	for i, d := range diffs {
		ls := splitLines(d.Text)
		switch d.Type {
		case diffpatch.DiffDelete:
			changed = true
			for _, l := range ls {
				buf.WriteString(del("-" + l))
				buf.WriteByte('\n')
			}
		case diffpatch.DiffInsert:
			changed = true
			for _, l := range ls {
				buf.WriteString(ins("+" + l))
				buf.WriteByte('\n')
			}
		case diffpatch.DiffEqual:
			writeContext(buf, ls, o.context, i > 0, i < len(diffs)-1)
		}
	}
	if !changed {
		return ""
	}
	return buf.String()
}

func plain(a ...any) string { return a[0].(string) }

func writeContext(buf *strings.Builder, ls []string, n int, before, after bool) {
	head, tail := 0, 0
	if before {
		head = n
	}
	if after {
		tail = n
	}
	if n < 0 || head+tail >= len(ls) {
		for _, l := range ls {
			buf.WriteString(" " + l + "\n")
		}
		return
	}
	for _, l := range ls[:head] {
		buf.WriteString(" " + l + "\n")
	}
	buf.WriteString("...\n")
	for _, l := range ls[len(ls)-tail:] {
		buf.WriteString(" " + l + "\n")
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
