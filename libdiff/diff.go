package libdiff

import (
	"fmt"
	"strconv"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/yay/ir"
)

// Change is a difference at Path. From is nil for an addition, To is
// nil for a removal.
type Change struct {
	Path []string
	From *ir.Node
	To   *ir.Node
}

func (c Change) String() string {
	p := "." + strings.Join(c.Path, ".")
	switch {
	case c.From == nil:
		return fmt.Sprintf("+ %s: %s", p, short(c.To))
	case c.To == nil:
		return fmt.Sprintf("- %s: %s", p, short(c.From))
	}
	return fmt.Sprintf("~ %s: %s -> %s", p, short(c.From), short(c.To))
}

func short(n *ir.Node) string {
	d, err := ir.MarshalJSON(n)
	if err != nil {
		return "<" + n.Type.String() + ">"
	}
	return string(d)
}

// Diff returns the changes turning from into to, in document order.
// Objects are compared field by field, arrays item by item.
func Diff(from, to *ir.Node) []Change {
	return diff(nil, from, to, nil)
}

func diff(path []string, from, to *ir.Node, res []Change) []Change {
	switch {
	case from.Type == ir.ObjectType && to.Type == ir.ObjectType:
		return diffObject(path, from, to, res)
	case from.Type == ir.ArrayType && to.Type == ir.ArrayType:
		return diffArray(path, from, to, res)
	case ir.Equal(from, to):
		return res
	}
	return append(res, Change{Path: clonePath(path), From: from, To: to})
}

// diffObject aligns the fields of from and to, each field name mapped to
// a rune.
func diffObject(path []string, from, to *ir.Node, res []Change) []Change {
	fieldMap := map[string]rune{}
	runeMap := map[rune]string{}
	fromRunes := mapFieldsTo(fieldMap, runeMap, from)
	toRunes := mapFieldsTo(fieldMap, runeMap, to)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)
	fi, ti := 0, 0
	for i := range diffs {
		d := &diffs[i]
		for _, r := range d.Text {
			p := append(path, runeMap[r])
			switch d.Type {
			case diffpatch.DiffDelete:
				res = append(res, Change{Path: clonePath(p), From: from.Values[fi]})
				fi++
			case diffpatch.DiffInsert:
				res = append(res, Change{Path: clonePath(p), To: to.Values[ti]})
				ti++
			case diffpatch.DiffEqual:
				res = diff(p, from.Values[fi], to.Values[ti], res)
				fi++
				ti++
			}
		}
	}
	return res
}

func mapFieldsTo(fieldMap map[string]rune, runeMap map[rune]string, n *ir.Node) []rune {
	res := make([]rune, len(n.Fields))
	for i, f := range n.Fields {
		r, ok := fieldMap[f]
		if !ok {
			// skip the surrogate range, which does not survive as text.
			r = rune(len(fieldMap)) + 1
			if r >= 0xd800 {
				r += 0x800
			}
			fieldMap[f] = r
			runeMap[r] = f
		}
		res[i] = r
	}
	return res
}

func diffArray(path []string, from, to *ir.Node, res []Change) []Change {
	n := max(len(from.Values), len(to.Values))
	for i := range n {
		p := append(path, strconv.Itoa(i))
		switch {
		case i >= len(to.Values):
			res = append(res, Change{Path: clonePath(p), From: from.Values[i]})
		case i >= len(from.Values):
			res = append(res, Change{Path: clonePath(p), To: to.Values[i]})
		default:
			res = diff(p, from.Values[i], to.Values[i], res)
		}
	}
	return res
}

func clonePath(p []string) []string {
	return append([]string(nil), p...)
}
