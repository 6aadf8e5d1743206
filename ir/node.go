package ir

import (
	"maps"
	"slices"
	"strconv"
)

type Node struct {
	Type   Type
	Fields []string
	Values []*Node

	String  string
	Bool    bool
	Float64 *float64
	Int64   *int64
}

func (y *Node) Clone() *Node {
	res := &Node{
		Type:   y.Type,
		String: y.String,
		Bool:   y.Bool,
	}
	if y.Fields != nil {
		res.Fields = slices.Clone(y.Fields)
	}
	if y.Values != nil {
		res.Values = make([]*Node, len(y.Values))
		for i, v := range y.Values {
			res.Values[i] = v.Clone()
		}
	}
	if y.Float64 != nil {
		f := *y.Float64
		res.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		res.Int64 = &i
	}
	return res
}

func FromString(v string) *Node {
	return &Node{
		Type:   StringType,
		String: v,
	}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type:   ArrayType,
		Values: make([]*Node, len(ySlice)),
	}
	copy(res.Values, ySlice)
	return res
}

// FromMap builds an object with fields sorted by key.
func FromMap(yMap map[string]*Node) *Node {
	res := &Node{
		Type:   ObjectType,
		Fields: slices.Sorted(maps.Keys(yMap)),
	}
	res.Values = make([]*Node, len(res.Fields))
	for i, key := range res.Fields {
		res.Values[i] = yMap[key]
	}
	return res
}

func ToMap(node *Node) map[string]*Node {
	if node.Type != ObjectType {
		return nil
	}
	res := make(map[string]*Node, len(node.Fields))
	for i, f := range node.Fields {
		res[f] = node.Values[i]
	}
	return res
}

func Get(y *Node, field string) *Node {
	i, ok := slices.BinarySearch(y.Fields, field)
	if !ok {
		return nil
	}
	return y.Values[i]
}

// Lookup follows a path of object fields and array indices.
func Lookup(y *Node, path ...string) *Node {
	for _, p := range path {
		if y == nil {
			return nil
		}
		switch y.Type {
		case ObjectType:
			y = Get(y, p)
		case ArrayType:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(y.Values) {
				return nil
			}
			y = y.Values[i]
		default:
			return nil
		}
	}
	return y
}

// Number returns the numeric value of y as a float64.
func (y *Node) Number() (float64, bool) {
	if y.Type != NumberType {
		return 0, false
	}
	if y.Int64 != nil {
		return float64(*y.Int64), true
	}
	if y.Float64 != nil {
		return *y.Float64, true
	}
	return 0, false
}

func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yy := range y.Values {
			if err := yy.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}
