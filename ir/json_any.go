package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

func MarshalJSON(node *Node) ([]byte, error) {
	return json.Marshal(ToAny(node))
}

// ToAny converts node to the generic representation used by encoding/json.
// Integers are returned as int64.
func ToAny(node *Node) any {
	switch node.Type {
	case ObjectType:
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			res[f] = ToAny(node.Values[i])
		}
		return res
	case ArrayType:
		res := make([]any, len(node.Values))
		for i, elt := range node.Values {
			res[i] = ToAny(elt)
		}
		return res
	case StringType:
		return node.String
	case NumberType:
		if node.Int64 != nil {
			return *node.Int64
		}
		if node.Float64 != nil {
			return *node.Float64
		}
		return nil
	case BoolType:
		return node.Bool
	default:
		return nil
	}
}

// FromAny converts a generic value (as produced by encoding/json or a YAML
// decoder) into a Node.
func FromAny(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return x.Clone(), nil
	case string:
		return FromString(x), nil
	case bool:
		return FromBool(x), nil
	case int:
		return FromInt(int64(x)), nil
	case int64:
		return FromInt(x), nil
	case int32:
		return FromInt(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return FromFloat(float64(x)), nil
		}
		return FromInt(int64(x)), nil
	case float64:
		return FromFloat(x), nil
	case float32:
		return FromFloat(float64(x)), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return FromInt(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return FromFloat(f), nil
	case []any:
		res := make([]*Node, len(x))
		for i, elt := range x {
			n, err := FromAny(elt)
			if err != nil {
				return nil, err
			}
			res[i] = n
		}
		return FromSlice(res), nil
	case map[string]any:
		res := make(map[string]*Node, len(x))
		for k, elt := range x {
			n, err := FromAny(elt)
			if err != nil {
				return nil, err
			}
			res[k] = n
		}
		return FromMap(res), nil
	case map[any]any:
		res := make(map[string]*Node, len(x))
		for k, elt := range x {
			n, err := FromAny(elt)
			if err != nil {
				return nil, err
			}
			res[keyString(k)] = n
		}
		return FromMap(res), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to ir", v)
	}
}

func keyString(k any) string {
	switch x := k.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(k)
	}
}
