package libdiff

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/signadot/yay/ir"
)

// MergePatch returns the RFC 7386 merge patch turning from into to.
func MergePatch(from, to *ir.Node) (*ir.Node, error) {
	a, err := ir.MarshalJSON(from)
	if err != nil {
		return nil, err
	}
	b, err := ir.MarshalJSON(to)
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.CreateMergePatch(a, b)
	if err != nil {
		return nil, fmt.Errorf("merge patch: %w", err)
	}
	return fromJSON(p)
}

// Apply applies patch to doc. An array patch is a list of RFC 6902
// operations, anything else an RFC 7386 merge patch.
func Apply(doc, patch *ir.Node) (*ir.Node, error) {
	d, err := ir.MarshalJSON(doc)
	if err != nil {
		return nil, err
	}
	p, err := ir.MarshalJSON(patch)
	if err != nil {
		return nil, err
	}
	var out []byte
	if patch.Type == ir.ArrayType {
		ops, err := jsonpatch.DecodePatch(p)
		if err != nil {
			return nil, fmt.Errorf("json patch: %w", err)
		}
		out, err = ops.Apply(d)
		if err != nil {
			return nil, fmt.Errorf("json patch: %w", err)
		}
	} else {
		out, err = jsonpatch.MergePatch(d, p)
		if err != nil {
			return nil, fmt.Errorf("merge patch: %w", err)
		}
	}
	return fromJSON(out)
}

func fromJSON(d []byte) (*ir.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return ir.FromAny(v)
}
