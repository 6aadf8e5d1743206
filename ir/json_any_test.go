package ir

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromAnyJSON(t *testing.T) {
	in := `{"a": [1, 2.5, "x", true, null], "b": {"c": {}}}`
	dec := json.NewDecoder(strings.NewReader(in))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatal(err)
	}
	node, err := FromAny(v)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"a": []any{int64(1), 2.5, "x", true, nil},
		"b": map[string]any{"c": map[string]any{}},
	}
	if diff := cmp.Diff(want, ToAny(node)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if node.Fields[0] != "a" || node.Fields[1] != "b" {
		t.Errorf("fields not sorted: %v", node.Fields)
	}
}

func TestFromAnyUnsupported(t *testing.T) {
	if _, err := FromAny(struct{}{}); err == nil {
		t.Errorf("expected error")
	}
}
