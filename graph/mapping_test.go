package graph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/yay/ir"
)

func TestOverlay(t *testing.T) {
	tests := []struct {
		name string
		in   func() Node
		want any
	}{
		{
			name: "redefine scalar",
			in: func() Node {
				return mapping("k", lit(1), "k", lit(2))
			},
			want: map[string]any{"k": int64(2)},
		},
		{
			name: "redefine across stanzas",
			in: func() Node {
				return NewStanzas(nil, mapping("k", lit(1), "j", lit("x")), mapping("k", lit(2)))
			},
			want: map[string]any{"k": int64(2), "j": "x"},
		},
		{
			name: "merge mappings",
			in: func() Node {
				return NewStanzas(nil,
					mapping("foo", mapping("a", lit(1))),
					mapping("foo", mapping("b", lit(2))))
			},
			want: map[string]any{"foo": map[string]any{"a": int64(1), "b": int64(2)}},
		},
		{
			name: "merge local mappings",
			in: func() Node {
				return mapping("foo", mapping("a", lit(1)), "foo", mapping("a", lit(3), "b", lit(2)))
			},
			want: map[string]any{"foo": map[string]any{"a": int64(3), "b": int64(2)}},
		},
		{
			name: "scalar replaces sequence",
			in: func() Node {
				return mapping("k", seq(lit(1)), "k", lit("s"))
			},
			want: map[string]any{"k": "s"},
		},
		{
			name: "reference sibling",
			in: func() Node {
				return mapping("a", lit(1), "b", NewBinary("+", ident("a"), lit(1), nil))
			},
			want: map[string]any{"a": int64(1), "b": int64(2)},
		},
		{
			name: "reference later definition",
			in: func() Node {
				return NewStanzas(nil,
					mapping("a", lit(1), "b", ident("a")),
					mapping("a", lit(5)))
			},
			want: map[string]any{"a": int64(5), "b": int64(5)},
		},
		{
			name: "empty",
			in: func() Node {
				return NewStanzas(nil)
			},
			want: map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveDoc(t, tt.in())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOverlayMismatch(t *testing.T) {
	tests := []struct {
		name string
		in   Node
	}{
		{
			name: "scalar over mapping",
			in:   mapping("k", mapping("a", lit(1)), "k", lit(2)),
		},
		{
			name: "sequence over mapping",
			in:   mapping("k", mapping("a", lit(1)), "k", seq(lit(2))),
		},
		{
			name: "scalar over earlier stanza mapping",
			in:   NewStanzas(nil, mapping("k", mapping("a", lit(1))), mapping("k", lit(2))),
		},
		{
			name: "sequence over earlier stanza mapping",
			in:   NewStanzas(nil, mapping("k", mapping("a", lit(1))), mapping("x", lit(0)), mapping("k", seq(lit(2)))),
		},
		{
			name: "scalar over earlier layer mapping",
			in: NewStanzas(nil,
				NewStanzas(nil, mapping("k", mapping("a", lit(1)))),
				NewStanzas(nil, mapping("k", lit(2)))),
		},
		{
			name: "mapping over scalar",
			in:   NewStanzas(nil, mapping("k", lit(1)), mapping("k", mapping("a", lit(1)))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveErr(tt.in)
			if !errors.Is(err, ErrMismatch) {
				t.Errorf("got %v, want mismatch", err)
			}
		})
	}
}

func TestLazy(t *testing.T) {
	d := NewDocument(mapping("broken", ident("nowhere"), "ok", lit(1)))
	v, err := d.Get("ok")
	if err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(v, ir.FromInt(1)) {
		t.Errorf("got %v", ir.ToAny(v))
	}
	_, err = d.Resolve()
	if !errors.Is(err, ErrNoSuchKey) {
		t.Errorf("got %v, want no such key", err)
	}
}

func TestGetMissing(t *testing.T) {
	d := NewDocument(mapping("a", mapping("b", lit(1))))
	if _, err := d.Get("a", "c"); !errors.Is(err, ErrNoSuchKey) {
		t.Errorf("got %v, want no such key", err)
	}
	if _, err := d.Get("z"); !errors.Is(err, ErrNoSuchKey) {
		t.Errorf("got %v, want no such key", err)
	}
}

func TestKeys(t *testing.T) {
	m := NewStanzas(nil, mapping("b", lit(1), "a", lit(2)), mapping("c", lit(3), "a", lit(4)))
	r := NewDocument(m).Resolver()
	keys, err := r.Keys(m)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfReference(t *testing.T) {
	err := resolveErr(mapping("a", ident("a")))
	if !errors.Is(err, ErrParadox) {
		t.Errorf("got %v, want paradox", err)
	}
}

func TestMaxDepth(t *testing.T) {
	m := mapping("a", ident("b"), "b", ident("c"), "c", ident("d"), "d", lit(1))
	if err := resolveErr(m, WithMaxDepth(4)); !errors.Is(err, ErrParadox) {
		t.Errorf("got %v, want depth failure", err)
	}
	m = mapping("a", ident("b"), "b", ident("c"), "c", ident("d"), "d", lit(1))
	got := resolveDoc(t, m)
	want := map[string]any{"a": int64(1), "b": int64(1), "c": int64(1), "d": int64(1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	m := mapping("k", lit(1), "k", lit(2), "s", seq(lit("x")))
	c := m.Clone().(*Mapping)
	k, ok := c.Local("k")
	if !ok {
		t.Fatal("k not cloned")
	}
	orig, _ := m.Local("k")
	if k == orig || k.Parent() != Node(c) {
		t.Errorf("k not rebound")
	}
	prev, ok := k.Predecessor().(*Literal)
	if !ok || !ir.Equal(prev.Value(), ir.FromInt(1)) {
		t.Errorf("redefinition not relinked: %#v", k.Predecessor())
	}
	got := resolveDoc(t, c)
	want := map[string]any{"k": int64(2), "s": []any{"x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestLiftRoundTrip(t *testing.T) {
	in := map[string]any{
		"a": []any{int64(1), 2.5, "x", nil, true},
		"b": map[string]any{"c": map[string]any{}},
		"d": []any{},
	}
	v, err := ir.FromAny(in)
	if err != nil {
		t.Fatal(err)
	}
	got := resolveDoc(t, Lift(v, nil))
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
