package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scott-cotton/cli"

	"github.com/signadot/yay/format"
	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/token"
)

func TestVarOpt(t *testing.T) {
	cfg := &MainConfig{Vars: map[string]any{}}
	for _, v := range []string{"env=prod", "debug=true", "eq=a=b"} {
		if _, err := cfg.varOpt(nil, v); err != nil {
			t.Fatalf("%s: %v", v, err)
		}
	}
	want := map[string]any{"env": "prod", "debug": true, "eq": "a=b"}
	if diff := cmp.Diff(want, cfg.Vars); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, v := range []string{"novalue", "=x"} {
		if _, err := cfg.varOpt(nil, v); !errors.Is(err, cli.ErrUsage) {
			t.Errorf("%s: got %v, want %v", v, err, cli.ErrUsage)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		cfg  MainConfig
		want format.Format
	}{
		{MainConfig{}, format.YAMLFormat},
		{MainConfig{J: true}, format.JSONFormat},
		{MainConfig{Out: "out.json"}, format.JSONFormat},
		{MainConfig{Out: "out.json", Y: true}, format.YAMLFormat},
		{MainConfig{Out: "-"}, format.YAMLFormat},
	}
	for _, tt := range tests {
		if got := tt.cfg.format(); got != tt.want {
			t.Errorf("%+v: got %s, want %s", tt.cfg, got, tt.want)
		}
	}
}

func TestDiagnose(t *testing.T) {
	f := filepath.Join(t.TempDir(), "a.yay")
	if err := os.WriteFile(f, []byte("a: 1\nb: \"{{ a + x }}\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := &graph.Error{
		Kind: graph.ErrNoSuchKey,
		Msg:  "x",
		Pos:  &token.Pos{Source: f, Line: 2, Col: 4},
	}
	got := diagnose(err)
	if !errors.Is(got, graph.ErrNoSuchKey) {
		t.Errorf("got %v, want it to wrap %v", got, graph.ErrNoSuchKey)
	}
	if !strings.Contains(got.Error(), `b: "{{ a + x }}"`) || !strings.Contains(got.Error(), "^") {
		t.Errorf("no snippet in %q", got)
	}
	plain := errors.New("plain")
	if diagnose(plain) != plain {
		t.Error("an error without a position was changed")
	}
	if diagnose(nil) != nil {
		t.Error("nil error was changed")
	}
}
