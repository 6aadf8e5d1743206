package token

import "testing"

func TestPosString(t *testing.T) {
	tests := []struct {
		name string
		pos  *Pos
		want string
	}{
		{"nil", nil, "<unknown>"},
		{"zero", &Pos{}, "<unknown>"},
		{"anonymous", &Pos{Line: 3, Col: 4}, "<input>:3:4"},
		{"named", &Pos{Source: "a.yay", Line: 1, Col: 1}, "a.yay:1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.want {
				t.Errorf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestPosSnippet(t *testing.T) {
	doc := []byte("a: 1\nb: \"{{ c }}\"\n")
	p := &Pos{Line: 2, Col: 4}
	got := p.Snippet(doc)
	want := "   2 | b: \"{{ c }}\"\n     |    ^"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	if got := (&Pos{Line: 9, Col: 1}).Snippet(doc); got != "" {
		t.Errorf("got %q want empty", got)
	}
}

func TestPosShift(t *testing.T) {
	p := &Pos{Source: "x", Line: 2, Col: 3, Offset: 10}
	q := p.Shift(4)
	if q.Col != 7 || q.Offset != 14 || p.Col != 3 {
		t.Errorf("got %+v from %+v", q, p)
	}
}

func TestPosAdvance(t *testing.T) {
	p := &Pos{Line: 2, Col: 3, Offset: 10}
	tests := []struct {
		text string
		want Pos
	}{
		{"", Pos{Line: 2, Col: 3, Offset: 10}},
		{"abc", Pos{Line: 2, Col: 6, Offset: 13}},
		{"é", Pos{Line: 2, Col: 4, Offset: 12}},
		{"ab\ncd", Pos{Line: 3, Col: 3, Offset: 15}},
		{"a\nb\n", Pos{Line: 4, Col: 1, Offset: 14}},
	}
	for _, tt := range tests {
		got := p.Advance(tt.text)
		if *got != tt.want {
			t.Errorf("Advance(%q): got %+v want %+v", tt.text, *got, tt.want)
		}
	}
	if (*Pos)(nil).Advance("x") != nil {
		t.Errorf("nil position should stay nil")
	}
}
