package opener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestFSOpen(t *testing.T) {
	fs := memFs(t, map[string]string{
		"a.yay":        "a: 1",
		"inc/b.yay":    "b: 1",
		"lib/b.yay":    "b: 2",
		"/etc/c.yay":   "c: 1",
		"lib/d/e.yay":  "e: 1",
		"inc/only.yay": "only: 1",
	})
	m := New(WithFs(fs), WithSearchPath("inc", "lib"))
	tests := []struct {
		name string
		want string
		data string
	}{
		{"b.yay", "inc/b.yay", "b: 1"},
		{"d/e.yay", "lib/d/e.yay", "e: 1"},
		{"/etc/c.yay", "/etc/c.yay", "c: 1"},
		{"file:///etc/c.yay", "/etc/c.yay", "c: 1"},
		{"only.yay", "inc/only.yay", "only: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := m.Open(context.Background(), tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if r.Name != tt.want {
				t.Errorf("got name %q, want %q", r.Name, tt.want)
			}
			if string(r.Data) != tt.data {
				t.Errorf("got data %q, want %q", r.Data, tt.data)
			}
		})
	}
	if _, err := m.Open(context.Background(), "a.yay"); !errors.Is(err, ErrNotFound) {
		t.Errorf("a.yay outside the search path: got %v, want %v", err, ErrNotFound)
	}
}

func TestFSOpenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFS(afero.NewMemMapFs()).Open(ctx, "a.yay")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestExpand(t *testing.T) {
	fs := memFs(t, map[string]string{
		"conf.d/b.yay":     "",
		"conf.d/a.yay":     "",
		"conf.d/x.json":    "",
		"conf.d/sub/c.yay": "",
		"top.yay":          "",
	})
	m := New(WithFs(fs))
	tests := []struct {
		pattern string
		want    []string
	}{
		{"top.yay", []string{"top.yay"}},
		{"conf.d/*.yay", []string{"conf.d/a.yay", "conf.d/b.yay"}},
		{"conf.d/**/*.yay", []string{"conf.d/a.yay", "conf.d/b.yay", "conf.d/sub/c.yay"}},
		{"conf.d/{a,x}.*", []string{"conf.d/a.yay", "conf.d/x.json"}},
		{"none/*.yay", nil},
		{"https://example.com/*.yay", []string{"https://example.com/*.yay"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := m.Expand(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpandAbsolute(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/srv/conf/a.yay": "",
		"/srv/conf/b.yay": "",
		"/srv/other.yay":  "",
	})
	got, err := NewFS(fs).Glob("/srv/conf/*.yay")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"/srv/conf/a.yay", "/srv/conf/b.yay"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestExpandEscape(t *testing.T) {
	if _, err := NewFS(afero.NewMemMapFs()).Glob("../*.yay"); err == nil {
		t.Error("expected an error")
	}
}

func TestHTTP(t *testing.T) {
	var flaky atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.yay":
			fmt.Fprint(w, "a: 1\n")
		case "/flaky.yay":
			if flaky.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "flaky: 1\n")
		case "/broken.yay":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	m := New(WithFs(afero.NewMemMapFs()), WithRetries(1))
	ctx := context.Background()

	r, err := m.Open(ctx, srv.URL+"/a.yay")
	if err != nil {
		t.Fatal(err)
	}
	if string(r.Data) != "a: 1\n" || r.Name != srv.URL+"/a.yay" {
		t.Errorf("got %q from %q", r.Data, r.Name)
	}
	if _, err := m.Open(ctx, srv.URL+"/flaky.yay"); err != nil {
		t.Errorf("flaky: %v", err)
	}
	if _, err := m.Open(ctx, srv.URL+"/missing.yay"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v, want %v", err, ErrNotFound)
	}
	if _, err := m.Open(ctx, srv.URL+"/broken.yay"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("broken: got %v", err)
	}
}

func TestOpenGlob(t *testing.T) {
	fs := memFs(t, map[string]string{
		"inc/conf.d/b.yay": "b: 1",
		"inc/conf.d/a.yay": "a: 1",
	})
	m := New(WithFs(fs), WithSearchPath("inc"))
	rs, err := m.OpenGlob(context.Background(), "conf.d/*.yay")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range rs {
		got = append(got, r.Name+"="+string(r.Data))
	}
	want := []string{"inc/conf.d/a.yay=a: 1", "inc/conf.d/b.yay=b: 1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
