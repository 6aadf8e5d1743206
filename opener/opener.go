package opener

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/signadot/yay/debug"
)

var ErrNotFound = errors.New("not found")

// Resource is a document read by an Opener.
type Resource struct {
	// Name is where the document was found: a file path or a URL.
	Name string
	Data []byte
}

type Opener interface {
	Open(ctx context.Context, name string) (*Resource, error)
}

// Globber is implemented by openers that expand glob patterns.
type Globber interface {
	OpenGlob(ctx context.Context, pattern string) ([]*Resource, error)
}

// Mux opens http(s) URLs over the network and everything else from a
// filesystem search path.
type Mux struct {
	fs   *FS
	http *HTTP
}

type muxOpts struct {
	fs      afero.Fs
	search  []string
	logger  *slog.Logger
	retries int
}

type Option func(*muxOpts)

// WithFs sets the filesystem documents are read from. The default is
// the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *muxOpts) { o.fs = fs }
}

// WithSearchPath appends directories searched for relative names.
func WithSearchPath(dirs ...string) Option {
	return func(o *muxOpts) { o.search = append(o.search, dirs...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *muxOpts) { o.logger = l }
}

// WithRetries sets how many times a failed HTTP request is retried.
func WithRetries(n int) Option {
	return func(o *muxOpts) { o.retries = n }
}

func New(opts ...Option) *Mux {
	o := &muxOpts{retries: defaultRetries}
	for _, f := range opts {
		f(o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	return &Mux{
		fs:   NewFS(o.fs, o.search...),
		http: NewHTTP(o.logger, o.retries),
	}
}

// FS returns the filesystem opener of m.
func (m *Mux) FS() *FS { return m.fs }

func (m *Mux) Open(ctx context.Context, name string) (*Resource, error) {
	if debug.Open() {
		debug.Logf("open %s\n", name)
	}
	if IsURL(name) {
		return m.http.Open(ctx, name)
	}
	return m.fs.Open(ctx, strings.TrimPrefix(name, "file://"))
}

// Expand returns the names a pattern stands for: the sorted glob matches
// when name is a glob, name itself otherwise.
func (m *Mux) Expand(name string) ([]string, error) {
	if IsURL(name) || !IsGlob(name) {
		return []string{name}, nil
	}
	return m.fs.Glob(strings.TrimPrefix(name, "file://"))
}

// OpenGlob opens every file matching pattern, in sorted order.
func (m *Mux) OpenGlob(ctx context.Context, pattern string) ([]*Resource, error) {
	names, err := m.Expand(pattern)
	if err != nil {
		return nil, err
	}
	res := make([]*Resource, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := m.fs.OpenPath(name)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

func IsURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// IsGlob reports whether name contains glob meta characters.
func IsGlob(name string) bool {
	return strings.ContainsAny(name, "*?[{")
}
