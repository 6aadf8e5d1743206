package yay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/signadot/yay/debug"
	"github.com/signadot/yay/graph"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/opener"
	"github.com/signadot/yay/parse"
)

// Config is a stack of yay documents. Each loaded document overlays the
// ones loaded before it, as the documents of a single file do.
type Config struct {
	opener   opener.Opener
	ctx      context.Context
	vars     map[string]any
	maxDepth int

	layers *graph.Stanzas

	mu      sync.Mutex
	sources []string
}

type Option func(*Config)

// WithOpener sets the opener for LoadURI and includes. The default reads
// the OS filesystem from the working directory, and http(s) URLs.
func WithOpener(o opener.Opener) Option {
	return func(c *Config) { c.opener = o }
}

// WithContext sets the context of reads done by the opener.
func WithContext(ctx context.Context) Option {
	return func(c *Config) { c.ctx = ctx }
}

// WithVars binds variables visible to every expression. They shadow top
// level keys of the same name.
func WithVars(vars map[string]any) Option {
	return func(c *Config) { c.vars = vars }
}

func WithMaxDepth(n int) Option {
	return func(c *Config) { c.maxDepth = n }
}

func New(opts ...Option) *Config {
	c := &Config{
		ctx:      context.Background(),
		maxDepth: graph.DefaultMaxDepth,
		layers:   graph.NewStanzas(nil),
	}
	for _, f := range opts {
		f(c)
	}
	if c.opener == nil {
		c.opener = opener.New()
	}
	return c
}

// Load parses data, named name in diagnostics, as the next layer.
func (c *Config) Load(data []byte, name string) error {
	return c.load(data, name)
}

// LoadSecret is Load treating every plain string as a secret.
func (c *Config) LoadSecret(data []byte, name string) error {
	return c.load(data, name, parse.ParseSecret())
}

func (c *Config) load(data []byte, name string, opts ...parse.ParseOption) error {
	doc, err := parse.Parse(data, append(opts, parse.WithSource(name))...)
	if err != nil {
		return err
	}
	c.layers.Append(doc)
	return nil
}

// LoadURI opens name with the opener and loads it. A glob loads every
// match in order and must match something.
func (c *Config) LoadURI(name string) error {
	rs, err := c.open(name)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		return fmt.Errorf("%w: no match for %s", opener.ErrNotFound, name)
	}
	for _, r := range rs {
		if err := c.Load(r.Data, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll loads each name in turn, reporting every failure.
func (c *Config) LoadAll(names ...string) error {
	var errs *multierror.Error
	for _, name := range names {
		if err := c.LoadURI(name); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (c *Config) open(name string) ([]*opener.Resource, error) {
	if g, ok := c.opener.(opener.Globber); ok && opener.IsGlob(name) && !opener.IsURL(name) {
		rs, err := g.OpenGlob(c.ctx, name)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			c.addSource(r.Name)
		}
		return rs, nil
	}
	r, err := c.opener.Open(c.ctx, name)
	if err != nil {
		return nil, err
	}
	c.addSource(r.Name)
	return []*opener.Resource{r}, nil
}

func (c *Config) addSource(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.sources, name) {
		c.sources = append(c.sources, name)
	}
}

// Sources returns the names of every document read so far, includes
// among them.
func (c *Config) Sources() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sources)
}

// Document returns the loaded layers ready for resolution.
func (c *Config) Document() (*graph.Document, error) {
	var root graph.Node = c.layers
	if len(c.vars) != 0 {
		bindings := make(map[string]graph.Node, len(c.vars))
		for k, v := range c.vars {
			n, err := ir.FromAny(v)
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", k, err)
			}
			bindings[k] = graph.Lift(n, nil)
		}
		root = graph.NewContext(c.layers, bindings, nil)
	}
	return graph.NewDocument(root, graph.WithLoader(&includer{c: c}), graph.WithMaxDepth(c.maxDepth)), nil
}

// Resolve resolves every layer into a single value.
func (c *Config) Resolve() (*ir.Node, error) {
	d, err := c.Document()
	if err != nil {
		return nil, err
	}
	return d.Resolve()
}

// Get resolves the value at a dotted path such as "a.b.0". An empty
// path is the whole configuration.
func (c *Config) Get(path string) (*ir.Node, error) {
	d, err := c.Document()
	if err != nil {
		return nil, err
	}
	return d.Get(SplitPath(path)...)
}

// SplitPath splits a dotted path into keys.
func SplitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "."), ".")
}

// includer loads included documents through the opener of a Config.
type includer struct {
	c *Config
}

func (in *includer) Load(name string) (graph.Node, error) {
	rs, err := in.c.open(name)
	if err != nil {
		return nil, err
	}
	if !opener.IsGlob(name) || opener.IsURL(name) {
		return in.parse(rs[0])
	}
	if debug.Include() {
		debug.Logf("include %s: %d matches\n", name, len(rs))
	}
	res := graph.NewStanzas(nil)
	res.SetSource(name)
	for _, r := range rs {
		doc, err := in.parse(r)
		if err != nil {
			return nil, err
		}
		res.Append(doc)
	}
	return res, nil
}

func (in *includer) parse(r *opener.Resource) (graph.Node, error) {
	doc, err := parse.Parse(r.Data, parse.WithSource(r.Name))
	if err != nil {
		var pe *parse.Error
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}
	return doc, nil
}
