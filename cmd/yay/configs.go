package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/signadot/yay"
	"github.com/signadot/yay/encode"
	"github.com/signadot/yay/format"
	"github.com/signadot/yay/opener"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='encode with color'"`
	J     bool `cli:"name=j aliases=json desc='output json'"`
	Y     bool `cli:"name=y aliases=yaml desc='output yaml'"`

	Secrets string `cli:"name=secrets desc='file whose strings are all secrets, loaded last'"`
	Retries int    `cli:"name=retries desc='retries of failed http reads'"`

	Search []string
	Vars   map[string]any

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) searchOpt(_ *cli.Context, v string) (any, error) {
	cfg.Search = append(cfg.Search, v)
	return v, nil
}

// varOpt binds name=value. The value is read as YAML, so -e n=3 binds a
// number and -e n=x a string.
func (cfg *MainConfig) varOpt(_ *cli.Context, v string) (any, error) {
	name, val, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: expected name=value, got %q", cli.ErrUsage, v)
	}
	var x any
	if err := yaml.Unmarshal([]byte(val), &x); err != nil {
		x = val
	}
	cfg.Vars[name] = x
	return x, nil
}

func (cfg *MainConfig) opener() *opener.Mux {
	return opener.New(
		opener.WithSearchPath(append([]string{"."}, cfg.Search...)...),
		opener.WithLogger(theLog),
		opener.WithRetries(cfg.Retries))
}

// newConfig loads files as layers. No files means standard input.
func (cfg *MainConfig) newConfig(ctx context.Context, cc *cli.Context, files []string) (*yay.Config, error) {
	c := yay.New(
		yay.WithOpener(cfg.opener()),
		yay.WithContext(ctx),
		yay.WithVars(cfg.Vars))
	if len(files) == 0 {
		d, err := io.ReadAll(cc.In)
		if err != nil {
			return nil, err
		}
		if err := c.Load(d, "<stdin>"); err != nil {
			return nil, err
		}
	} else if err := c.LoadAll(files...); err != nil {
		return nil, err
	}
	if cfg.Secrets != "" {
		d, err := os.ReadFile(cfg.Secrets)
		if err != nil {
			return nil, err
		}
		if err := c.LoadSecret(d, cfg.Secrets); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (cfg *MainConfig) format() format.Format {
	if cfg.J {
		return format.JSONFormat
	}
	if !cfg.Y && cfg.Out != "" && cfg.Out != "-" {
		return format.FromPath(cfg.Out)
	}
	return format.YAMLFormat
}

func (cfg *MainConfig) colors(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return false
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeFormat(cfg.format()),
	}
	if cfg.colors(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

type ResolveConfig struct {
	*MainConfig
	Resolve *cli.Command
}

type GetConfig struct {
	*MainConfig
	Get *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q desc='only report errors'"`
	Check *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Merge   bool `cli:"name=merge desc='print an RFC 7386 merge patch'"`
	Paths   bool `cli:"name=paths desc='print changed paths'"`
	Context int  `cli:"name=U desc='lines of context, -1 for all'"`
	Diff    *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Patch *cli.Command
}

type WatchConfig struct {
	*MainConfig
	Gops  bool `cli:"name=gops desc='start the gops agent'"`
	Watch *cli.Command
}
