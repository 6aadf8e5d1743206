package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/yay/encode"
	"github.com/signadot/yay/ir"
	"github.com/signadot/yay/libdiff"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	if cfg.Merge && cfg.Paths {
		return fmt.Errorf("%w: -merge and -paths are exclusive", cli.ErrUsage)
	}
	a, err := resolveFile(cfg.MainConfig, cc, args[0])
	if err != nil {
		return fmt.Errorf("error resolving %s: %w", args[0], err)
	}
	b, err := resolveFile(cfg.MainConfig, cc, args[1])
	if err != nil {
		return fmt.Errorf("error resolving %s: %w", args[1], err)
	}
	if ir.Equal(a, b) {
		return nil
	}
	switch {
	case cfg.Merge:
		p, err := libdiff.MergePatch(a, b)
		if err != nil {
			return err
		}
		if err := encode.Encode(p, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
			return err
		}
	case cfg.Paths:
		for _, c := range libdiff.Diff(a, b) {
			fmt.Fprintln(cc.Out, c)
		}
	default:
		opts := []encode.EncodeOption{encode.EncodeFormat(cfg.format())}
		sa, err := encode.String(a, opts...)
		if err != nil {
			return err
		}
		sb, err := encode.String(b, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "--- %s\n+++ %s\n", args[0], args[1])
		fmt.Fprint(cc.Out, libdiff.Text(sa+"\n", sb+"\n",
			libdiff.TextColor(cfg.colors(cc.Out)),
			libdiff.TextContext(cfg.Context)))
	}
	return cli.ExitCodeErr(1)
}

func resolveFile(cfg *MainConfig, cc *cli.Context, file string) (*ir.Node, error) {
	c, err := cfg.newConfig(context.Background(), cc, []string{file})
	if err != nil {
		return nil, diagnose(err)
	}
	v, err := c.Resolve()
	if err != nil {
		return nil, diagnose(err)
	}
	return v, nil
}
