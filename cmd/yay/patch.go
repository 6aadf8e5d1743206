package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/yay/encode"
	"github.com/signadot/yay/libdiff"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: patch requires a patch file", cli.ErrUsage)
	}
	p, err := resolveFile(cfg.MainConfig, cc, args[0])
	if err != nil {
		return fmt.Errorf("error resolving patch %s: %w", args[0], err)
	}
	c, err := cfg.newConfig(context.Background(), cc, args[1:])
	if err != nil {
		return diagnose(err)
	}
	doc, err := c.Resolve()
	if err != nil {
		return diagnose(err)
	}
	res, err := libdiff.Apply(doc, p)
	if err != nil {
		return err
	}
	return encode.Encode(res, cc.Out, cfg.encOpts(cc.Out)...)
}
