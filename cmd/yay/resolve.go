package main

import (
	"context"

	"github.com/scott-cotton/cli"

	"github.com/signadot/yay/encode"
)

func resolve(cfg *ResolveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Resolve.Parse(cc, args)
	if err != nil {
		cfg.Resolve.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	c, err := cfg.newConfig(context.Background(), cc, args)
	if err != nil {
		return diagnose(err)
	}
	v, err := c.Resolve()
	if err != nil {
		return diagnose(err)
	}
	return encode.Encode(v, cc.Out, cfg.encOpts(cc.Out)...)
}
