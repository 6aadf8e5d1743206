package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/yay/encode"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a path", cli.ErrUsage)
	}
	path := args[0]
	c, err := cfg.newConfig(context.Background(), cc, args[1:])
	if err != nil {
		return diagnose(err)
	}
	v, err := c.Get(path)
	if err != nil {
		return diagnose(fmt.Errorf("error getting %s: %w", path, err))
	}
	return encode.Encode(v, cc.Out, cfg.encOpts(cc.Out)...)
}
