package main

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/scott-cotton/cli"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		cfg.Check.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: check requires files", cli.ErrUsage)
	}
	var errs *multierror.Error
	for _, file := range args {
		if err := checkFile(cfg, cc, file); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", file, diagnose(err)))
			continue
		}
		if !cfg.Quiet {
			fmt.Fprintf(cc.Out, "ok %s\n", file)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		fmt.Fprintln(cc.Out, err)
		return cli.ExitCodeErr(1)
	}
	return nil
}

func checkFile(cfg *CheckConfig, cc *cli.Context, file string) error {
	c, err := cfg.newConfig(context.Background(), cc, []string{file})
	if err != nil {
		return err
	}
	_, err = c.Resolve()
	return err
}
