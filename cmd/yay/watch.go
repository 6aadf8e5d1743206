package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"

	"github.com/signadot/yay"
	"github.com/signadot/yay/encode"
	"github.com/signadot/yay/opener"
)

func watch(cfg *WatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Watch.Parse(cc, args)
	if err != nil {
		cfg.Watch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: watch requires files", cli.ErrUsage)
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			theLog.Warn("gops agent", "error", err)
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := yay.NewWatcher(theLog, yay.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	first := true
	run := func() error {
		if !first {
			fmt.Fprintln(cc.Out, "---")
		}
		first = false
		c, err := cfg.newConfig(ctx, cc, args)
		if c != nil {
			cfg.addSources(w, c)
		}
		if err == nil {
			err = resolveTo(cfg.MainConfig, cc, c)
		}
		if err != nil {
			theLog.Error("resolve", "error", diagnose(err))
		}
		return nil
	}
	if err := w.Add(args...); err != nil {
		return err
	}
	run()
	return w.Watch(ctx, run)
}

func resolveTo(cfg *MainConfig, cc *cli.Context, c *yay.Config) error {
	v, err := c.Resolve()
	if err != nil {
		return err
	}
	return encode.Encode(v, cc.Out, cfg.encOpts(cc.Out)...)
}

// addSources watches every document c read, wherever on the search path
// it was found.
func (cfg *MainConfig) addSources(w *yay.Watcher, c *yay.Config) {
	dirs := append([]string{"."}, cfg.Search...)
	for _, src := range c.Sources() {
		if opener.IsURL(src) || filepath.IsAbs(src) {
			continue
		}
		for _, dir := range dirs {
			p := filepath.Join(dir, src)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := w.Add(p); err != nil {
				theLog.Warn("watch", "file", p, "error", err)
			}
		}
	}
}
