package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"tableflip.dev/tabby/pkg/config"
	"tableflip.dev/tabby/pkg/store"
)

// Info prints where tabby keeps things.
type Info struct {
	Config      *config.Config
	Persistence store.Persistence
	Out         io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = os.Stdout
	}

	if override := os.Getenv(config.EnvConfigPath); override != "" {
		fmt.Fprintln(out, config.EnvConfigPath, "found on env, using", override)
	} else {
		fmt.Fprintln(out, config.EnvConfigPath, "env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load()
		if err != nil {
			return err
		}
	}
	if f := n.Config.File(); f != "" {
		fmt.Fprintln(out, "Config.file:   ", f)
	}
	fmt.Fprintln(out, "Config.path:   ", n.Config.BasePath())
	fmt.Fprintln(out, "Config.backend:", n.Config.Backend())
	fmt.Fprintln(out, "Documents:     ", n.Config.Documents)
	fmt.Fprintln(out, "Widget:        ", n.Config.WidgetRoot, n.Config.WidgetGroup)
	fmt.Fprintln(out, "Reminders:     ", n.Config.Reminders)

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	all, err := n.Persistence.FetchAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Entries:        %d\n", len(all))
	if len(all) > 0 {
		fmt.Fprintf(out, "  first %s\n", all[0].Day.Format("2006-01-02"))
		fmt.Fprintf(out, "  last  %s\n", all[len(all)-1].Day.Format("2006-01-02"))
	}
	return nil
}
