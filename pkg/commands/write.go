package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/autosave"
	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/runner/write"
)

func addWrite(topLevel *cobra.Command) {
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Edit a day's intention, goal and reflection with autosave.",
		Long: `Write opens an editor for a day's entry. Each field is saved shortly after
you stop typing, and anything pending is saved when the editor closes.`,
		Example: `
tabby write
tabby write --on yesterday
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			day, err := on.GetOn(e.service.Now(), e.cfg.Location)
			if err != nil {
				return output.HandleError(err)
			}
			err = runEditor(ctx, e, day)
			return output.HandleError(err)
		},
	}

	options.AddOnArgs(cmd, on)
	_ = cmd.RegisterFlagCompletionFunc("on", dayCompletions)
	topLevel.AddCommand(cmd)
}

// runEditor opens the autosaving editor on day's entry.
func runEditor(ctx context.Context, e *env, day time.Time) error {
	current, err := e.service.Entry(ctx, day)
	if err != nil {
		return err
	}

	// Edits to another day stay on that day.
	clock := e.service.Now
	if !e.service.IsToday(day) {
		clock = func() time.Time { return day }
	}
	saver := autosave.New(ctx, e.service, autosave.Options{
		Delay:    e.cfg.AutosaveDelay,
		Rollover: e.cfg.Rollover,
		Clock:    clock,
		Logger:   e.log,
	})
	return write.Run(ctx, saver, day, current)
}
