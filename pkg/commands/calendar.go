package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/calendar"
	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/timeutil"

	runner "tableflip.dev/tabby/pkg/runner/calendar"
)

func addCalendar(topLevel *cobra.Command) {
	var focus string
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month with the days that have entries marked.",
		Long: `Calendar prints the month around a day. With --interactive it opens a month
view that scrolls with the arrow keys and [ ], redraws when the journal
changes, and opens the editor for the day picked with enter.`,
		Example: `
tabby calendar
tabby calendar --focus 2024-3-1
tabby calendar -i
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

			now := e.service.Now()
			day, err := timeutil.ParseDay(focus, now, e.cfg.Location)
			if err != nil {
				return output.HandleError(err)
			}
			index := calendar.New(e.p, calendar.Options{
				Window: e.cfg.CalendarWindow,
				Buffer: e.cfg.CalendarBuffer,
				Logger: e.log,
			})
			today := entry.Normalize(now, e.cfg.Location)

			if i.Interactive {
				watchCtx, cancel := context.WithCancel(ctx)
				defer cancel()
				if err := e.service.WatchStore(watchCtx); err != nil {
					e.log.Warn(ctx, "calendar: not watching the journal", "error", err)
				}
				for {
					picked, err := runner.Browse(watchCtx, index, e.service.Signal, day, today)
					if err != nil || picked.IsZero() {
						return output.HandleError(err)
					}
					if err := runEditor(ctx, e, picked); err != nil {
						return output.HandleError(err)
					}
					day = picked
				}
			}

			s := runner.Calendar{
				Index: index,
				Focus: day,
				Today: today,
				JSON:  output.JSON,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "Day to focus on. Defaults to today.")
	options.InteractiveArgs(cmd, i)
	_ = cmd.RegisterFlagCompletionFunc("focus", dayCompletions)
	topLevel.AddCommand(cmd)
}
