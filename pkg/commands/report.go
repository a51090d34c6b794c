package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/runner/report"
)

func addReport(topLevel *cobra.Command) {
	so := &options.SpanOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise recent entries and writing streaks.",
		Long: `Report counts the filled-in fields and written days within the span, and
the longest and current streaks of consecutive written days.

Examples:
  tabby report
  tabby report --last 3d
  tabby report --last 1mo2w`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			span, err := so.GetSpan()
			if err != nil {
				return output.HandleError(err)
			}
			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			until := entry.Normalize(e.service.Now(), e.cfg.Location)
			s := report.Report{
				Service: e.service,
				Since:   span.Start(until),
				Until:   until,
				JSON:    output.JSON,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	options.AddSpanArgs(cmd, so)
	topLevel.AddCommand(cmd)
}
