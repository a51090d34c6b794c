package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	so := &options.SpanOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"get", "ls"},
		Short:   "List the entries of recent days.",
		Example: `
tabby list
tabby list --last 2w
tabby get --last 1mo --json
`,
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
			s := get.Get{
				Service: e.service,
				Since:   span.Start(until),
				Until:   until,
				ShowID:  io.ShowID,
				JSON:    output.JSON,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	options.AddSpanArgs(cmd, so)
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
