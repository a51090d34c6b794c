package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/runner/show"
	"tableflip.dev/tabby/pkg/snake"
)

func addToday(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var markdown bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's entry, creating it if needed.",
		Example: `
tabby today
tabby today --json
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

			s := show.Show{
				Service: e.service,
				Today:   true,
				ShowID:  io.ShowID,
				JSON:    output.JSON,

				Markdown: markdown,
				Styled:   snake.Interactive(),
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "Print the entry as markdown.")
	topLevel.AddCommand(cmd)
}
