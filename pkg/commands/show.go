package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/runner/show"
	"tableflip.dev/tabby/pkg/snake"
	"tableflip.dev/tabby/pkg/timeutil"
)

func addShow(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var markdown bool

	cmd := &cobra.Command{
		Use:   "show [day]",
		Short: "Show the entry for a day.",
		Example: `
tabby show
tabby show yesterday
tabby show 2024-3-1
tabby show 3/1
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: dayWords,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			day, err := timeutil.ParseDay(strings.Join(args, " "), e.service.Now(), e.cfg.Location)
			if err != nil {
				return output.HandleError(err)
			}
			s := show.Show{
				Service: e.service,
				Day:     day,
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
