package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/runner/remove"
	"tableflip.dev/tabby/pkg/snake"
	"tableflip.dev/tabby/pkg/timeutil"
)

func addDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <day>",
		Aliases: []string{"rm"},
		Short:   "Delete the entry for a day.",
		Example: `
tabby delete yesterday
tabby delete 2024-3-1
`,
		Args:      cobra.MinimumNArgs(1),
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
			s := remove.Delete{
				Service: e.service,
				Day:     day,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}

func addReset(topLevel *cobra.Command) {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every entry in the journal.",
		Example: `
tabby reset
tabby reset --yes
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

			if !yes && !output.JSON && snake.Interactive() {
				if yes, err = (snake.IO{}).Confirm("Delete every entry"); err != nil {
					return output.HandleError(err)
				}
			}
			s := remove.Reset{
				Service: e.service,
				Confirm: yes,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting the whole journal.")
	topLevel.AddCommand(cmd)
}
