package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	runner "tableflip.dev/tabby/pkg/runner/widget"
)

func addWidget(topLevel *cobra.Command) {
	var (
		watch bool
		sync  bool
	)

	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Show what the home-screen widget displays.",
		Example: `
tabby widget
tabby widget --sync
tabby widget --watch
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			e, err := openEnv(ctx)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			if e.widget == nil {
				return output.HandleError(errNoWidget)
			}

			s := runner.Widget{
				Bridge:  e.widget,
				Service: e.service,
				Sync:    sync,
				Watch:   watch,
				JSON:    output.JSON,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reprint whenever a refresh is requested.")
	cmd.Flags().BoolVar(&sync, "sync", false, "Republish today's entry before reading.")
	topLevel.AddCommand(cmd)
}
