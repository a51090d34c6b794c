package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/backup"

	runner "tableflip.dev/tabby/pkg/runner/backup"
)

func (e *env) codec() *backup.Codec {
	return &backup.Codec{
		Persistence: e.p,
		Documents:   e.cfg.Documents,
		Logger:      e.log,
	}
}

func addExport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every entry to journal_backup.json in the documents directory.",
		Example: `
tabby export
TABBY_DOCUMENTS=/tmp tabby export
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

			s := runner.Export{
				Codec: e.codec(),
				JSON:  output.JSON,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Merge a backup document into the journal.",
		Long: `Import reads a backup document and merges it into the journal. Days in the
document overwrite the matching entries. Nothing is written unless every
record is valid. Without a file the document is read from stdin.`,
		Example: `
tabby import ~/Documents/journal_backup.json
cat backup.json | tabby import
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := runner.Import{
				Codec:   e.codec(),
				Service: e.service,
				In:      os.Stdin,
				JSON:    output.JSON,
			}
			if len(args) == 1 {
				s.Path = args[0]
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
