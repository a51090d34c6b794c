package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tabby/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "tabby",
		Short: base.Wrap80("A daily intention, goal and reflection journal."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddOutputArg(cmd, output)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addToday(topLevel)
	addShow(topLevel)
	addGet(topLevel)
	addSet(topLevel)
	addWrite(topLevel)
	addCalendar(topLevel)
	addDelete(topLevel)
	addReset(topLevel)
	addExport(topLevel)
	addImport(topLevel)
	addWidget(topLevel)
	addRemind(topLevel)
	addReport(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
}
