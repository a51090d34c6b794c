package commands

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/commands/options"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/runner/set"
	"tableflip.dev/tabby/pkg/snake"
)

func addSet(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "set <field> <text>",
		Short: "Set a field of a day's entry.",
		Long: `Set writes one field of a day's entry, creating the entry if needed.

Fields: ` + strings.Join(set.Fields, ", "),
		Example: `
tabby set intention "Be present"
tabby set goal "Ship the release" --on tomorrow
tabby set reflection "" --on yesterday
tabby set -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return cobra.MaximumNArgs(2)(cmd, args)
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		ValidArgs: set.Fields,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if i.Interactive {
				if args, err = promptSet(ctx, e, day, args); err != nil {
					return output.HandleError(err)
				}
			}
			s := set.Set{
				Service: e.service,
				Day:     day,
				Field:   args[0],
				Value:   strings.Join(args[1:], " "),
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	options.AddOnArgs(cmd, on)
	options.InteractiveArgs(cmd, i)
	_ = cmd.RegisterFlagCompletionFunc("on", dayCompletions)
	topLevel.AddCommand(cmd)
}

// promptSet asks for whichever of field and text args lacks. The text prompt
// starts from the day's current value.
func promptSet(ctx context.Context, e *env, day time.Time, args []string) ([]string, error) {
	p := snake.IO{}
	if len(args) == 0 {
		choices := make([]snake.Choice, 0, len(set.Fields))
		for _, f := range set.Fields {
			choices = append(choices, snake.Choice{Name: f})
		}
		field, err := p.Select("Field", choices)
		if err != nil {
			return nil, err
		}
		args = append(args, field)
	}
	if len(args) == 1 {
		current, err := e.service.Entry(ctx, day)
		if err != nil {
			return nil, err
		}
		text, err := p.Text(args[0], currentValue(current, args[0]))
		if err != nil {
			return nil, err
		}
		args = append(args, text)
	}
	return args, nil
}

func currentValue(e *entry.Entry, field string) string {
	if e == nil {
		return ""
	}
	switch strings.ToLower(field) {
	case "intention":
		return entry.Text(e.Intention)
	case "goal":
		return entry.Text(e.Goal)
	case "reflection":
		return entry.Text(e.Reflection)
	case "mood":
		return entry.Text(e.Mood)
	}
	return ""
}
