package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/reminder"
	"tableflip.dev/tabby/pkg/runner/remind"
)

func addRemind(topLevel *cobra.Command) {
	var (
		intention, reflection     bool
		intentionAt, reflectionAt string
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Show or change the daily reminders.",
		Long: `Remind lists the pending daily reminders. Any flag changes the settings,
saves them to the config file and reschedules.`,
		Example: `
tabby remind
tabby remind --intention --intention-at 08:30
tabby remind --reflection=false
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

			prefs := e.cfg.ReminderPrefs
			flags := cmd.Flags()
			if flags.Changed("intention") {
				prefs.IntentionOn = intention
			}
			if flags.Changed("reflection") {
				prefs.ReflectionOn = reflection
			}
			if flags.Changed("intention-at") {
				if prefs.IntentionAt, err = reminder.ParseClock(intentionAt); err != nil {
					return output.HandleError(err)
				}
			}
			if flags.Changed("reflection-at") {
				if prefs.ReflectionAt, err = reminder.ParseClock(reflectionAt); err != nil {
					return output.HandleError(err)
				}
			}

			registry, err := reminder.OpenRegistry(e.cfg.Reminders)
			if err != nil {
				return output.HandleError(err)
			}
			s := remind.Remind{
				Registry: registry,
				Settings: prefs,
				Prefs:    e.cfg,
				Save: flags.Changed("intention") || flags.Changed("reflection") ||
					flags.Changed("intention-at") || flags.Changed("reflection-at"),
				Now:  e.service.Now(),
				JSON: output.JSON,
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVar(&intention, "intention", false, "Enable the morning intention reminder.")
	cmd.Flags().BoolVar(&reflection, "reflection", false, "Enable the evening reflection reminder.")
	cmd.Flags().StringVar(&intentionAt, "intention-at", "", "Time of the intention reminder, HH:MM.")
	cmd.Flags().StringVar(&reflectionAt, "reflection-at", "", "Time of the reflection reminder, HH:MM.")
	topLevel.AddCommand(cmd)
}
