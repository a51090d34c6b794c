package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/timeutil"
)

// OnOptions picks the day a command acts on.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a day, example: --on="2024-3-1", --on="3/1" or --on=yesterday. Defaults to today.`)
}

// GetOn resolves the flag relative to now in loc.
func (o *OnOptions) GetOn(now time.Time, loc *time.Location) (time.Time, error) {
	return timeutil.ParseDay(o.OnString, now, loc)
}
