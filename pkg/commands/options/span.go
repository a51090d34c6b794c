package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tabby/pkg/timeutil"
)

// SpanOptions picks how far back a listing reaches.
type SpanOptions struct {
	Last string
}

func AddSpanArgs(cmd *cobra.Command, o *SpanOptions) {
	cmd.Flags().StringVar(&o.Last, "last", timeutil.DefaultSpan,
		"Span to include, ending today (for example 3d, 2w, 1mo, 1y).")
}

func (o *SpanOptions) GetSpan() (timeutil.Span, error) {
	return timeutil.ParseSpan(o.Last)
}
