package calendar

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/tabby/pkg/calendar"
	"tableflip.dev/tabby/pkg/printers"
)

// Calendar prints the month around a focus day.
type Calendar struct {
	Index   *calendar.Index
	Focus   time.Time
	Today   time.Time
	JSON    bool
	Printer *printers.PrettyPrint
}

type day struct {
	Day      string `json:"day"`
	HasEntry bool   `json:"hasEntry"`
}

func (n *Calendar) Do(ctx context.Context) error {
	if n.Index == nil {
		return errors.New("can not show calendar, no index")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	focus := n.Index.Clamp(n.Focus)
	if _, err := n.Index.Focus(ctx, focus); err != nil {
		return err
	}

	if n.JSON {
		var out []day
		for _, d := range n.Index.Days() {
			if d.Date.Month() == focus.Month() && d.Date.Year() == focus.Year() {
				out = append(out, day{Day: d.Date.Format("2006-01-02"), HasEntry: d.HasEntry})
			}
		}
		return pp.JSON(out)
	}
	pp.Month(focus, n.Today, n.Index.Days())
	return nil
}
