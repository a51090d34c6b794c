package remove

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/printers"
)

// Delete removes one day's entry.
type Delete struct {
	Service *app.Service
	Day     time.Time
	Printer *printers.PrettyPrint
}

func (n *Delete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no service")
	}
	ok, err := n.Service.Delete(ctx, n.Day)
	if err != nil {
		return err
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	key := n.Day.Format(entry.LayoutDay)
	if !ok {
		_, err = fmt.Fprintf(pp.Writer(), "No entry for %s\n", key)
		return err
	}
	_, err = fmt.Fprintf(pp.Writer(), "Deleted %s\n", key)
	return err
}

// Reset deletes the whole journal. Confirm must be set.
type Reset struct {
	Service *app.Service
	Confirm bool
	Printer *printers.PrettyPrint
}

var ErrNotConfirmed = errors.New("reset needs --yes")

func (n *Reset) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not reset, no service")
	}
	if !n.Confirm {
		return ErrNotConfirmed
	}
	if err := n.Service.Reset(ctx); err != nil {
		return err
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	_, err := fmt.Fprintln(pp.Writer(), "Journal reset")
	return err
}
