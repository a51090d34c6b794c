package show

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/printers"
)

// Show prints one day's entry.
type Show struct {
	Service *app.Service
	Day     time.Time
	// Today shows the current day, creating its entry when missing.
	Today  bool
	ShowID bool
	JSON   bool
	// Markdown prints the entry as a markdown document, styled when Styled.
	Markdown bool
	Styled   bool

	Printer *printers.PrettyPrint
}

func (n *Show) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: n.ShowID}
	}

	var (
		e   *entry.Entry
		err error
	)
	if n.Today {
		n.Day = n.Service.Now()
		e, err = n.Service.Today(ctx)
	} else {
		e, err = n.Service.Entry(ctx, n.Day)
	}
	if err != nil {
		return err
	}

	if n.JSON {
		return pp.JSON(e)
	}
	if e == nil {
		pp.Missing(n.Day.Format("Monday, January 2, 2006"))
		return nil
	}
	if n.Markdown {
		return pp.EntryMarkdown(e, printers.DefaultWidth, n.Styled)
	}
	pp.Entry(e)
	return nil
}
