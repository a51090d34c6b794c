package get

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/printers"
)

// Get lists the entries of a day range.
type Get struct {
	Service *app.Service
	Since   time.Time
	Until   time.Time
	ShowID  bool
	JSON    bool
	Printer *printers.PrettyPrint
}

const layoutUS = "January 2, 2006"

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: n.ShowID}
	}
	all, err := n.Service.Range(ctx, n.Since, n.Until)
	if err != nil {
		return err
	}
	if n.JSON {
		return pp.JSON(all)
	}
	title := fmt.Sprintf("%s - %s", n.Since.Format(layoutUS), n.Until.Format(layoutUS))
	pp.Entries(title, all...)
	return nil
}
