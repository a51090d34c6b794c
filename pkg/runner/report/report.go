package report

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/printers"
)

type Report struct {
	Service *app.Service
	Since   time.Time
	Until   time.Time
	JSON    bool
	Printer *printers.PrettyPrint
}

func (n *Report) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not report, no service")
	}
	r, err := n.Service.Report(ctx, n.Since, n.Until)
	if err != nil {
		return err
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if n.JSON {
		return pp.JSON(r)
	}
	pp.Report(r)
	return nil
}
