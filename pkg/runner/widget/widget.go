package widget

import (
	"context"
	"errors"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/printers"
	"tableflip.dev/tabby/pkg/widget"
)

// Widget prints what the home-screen widget shows, optionally following
// refresh requests until ctx ends.
type Widget struct {
	Bridge  *widget.Bridge
	Service *app.Service
	// Sync republishes today's entry before reading.
	Sync    bool
	Watch   bool
	JSON    bool
	Printer *printers.PrettyPrint
}

func (n *Widget) Do(ctx context.Context) error {
	if n.Bridge == nil {
		return errors.New("can not show widget, no bridge")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if n.Sync && n.Service != nil {
		if err := n.Service.SyncWidget(ctx); err != nil {
			return err
		}
	}
	if err := n.print(ctx, pp); err != nil {
		return err
	}
	if !n.Watch {
		return nil
	}

	reloads, err := n.Bridge.Watch(ctx)
	if err != nil {
		return err
	}
	for range reloads {
		if err := n.print(ctx, pp); err != nil {
			return err
		}
	}
	return nil
}

func (n *Widget) print(ctx context.Context, pp *printers.PrettyPrint) error {
	s, err := n.Bridge.Snapshot(ctx)
	if err != nil {
		return err
	}
	if n.JSON {
		return pp.JSON(s)
	}
	pp.Widget(s)
	return nil
}
