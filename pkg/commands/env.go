package commands

import (
	"context"
	"errors"
	"os"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/changes"
	"tableflip.dev/tabby/pkg/config"
	"tableflip.dev/tabby/pkg/logging"
	"tableflip.dev/tabby/pkg/store"
	"tableflip.dev/tabby/pkg/widget"
)

// env is what a command needs to reach the journal.
type env struct {
	cfg     *config.Config
	log     logging.Logger
	p       store.Persistence
	widget  *widget.Bridge
	service *app.Service
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, output.Verbose)

	p, err := store.Load(cfg, store.WithLocation(cfg.Location))
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, p: p}

	// The journal works without the widget space.
	if e.widget, err = widget.Open(cfg.WidgetRoot, cfg.WidgetGroup, widget.WithLogger(log)); err != nil {
		log.Warn(ctx, "widget unavailable", "error", err)
	}

	e.service = &app.Service{
		Persistence: p,
		Signal:      &changes.Signal{},
		Logger:      log,
	}
	if e.widget != nil {
		e.service.Widget = e.widget
	}
	log.Debug(ctx, "opened journal", "path", cfg.BasePath(), "backend", cfg.Backend())
	return e, nil
}

func (e *env) Close() error {
	if e == nil || e.p == nil {
		return nil
	}
	return e.p.Close()
}

var errNoWidget = errors.New("widget space is not available")
