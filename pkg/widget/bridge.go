// Package widget mirrors today's intention and goal into a key space shared
// with a home-screen style surface, and tells that surface when to redraw.
package widget

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/tabby/pkg/logging"
)

// Keys in the shared space.
const (
	KeyIntention = "widget_intention"
	KeyGoal      = "widget_goal"
	KeyReload    = "widget_reload"
)

const (
	// DefaultGroup identifies the shared space when none is configured.
	DefaultGroup = "group.tabby.journal"
	// Kind is the surface kind named in refresh requests.
	Kind = "JournalWidget"
)

// Refresher asks a rendering surface of the given kind to reload.
type Refresher interface {
	RequestRefresh(ctx context.Context, kind string) error
}

// Bridge reads and writes the shared key space.
type Bridge struct {
	d         *diskv.Diskv
	dir       string
	refresher Refresher
	log       logging.Logger
}

// Option customises a Bridge.
type Option func(*Bridge)

// WithRefresher replaces the default MarkerRefresher.
func WithRefresher(r Refresher) Option {
	return func(b *Bridge) { b.refresher = r }
}

// WithLogger sets the logger. Default: logging.Nop().
func WithLogger(l logging.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// Open returns a Bridge over <root>/<group>, creating it if needed.
func Open(root, group string, opts ...Option) (*Bridge, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("widget: shared root required")
	}
	if strings.TrimSpace(group) == "" {
		group = DefaultGroup
	}
	dir := filepath.Join(root, group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("widget: ensure shared dir: %w", err)
	}
	// Another process writes this space, so every read goes to disk.
	b := &Bridge{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			TempDir:      dir + ".tmp",
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 0,
		}),
		dir: dir,
		log: logging.Nop(),
	}
	b.refresher = &MarkerRefresher{d: b.d}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Dir is the directory holding the shared keys.
func (b *Bridge) Dir() string { return b.dir }

// PublishToday writes today's values and requests a refresh. A nil value
// removes its key.
func (b *Bridge) PublishToday(ctx context.Context, intention, goal *string) error {
	if err := b.put(KeyIntention, intention); err != nil {
		return err
	}
	if err := b.put(KeyGoal, goal); err != nil {
		return err
	}
	if err := b.refresher.RequestRefresh(ctx, Kind); err != nil {
		return fmt.Errorf("widget: refresh: %w", err)
	}
	b.log.Debug(ctx, "widget: published today", "dir", b.dir)
	return nil
}

// ReadToday returns the mirrored values; an absent key reads as nil.
func (b *Bridge) ReadToday(ctx context.Context) (intention, goal *string, err error) {
	if intention, err = b.get(KeyIntention); err != nil {
		return nil, nil, err
	}
	if goal, err = b.get(KeyGoal); err != nil {
		return nil, nil, err
	}
	return intention, goal, nil
}

func (b *Bridge) put(key string, v *string) error {
	if v == nil {
		if !b.d.Has(key) {
			return nil
		}
		if err := b.d.Erase(key); err != nil {
			return fmt.Errorf("widget: erase %s: %w", key, err)
		}
		return nil
	}
	if err := b.d.WriteString(key, *v); err != nil {
		return fmt.Errorf("widget: write %s: %w", key, err)
	}
	return nil
}

func (b *Bridge) get(key string) (*string, error) {
	if !b.d.Has(key) {
		return nil, nil
	}
	v, err := b.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("widget: read %s: %w", key, err)
	}
	s := string(v)
	return &s, nil
}
