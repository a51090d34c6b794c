package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/tabby/pkg/entry"
)

// Persistence is the single source of truth for journal entries, keyed by
// normalized day. Every entry handed out is a copy; callers re-fetch after a
// change instead of mutating what they hold.
type Persistence interface {
	// GetOrCreate returns the entry for day, creating an empty one when none
	// exists. Lookup and insert happen in one serialized section.
	GetOrCreate(ctx context.Context, day time.Time) (*entry.Entry, error)
	// Fetch returns the entry for day, or nil when there is none.
	Fetch(ctx context.Context, day time.Time) (*entry.Entry, error)
	// FetchRange returns entries with start <= day <= end in ascending day
	// order. A reversed range yields an empty slice.
	FetchRange(ctx context.Context, start, end time.Time) ([]*entry.Entry, error)
	// FetchAll returns every entry in ascending day order.
	FetchAll(ctx context.Context) ([]*entry.Entry, error)
	// Update applies the non-nil fields to the entry with id. Unknown ids are
	// ignored.
	Update(ctx context.Context, id string, f entry.Fields) error
	// Delete removes the entry with id. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
	// DeleteAll clears the store.
	DeleteAll(ctx context.Context) error
	// Transact runs fn while holding the store's exclusive write lock. When fn
	// returns an error every change made through tx is undone.
	Transact(ctx context.Context, fn func(tx Tx) error) error
	// Location is the zone days are normalized in.
	Location() *time.Location
	// Close releases backend resources.
	Close() error
}

// Tx is the write surface available inside Transact.
type Tx interface {
	Fetch(day time.Time) (*entry.Entry, error)
	// Create inserts a new empty entry for day. It fails if one exists.
	Create(day time.Time) (*entry.Entry, error)
	// Put writes e in full, keyed by its day.
	Put(e *entry.Entry) error
	// Now is the store clock.
	Now() time.Time
}

// Backend names accepted by Load.
const (
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
)

const sqliteFile = "tabby.db"

// Load opens the Persistence described by cfg.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: config required")
	}
	switch b := strings.ToLower(strings.TrimSpace(cfg.Backend())); b {
	case "", BackendDiskv:
		return NewDiskv(cfg.BasePath(), opts...)
	case BackendSQLite:
		return OpenSQLite(sqlitePath(cfg.BasePath()), opts...)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", b)
	}
}

type options struct {
	loc     *time.Location
	now     func() time.Time
	cacheMB uint64
}

func defaults() options {
	return options{
		loc:     time.Local,
		now:     time.Now,
		cacheMB: 0,
	}
}

// Option customises a backend.
type Option func(*options)

// WithLocation sets the zone used for day normalization. Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCacheSize sets the diskv read cache size in megabytes. Default: 0, no
// cache. A cache is only safe when this process is the sole writer or is
// running Watch, which drops changed days from it.
func WithCacheSize(mb uint64) Option { return func(o *options) { o.cacheMB = mb } }

func buildOptions(opts []Option) options {
	o := defaults()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
