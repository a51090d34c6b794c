package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// Registry is a Scheduler that records pending reminders on disk, one key per
// reminder id, for an external notifier to pick up.
type Registry struct {
	d *diskv.Diskv
}

var _ Scheduler = (*Registry)(nil)

// OpenRegistry opens (or creates) the registry rooted at dir.
func OpenRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("reminder: ensure registry dir: %w", err)
	}
	return &Registry{d: diskv.New(diskv.Options{
		BasePath:  dir,
		TempDir:   dir + ".tmp",
		Transform: func(string) []string { return []string{} },
	})}, nil
}

func (r *Registry) Schedule(_ context.Context, rem Reminder) error {
	data, err := json.Marshal(rem)
	if err != nil {
		return err
	}
	return r.d.Write(rem.ID, data)
}

func (r *Registry) Cancel(_ context.Context, id string) error {
	if !r.d.Has(id) {
		return nil
	}
	return r.d.Erase(id)
}

// List returns the pending reminders ordered by time of day.
func (r *Registry) List(ctx context.Context) ([]Reminder, error) {
	out := make([]Reminder, 0, 2)
	for key := range r.d.Keys(ctx.Done()) {
		data, err := r.d.Read(key)
		if err != nil {
			return nil, fmt.Errorf("reminder: read %s: %w", key, err)
		}
		var rem Reminder
		if err := json.Unmarshal(data, &rem); err != nil {
			return nil, fmt.Errorf("reminder: decode %s: %w", key, err)
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].At(), out[j].At()
		if a != b {
			return a.Hour*60+a.Minute < b.Hour*60+b.Minute
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Upcoming pairs a pending reminder with its next fire time.
type Upcoming struct {
	Reminder
	Next time.Time
}

// Upcoming lists pending reminders by next fire time after now.
func (r *Registry) Upcoming(ctx context.Context, now time.Time) ([]Upcoming, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Upcoming, 0, len(all))
	for _, rem := range all {
		out = append(out, Upcoming{Reminder: rem, Next: rem.At().Next(now)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Next.Before(out[j].Next) })
	return out, nil
}
