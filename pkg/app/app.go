package app

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/tabby/pkg/autosave"
	"tableflip.dev/tabby/pkg/changes"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/logging"
	"tableflip.dev/tabby/pkg/store"
)

// Widget receives today's values after every write that touches today.
type Widget interface {
	PublishToday(ctx context.Context, intention, goal *string) error
}

// Service is the write path shared by the CLI and the editor: store first,
// then the change signal, then the widget mirror.
type Service struct {
	Persistence store.Persistence
	Signal      *changes.Signal
	Widget      Widget
	Clock       func() time.Time
	Logger      logging.Logger
}

var ErrNoPersistence = errors.New("app: no persistence configured")

var _ autosave.Writer = (*Service)(nil)

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) log() logging.Logger {
	if s.Logger == nil {
		return logging.Nop()
	}
	return s.Logger
}

func (s *Service) loc() *time.Location {
	if s.Persistence == nil {
		return time.Local
	}
	return s.Persistence.Location()
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

// IsToday reports whether day falls on the current local day.
func (s *Service) IsToday(day time.Time) bool {
	return entry.SameDay(day, s.now(), s.loc())
}

// Today returns today's entry, creating it if needed.
func (s *Service) Today(ctx context.Context) (*entry.Entry, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.GetOrCreate(ctx, s.now())
}

// Entry returns the entry for day or nil.
func (s *Service) Entry(ctx context.Context, day time.Time) (*entry.Entry, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Fetch(ctx, day)
}

// Range lists entries from start to end inclusive.
func (s *Service) Range(ctx context.Context, start, end time.Time) ([]*entry.Entry, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.FetchRange(ctx, start, end)
}

// SaveFields writes the non-nil fields into day's entry, creating it first if
// needed, and announces the change.
func (s *Service) SaveFields(ctx context.Context, day time.Time, f entry.Fields) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	if f.Empty() {
		return nil
	}
	e, err := s.Persistence.GetOrCreate(ctx, day)
	if err != nil {
		return err
	}
	if err := s.Persistence.Update(ctx, e.ID, f); err != nil {
		return err
	}
	s.log().Debug(ctx, "app: saved fields", "day", entry.DayKey(day, s.loc()), "id", e.ID)
	s.changed(ctx, day)
	return nil
}

// Delete removes day's entry if there is one.
func (s *Service) Delete(ctx context.Context, day time.Time) (bool, error) {
	if s.Persistence == nil {
		return false, ErrNoPersistence
	}
	e, err := s.Persistence.Fetch(ctx, day)
	if err != nil || e == nil {
		return false, err
	}
	if err := s.Persistence.Delete(ctx, e.ID); err != nil {
		return false, err
	}
	s.changed(ctx, day)
	return true, nil
}

// Reset deletes every entry.
func (s *Service) Reset(ctx context.Context) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	if err := s.Persistence.DeleteAll(ctx); err != nil {
		return err
	}
	s.log().Info(ctx, "app: journal reset")
	s.changed(ctx, s.now())
	return nil
}

// Changed announces a write made outside the service, such as an import.
func (s *Service) Changed(ctx context.Context) {
	s.changed(ctx, s.now())
}

func (s *Service) changed(ctx context.Context, day time.Time) {
	if s.Signal != nil {
		s.Signal.Publish()
	}
	if !s.IsToday(day) {
		return
	}
	if err := s.SyncWidget(ctx); err != nil {
		s.log().Warn(ctx, "app: widget sync failed", "error", err)
	}
}

// WatchStore publishes on the signal whenever the store reports a change on
// disk, so views in this process see writes made by other processes. It is a
// no-op for backends that cannot watch. Watching stops when ctx is done.
func (s *Service) WatchStore(ctx context.Context) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	w, ok := s.Persistence.(store.Watcher)
	if !ok {
		return nil
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for ev := range events {
			s.log().Debug(ctx, "app: store changed on disk", "day", ev.Day)
			if s.Signal != nil {
				s.Signal.Publish()
			}
		}
	}()
	return nil
}

// SyncWidget mirrors today's intention and goal into the widget. Today's entry
// is not created when missing.
func (s *Service) SyncWidget(ctx context.Context) error {
	if s.Widget == nil {
		return nil
	}
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	e, err := s.Persistence.Fetch(ctx, s.now())
	if err != nil {
		return err
	}
	if e == nil {
		return s.Widget.PublishToday(ctx, nil, nil)
	}
	return s.Widget.PublishToday(ctx, e.Intention, e.Goal)
}
