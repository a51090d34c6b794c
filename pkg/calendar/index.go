// Package calendar keeps a window of days around a focus day and knows which
// of them hold a journal entry.
package calendar

import (
	"context"
	"sync"
	"time"

	"tableflip.dev/tabby/pkg/changes"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/logging"
	"tableflip.dev/tabby/pkg/store"
)

const (
	DefaultWindow = 365
	DefaultBuffer = 90
)

// Options bound and size the index. Zero values select defaults.
type Options struct {
	Earliest time.Time
	Latest   time.Time
	// Window is the number of days held around the focus.
	Window int
	// Buffer is how close to a window edge the focus may get before the
	// window is recentred.
	Buffer int
	Logger logging.Logger
}

// Index caches entry existence for the days of one window.
type Index struct {
	p    store.Persistence
	loc  *time.Location
	opts Options

	mu     sync.Mutex
	center time.Time
	start  time.Time
	end    time.Time
	days   map[string]struct{}
}

// New returns an Index over p. No window is loaded until the first Focus.
func New(p store.Persistence, opts Options) *Index {
	loc := p.Location()
	if opts.Earliest.IsZero() {
		opts.Earliest = time.Date(1999, time.July, 15, 0, 0, 0, 0, loc)
	}
	if opts.Latest.IsZero() {
		opts.Latest = time.Date(2050, time.December, 31, 0, 0, 0, 0, loc)
	}
	opts.Earliest = entry.Normalize(opts.Earliest, loc)
	opts.Latest = entry.Normalize(opts.Latest, loc)
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Buffer > opts.Window/2 {
		opts.Buffer = opts.Window / 4
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Index{p: p, loc: loc, opts: opts}
}

// Bounds are the first and last days the calendar can show.
func (x *Index) Bounds() (time.Time, time.Time) {
	return x.opts.Earliest, x.opts.Latest
}

// Clamp normalizes day and pins it to the bounds.
func (x *Index) Clamp(day time.Time) time.Time {
	day = entry.Normalize(day, x.loc)
	if day.Before(x.opts.Earliest) {
		return x.opts.Earliest
	}
	if day.After(x.opts.Latest) {
		return x.opts.Latest
	}
	return day
}

// Focus moves the focus to day. When day is outside the window or within
// Buffer days of either edge, the window is recentred on it and re-fetched.
func (x *Index) Focus(ctx context.Context, day time.Time) (bool, error) {
	day = x.Clamp(day)

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.days != nil && !x.nearEdge(day) {
		return false, nil
	}
	start, end := x.windowAround(day)
	if x.days != nil && start.Equal(x.start) && end.Equal(x.end) {
		x.center = day
		return false, nil
	}
	if err := x.load(ctx, start, end); err != nil {
		return false, err
	}
	x.center = day
	x.opts.Logger.Debug(ctx, "calendar: recentred",
		"focus", day.Format(entry.LayoutDay),
		"start", start.Format(entry.LayoutDay),
		"end", end.Format(entry.LayoutDay))
	return true, nil
}

// nearEdge measures against the unclamped window around the centre.
func (x *Index) nearEdge(day time.Time) bool {
	half := x.opts.Window / 2
	lo := x.center.AddDate(0, 0, -half+x.opts.Buffer)
	hi := x.center.AddDate(0, 0, half-x.opts.Buffer)
	return day.Before(lo) || day.After(hi)
}

func (x *Index) windowAround(day time.Time) (time.Time, time.Time) {
	half := x.opts.Window / 2
	start := day.AddDate(0, 0, -half)
	end := day.AddDate(0, 0, half)
	if start.Before(x.opts.Earliest) {
		start = x.opts.Earliest
	}
	if end.After(x.opts.Latest) {
		end = x.opts.Latest
	}
	return start, end
}

// load must be called with x.mu held.
func (x *Index) load(ctx context.Context, start, end time.Time) error {
	entries, err := x.p.FetchRange(ctx, start, end)
	if err != nil {
		return err
	}
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[entry.DayKey(e.Day, x.loc)] = struct{}{}
	}
	x.start, x.end, x.days = start, end, days
	return nil
}

// HasEntry reports whether day holds an entry. Days outside the window are
// looked up directly.
func (x *Index) HasEntry(ctx context.Context, day time.Time) (bool, error) {
	day = entry.Normalize(day, x.loc)

	x.mu.Lock()
	if x.days != nil && !day.Before(x.start) && !day.After(x.end) {
		_, ok := x.days[entry.DayKey(day, x.loc)]
		x.mu.Unlock()
		return ok, nil
	}
	x.mu.Unlock()

	e, err := x.p.Fetch(ctx, day)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// Refresh re-fetches the current window. It is a no-op before the first Focus.
func (x *Index) Refresh(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.days == nil {
		return nil
	}
	return x.load(ctx, x.start, x.end)
}

// Follow refreshes on every revision until revs closes or ctx is done.
func (x *Index) Follow(ctx context.Context, revs <-chan changes.Revision) {
	for {
		select {
		case <-ctx.Done():
			return
		case rev, ok := <-revs:
			if !ok {
				return
			}
			if err := x.Refresh(ctx); err != nil {
				x.opts.Logger.Warn(ctx, "calendar: refresh failed", "revision", rev, "error", err)
			}
		}
	}
}

// Focused is the current focus day; zero before the first Focus.
func (x *Index) Focused() time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.center
}

// Window is the loaded window; both zero before the first Focus.
func (x *Index) Window() (time.Time, time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.start, x.end
}

// Day is one cell of the window.
type Day struct {
	Date     time.Time
	HasEntry bool
}

// Days lists every day of the window in order.
func (x *Index) Days() []Day {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.days == nil {
		return nil
	}
	out := make([]Day, 0, x.opts.Window+1)
	for d := x.start; !d.After(x.end); d = d.AddDate(0, 0, 1) {
		_, ok := x.days[entry.DayKey(d, x.loc)]
		out = append(out, Day{Date: d, HasEntry: ok})
	}
	return out
}

// PrevMonth is the first day of the month before day's, clamped to bounds.
func (x *Index) PrevMonth(day time.Time) time.Time {
	day = entry.Normalize(day, x.loc)
	first := time.Date(day.Year(), day.Month()-1, 1, 0, 0, 0, 0, x.loc)
	return x.Clamp(first)
}

// NextMonth is the first day of the month after day's, clamped to bounds.
func (x *Index) NextMonth(day time.Time) time.Time {
	day = entry.Normalize(day, x.loc)
	first := time.Date(day.Year(), day.Month()+1, 1, 0, 0, 0, 0, x.loc)
	return x.Clamp(first)
}
