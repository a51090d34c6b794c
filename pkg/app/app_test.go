package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"tableflip.dev/tabby/pkg/changes"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/store"
)

var loc = time.UTC

type memoryPersistence struct {
	mu      sync.Mutex
	counter int
	byDay   map[string]*entry.Entry
	now     func() time.Time
	fail    error
}

func newMemoryPersistence(now func() time.Time) *memoryPersistence {
	return &memoryPersistence{byDay: make(map[string]*entry.Entry), now: now}
}

func (m *memoryPersistence) newID() string {
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

func (m *memoryPersistence) GetOrCreate(_ context.Context, day time.Time) (*entry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	key := entry.DayKey(day, loc)
	if e, ok := m.byDay[key]; ok {
		return e.Clone(), nil
	}
	e := entry.New(entry.Normalize(day, loc), m.now())
	e.ID = m.newID()
	m.byDay[key] = e
	return e.Clone(), nil
}

func (m *memoryPersistence) Fetch(_ context.Context, day time.Time) (*entry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byDay[entry.DayKey(day, loc)].Clone(), nil
}

func (m *memoryPersistence) FetchRange(_ context.Context, start, end time.Time) ([]*entry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, to := entry.DayKey(start, loc), entry.DayKey(end, loc)
	out := make([]*entry.Entry, 0)
	for key, e := range m.byDay {
		if key >= from && key <= to {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (m *memoryPersistence) FetchAll(ctx context.Context) ([]*entry.Entry, error) {
	return m.FetchRange(ctx, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, loc))
}

func (m *memoryPersistence) Update(_ context.Context, id string, f entry.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byDay {
		if e.ID == id {
			e.Apply(f, m.now())
		}
	}
	return nil
}

func (m *memoryPersistence) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.byDay {
		if e.ID == id {
			delete(m.byDay, key)
		}
	}
	return nil
}

func (m *memoryPersistence) DeleteAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDay = make(map[string]*entry.Entry)
	return nil
}

func (m *memoryPersistence) Transact(context.Context, func(store.Tx) error) error {
	return errors.New("not supported")
}

func (m *memoryPersistence) Location() *time.Location { return loc }

func (m *memoryPersistence) Close() error { return nil }

type recordingWidget struct {
	calls []struct{ intention, goal *string }
}

func (w *recordingWidget) PublishToday(_ context.Context, intention, goal *string) error {
	w.calls = append(w.calls, struct{ intention, goal *string }{intention, goal})
	return nil
}

func newService(now time.Time) (*Service, *memoryPersistence, *recordingWidget) {
	clock := func() time.Time { return now }
	mp := newMemoryPersistence(clock)
	w := &recordingWidget{}
	return &Service{Persistence: mp, Signal: &changes.Signal{}, Widget: w, Clock: clock}, mp, w
}

func TestSaveFieldsCreatesAndMirrorsToday(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)
	svc, _, w := newService(now)
	ctx := context.Background()

	if err := svc.SaveFields(ctx, now, entry.Fields{Intention: entry.String("Walk the dog")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.SaveFields(ctx, now, entry.Fields{Goal: entry.String("Finish report")}); err != nil {
		t.Fatalf("save: %v", err)
	}

	e, err := svc.Entry(ctx, now)
	if err != nil || e == nil {
		t.Fatalf("entry: %v %v", e, err)
	}
	if entry.Text(e.Intention) != "Walk the dog" || entry.Text(e.Goal) != "Finish report" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if got := svc.Signal.Current(); got != 2 {
		t.Fatalf("expected 2 revisions, got %d", got)
	}
	if len(w.calls) != 2 {
		t.Fatalf("expected 2 widget publishes, got %d", len(w.calls))
	}
	last := w.calls[1]
	if entry.Text(last.intention) != "Walk the dog" || entry.Text(last.goal) != "Finish report" {
		t.Fatalf("widget got %v / %v", last.intention, last.goal)
	}
}

func TestSaveFieldsForPastDaySkipsWidget(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	svc, _, w := newService(now)

	if err := svc.SaveFields(context.Background(), now.AddDate(0, 0, -1), entry.Fields{Reflection: entry.String("fine")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(w.calls) != 0 {
		t.Fatalf("widget should only mirror today, got %d calls", len(w.calls))
	}
	if svc.Signal.Current() != 1 {
		t.Fatal("expected a published revision")
	}
}

func TestSaveFieldsEmptyIsNoop(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	svc, mp, _ := newService(now)
	if err := svc.SaveFields(context.Background(), now, entry.Fields{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(mp.byDay) != 0 {
		t.Fatal("empty update should not create an entry")
	}
}

func TestSaveFieldsSurfacesStoreErrors(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	svc, mp, _ := newService(now)
	mp.fail = errors.New("disk gone")
	if err := svc.SaveFields(context.Background(), now, entry.Fields{Goal: entry.String("x")}); err == nil {
		t.Fatal("expected error")
	}
	if svc.Signal.Current() != 0 {
		t.Fatal("failed writes must not publish")
	}
}

func TestDeleteAndReset(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	svc, _, w := newService(now)
	ctx := context.Background()

	if err := svc.SaveFields(ctx, now, entry.Fields{Intention: entry.String("a")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	deleted, err := svc.Delete(ctx, now)
	if err != nil || !deleted {
		t.Fatalf("delete: %v %v", deleted, err)
	}
	if last := w.calls[len(w.calls)-1]; last.intention != nil || last.goal != nil {
		t.Fatal("widget should be cleared after deleting today")
	}
	deleted, err = svc.Delete(ctx, now)
	if err != nil || deleted {
		t.Fatalf("second delete: %v %v", deleted, err)
	}

	if err := svc.SaveFields(ctx, now.AddDate(0, 0, -3), entry.Fields{Goal: entry.String("b")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ := svc.Range(ctx, now.AddDate(-1, 0, 0), now)
	if len(all) != 0 {
		t.Fatalf("expected empty journal, got %d", len(all))
	}
}

func TestTodayIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	svc, _, _ := newService(now)
	a, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	b, _ := svc.Today(context.Background())
	if a.ID != b.ID {
		t.Fatalf("expected same entry, got %s and %s", a.ID, b.ID)
	}
}

func TestNoPersistence(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Today(context.Background()); !errors.Is(err, ErrNoPersistence) {
		t.Fatalf("expected ErrNoPersistence, got %v", err)
	}
}

func TestReportCountsAndStreaks(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
	svc, _, _ := newService(now)
	ctx := context.Background()

	save := func(d int, f entry.Fields) {
		t.Helper()
		if err := svc.SaveFields(ctx, time.Date(2024, 3, d, 12, 0, 0, 0, loc), f); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	for _, d := range []int{1, 2, 3} {
		save(d, entry.Fields{Intention: entry.String("i")})
	}
	save(5, entry.Fields{Goal: entry.String("g")})
	save(6, entry.Fields{Mood: entry.String("calm")})
	save(9, entry.Fields{Reflection: entry.String("r")})
	save(10, entry.Fields{Reflection: entry.String("r")})

	res, err := svc.Report(ctx, now, time.Date(2024, 3, 1, 0, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if res.Since.Day() != 1 || res.Until.Day() != 10 {
		t.Fatalf("bounds not swapped: %v %v", res.Since, res.Until)
	}
	if len(res.Entries) != 7 || res.Written != 6 {
		t.Fatalf("entries=%d written=%d", len(res.Entries), res.Written)
	}
	if res.Intentions != 3 || res.Goals != 1 || res.Reflections != 2 {
		t.Fatalf("counts: %+v", res)
	}
	if res.LongestStreak != 3 || res.CurrentStreak != 2 {
		t.Fatalf("streaks: longest=%d current=%d", res.LongestStreak, res.CurrentStreak)
	}
}

func TestWatchStorePublishesWritesFromAnotherStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	base := filepath.Join(t.TempDir(), "entries")
	p, err := store.NewDiskv(base, store.WithLocation(loc))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	svc := &Service{Persistence: p, Signal: &changes.Signal{}}
	if err := svc.WatchStore(ctx); err != nil {
		t.Fatalf("watch: %v", err)
	}
	revs := svc.Signal.Subscribe(ctx)

	other, err := store.NewDiskv(base, store.WithLocation(loc))
	if err != nil {
		t.Fatalf("open other: %v", err)
	}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	if _, err := other.GetOrCreate(ctx, day); err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case <-revs:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a revision for a write made by another store")
	}
	got, err := svc.Entry(ctx, day)
	if err != nil || got == nil {
		t.Fatalf("expected the other store's entry, got %v, %v", got, err)
	}
}

func TestWatchStoreWithoutWatcherIsNoop(t *testing.T) {
	svc, _, _ := newService(time.Now())
	if err := svc.WatchStore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&Service{}).WatchStore(context.Background()); !errors.Is(err, ErrNoPersistence) {
		t.Fatalf("expected ErrNoPersistence, got %v", err)
	}
}
