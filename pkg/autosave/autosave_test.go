package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/tabby/pkg/entry"
)

type call struct {
	day    time.Time
	fields entry.Fields
}

type fakeWriter struct {
	mu    sync.Mutex
	calls []call
	fail  error
}

func (w *fakeWriter) SaveFields(_ context.Context, day time.Time, f entry.Fields) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.calls = append(w.calls, call{day: day, fields: f})
	return nil
}

func (w *fakeWriter) setFail(err error) {
	w.mu.Lock()
	w.fail = err
	w.mu.Unlock()
}

func (w *fakeWriter) snapshot() []call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]call(nil), w.calls...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

const delay = 30 * time.Millisecond

func TestRapidEditsCoalesceIntoOneWrite(t *testing.T) {
	w := &fakeWriter{}
	c := New(context.Background(), w, Options{Delay: delay})

	for _, v := range []string{"W", "Wa", "Wal", "Walk", "Walk ", "Walk t", "Walk th", "Walk the", "Walk the ", "Walk the dog"} {
		c.SetIntention(v)
	}

	require.Eventually(t, func() bool { return len(w.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * delay)

	calls := w.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "Walk the dog", entry.Text(calls[0].fields.Intention))
	assert.Nil(t, calls[0].fields.Goal)
	assert.Empty(t, c.Pending())
}

func TestFieldsDebounceIndependently(t *testing.T) {
	w := &fakeWriter{}
	c := New(context.Background(), w, Options{Delay: delay})

	c.SetIntention("a")
	c.SetGoal("b")
	c.SetReflection("c")

	require.Eventually(t, func() bool { return len(w.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	got := map[string]bool{}
	for _, call := range w.snapshot() {
		switch {
		case call.fields.Intention != nil:
			got["intention"] = true
		case call.fields.Goal != nil:
			got["goal"] = true
		case call.fields.Reflection != nil:
			got["reflection"] = true
		}
	}
	assert.Len(t, got, 3)
}

func TestFlushWritesOnceAndCancelsTimers(t *testing.T) {
	w := &fakeWriter{}
	c := New(context.Background(), w, Options{Delay: time.Hour})

	c.SetIntention("Walk the dog")
	c.SetGoal("Finish report")
	require.NoError(t, c.Flush(context.Background()))

	calls := w.snapshot()
	require.Len(t, calls, 1, "both fields target today, so one write")
	assert.Equal(t, "Walk the dog", entry.Text(calls[0].fields.Intention))
	assert.Equal(t, "Finish report", entry.Text(calls[0].fields.Goal))
	assert.Empty(t, c.Pending())

	require.NoError(t, c.Flush(context.Background()))
	assert.Len(t, w.snapshot(), 1, "nothing pending, nothing written")
}

func TestStaleTimerDoesNotFireAfterFlush(t *testing.T) {
	w := &fakeWriter{}
	c := New(context.Background(), w, Options{Delay: delay})

	c.SetReflection("quiet")
	require.NoError(t, c.Flush(context.Background()))
	time.Sleep(3 * delay)
	assert.Len(t, w.snapshot(), 1)
}

func TestFailedSaveStaysPendingUntilFlush(t *testing.T) {
	w := &fakeWriter{}
	w.setFail(errors.New("disk full"))
	c := New(context.Background(), w, Options{Delay: delay})

	c.SetGoal("ship it")
	time.Sleep(3 * delay)
	assert.Equal(t, []Field{Goal}, c.Pending())

	err := c.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, []Field{Goal}, c.Pending())

	w.setFail(nil)
	require.NoError(t, c.Flush(context.Background()))
	calls := w.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "ship it", entry.Text(calls[0].fields.Goal))
}

func TestRolloverPolicies(t *testing.T) {
	before := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
	after := time.Date(2024, 3, 2, 0, 0, 1, 0, time.UTC)

	tests := []struct {
		name   string
		policy Rollover
		want   time.Time
	}{
		{"fire", SaveAtFire, after},
		{"keystroke", SaveAtKeystroke, before},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clk := &clock{now: before}
			w := &fakeWriter{}
			c := New(context.Background(), w, Options{Delay: time.Hour, Rollover: tc.policy, Clock: clk.Now})

			c.SetIntention("late night")
			clk.Set(after)
			require.NoError(t, c.Flush(context.Background()))

			calls := w.snapshot()
			require.Len(t, calls, 1)
			assert.Equal(t, tc.want, calls[0].day)
		})
	}
}

func TestCloseFlushesAndIgnoresLaterEdits(t *testing.T) {
	w := &fakeWriter{}
	c := New(context.Background(), w, Options{Delay: time.Hour})

	c.SetIntention("last words")
	require.NoError(t, c.Close(context.Background()))
	require.Len(t, w.snapshot(), 1)

	c.SetIntention("ignored")
	assert.Empty(t, c.Pending())
	assert.ErrorIs(t, c.Flush(context.Background()), ErrClosed)
	assert.NoError(t, c.Close(context.Background()))
}

func TestParseRollover(t *testing.T) {
	r, err := ParseRollover("Keystroke")
	require.NoError(t, err)
	assert.Equal(t, SaveAtKeystroke, r)

	r, err = ParseRollover("")
	require.NoError(t, err)
	assert.Equal(t, SaveAtFire, r)

	_, err = ParseRollover("midnight")
	assert.Error(t, err)
}
