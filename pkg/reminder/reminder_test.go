package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	got, err := ParseClock("21:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 21}, got)
	assert.Equal(t, "21:00", got.String())

	got, err = ParseClock(" 7:05 ")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 7, Minute: 5}, got)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestNext(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC), TimeOfDay{Hour: 21}.Next(now))
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), TimeOfDay{Hour: 9}.Next(now))
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), TimeOfDay{Hour: 10}.Next(now))
}

func TestDefaults(t *testing.T) {
	s := DefaultSettings()
	assert.False(t, s.IntentionOn)
	assert.False(t, s.ReflectionOn)
	assert.Equal(t, "09:00", s.IntentionAt.String())
	assert.Equal(t, "21:00", s.ReflectionAt.String())

	r := Reflection(s.ReflectionAt)
	assert.Equal(t, ReflectionID, r.ID)
	assert.Equal(t, "Reflect on your day", r.Title)
	assert.True(t, r.Repeats)
}

type fakeScheduler struct {
	scheduled map[string]Reminder
	canceled  []string
	err       error
}

func (f *fakeScheduler) Schedule(_ context.Context, r Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled[r.ID] = r
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.canceled = append(f.canceled, id)
	return nil
}

func TestApply(t *testing.T) {
	f := &fakeScheduler{scheduled: map[string]Reminder{}}
	s := DefaultSettings()
	s.IntentionOn = true
	s.IntentionAt = TimeOfDay{Hour: 7, Minute: 30}

	require.NoError(t, Apply(context.Background(), f, s))
	require.Contains(t, f.scheduled, IntentionID)
	assert.Equal(t, 7, f.scheduled[IntentionID].Hour)
	assert.Equal(t, 30, f.scheduled[IntentionID].Minute)
	assert.Equal(t, []string{ReflectionID}, f.canceled)

	f.err = errors.New("denied")
	assert.Error(t, Apply(context.Background(), f, s))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	reg, err := OpenRegistry(filepath.Join(t.TempDir(), "reminders"))
	require.NoError(t, err)

	s := DefaultSettings()
	s.IntentionOn, s.ReflectionOn = true, true
	require.NoError(t, Apply(ctx, reg, s))

	all, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, IntentionID, all[0].ID)
	assert.Equal(t, ReflectionID, all[1].ID)

	up, err := reg.Upcoming(ctx, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, up, 2)
	assert.Equal(t, ReflectionID, up[0].ID, "21:00 today comes before 09:00 tomorrow")

	s.ReflectionOn = false
	require.NoError(t, Apply(ctx, reg, s))
	all, err = reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, IntentionID, all[0].ID)

	require.NoError(t, reg.Cancel(ctx, "unknown"))
}
