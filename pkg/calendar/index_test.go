package calendar

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/tabby/pkg/changes"
	"tableflip.dev/tabby/pkg/store"
)

func newIndex(t *testing.T) (*Index, store.Persistence) {
	t.Helper()
	p, err := store.NewDiskv(filepath.Join(t.TempDir(), "entries"), store.WithLocation(time.UTC))
	require.NoError(t, err)
	return New(p, Options{}), p
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFocusLoadsCenteredWindow(t *testing.T) {
	ctx := context.Background()
	x, _ := newIndex(t)

	moved, err := x.Focus(ctx, date(2024, 3, 1).Add(15*time.Hour))
	require.NoError(t, err)
	assert.True(t, moved)

	start, end := x.Window()
	assert.Equal(t, date(2024, 3, 1).AddDate(0, 0, -182), start)
	assert.Equal(t, date(2024, 3, 1).AddDate(0, 0, 182), end)
	assert.Len(t, x.Days(), 365)
	assert.Equal(t, date(2024, 3, 1), x.Focused())
}

func TestFocusRecentersOnlyNearEdges(t *testing.T) {
	ctx := context.Background()
	x, _ := newIndex(t)
	_, err := x.Focus(ctx, date(2024, 3, 1))
	require.NoError(t, err)

	moved, err := x.Focus(ctx, date(2024, 3, 31))
	require.NoError(t, err)
	assert.False(t, moved, "30 days from centre stays inside the buffer")

	moved, err = x.Focus(ctx, date(2024, 6, 15))
	require.NoError(t, err)
	assert.True(t, moved)
	start, _ := x.Window()
	assert.Equal(t, date(2024, 6, 15).AddDate(0, 0, -182), start)

	moved, err = x.Focus(ctx, date(2030, 1, 1))
	require.NoError(t, err)
	assert.True(t, moved, "outside the window")
}

func TestFocusClampsToBounds(t *testing.T) {
	ctx := context.Background()
	x, _ := newIndex(t)

	_, err := x.Focus(ctx, date(1990, 1, 1))
	require.NoError(t, err)
	earliest, latest := x.Bounds()
	start, end := x.Window()
	assert.Equal(t, earliest, start)
	assert.Equal(t, date(1999, 7, 15), x.Focused())
	assert.Equal(t, date(1999, 7, 15).AddDate(0, 0, 182), end)

	moved, err := x.Focus(ctx, date(1999, 7, 20))
	require.NoError(t, err)
	assert.False(t, moved, "same clamped window is not re-fetched")

	_, err = x.Focus(ctx, date(2099, 1, 1))
	require.NoError(t, err)
	_, end = x.Window()
	assert.Equal(t, latest, end)
	assert.Equal(t, date(2050, 12, 31), end)
}

func TestHasEntryUsesCacheThenRefresh(t *testing.T) {
	ctx := context.Background()
	x, p := newIndex(t)
	_, err := p.GetOrCreate(ctx, date(2024, 3, 1))
	require.NoError(t, err)

	_, err = x.Focus(ctx, date(2024, 3, 1))
	require.NoError(t, err)

	ok, err := x.HasEntry(ctx, date(2024, 3, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.GetOrCreate(ctx, date(2024, 3, 2))
	require.NoError(t, err)
	ok, err = x.HasEntry(ctx, date(2024, 3, 2))
	require.NoError(t, err)
	assert.False(t, ok, "cache is stale until refresh")

	require.NoError(t, x.Refresh(ctx))
	ok, err = x.HasEntry(ctx, date(2024, 3, 2))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasEntryOutsideWindowFetches(t *testing.T) {
	ctx := context.Background()
	x, p := newIndex(t)
	_, err := x.Focus(ctx, date(2024, 3, 1))
	require.NoError(t, err)

	_, err = p.GetOrCreate(ctx, date(2010, 5, 5))
	require.NoError(t, err)
	ok, err := x.HasEntry(ctx, date(2010, 5, 5))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = x.HasEntry(ctx, date(2011, 5, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowRefreshesOnRevision(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	x, p := newIndex(t)
	_, err := x.Focus(ctx, date(2024, 3, 1))
	require.NoError(t, err)

	var sig changes.Signal
	go x.Follow(ctx, sig.Subscribe(ctx))

	_, err = p.GetOrCreate(ctx, date(2024, 3, 3))
	require.NoError(t, err)
	sig.Publish()

	assert.Eventually(t, func() bool {
		ok, err := x.HasEntry(ctx, date(2024, 3, 3))
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMonthSteps(t *testing.T) {
	x, _ := newIndex(t)
	assert.Equal(t, date(2024, 2, 1), x.PrevMonth(date(2024, 3, 15)))
	assert.Equal(t, date(2024, 4, 1), x.NextMonth(date(2024, 3, 15)))
	assert.Equal(t, date(2025, 1, 1), x.NextMonth(date(2024, 12, 31)))
	assert.Equal(t, date(1999, 7, 15), x.PrevMonth(date(1999, 8, 3)))
	assert.Equal(t, date(2050, 12, 31), x.NextMonth(date(2050, 12, 1)))
}
