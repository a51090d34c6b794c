package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/tabby/pkg/entry"
)

func TestDiskvSeesWritesFromAnotherStore(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "entries")

	server, err := NewDiskv(base, WithLocation(testLoc))
	require.NoError(t, err)
	e, err := server.GetOrCreate(ctx, day(2024, 3, 1))
	require.NoError(t, err)
	_, err = server.Fetch(ctx, day(2024, 3, 1))
	require.NoError(t, err)

	cli, err := NewDiskv(base, WithLocation(testLoc))
	require.NoError(t, err)
	require.NoError(t, cli.Update(ctx, e.ID, entry.Fields{Intention: entry.String("Walk the dog")}))

	got, err := server.Fetch(ctx, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "Walk the dog", entry.Text(got.Intention))

	require.NoError(t, server.Update(ctx, e.ID, entry.Fields{Goal: entry.String("Finish report")}))
	got, err = cli.Fetch(ctx, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "Walk the dog", entry.Text(got.Intention), "the other store's field survives")
	assert.Equal(t, "Finish report", entry.Text(got.Goal))
}

func TestDiskvUpdateFindsEntryCreatedElsewhere(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "entries")

	server, err := NewDiskv(base, WithLocation(testLoc))
	require.NoError(t, err)
	cli, err := NewDiskv(base, WithLocation(testLoc))
	require.NoError(t, err)

	created, err := cli.GetOrCreate(ctx, day(2024, 3, 2))
	require.NoError(t, err)
	require.NoError(t, server.Update(ctx, created.ID, entry.Fields{Reflection: entry.String("slow start")}))

	got, err := cli.Fetch(ctx, day(2024, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, "slow start", entry.Text(got.Reflection))

	require.NoError(t, server.Delete(ctx, created.ID))
	got, err = cli.Fetch(ctx, day(2024, 3, 2))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDiskvWatchRefreshesCachedDays(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	base := filepath.Join(t.TempDir(), "entries")

	server, err := NewDiskv(base, WithLocation(testLoc), WithCacheSize(1))
	require.NoError(t, err)
	e, err := server.GetOrCreate(ctx, day(2024, 3, 1))
	require.NoError(t, err)
	_, err = server.Fetch(ctx, day(2024, 3, 1))
	require.NoError(t, err)

	events, err := server.Watch(ctx)
	require.NoError(t, err)

	cli, err := NewDiskv(base, WithLocation(testLoc))
	require.NoError(t, err)
	require.NoError(t, cli.Update(ctx, e.ID, entry.Fields{Goal: entry.String("Ship it")}))

	select {
	case ev, ok := <-events:
		require.True(t, ok)
		assert.Contains(t, []string{"2024-03-01", ""}, ev.Day)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change event")
	}

	got, err := server.Fetch(ctx, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "Ship it", entry.Text(got.Goal))

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestKeyForPath(t *testing.T) {
	s := &DiskvStore{basePath: "/j", opts: options{loc: testLoc}}
	assert.Equal(t, "2024-03-01", s.keyForPath(filepath.Join("/j", "2024", "03", "01")))
	assert.Equal(t, "", s.keyForPath(filepath.Join("/j", "2024", "03")))
	assert.Equal(t, "", s.keyForPath(filepath.Join("/elsewhere", "2024", "03", "01")))
	assert.Equal(t, "", s.keyForPath(filepath.Join("/j", "notes.txt")))
}
