package widget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	mu    sync.Mutex
	kinds []string
}

func (c *countingRefresher) RequestRefresh(_ context.Context, kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = append(c.kinds, kind)
	return nil
}

func str(s string) *string { return &s }

func TestPublishAndReadToday(t *testing.T) {
	ctx := context.Background()
	r := &countingRefresher{}
	b, err := Open(t.TempDir(), "", WithRefresher(r))
	require.NoError(t, err)

	require.NoError(t, b.PublishToday(ctx, str("Walk the dog"), str("Finish report")))
	intention, goal, err := b.ReadToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Walk the dog", *intention)
	assert.Equal(t, "Finish report", *goal)
	assert.Equal(t, []string{Kind}, r.kinds)

	require.NoError(t, b.PublishToday(ctx, nil, str("Finish report")))
	intention, _, err = b.ReadToday(ctx)
	require.NoError(t, err)
	assert.Nil(t, intention, "nil erases the key")
}

func TestSharedSpaceIsVisibleAcrossBridges(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writer, err := Open(root, "group.test")
	require.NoError(t, err)
	reader, err := Open(root, "group.test")
	require.NoError(t, err)

	require.NoError(t, writer.PublishToday(ctx, str("Breathe"), str("Stretch")))
	intention, goal, err := reader.ReadToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Breathe", *intention)
	assert.Equal(t, "Stretch", *goal)

	// The reader has already seen both keys; later writes must still show.
	require.NoError(t, writer.PublishToday(ctx, str("Rest"), nil))
	intention, goal, err = reader.ReadToday(ctx)
	require.NoError(t, err)
	require.NotNil(t, intention)
	assert.Equal(t, "Rest", *intention)
	assert.Nil(t, goal, "a key erased by the writer reads as absent")

	snap, err := reader.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rest", snap.Intention)
}

func TestSnapshotPlaceholders(t *testing.T) {
	tests := []struct {
		name      string
		intention *string
		goal      *string
		want      Snapshot
	}{{
		name: "nothing set",
		want: Snapshot{Intention: PlaceholderIntention, Goal: PlaceholderGoal},
	}, {
		name:      "blank counts as missing",
		intention: str("   "),
		goal:      str("Finish report"),
		want:      Snapshot{Intention: PlaceholderIntention, Goal: "Finish report", GoalSet: true},
	}, {
		name:      "both set",
		intention: str("Walk the dog"),
		goal:      str("Finish report"),
		want:      Snapshot{Intention: "Walk the dog", Goal: "Finish report", IntentionSet: true, GoalSet: true},
	}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.intention, tc.goal))
		})
	}
}

func TestWatchSeesRefreshRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := Open(t.TempDir(), "")
	require.NoError(t, err)
	reloads, err := b.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, b.PublishToday(ctx, str("Walk the dog"), nil))

	select {
	case r := <-reloads:
		assert.False(t, r.At.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-reloads:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestThrottleCoalescesByKind(t *testing.T) {
	th := newReloadThrottle(20 * time.Millisecond)
	defer th.Stop()

	var mu sync.Mutex
	var got []Reload
	send := func(r Reload) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	}
	for i := 0; i < 10; i++ {
		th.Enqueue(Reload{Kind: Kind}, send)
	}
	th.Enqueue(Reload{}, send)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
}
