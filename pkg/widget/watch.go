package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/peterbourgon/diskv/v3"
)

// Reload asks a surface of Kind to redraw. Kind is empty when the change was
// seen on the data keys rather than through an explicit request.
type Reload struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// MarkerRefresher records refresh requests as a marker key that watchers pick
// up.
type MarkerRefresher struct {
	d   *diskv.Diskv
	now func() time.Time
}

var _ Refresher = (*MarkerRefresher)(nil)

func (m *MarkerRefresher) RequestRefresh(ctx context.Context, kind string) error {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	data, err := json.Marshal(Reload{Kind: kind, At: now().UTC()})
	if err != nil {
		return err
	}
	return m.d.Write(KeyReload, data)
}

// Watch streams reload requests until ctx is cancelled. Bursts of writes are
// coalesced per kind. The channel is closed once ctx is done or the watcher
// fails.
func (b *Bridge) Watch(ctx context.Context) (<-chan Reload, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("widget: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				b.log.Warn(ctx, "widget: watcher close", "error", err)
			}
		})
	}
	if err := watcher.Add(b.dir); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("widget: watch %s: %w", b.dir, err)
	}

	events := make(chan Reload, 16)
	var (
		sendMu sync.Mutex
		closed bool
	)
	go func() {
		defer func() {
			sendMu.Lock()
			closed = true
			close(events)
			sendMu.Unlock()
		}()
		defer closeWatcher()

		// A throttle flush may still be running when the loop exits.
		send := func(r Reload) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- r:
			default:
				// The consumer is behind; the reload it has not read yet covers
				// this one.
			}
		}

		throttle := newReloadThrottle(50 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				b.log.Warn(ctx, "widget: watcher", "error", err)
				throttle.Enqueue(Reload{At: time.Now()}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				switch filepath.Base(evt.Name) {
				case KeyReload:
					if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
						continue
					}
					throttle.Enqueue(b.readMarker(), send)
				case KeyIntention, KeyGoal:
					throttle.Enqueue(Reload{At: time.Now()}, send)
				}
			}
		}
	}()
	return events, nil
}

func (b *Bridge) readMarker() Reload {
	r := Reload{Kind: Kind, At: time.Now()}
	data, err := os.ReadFile(filepath.Join(b.dir, KeyReload))
	if err != nil {
		return r
	}
	var marker Reload
	if json.Unmarshal(data, &marker) == nil && marker.Kind != "" {
		return marker
	}
	return r
}

// reloadThrottle coalesces rapid notifications so a surface redraws once per
// burst of writes.
type reloadThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]Reload
	delay   time.Duration
}

func newReloadThrottle(delay time.Duration) *reloadThrottle {
	return &reloadThrottle{
		delay:   delay,
		pending: make(map[string]Reload),
	}
}

func (t *reloadThrottle) Enqueue(r Reload, send func(Reload)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[r.Kind] = r
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *reloadThrottle) flush(send func(Reload)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]Reload)
	t.timer = nil
	t.mu.Unlock()

	for _, r := range pending {
		send(r)
	}
}

func (t *reloadThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
