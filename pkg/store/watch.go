package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/tabby/pkg/entry"
)

// Event is emitted by Watch when stored days change on disk. An empty Day
// means the change could not be pinned to one day and everything should be
// re-read.
type Event struct {
	Day string
}

// Watcher is implemented by backends that can report writes made by other
// processes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

var _ Watcher = (*DiskvStore)(nil)

// Watch streams change events until ctx is cancelled. Before an event is
// sent the store's id index and read cache have been brought up to date for
// that day, so a re-query sees what is on disk. The channel is closed once
// ctx is done or the watcher fails.
func (s *DiskvStore) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, storageErr("watch", fmt.Errorf("create watcher: %w", err))
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, storageErr("watch", fmt.Errorf("enumerate directories: %w", err))
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, storageErr("watch", fmt.Errorf("watch %s: %w", dir, err))
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		var sendMu sync.Mutex
		closed := false
		send := func(ev Event) {
			if ev.Day == "" {
				if err := s.resync(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "store: resync: %v\n", err)
				}
			} else {
				s.refreshKey(ev.Day)
			}
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// A slow consumer re-reads on the next event anyway.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer func() {
			throttle.Stop()
			sendMu.Lock()
			closed = true
			sendMu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue("", send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								fmt.Fprintf(os.Stderr, "store: watch %s: %v\n", dir, err)
							} else {
								watched[dir] = struct{}{}
							}
						}
						// Files may have landed before the watch was added.
						throttle.Enqueue("", send)
						continue
					}
				}
				key := s.keyForPath(evt.Name)
				if key == "" {
					continue
				}
				throttle.Enqueue(key, send)
			}
		}
	}()

	return events, nil
}

// keyForPath maps a file under the base path back to its day key, or "" when
// the path is not a day document.
func (s *DiskvStore) keyForPath(path string) string {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) < 2 {
		return ""
	}
	key := pathToKeyTransform(&diskv.PathKey{Path: parts[:len(parts)-1], FileName: parts[len(parts)-1]})
	if _, err := entry.ParseDay(key, s.opts.loc); err != nil {
		return ""
	}
	return key
}

// refreshKey re-reads one day straight from disk, dropping any cached copy,
// and points the id index at whatever now lives there.
func (s *DiskvStore) refreshKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, k := range s.ids {
		if k == key {
			delete(s.ids, id)
		}
	}
	rc, err := s.d.ReadStream(key, true)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "store: refresh %s: %v\n", key, err)
		}
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: refresh %s: %v\n", key, err)
		return
	}
	e := &entry.Entry{}
	if err := json.Unmarshal(data, e); err != nil {
		fmt.Fprintf(os.Stderr, "store: refresh %s: %v\n", key, err)
		return
	}
	s.ids[e.ID] = key
}

func (s *DiskvStore) resync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.d.Keys(ctx.Done()) {
		if rc, err := s.d.ReadStream(key, true); err == nil {
			_ = rc.Close()
		}
	}
	return s.reindex(ctx)
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventThrottle coalesces bursts of filesystem activity into one event per
// day key.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(key string, send func(Event)) {
	t.mu.Lock()
	t.pending[key] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	// A full resync covers every single day.
	if _, all := pending[""]; all {
		send(Event{})
		return
	}
	for key := range pending {
		send(Event{Day: key})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
