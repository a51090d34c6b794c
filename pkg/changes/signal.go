// Package changes broadcasts "the journal changed" to everything showing it.
package changes

import (
	"context"
	"sync"
)

// Revision is an opaque, increasing change counter. Receivers only compare it
// for equality or use it as a prompt to re-query.
type Revision uint64

// Signal fans a revision out to every subscriber. The zero value is ready to
// use.
type Signal struct {
	mu   sync.Mutex
	rev  Revision
	subs map[*subscriber]struct{}
}

type subscriber struct {
	mu    sync.Mutex
	queue []Revision
	wake  chan struct{}
	out   chan Revision
}

// Publish bumps the revision and queues it for every current subscriber. It
// never blocks on a slow receiver.
func (s *Signal) Publish() Revision {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rev++
	for sub := range s.subs {
		sub.push(s.rev)
	}
	return s.rev
}

// Current is the last published revision.
func (s *Signal) Current() Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Subscribe delivers, in order, every revision published from now until ctx
// is done. The channel is closed after ctx is done.
func (s *Signal) Subscribe(ctx context.Context) <-chan Revision {
	sub := &subscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan Revision),
	}

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[*subscriber]struct{})
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer close(sub.out)
		defer s.remove(sub)

		for {
			rev, ok := sub.pop()
			if !ok {
				select {
				case <-ctx.Done():
					return
				case <-sub.wake:
				}
				continue
			}
			select {
			case <-ctx.Done():
				return
			case sub.out <- rev:
			}
		}
	}()
	return sub.out
}

// Subscribers reports how many receivers are registered.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Signal) remove(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

func (sub *subscriber) push(rev Revision) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, rev)
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber) pop() (Revision, bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.queue) == 0 {
		return 0, false
	}
	rev := sub.queue[0]
	sub.queue = sub.queue[1:]
	return rev, true
}
