package store

import (
	"context"
	"reflect"
	"sync"
)

// notifier fans out a change signal to subscribers. Signals are coalesced:
// a subscriber that hasn't drained its channel gets at most one pending
// notification.
type notifier struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]chan struct{})}
}

func (n *notifier) subscribe() (int, chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch
	return id, ch
}

func (n *notifier) unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

func (n *notifier) broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// changed signals all watchers after a committed write to any of the post,
// author, tag or cross-reference tables.
func (s *Store) changed() {
	s.watch.broadcast()
}

// WatchAggregate emits the aggregate for one post id, then re-reads and
// re-emits whenever a write touches the participating tables. Duplicate
// states are suppressed. A nil emission means the post is absent. The channel
// closes when ctx is cancelled or a read fails.
func (s *Store) WatchAggregate(ctx context.Context, postID string) <-chan *Aggregate {
	out := make(chan *Aggregate, 1)
	subID, signal := s.watch.subscribe()

	go func() {
		defer close(out)
		defer s.watch.unsubscribe(subID)

		var last *Aggregate
		first := true

		emit := func() bool {
			agg, err := s.GetAggregate(ctx, postID)
			if err != nil {
				return false
			}
			if !first && reflect.DeepEqual(last, agg) {
				return true
			}
			select {
			case out <- agg:
				last = agg
				first = false
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

// Invalidations returns a channel that receives a signal after any committed
// write, telling paging consumers that previously served windows may be
// stale. The channel closes when ctx is cancelled.
func (s *Store) Invalidations(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	subID, signal := s.watch.subscribe()

	go func() {
		defer close(out)
		defer s.watch.unsubscribe(subID)
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
