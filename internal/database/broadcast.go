package database

import (
	"context"
	"sync"
)

// Broadcaster fans a "something committed" signal out to live queries. Each
// subscriber gets a buffered channel of size one, so notifications coalesce:
// a subscriber that has not drained its channel will see a single pending
// signal, never a backlog.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener. The returned channel receives a signal
// after every committed write until ctx is cancelled, at which point the
// subscription is detached and the channel closed.
func (b *Broadcaster) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Notify signals all current subscribers without blocking the writer.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
