package web

import (
	"sync"

	"pmodgps/internal/gps"
)

// UpdateBroadcaster fans decoded records out to stream listeners. It keeps
// the most recent update so new subscribers get an immediate sample.
type UpdateBroadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan gps.Update
	nextID   int
	last     gps.Update
	haveLast bool
}

func NewUpdateBroadcaster() *UpdateBroadcaster {
	return &UpdateBroadcaster{subs: make(map[int]chan gps.Update)}
}

func (b *UpdateBroadcaster) Name() string { return "web" }

func (b *UpdateBroadcaster) Subscribe(buffer int) (int, <-chan gps.Update) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan gps.Update, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last := b.last
	have := b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *UpdateBroadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish implements gps.Sink. Slow subscribers miss updates rather than
// stalling the decoder.
func (b *UpdateBroadcaster) Publish(u gps.Update) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- u:
		default:
		}
	}
	b.last = u
	b.haveLast = true
	return nil
}

func (b *UpdateBroadcaster) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
