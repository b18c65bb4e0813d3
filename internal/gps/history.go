package gps

import (
	"sync"
	"time"
)

// Entry is one received line as the decoder saw it.
type Entry struct {
	At    time.Time `json:"at"`
	Line  string    `json:"line"`
	Kind  string    `json:"kind"`
	Error string    `json:"error,omitempty"`
}

// History keeps the most recent received lines.
type History struct {
	mu      sync.Mutex
	max     int
	entries []Entry
	dropped uint64
}

func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &History{max: maxEntries}
}

func (h *History) Add(e Entry) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if len(h.entries) > h.max {
		over := len(h.entries) - h.max
		h.entries = h.entries[over:]
		h.dropped += uint64(over)
	}
}

// Tail returns up to n of the newest entries, oldest first.
func (h *History) Tail(n int) (entries []Entry, dropped uint64) {
	if h == nil {
		return nil, 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	start := len(h.entries) - n
	return append([]Entry(nil), h.entries[start:]...), h.dropped
}
