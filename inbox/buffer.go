package inbox

import (
	"context"
	"sync"
)

// DefaultCapacity is the number of entries retained when no capacity is configured
const DefaultCapacity = 100

/* Buffer is the in-memory retention window
 * A fixed-size ring: insertion is O(1) and evicts exactly the oldest entry
 * Safe for concurrent use
 */
type Buffer struct {
	mu    sync.RWMutex
	items []Entry
	head  int // index of the next write
	size  int
}

// NewBuffer creates a buffer holding at most capacity entries
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{items: make([]Entry, capacity)}
}

// Append inserts entry as the newest one
func (b *Buffer) Append(_ context.Context, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = entry
	b.head = (b.head + 1) % len(b.items)
	if b.size < len(b.items) {
		b.size++
	}
	return nil
}

// List returns a copy of the retained entries, newest first
func (b *Buffer) List(_ context.Context) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, b.size)
	for i := 0; i < b.size; i++ {
		idx := (b.head - 1 - i + len(b.items)) % len(b.items)
		out[i] = b.items[idx]
	}
	return out, nil
}

// Len returns the number of retained entries
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the maximum number of retained entries
func (b *Buffer) Cap() int {
	return len(b.items)
}

// Close releases nothing; it satisfies Repository
func (b *Buffer) Close(_ context.Context) error {
	return nil
}
