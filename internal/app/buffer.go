package app

import (
	"context"
	"sync"
)

// DefaultBufferSize is the number of decoded batches held between the
// network reader and the sink.
const DefaultBufferSize = 1000

// Buffer is a bounded FIFO whose Put blocks while the buffer is full.
// Items are never dropped; a slow consumer stalls the producer instead.
//
// Only the producer may call Close, and it must not Put afterwards.
type Buffer[T any] struct {
	items     chan T
	closeOnce sync.Once
}

// NewBuffer creates a buffer holding at most capacity items.
// A non-positive capacity selects DefaultBufferSize.
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer[T]{items: make(chan T, capacity)}
}

// Put appends item, waiting for space while the buffer is full.
// It returns ctx.Err() if ctx is done first; the item is then not admitted.
func (b *Buffer[T]) Put(ctx context.Context, item T) error {
	select {
	case b.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Out returns the receive side. It is closed after Close once drained.
func (b *Buffer[T]) Out() <-chan T {
	return b.items
}

// Close marks the end of input.
func (b *Buffer[T]) Close() {
	b.closeOnce.Do(func() { close(b.items) })
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return cap(b.items)
}
