package feed

import "sync"

// RingBuffer is a fixed-capacity, thread-safe ring buffer for feed Lines.
// When the buffer is full, the oldest line is evicted to make room for new
// entries. All methods are safe for concurrent use.
type RingBuffer struct {
	mu    sync.RWMutex
	items []Line
	cap   int
	head  int // index of the oldest element
	count int // number of elements currently stored
}

// NewRingBuffer creates a new RingBuffer with the given capacity.
// Capacity must be at least 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		items: make([]Line, capacity),
		cap:   capacity,
	}
}

// Add inserts a line into the buffer. If the buffer is full, the oldest
// line is overwritten.
func (rb *RingBuffer) Add(l Line) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	writePos := (rb.head + rb.count) % rb.cap
	if rb.count == rb.cap {
		rb.items[rb.head] = l
		rb.head = (rb.head + 1) % rb.cap
	} else {
		rb.items[writePos] = l
		rb.count++
	}
}

// ListAll returns all lines in chronological order (oldest first).
func (rb *RingBuffer) ListAll() []Line {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	return rb.listLocked()
}

// ListBySession returns all lines for the given session ID in
// chronological order.
func (rb *RingBuffer) ListBySession(sessionID string) []Line {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []Line
	for _, l := range rb.listLocked() {
		if l.SessionID == sessionID {
			result = append(result, l)
		}
	}
	return result
}

// Len returns the number of lines currently in the buffer.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the capacity of the buffer.
func (rb *RingBuffer) Cap() int {
	return rb.cap
}

// listLocked returns all lines in chronological order.
// Caller must hold at least a read lock.
func (rb *RingBuffer) listLocked() []Line {
	if rb.count == 0 {
		return nil
	}
	result := make([]Line, rb.count)
	for i := 0; i < rb.count; i++ {
		result[i] = rb.items[(rb.head+i)%rb.cap]
	}
	return result
}
