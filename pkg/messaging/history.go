package messaging

import "sync"

// history keeps the most recent delivered messages in delivery order,
// trimming the oldest first once capacity is reached. Only the
// consumer goroutine appends; readers copy.
type history struct {
	mu       sync.RWMutex
	messages []Message
	capacity int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = defaultHistorySize
	}
	return &history{
		messages: make([]Message, 0, capacity),
		capacity: capacity,
	}
}

func (h *history) append(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, m)
	if len(h.messages) > h.capacity {
		h.messages = h.messages[1:]
	}
}

// recent returns up to limit messages, newest last. limit <= 0 means
// everything retained.
func (h *history) recent(limit int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.messages)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Message, n)
	copy(out, h.messages[len(h.messages)-n:])
	return out
}
