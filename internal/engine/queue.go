package engine

import "github.com/eapache/queue"

// inboundQueue is a bounded FIFO of received payloads. When full, the oldest
// entry is dropped to make room (ring semantics); callers count the drop.
// Not safe for concurrent use; the owning session's lock guards it.
type inboundQueue struct {
	capacity int
	entries  *queue.Queue
}

func newInboundQueue(capacity int) *inboundQueue {
	return &inboundQueue{
		capacity: capacity,
		entries:  queue.New(),
	}
}

// push appends payload and reports whether an older entry was evicted.
func (q *inboundQueue) push(payload []byte) bool {
	evicted := false
	for q.entries.Length() >= q.capacity {
		q.entries.Remove()
		evicted = true
	}
	q.entries.Add(payload)
	return evicted
}

func (q *inboundQueue) pop() ([]byte, bool) {
	if q.entries.Length() == 0 {
		return nil, false
	}
	return q.entries.Remove().([]byte), true
}

func (q *inboundQueue) len() int {
	return q.entries.Length()
}
