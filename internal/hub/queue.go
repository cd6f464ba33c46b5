package hub

import (
	"sync"
)

// OverflowPolicy decides what happens when a DeliveryQueue is full.
type OverflowPolicy string

const (
	// PolicyDropOldest discards the oldest queued item to make room.
	PolicyDropOldest OverflowPolicy = "drop_oldest"
	// PolicyDropNewest rejects the incoming item.
	PolicyDropNewest OverflowPolicy = "drop_newest"
	// PolicyDisconnect rejects the incoming item and signals that the
	// owning session should be torn down. A persistently slow consumer is
	// treated as failed rather than silently losing messages.
	PolicyDisconnect OverflowPolicy = "disconnect"
)

// ParsePolicy validates a raw policy string, falling back to disconnect.
func ParsePolicy(s string) OverflowPolicy {
	switch OverflowPolicy(s) {
	case PolicyDropOldest, PolicyDropNewest, PolicyDisconnect:
		return OverflowPolicy(s)
	}
	return PolicyDisconnect
}

// DefaultQueueCapacity is used when the configured capacity is not positive.
const DefaultQueueCapacity = 256

// DeliveryQueue is a bounded outbound queue for one session. Enqueue never
// blocks: a full queue triggers the overflow policy instead. Items are
// drained FIFO either through C (the write pump) or through Drain.
type DeliveryQueue struct {
	mu     sync.Mutex
	items  chan []byte
	policy OverflowPolicy
	closed bool
}

// NewDeliveryQueue creates a queue with the given capacity and policy.
func NewDeliveryQueue(capacity int, policy OverflowPolicy) *DeliveryQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &DeliveryQueue{
		items:  make(chan []byte, capacity),
		policy: policy,
	}
}

// Policy returns the queue's overflow policy.
func (q *DeliveryQueue) Policy() OverflowPolicy {
	return q.policy
}

// Cap returns the queue capacity.
func (q *DeliveryQueue) Cap() int {
	return cap(q.items)
}

// Len returns the number of currently queued items.
func (q *DeliveryQueue) Len() int {
	return len(q.items)
}

// Enqueue offers an item to the queue and reports whether it was accepted.
// On overflow, drop_oldest evicts the head and accepts the item; the other
// policies reject it. Enqueue on a closed queue reports false.
func (q *DeliveryQueue) Enqueue(data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	select {
	case q.items <- data:
		return true
	default:
	}

	if q.policy != PolicyDropOldest {
		return false
	}

	// Evict the head. The consumer may race us for it; either way a slot
	// frees up, so the second send only misses if the consumer refilled
	// the queue in between, which cannot happen (enqueue is serialized).
	select {
	case <-q.items:
	default:
	}
	select {
	case q.items <- data:
		return true
	default:
		return false
	}
}

// C exposes the drain channel for the session write pump. The channel is
// closed when the queue is closed; remaining items stay readable.
func (q *DeliveryQueue) C() <-chan []byte {
	return q.items
}

// Drain removes and returns up to max queued items without blocking.
// Successive calls continue where the previous one stopped.
func (q *DeliveryQueue) Drain(max int) [][]byte {
	if max <= 0 {
		return nil
	}
	var out [][]byte
	for len(out) < max {
		select {
		case data, ok := <-q.items:
			if !ok {
				return out
			}
			out = append(out, data)
		default:
			return out
		}
	}
	return out
}

// Close closes the queue. Subsequent Enqueue calls report false; queued
// items remain drainable. Safe to call multiple times.
func (q *DeliveryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}
