// ABOUTME: Thread-safe bounded table mapping forwarded operator messages back to the originating visitor.
// ABOUTME: Entries expire by TTL and count so abandoned threads do not grow memory without bound.

package thread

import (
	"container/list"
	"sync"
	"time"
)

// Thread records where a forwarded message came from so an operator's
// reply to it can be routed back. Immutable once recorded.
type Thread struct {
	VisitorChatID    int64
	VisitorMessageID int
	VisitorName      string
	Text             string
}

// key identifies one forwarded copy: the operator chat it was sent to
// and the message id the transport assigned to that send.
type key struct {
	ChatID    int64
	MessageID int
}

// tableEntry stores the thread, its record time, and its position in
// the insertion-order list.
type tableEntry struct {
	thread    Thread
	timestamp time.Time
	element   *list.Element
}

// Table provides a thread-safe, TTL-based, size-limited store of open
// contact threads. Uses a doubly-linked list to maintain insertion
// order for O(1) eviction of the oldest entry.
type Table struct {
	mu      sync.RWMutex
	entries map[key]*tableEntry
	order   *list.List // keys in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a Table with the specified TTL and maximum size.
// A background goroutine periodically removes expired entries.
func New(ttl time.Duration, maxSize int) *Table {
	t := &Table{
		entries: make(map[key]*tableEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go t.cleanup()
	return t
}

// Record stores the thread under (operatorChatID, operatorMessageID).
// An existing entry for the same pair is silently overwritten; the
// transport assigns fresh message ids per send, so collisions only
// happen if a transport misbehaves. If the table is at capacity, the
// oldest entry is evicted to make room.
func (t *Table) Record(operatorChatID int64, operatorMessageID int, th Thread) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{ChatID: operatorChatID, MessageID: operatorMessageID}
	now := time.Now()

	if entry, exists := t.entries[k]; exists {
		entry.thread = th
		entry.timestamp = now
		t.order.MoveToBack(entry.element)
		return
	}

	if len(t.entries) >= t.maxSize {
		t.evictOldest()
	}

	elem := t.order.PushBack(k)
	t.entries[k] = &tableEntry{
		thread:    th,
		timestamp: now,
		element:   elem,
	}
}

// Resolve looks up the thread recorded under the given pair. A miss is
// a normal outcome: it means the message was never a forwarded copy,
// or the entry already aged out.
func (t *Table) Resolve(operatorChatID int64, operatorMessageID int) (Thread, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[key{ChatID: operatorChatID, MessageID: operatorMessageID}]
	if !ok || time.Since(entry.timestamp) > t.ttl {
		return Thread{}, false
	}
	return entry.thread, true
}

// Len returns the number of stored entries, including expired ones not
// yet cleaned up.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (t *Table) evictOldest() {
	front := t.order.Front()
	if front == nil {
		return
	}

	k, _ := front.Value.(key)
	t.order.Remove(front)
	delete(t.entries, k)
}

// cleanup runs in a background goroutine, periodically removing
// expired entries.
func (t *Table) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.runCleanup()
		case <-t.done:
			return
		}
	}
}

// runCleanup removes all expired entries from the table.
func (t *Table) runCleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for k, entry := range t.entries {
		if now.Sub(entry.timestamp) > t.ttl {
			t.order.Remove(entry.element)
			delete(t.entries, k)
		}
	}
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.closed {
		close(t.done)
		t.closed = true
	}
}
