package chat

import (
	"sync"
	"time"
)

// History keeps the append-only, in-memory message log of every room. Logs
// are unbounded and replayed in full.
type History struct {
	mu   sync.RWMutex
	logs map[string][]Message
	now  func() time.Time
	ids  *messageIDs
}

// NewHistory creates an empty store stamping messages with the wall clock.
func NewHistory() *History {
	return NewHistoryWithClock(time.Now)
}

// NewHistoryWithClock creates an empty store with a custom clock.
func NewHistoryWithClock(now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{
		logs: make(map[string][]Message),
		now:  now,
		ids:  newMessageIDs(),
	}
}

// Init creates an empty log for roomID if none exists.
func (h *History) Init(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.logs[roomID]; !ok {
		h.logs[roomID] = []Message{}
	}
}

// Append adds m to the end of the room's log, creating the log if needed,
// and returns the stored message. A missing id or timestamp is assigned
// under the store lock; the timestamp never goes below the previous entry's,
// so a log always reads in non-decreasing time order.
func (h *History) Append(roomID string, m Message) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.logs[roomID]
	if m.Timestamp == 0 {
		m.Timestamp = h.now().UnixMilli()
	}
	if n := len(log); n > 0 && m.Timestamp < log[n-1].Timestamp {
		m.Timestamp = log[n-1].Timestamp
	}
	if m.ID == "" {
		m.ID = h.ids.next(time.UnixMilli(m.Timestamp))
	}
	h.logs[roomID] = append(log, m)
	return m
}

// Of returns a copy of the room's log, oldest first. Unknown rooms yield an
// empty, non-nil slice.
func (h *History) Of(roomID string) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	log := h.logs[roomID]
	out := make([]Message, len(log))
	copy(out, log)
	return out
}

// Len returns the number of messages stored for roomID.
func (h *History) Len(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.logs[roomID])
}
