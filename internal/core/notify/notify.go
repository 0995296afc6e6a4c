// Package notify defines user-facing notification types and an in-memory
// history for them.
package notify

import (
	"sync"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64
	Level     Level
	Message   string
	CreatedAt time.Time
}

// DefaultHistorySize is the history capacity used when none is given.
const DefaultHistorySize = 50

// History keeps the most recent notifications, newest first.
type History struct {
	mu     sync.Mutex
	size   int
	nextID int64
	items  []Notification
}

// NewHistory creates a history holding at most size notifications.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Save assigns an ID to n and stores it, evicting the oldest entry when full.
func (h *History) Save(n Notification) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	n.ID = h.nextID
	h.items = append([]Notification{n}, h.items...)
	if len(h.items) > h.size {
		h.items = h.items[:h.size]
	}
	return n.ID
}

// List returns stored notifications, newest first.
func (h *History) List() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Notification, len(h.items))
	copy(out, h.items)
	return out
}

// Count returns the number of stored notifications.
func (h *History) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Clear drops all stored notifications.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
