package launcher

import (
	"sync"

	"climatestudio/internal/models"
)

// EventLog is a bounded in-memory ring of launcher events, served by
// the status API.
type EventLog struct {
	mu         sync.RWMutex
	entries    []models.Event
	maxEntries int
}

func NewEventLog(maxEntries int) *EventLog {
	return &EventLog{
		entries:    make([]models.Event, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

func (l *EventLog) Add(entry models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
}

// Last returns up to n most recent events, oldest first.
func (l *EventLog) Last(n int) []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || len(l.entries) == 0 {
		return []models.Event{}
	}

	start := 0
	if len(l.entries) > n {
		start = len(l.entries) - n
	}

	result := make([]models.Event, len(l.entries[start:]))
	copy(result, l.entries[start:])
	return result
}
