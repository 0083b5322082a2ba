package memory

import (
	"context"
	"sync"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
)

// EventLog is an in-process bounded security event log. Append and truncation
// happen under one lock, so no events are lost between the two.
type EventLog struct {
	mu        sync.Mutex
	events    []domain.SecurityEvent
	retention int
}

// NewEventLog constructs an event log retaining at most retention entries.
func NewEventLog(retention int) *EventLog {
	if retention <= 0 {
		retention = domain.EventRetentionLimit
	}
	return &EventLog{retention: retention}
}

// Append records the event, dropping the oldest entries beyond retention.
func (l *EventLog) Append(_ context.Context, event domain.SecurityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	if len(l.events) > l.retention {
		l.events = l.events[len(l.events)-l.retention:]
	}
	return nil
}

// Recent returns up to n events, newest first.
func (l *EventLog) Recent(_ context.Context, n int) ([]domain.SecurityEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}

	out := make([]domain.SecurityEvent, 0, n)
	for i := len(l.events) - 1; i >= len(l.events)-n; i-- {
		out = append(out, l.events[i])
	}
	return out, nil
}

var _ port.SecurityEventLog = (*EventLog)(nil)
