package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/repository"
)

const eventsKey = "auth:security:events"

// EventLog implements port.SecurityEventLog on a Redis list. Append pushes
// and trims inside one MULTI/EXEC pipeline, so the retention bound holds
// regardless of writer interleaving.
type EventLog struct {
	client    *goredis.Client
	retention int
}

// NewEventLog wires a Redis-backed security event log.
func NewEventLog(client *goredis.Client, retention int) *EventLog {
	if retention <= 0 {
		retention = domain.EventRetentionLimit
	}
	return &EventLog{client: client, retention: retention}
}

// Append records the event and drops entries beyond the retention window.
func (l *EventLog) Append(ctx context.Context, event domain.SecurityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal security event: %w", err)
	}

	_, err = l.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, eventsKey, payload)
		pipe.LTrim(ctx, eventsKey, 0, int64(l.retention)-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append security event: %w: %v", repository.ErrUnavailable, err)
	}

	return nil
}

// Recent returns up to n events, newest first.
func (l *EventLog) Recent(ctx context.Context, n int) ([]domain.SecurityEvent, error) {
	if n <= 0 || n > l.retention {
		n = l.retention
	}

	raw, err := l.client.LRange(ctx, eventsKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read security events: %w: %v", repository.ErrUnavailable, err)
	}

	events := make([]domain.SecurityEvent, 0, len(raw))
	for _, item := range raw {
		var event domain.SecurityEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("decode security event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}

var _ port.SecurityEventLog = (*EventLog)(nil)
