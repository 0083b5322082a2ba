package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
)

const eventsTable = "auth.security_events"

// EventLog implements port.SecurityEventLog using PostgreSQL. The retention
// trim runs in the same transaction as the insert, so the bounded window
// holds under concurrent writers.
type EventLog struct {
	db        txStarter
	exec      pgExecutor
	builder   squirrel.StatementBuilderType
	retention int
}

// NewEventLog wires a PostgreSQL-backed security event log.
func NewEventLog(db dbHandle, retention int) *EventLog {
	if retention <= 0 {
		retention = domain.EventRetentionLimit
	}
	return &EventLog{
		db:        db,
		exec:      db,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		retention: retention,
	}
}

// Append inserts the event and drops rows older than the retention window.
func (l *EventLog) Append(ctx context.Context, event domain.SecurityEvent) error {
	var details []byte
	if len(event.Details) > 0 {
		encoded, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal event details: %w", err)
		}
		details = encoded
	}

	stmt, args, err := l.builder.Insert(eventsTable).
		Columns("id", "kind", "at", "identifier", "success", "reason", "details").
		Values(event.ID, string(event.Kind), event.At, event.Identifier, event.Success, event.Reason, details).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert event sql: %w", err)
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return storeFault("begin append tx", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return storeFault("insert event", err)
	}

	trim := fmt.Sprintf(`DELETE FROM %s WHERE id NOT IN (SELECT id FROM %s ORDER BY at DESC LIMIT %d)`, eventsTable, eventsTable, l.retention)
	if _, err := tx.Exec(ctx, trim); err != nil {
		return storeFault("trim events", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeFault("commit append tx", err)
	}

	return nil
}

// Recent returns up to n events, newest first.
func (l *EventLog) Recent(ctx context.Context, n int) ([]domain.SecurityEvent, error) {
	if n <= 0 || n > l.retention {
		n = l.retention
	}

	stmt, args, err := l.builder.
		Select("id", "kind", "at", "identifier", "success", "reason", "details").
		From(eventsTable).
		OrderBy("at DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select events sql: %w", err)
	}

	rows, err := l.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, storeFault("query events", err)
	}
	defer rows.Close()

	events := make([]domain.SecurityEvent, 0, n)
	for rows.Next() {
		var (
			event   domain.SecurityEvent
			kind    string
			details []byte
		)
		if err := rows.Scan(&event.ID, &kind, &event.At, &event.Identifier, &event.Success, &event.Reason, &details); err != nil {
			return nil, storeFault("scan event", err)
		}
		event.Kind = domain.EventKind(kind)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("decode event details: %w", err)
			}
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, storeFault("iterate events", err)
	}

	return events, nil
}

var _ port.SecurityEventLog = (*EventLog)(nil)
