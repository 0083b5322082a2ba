package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/logger"
)

// EventRecorder appends security events to the bounded log and mirrors them
// onto the audit stream. Recording is best-effort: a failing log or publisher
// is reported through the logger, never to the caller, so a security decision
// cannot be vetoed by observability plumbing.
type EventRecorder struct {
	log    port.SecurityEventLog
	audit  port.AuditPublisher
	logger *zap.Logger
}

// NewEventRecorder constructs a recorder. The audit publisher may be nil.
func NewEventRecorder(log port.SecurityEventLog, audit port.AuditPublisher, lg *zap.Logger) *EventRecorder {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &EventRecorder{log: log, audit: audit, logger: lg}
}

// Record captures one authentication or authorization outcome. The identifier
// is masked before the event leaves the core.
func (r *EventRecorder) Record(ctx context.Context, kind domain.EventKind, identifier string, success bool, reason string, details map[string]any) {
	event := domain.SecurityEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		At:         time.Now().UTC(),
		Identifier: maskIdentifier(identifier),
		Success:    success,
		Reason:     reason,
		Details:    details,
	}

	if r.log != nil {
		if err := r.log.Append(ctx, event); err != nil {
			r.logger.Error("append security event",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}

	if r.audit != nil {
		if err := r.audit.PublishSecurityEvent(ctx, event); err != nil {
			r.logger.Warn("publish audit event",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}
}

// Recent exposes the retained window of events, newest first.
func (r *EventRecorder) Recent(ctx context.Context, n int) ([]domain.SecurityEvent, error) {
	if r.log == nil {
		return nil, nil
	}
	return r.log.Recent(ctx, n)
}

func maskIdentifier(identifier string) string {
	if identifier == "" {
		return ""
	}
	if strings.Contains(identifier, "@") {
		return logger.MaskEmail(identifier)
	}
	return logger.MaskMobile(identifier)
}
