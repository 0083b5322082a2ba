package port

import (
	"context"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

// AuditPublisher streams security events to the message bus for external
// audit consumers. Publishing failures are never allowed to fail the security
// decision that produced the event.
type AuditPublisher interface {
	PublishSecurityEvent(ctx context.Context, event domain.SecurityEvent) error
}
