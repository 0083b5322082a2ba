package port

import (
	"context"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
)

// SecurityEventLog is the append-only, size-bounded record of security
// outcomes. Append must truncate to the retention limit atomically so no
// events are lost under concurrent writers.
type SecurityEventLog interface {
	Append(ctx context.Context, event domain.SecurityEvent) error
	// Recent returns up to n events, newest first.
	Recent(ctx context.Context, n int) ([]domain.SecurityEvent, error)
}
