package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly audit publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishSecurityEvent logs the event at info level.
func (p *StubPublisher) PublishSecurityEvent(_ context.Context, event domain.SecurityEvent) error {
	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub audit event published",
		zap.String("kind", string(event.Kind)),
		zap.String("identifier", event.Identifier),
		zap.Bool("success", event.Success),
		zap.String("reason", event.Reason),
		zap.Time("timestamp", at.UTC()),
	)
	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
