package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/core/port"
	"github.com/arklim/commerce-platform-auth/internal/infra/config"
)

const (
	schemaVersion      = "1.0"
	securityEventTopic = "security.event"
)

// AuditPublisher implements port.AuditPublisher using Kafka. Security events
// are mirrored onto the audit stream for downstream consumers; publish
// failures are surfaced to the caller but must never veto a security
// decision.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewAuditPublisher constructs a Kafka-backed audit publisher.
func NewAuditPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *AuditPublisher {
	return &AuditPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

// PublishSecurityEvent sends the event onto the auth.security.event topic.
func (p *AuditPublisher) PublishSecurityEvent(ctx context.Context, event domain.SecurityEvent) error {
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}

	ts := event.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	payload := struct {
		Kind       string         `json:"kind"`
		Identifier string         `json:"identifier,omitempty"`
		Success    bool           `json:"success"`
		Reason     string         `json:"reason,omitempty"`
		Details    map[string]any `json:"details,omitempty"`
	}{
		Kind:       string(event.Kind),
		Identifier: event.Identifier,
		Success:    event.Success,
		Reason:     event.Reason,
		Details:    event.Details,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: string(event.Kind),
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(securityEventTopic),
		Key:   sarama.StringEncoder(event.Identifier),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ port.AuditPublisher = (*AuditPublisher)(nil)
