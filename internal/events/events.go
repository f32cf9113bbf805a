// Package events publishes committed workflow transitions to Kafka so other
// services can follow bookings, deliveries and invoices.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, evt models.TransitionEvent) error
	Close() error
}

// Envelope is the wire format on the topic
type Envelope struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Payload   models.TransitionEvent `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventType renders e.g. "BookingConfirmed" or "InvoiceMarkOverdue"
func EventType(kind models.EntityKind, action string) string {
	return camel(string(kind)) + camel(action)
}

func camel(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func NewEnvelope(evt models.TransitionEvent) Envelope {
	return Envelope{
		EventID:   uuid.NewString(),
		EventType: EventType(evt.Kind, evt.Action),
		Payload:   evt,
		Timestamp: evt.OccurredAt,
	}
}

// KafkaPublisher writes envelopes keyed by entity id so one entity's events
// stay ordered within a partition
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("events")
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to publish transition events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt models.TransitionEvent) error {
	env := NewEnvelope(evt)
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", env.EventType, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.EntityID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, models.TransitionEvent) error { return nil }
func (Nop) Close() error                                          { return nil }

// Recorder keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	events []models.TransitionEvent
}

func (r *Recorder) Publish(_ context.Context, evt models.TransitionEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published
func (r *Recorder) Events() []models.TransitionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TransitionEvent, len(r.events))
	copy(out, r.events)
	return out
}
