package events

import (
	"context"
	"testing"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEventType(t *testing.T) {
	assert.Equal(t, "BookingConfirm", EventType(models.KindBooking, models.ActionConfirm))
	assert.Equal(t, "InvoiceMarkOverdue", EventType(models.KindInvoice, models.ActionMarkOverdue))
	assert.Equal(t, "DeliveryAssignDriver", EventType(models.KindDelivery, models.ActionAssignDriver))
}

func TestNewEnvelope(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	env := NewEnvelope(models.TransitionEvent{Kind: models.KindQuote, Action: models.ActionAssign, EntityID: "q1", OccurredAt: at})
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "QuoteAssign", env.EventType)
	assert.Equal(t, at, env.Timestamp)
	assert.Equal(t, "q1", env.Payload.EntityID)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), models.TransitionEvent{EntityID: "a"})
	_ = r.Publish(context.Background(), models.TransitionEvent{EntityID: "b"})
	got := r.Events()
	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[1].EntityID)
}
