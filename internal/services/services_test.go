package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu       sync.Mutex
	failures int
	emails   []string
	sms      []string
	calls    int
}

func (r *recordingSender) SendEmail(ctx context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return errors.New("ses throttled")
	}
	r.emails = append(r.emails, to+"|"+subject)
	return nil
}

func (r *recordingSender) SendSMS(ctx context.Context, phone, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sms = append(r.sms, phone+"|"+msg)
	return nil
}

type staticDirectory map[string]*models.User

func (d staticDirectory) GetUser(ctx context.Context, id string) (*models.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return nil, errors.New("no such user")
}

func fastConfig() DispatcherConfig {
	return DispatcherConfig{QueueSize: 8, Workers: 1, MaxAttempts: 3, BaseBackoff: time.Millisecond}
}

func TestDispatcher_RetriesThenSucceeds(t *testing.T) {
	sender := &recordingSender{failures: 2}
	metrics := &Metrics{}
	d := NewDispatcher(fastConfig(), sender, sender, nil, metrics, nil)
	d.Start()
	require.True(t, d.Enqueue(Message{Channel: ChannelEmail, To: "c@example.com", Subject: "hi", Event: "test"}))
	d.Stop()

	assert.Equal(t, []string{"c@example.com|hi"}, sender.emails)
	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Sent)
	assert.Equal(t, int64(2), snap.Retried)
	assert.Equal(t, int64(0), snap.Failed)
}

func TestDispatcher_GivesUpAfterMaxAttempts(t *testing.T) {
	sender := &recordingSender{failures: 100}
	metrics := &Metrics{}
	d := NewDispatcher(fastConfig(), sender, sender, nil, metrics, nil)
	d.Start()
	d.Enqueue(Message{Channel: ChannelEmail, To: "c@example.com", Subject: "hi"})
	d.Stop()

	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, int64(1), metrics.Snapshot().Failed)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sender := &recordingSender{}
	metrics := &Metrics{}
	cfg := fastConfig()
	cfg.QueueSize = 2
	d := NewDispatcher(cfg, sender, sender, nil, metrics, nil)
	// not started: nothing drains the queue
	assert.True(t, d.Enqueue(Message{To: "a"}))
	assert.True(t, d.Enqueue(Message{To: "b"}))
	assert.False(t, d.Enqueue(Message{To: "c"}))
	assert.Equal(t, int64(1), metrics.Snapshot().Dropped)

	d.Start()
	d.Stop()
	assert.Len(t, sender.emails, 2)
	assert.False(t, d.Enqueue(Message{To: "d"}))
}

func TestDispatcher_ResolvesRecipients(t *testing.T) {
	phone := "+31600000000"
	dir := staticDirectory{"c1": {ID: "c1", Email: "c1@example.com", Phone: &phone}, "c2": {ID: "c2", Email: "c2@example.com"}}
	sender := &recordingSender{}
	metrics := &Metrics{}
	d := NewDispatcher(fastConfig(), sender, sender, dir, metrics, nil)
	d.Start()
	d.Enqueue(Message{Channel: ChannelEmail, UserID: "c1", Subject: "s"})
	d.Enqueue(Message{Channel: ChannelSMS, UserID: "c1", Body: "on the way"})
	d.Enqueue(Message{Channel: ChannelSMS, UserID: "c2", Body: "no phone"})
	d.Stop()

	assert.Equal(t, []string{"c1@example.com|s"}, sender.emails)
	assert.Equal(t, []string{"+31600000000|on the way"}, sender.sms)
	assert.Equal(t, int64(1), metrics.Snapshot().Failed)
}

type captureQueue struct{ msgs []Message }

func (c *captureQueue) Enqueue(m Message) bool {
	c.msgs = append(c.msgs, m)
	return true
}

func TestNotifier_BookingCreatedGoesToCustomer(t *testing.T) {
	q := &captureQueue{}
	n := NewNotifier(q, "ops@example.com", nil)
	b := &models.Booking{ID: "b1", CustomerID: "c1", StartDate: time.Now(), EndDate: time.Now()}
	n.Notify(models.TransitionEvent{Kind: models.KindBooking, Action: models.ActionCreate, Entity: b})

	require.Len(t, q.msgs, 1)
	assert.Equal(t, "c1", q.msgs[0].UserID)
	assert.Equal(t, "Booking Confirmation", q.msgs[0].Subject)
	assert.Equal(t, "booking.create", q.msgs[0].Event)
}

func TestNotifier_CancellationIncludesEscapedReason(t *testing.T) {
	q := &captureQueue{}
	n := NewNotifier(q, "", nil)
	b := &models.Booking{ID: "b1", CustomerID: "c1"}
	n.Notify(models.TransitionEvent{Kind: models.KindBooking, Action: models.ActionCancel, Reason: "<late>", Entity: b})

	require.Len(t, q.msgs, 1)
	assert.Contains(t, q.msgs[0].Body, "&lt;late&gt;")
	assert.False(t, strings.Contains(q.msgs[0].Body, "<late>"))
}

func TestNotifier_CargoApprovalGoesToOpsMailbox(t *testing.T) {
	q := &captureQueue{}
	n := NewNotifier(q, "ops@example.com", nil)
	c := &models.CargoDispatchDetail{ID: "cg1", CustomerID: "c1", ItemDescription: "pallets"}
	n.Notify(models.TransitionEvent{Kind: models.KindCargo, Action: models.ActionApprove, Entity: c})

	require.Len(t, q.msgs, 1)
	assert.Equal(t, "ops@example.com", q.msgs[0].To)
	assert.Empty(t, q.msgs[0].UserID)

	q.msgs = nil
	n.Notify(models.TransitionEvent{Kind: models.KindCargo, Action: models.ActionProcess, Entity: c})
	assert.Empty(t, q.msgs)
}

func TestNotifier_DispatchSendsEmailAndSMS(t *testing.T) {
	q := &captureQueue{}
	n := NewNotifier(q, "", nil)
	d := &models.DeliveryRequest{ID: "d1", CustomerID: "c1", TrackingNumber: "WW12345678ABCD"}
	n.Notify(models.TransitionEvent{Kind: models.KindDelivery, Action: models.ActionDispatch, Entity: d})

	require.Len(t, q.msgs, 2)
	assert.Equal(t, ChannelEmail, q.msgs[0].Channel)
	assert.Equal(t, ChannelSMS, q.msgs[1].Channel)
	assert.Contains(t, q.msgs[1].Body, "WW12345678ABCD")
}

func TestNotifier_QuoteEventsAreSilent(t *testing.T) {
	q := &captureQueue{}
	n := NewNotifier(q, "", nil)
	n.Notify(models.TransitionEvent{Kind: models.KindQuote, Action: models.ActionApprove, Entity: &models.Quote{ID: "q1"}})
	assert.Empty(t, q.msgs)
}

func TestNotifier_BookingApprovalIsSilent(t *testing.T) {
	q := &captureQueue{}
	n := NewNotifier(q, "ops@example.com", nil)
	b := &models.Booking{ID: "b1", CustomerID: "c1"}
	n.Notify(models.TransitionEvent{Kind: models.KindBooking, Action: models.ActionApprove, From: "pending", To: "pending", Entity: b})
	assert.Empty(t, q.msgs)
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsReporter_FlushesDeltas(t *testing.T) {
	cw := &fakeCloudWatch{}
	m := &Metrics{}
	r := NewMetricsReporter(cw, "Warehouse/Notifications", m, time.Hour, nil)

	r.Flush(context.Background())
	assert.Empty(t, cw.inputs)

	m.Sent.Add(3)
	r.Flush(context.Background())
	require.Len(t, cw.inputs, 1)
	require.Len(t, cw.inputs[0].MetricData, 1)
	assert.Equal(t, "NotificationsSent", *cw.inputs[0].MetricData[0].MetricName)
	assert.Equal(t, 3.0, *cw.inputs[0].MetricData[0].Value)

	r.Flush(context.Background())
	assert.Len(t, cw.inputs, 1)
}
