package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"go.uber.org/zap"
)

// Channel selects the transport for a message
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one queued notification. When To is empty the recipient is
// resolved from UserID at delivery time.
type Message struct {
	Channel Channel
	To      string
	UserID  string
	Subject string
	Body    string
	Event   string
}

type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, subject, htmlBody string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

// Directory resolves a user id to contact details
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// DispatcherConfig sizes the queue and retry policy
type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	MaxAttempts int
	BaseBackoff time.Duration
	SendTimeout time.Duration
}

func (c *DispatcherConfig) applyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
}

// Dispatcher delivers notifications on worker goroutines, off the request
// path. A full queue drops the message; delivery failures are retried with
// exponential backoff and then logged.
type Dispatcher struct {
	cfg     DispatcherConfig
	email   EmailSender
	sms     SMSSender
	dir     Directory
	metrics *Metrics
	logger  *zap.Logger

	queue  chan Message
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, email EmailSender, sms SMSSender, dir Directory, metrics *Metrics, logger *zap.Logger) *Dispatcher {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Dispatcher{
		cfg:     cfg,
		email:   email,
		sms:     sms,
		dir:     dir,
		metrics: metrics,
		logger:  logger.Named("notifications"),
		queue:   make(chan Message, cfg.QueueSize),
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	d.logger.Info("starting notification dispatcher",
		zap.Int("workers", d.cfg.Workers), zap.Int("queue_size", d.cfg.QueueSize))
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for m := range d.queue {
				d.deliver(m)
			}
		}()
	}
}

// Stop refuses new messages, drains the queue and waits for the workers
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

// Enqueue never blocks. It returns false when the message was dropped.
func (d *Dispatcher) Enqueue(m Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.Dropped.Add(1)
		d.logger.Error("notification dropped: dispatcher stopped", zap.String("event", m.Event))
		return false
	}
	select {
	case d.queue <- m:
		d.metrics.Enqueued.Add(1)
		return true
	default:
		d.metrics.Dropped.Add(1)
		d.logger.Error("notification dropped: queue full", zap.String("event", m.Event), zap.String("user_id", m.UserID))
		return false
	}
}

func (d *Dispatcher) deliver(m Message) {
	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err = d.send(m)
		if err == nil {
			d.metrics.Sent.Add(1)
			return
		}
		if attempt < d.cfg.MaxAttempts {
			d.metrics.Retried.Add(1)
			delay := d.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			d.logger.Warn("notification attempt failed",
				zap.String("event", m.Event), zap.Int("attempt", attempt), zap.Duration("retry_in", delay), zap.Error(err))
			time.Sleep(delay)
		}
	}
	d.metrics.Failed.Add(1)
	d.logger.Error("notification failed",
		zap.String("event", m.Event), zap.String("channel", string(m.Channel)), zap.Int("attempts", d.cfg.MaxAttempts), zap.Error(err))
}

func (d *Dispatcher) send(m Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	to, err := d.recipient(ctx, m)
	if err != nil {
		return err
	}
	switch m.Channel {
	case ChannelSMS:
		if d.sms == nil {
			return fmt.Errorf("sms transport not configured")
		}
		return d.sms.SendSMS(ctx, to, m.Body)
	default:
		if d.email == nil {
			return fmt.Errorf("email transport not configured")
		}
		return d.email.SendEmail(ctx, to, m.Subject, m.Body)
	}
}

func (d *Dispatcher) recipient(ctx context.Context, m Message) (string, error) {
	if m.To != "" {
		return m.To, nil
	}
	if m.UserID == "" || d.dir == nil {
		return "", fmt.Errorf("message %s has no recipient", m.Event)
	}
	u, err := d.dir.GetUser(ctx, m.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve recipient %s: %w", m.UserID, err)
	}
	if m.Channel == ChannelSMS {
		if u.Phone == nil || *u.Phone == "" {
			return "", fmt.Errorf("user %s has no phone number", m.UserID)
		}
		return *u.Phone, nil
	}
	return u.Email, nil
}

// LogSender stands in for SES and SNS when AWS delivery is disabled
type LogSender struct {
	Logger *zap.Logger
}

func (l LogSender) SendEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	l.Logger.Info("email (not sent)", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

func (l LogSender) SendSMS(ctx context.Context, phoneNumber, message string) error {
	l.Logger.Info("sms (not sent)", zap.String("to", phoneNumber), zap.String("message", message))
	return nil
}
