// Package audit records privileged and security-relevant actions. Every
// record is logged immediately and, when an archive is configured, shipped
// to S3 in batches.
package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is one audit entry
type Record struct {
	At        time.Time              `json:"at"`
	Category  string                 `json:"category"`
	Action    string                 `json:"action"`
	ActorID   string                 `json:"actor_id"`
	ActorRole string                 `json:"actor_role"`
	TargetID  string                 `json:"target_id,omitempty"`
	Outcome   string                 `json:"outcome"`
	IP        string                 `json:"ip,omitempty"`
	Headers   map[string]string      `json:"headers,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// Archiver persists a batch of records
type Archiver interface {
	Enabled() bool
	UploadJSON(ctx context.Context, key string, v any) (string, error)
}

// Trail is the audit sink
type Trail struct {
	logger    *zap.Logger
	archive   Archiver
	prefix    string
	batchSize int
	interval  time.Duration

	mu       sync.Mutex
	buf      []Record
	stopChan chan struct{}
	done     chan struct{}
}

// NewTrail builds a trail. archive may be nil.
func NewTrail(logger *zap.Logger, archive Archiver, prefix string, batchSize int, interval time.Duration) *Trail {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Trail{
		logger:    logger,
		archive:   archive,
		prefix:    prefix,
		batchSize: batchSize,
		interval:  interval,
	}
}

// Record logs r and queues it for archiving
func (t *Trail) Record(r Record) {
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}
	if r.Outcome == "" {
		r.Outcome = OutcomeAllowed
	}
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("by", r.ActorID),
		zap.String("role", r.ActorRole),
		zap.String("target", r.TargetID),
		zap.String("outcome", r.Outcome),
	}
	if r.IP != "" {
		fields = append(fields, zap.String("ip", r.IP))
	}
	if len(r.Headers) > 0 {
		fields = append(fields, zap.Any("headers", r.Headers))
	}
	if len(r.Details) > 0 {
		fields = append(fields, zap.Any("details", r.Details))
	}
	msg := fmt.Sprintf("[AUDIT][%s][%s]", strings.ToUpper(r.Category), strings.ToUpper(r.Action))
	if r.Outcome == OutcomeDenied {
		t.logger.Warn(msg, fields...)
	} else {
		t.logger.Info(msg, fields...)
	}

	if t.archive == nil || !t.archive.Enabled() {
		return
	}
	t.mu.Lock()
	t.buf = append(t.buf, r)
	full := len(t.buf) >= t.batchSize
	t.mu.Unlock()
	if full {
		go t.Flush(context.Background())
	}
}

// Start flushes the buffer on an interval until Stop
func (t *Trail) Start() {
	if t.archive == nil || !t.archive.Enabled() {
		return
	}
	t.stopChan = make(chan struct{})
	t.done = make(chan struct{})
	ticker := time.NewTicker(t.interval)
	go func() {
		defer close(t.done)
		for {
			select {
			case <-ticker.C:
				t.Flush(context.Background())
			case <-t.stopChan:
				ticker.Stop()
				t.Flush(context.Background())
				return
			}
		}
	}()
}

// Stop performs a final flush
func (t *Trail) Stop() {
	if t.stopChan == nil {
		return
	}
	close(t.stopChan)
	<-t.done
}

// Flush uploads buffered records as one object. Records are put back on failure.
func (t *Trail) Flush(ctx context.Context) {
	t.mu.Lock()
	batch := t.buf
	t.buf = nil
	t.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	loc, err := t.archive.UploadJSON(ctx, TimestampKey(t.prefix), batch)
	if err != nil {
		t.logger.Error("audit archive upload failed", zap.Int("records", len(batch)), zap.Error(err))
		t.mu.Lock()
		t.buf = append(batch, t.buf...)
		t.mu.Unlock()
		return
	}
	t.logger.Info("audit batch archived", zap.Int("records", len(batch)), zap.String("location", loc))
}

// Pending returns the number of records waiting for upload
func (t *Trail) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}
