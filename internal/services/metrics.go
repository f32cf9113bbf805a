package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics counts notification outcomes
type Metrics struct {
	Enqueued atomic.Int64
	Sent     atomic.Int64
	Failed   atomic.Int64
	Dropped  atomic.Int64
	Retried  atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	Enqueued int64 `json:"enqueued"`
	Sent     int64 `json:"sent"`
	Failed   int64 `json:"failed"`
	Dropped  int64 `json:"dropped"`
	Retried  int64 `json:"retried"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Enqueued: m.Enqueued.Load(),
		Sent:     m.Sent.Load(),
		Failed:   m.Failed.Load(),
		Dropped:  m.Dropped.Load(),
		Retried:  m.Retried.Load(),
	}
}

// CloudWatchAPI is the slice of the CloudWatch client used here
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// PutCount publishes a single count datum
func PutCount(ctx context.Context, cw CloudWatchAPI, namespace, name string, value int64, dimName, dimValue string) error {
	now := time.Now()
	datum := cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  &now,
		Unit:       cwtypes.StandardUnitCount,
		Value:      aws.Float64(float64(value)),
	}
	if dimName != "" {
		datum.Dimensions = []cwtypes.Dimension{{Name: aws.String(dimName), Value: aws.String(dimValue)}}
	}
	_, err := cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	return err
}

// MetricsReporter periodically pushes notification counters to CloudWatch
type MetricsReporter struct {
	cw        CloudWatchAPI
	namespace string
	metrics   *Metrics
	interval  time.Duration
	logger    *zap.Logger
	last      MetricsSnapshot
	stopChan  chan struct{}
	done      chan struct{}
}

func NewMetricsReporter(cw CloudWatchAPI, namespace string, metrics *Metrics, interval time.Duration, logger *zap.Logger) *MetricsReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsReporter{
		cw:        cw,
		namespace: namespace,
		metrics:   metrics,
		interval:  interval,
		logger:    logger.Named("metrics"),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins the periodic flush
func (r *MetricsReporter) Start() {
	r.logger.Info("starting metrics reporter", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	go func() {
		defer close(r.done)
		for {
			select {
			case <-ticker.C:
				r.Flush(context.Background())
			case <-r.stopChan:
				ticker.Stop()
				r.Flush(context.Background())
				return
			}
		}
	}()
}

// Stop flushes once more and stops the reporter
func (r *MetricsReporter) Stop() {
	close(r.stopChan)
	<-r.done
}

// Flush publishes the counter deltas since the previous flush
func (r *MetricsReporter) Flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur := r.metrics.Snapshot()
	deltas := map[string]int64{
		"NotificationsEnqueued": cur.Enqueued - r.last.Enqueued,
		"NotificationsSent":     cur.Sent - r.last.Sent,
		"NotificationsFailed":   cur.Failed - r.last.Failed,
		"NotificationsDropped":  cur.Dropped - r.last.Dropped,
		"NotificationsRetried":  cur.Retried - r.last.Retried,
	}
	now := time.Now()
	var data []cwtypes.MetricDatum
	for name, v := range deltas {
		if v == 0 {
			continue
		}
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(v)),
		})
	}
	if len(data) == 0 {
		return
	}
	if _, err := r.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	}); err != nil {
		r.logger.Warn("PutMetricData failed", zap.Error(err))
		return
	}
	r.last = cur
}
