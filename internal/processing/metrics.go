package processing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"fritakagp.app/backend/internal/model"
)

const meterName = "fritakagp/processing"

// Metrics counts pipeline side effects, labelled by submission kind.
type Metrics struct {
	archived      metric.Int64Counter
	tasksCreated  metric.Int64Counter
	distributed   metric.Int64Counter
	events        metric.Int64Counter
	notifications metric.Int64Counter
	receipts      metric.Int64Counter
}

// NewMetrics registers the counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(meterName))
}

func noopMetrics() *Metrics {
	// The noop meter never returns errors.
	m, _ := newMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.archived, err = meter.Int64Counter("fritakagp_submissions_archived_total",
		metric.WithDescription("Submissions journaled in the archive")); err != nil {
		return nil, err
	}
	if m.tasksCreated, err = meter.Int64Counter("fritakagp_tasks_created_total",
		metric.WithDescription("Case-tasks created for submissions")); err != nil {
		return nil, err
	}
	if m.distributed, err = meter.Int64Counter("fritakagp_distribution_tasks_total",
		metric.WithDescription("Distribution tasks created after permanent failures")); err != nil {
		return nil, err
	}
	if m.events, err = meter.Int64Counter("fritakagp_events_published_total",
		metric.WithDescription("Submission events written to Kafka")); err != nil {
		return nil, err
	}
	if m.notifications, err = meter.Int64Counter("fritakagp_notifications_sent_total",
		metric.WithDescription("User notifications written to Kafka")); err != nil {
		return nil, err
	}
	if m.receipts, err = meter.Int64Counter("fritakagp_receipts_sent_total",
		metric.WithDescription("Receipts delivered to the employer")); err != nil {
		return nil, err
	}
	return &m, nil
}

func inc(ctx context.Context, c metric.Int64Counter, kind model.SubmissionKind) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
