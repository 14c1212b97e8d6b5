package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Delivery outcome labels recorded per processed item.
const (
	ResultSuccess    = "success"
	ResultRetry      = "retry"
	ResultDeadLetter = "dead_letter"
)

// DeliveryMetrics records delivery outcomes and cycle timing for the outbox
// workers.
type DeliveryMetrics interface {
	// RecordDelivery records one processed item with its outcome.
	// Worker examples: "notifications", "webhooks".
	// Event examples: "reservation.created", "reservation.cancelled".
	RecordDelivery(ctx context.Context, worker, event, result string)

	// RecordCycleDuration records the wall-clock duration of one polling
	// cycle as a histogram for percentile calculations.
	RecordCycleDuration(ctx context.Context, worker string, duration time.Duration)
}

// deliveryMetrics implements DeliveryMetrics using OpenTelemetry metrics.
type deliveryMetrics struct {
	deliveryCounter metric.Int64Counter
	cycleHisto      metric.Float64Histogram
}

// NewDeliveryMetrics creates a DeliveryMetrics implementation using the
// provided meter provider. The namespace parameter prefixes all metric names
// (e.g. "reserve").
func NewDeliveryMetrics(meterProvider metric.MeterProvider, namespace string) (DeliveryMetrics, error) {
	meter := meterProvider.Meter(namespace)

	deliveryCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_deliveries_total", namespace),
		metric.WithDescription("Total number of processed outbox items"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}

	cycleHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_cycle_duration_seconds", namespace),
		metric.WithDescription("Duration of worker polling cycles in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cycle duration histogram: %w", err)
	}

	return &deliveryMetrics{
		deliveryCounter: deliveryCounter,
		cycleHisto:      cycleHisto,
	}, nil
}

// RecordDelivery increments the delivery counter with worker, event and
// result labels.
func (d *deliveryMetrics) RecordDelivery(ctx context.Context, worker, event, result string) {
	d.deliveryCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("worker", worker),
			attribute.String("event", event),
			attribute.String("result", result),
		),
	)
}

// RecordCycleDuration records one polling cycle duration in seconds.
func (d *deliveryMetrics) RecordCycleDuration(ctx context.Context, worker string, duration time.Duration) {
	d.cycleHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("worker", worker),
		),
	)
}
