// Package usecase implements the generic polling/claim/process/reschedule
// cycle shared by the notification and webhook delivery workers.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/database"
	"github.com/reservehq/reserve-outbox/internal/metrics"
	"github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// Clock abstracts time so tests can fast-forward backoff delays instead of
// sleeping in real time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Item is a claimed outbox row. The concrete type is worker-specific; the
// dispatcher only touches the shared record columns.
type Item interface {
	Meta() *domain.Record
}

// Store exposes the outbox state transitions for one worker's table.
// ClaimBatch must return pending rows with scheduled_at <= now ordered by
// (scheduled_at, created_at), locked so that no concurrent replica can claim
// them again within the cycle transaction.
type Store[T Item] interface {
	ClaimBatch(ctx context.Context, now time.Time, limit int) ([]T, error)
	MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastError string, nextScheduledAt time.Time) error
	MarkDeadLetter(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
}

// Deliverer executes the external side effect for one claimed item.
type Deliverer[T Item] interface {
	// Ready reports whether the channel can deliver at all. A
	// domain.ErrMissingConfig result fails the cycle closed: nothing is
	// dequeued and the rows stay untouched.
	Ready(ctx context.Context) error

	// Deliver performs the side effect for the given attempt number.
	// Failures are classified through the domain error taxonomy.
	Deliver(ctx context.Context, item T, attempt int) error
}

// Config holds the dispatcher configuration for one worker type.
type Config struct {
	// Name identifies the worker in logs and metrics ("notifications",
	// "webhooks").
	Name string
	// Enabled gates the cycle. When false the loop keeps ticking but skips
	// fetching entirely.
	Enabled bool
	// PollInterval is the sleep between cycles.
	PollInterval time.Duration
	// BatchSize caps the rows claimed per cycle.
	BatchSize int
	// MaxAttempts is the retry budget before dead-lettering.
	MaxAttempts int
	// DeliveryTimeout bounds each Deliver call so a hung transport cannot
	// stall the loop.
	DeliveryTimeout time.Duration
	// Backoff computes the delay before the next retry.
	Backoff domain.BackoffPolicy
}

// Dispatcher is the generic work loop, instantiated once per worker type.
// Each cycle runs inside a single transaction: claim locks and the resulting
// state transitions commit together, so a crash mid-cycle leaves no
// partially-applied transition behind.
type Dispatcher[T Item] struct {
	config    Config
	txManager database.TxManager
	store     Store[T]
	deliverer Deliverer[T]
	clock     Clock
	logger    *slog.Logger
	metrics   metrics.DeliveryMetrics
}

// NewDispatcher creates a dispatcher for one worker type. A nil clock
// defaults to the system clock; metrics may be nil.
func NewDispatcher[T Item](
	config Config,
	txManager database.TxManager,
	store Store[T],
	deliverer Deliverer[T],
	clock Clock,
	logger *slog.Logger,
	deliveryMetrics metrics.DeliveryMetrics,
) *Dispatcher[T] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Dispatcher[T]{
		config:    config,
		txManager: txManager,
		store:     store,
		deliverer: deliverer,
		clock:     clock,
		logger:    logger,
		metrics:   deliveryMetrics,
	}
}

// Start runs the polling loop until ctx is cancelled. Cycle-level errors are
// logged and the loop backs off one poll interval before the next attempt;
// they never stop the process.
func (d *Dispatcher[T]) Start(ctx context.Context) error {
	d.logger.Info("starting dispatcher",
		slog.String("worker", d.config.Name),
		slog.Duration("poll_interval", d.config.PollInterval),
		slog.Int("batch_size", d.config.BatchSize),
		slog.Int("max_attempts", d.config.MaxAttempts),
	)

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("stopping dispatcher", slog.String("worker", d.config.Name))
			return ctx.Err()
		case <-ticker.C:
			if err := d.RunCycle(ctx); err != nil {
				d.logger.Error("cycle failed",
					slog.String("worker", d.config.Name),
					slog.Any("error", err),
				)
			}
		}
	}
}

// RunCycle executes one polling cycle: gate checks, claim, per-item
// processing. Exposed so tests can drive cycles without the ticker.
func (d *Dispatcher[T]) RunCycle(ctx context.Context) error {
	if !d.config.Enabled {
		return nil
	}

	// Channel-wide preconditions (e.g. a missing signing secret) fail the
	// cycle closed: no dequeuing, no unsigned or unsendable attempts.
	if err := d.deliverer.Ready(ctx); err != nil {
		return fmt.Errorf("worker %s not ready: %w", d.config.Name, err)
	}

	start := d.clock.Now()
	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		items, err := d.store.ClaimBatch(ctx, d.clock.Now(), d.config.BatchSize)
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}

		if len(items) == 0 {
			return nil
		}

		d.logger.Info("processing batch",
			slog.String("worker", d.config.Name),
			slog.Int("count", len(items)),
		)

		for _, item := range items {
			// A failed transition write is a cycle-level error: rolling the
			// transaction back keeps the claimed rows pending and untouched.
			if err := d.processItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if d.metrics != nil {
		d.metrics.RecordCycleDuration(ctx, d.config.Name, d.clock.Now().Sub(start))
	}
	return nil
}

// processItem runs one delivery attempt and converts the outcome into
// exactly one state transition. Per-item failures (including panics inside a
// deliverer) never abort the rest of the batch.
func (d *Dispatcher[T]) processItem(ctx context.Context, item T) error {
	rec := item.Meta()
	attempt := rec.Attempts + 1

	deliverErr := d.deliver(ctx, item, attempt)
	if deliverErr == nil {
		if d.metrics != nil {
			d.metrics.RecordDelivery(ctx, d.config.Name, rec.Event, metrics.ResultSuccess)
		}
		return d.store.MarkSuccess(ctx, rec.ID, attempt)
	}

	d.logger.Error("delivery failed",
		slog.String("worker", d.config.Name),
		slog.String("record_id", rec.ID.String()),
		slog.String("event", rec.Event),
		slog.Int("attempt", attempt),
		slog.Any("error", deliverErr),
	)

	if domain.IsPermanent(deliverErr) || attempt >= d.config.MaxAttempts {
		if d.metrics != nil {
			d.metrics.RecordDelivery(ctx, d.config.Name, rec.Event, metrics.ResultDeadLetter)
		}
		return d.store.MarkDeadLetter(ctx, rec.ID, attempt, deliverErr.Error())
	}

	next := d.clock.Now().Add(d.config.Backoff.Delay(attempt))
	if d.metrics != nil {
		d.metrics.RecordDelivery(ctx, d.config.Name, rec.Event, metrics.ResultRetry)
	}
	return d.store.MarkRetry(ctx, rec.ID, attempt, deliverErr.Error(), next)
}

// deliver invokes the deliverer with a bounded context and panic isolation.
func (d *Dispatcher[T]) deliver(ctx context.Context, item T, attempt int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.Transientf("deliverer panic: %v", r)
		}
	}()

	if d.config.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DeliveryTimeout)
		defer cancel()
	}

	err = d.deliverer.Deliver(ctx, item, attempt)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !domain.IsPermanent(err) {
		err = domain.Transient(err)
	}
	return err
}
