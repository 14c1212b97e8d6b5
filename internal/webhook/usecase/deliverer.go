// Package usecase implements the webhook delivery side of the outbox engine:
// envelope construction, HMAC signing and endpoint resolution.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
	outboxUsecase "github.com/reservehq/reserve-outbox/internal/outbox/usecase"
	"github.com/reservehq/reserve-outbox/internal/webhook/domain"
	"github.com/reservehq/reserve-outbox/internal/webhook/service"
)

// EndpointStore resolves delivery targets.
type EndpointStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Endpoint, error)
}

// SignatureRecorder persists the exact signed string next to the delivery
// row, inside the cycle transaction.
type SignatureRecorder interface {
	SaveSignatureInput(ctx context.Context, id uuid.UUID, input string) error
}

// envelope is the wire body POSTed to integrator endpoints.
type envelope struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Attempt   int             `json:"attempt"`
	CreatedAt string          `json:"createdAt"`
	Data      json.RawMessage `json:"data"`
}

// Deliverer executes webhook outbox items: it resolves the endpoint, builds
// and signs the envelope and POSTs it.
type Deliverer struct {
	signer    *service.Signer
	sender    *service.Sender
	endpoints EndpointStore
	recorder  SignatureRecorder
	clock     outboxUsecase.Clock
	logger    *slog.Logger
}

// NewDeliverer creates a webhook Deliverer.
func NewDeliverer(
	signer *service.Signer,
	sender *service.Sender,
	endpoints EndpointStore,
	recorder SignatureRecorder,
	clock outboxUsecase.Clock,
	logger *slog.Logger,
) *Deliverer {
	return &Deliverer{
		signer:    signer,
		sender:    sender,
		endpoints: endpoints,
		recorder:  recorder,
		clock:     clock,
		logger:    logger,
	}
}

// Ready fails the whole webhook cycle closed when the signing secret is
// absent. Rows stay queued; unsigned deliveries are never attempted.
func (d *Deliverer) Ready(_ context.Context) error {
	if !d.signer.Configured() {
		return fmt.Errorf("%w: webhook signing secret", outboxDomain.ErrMissingConfig)
	}
	return nil
}

// Deliver signs and POSTs one webhook delivery.
func (d *Deliverer) Deliver(ctx context.Context, delivery *domain.Delivery, attempt int) error {
	payload, err := domain.ParsePayload(delivery.Payload)
	if err != nil {
		return err
	}

	endpoint, err := d.endpoints.GetByID(ctx, delivery.EndpointID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return outboxDomain.Permanentf("webhook endpoint %s not found", delivery.EndpointID)
		}
		return outboxDomain.Transient(err)
	}
	if !endpoint.IsActive {
		return outboxDomain.Permanentf("webhook endpoint %s is inactive", endpoint.ID)
	}

	body, err := json.Marshal(envelope{
		ID:        delivery.ID.String(),
		Event:     delivery.Event,
		Attempt:   attempt,
		CreatedAt: delivery.CreatedAt.UTC().Format(time.RFC3339),
		Data:      payload.Data,
	})
	if err != nil {
		return outboxDomain.Permanentf("marshal webhook envelope: %v", err)
	}

	timestamp := strconv.FormatInt(d.clock.Now().Unix(), 10)
	if err := d.recorder.SaveSignatureInput(ctx, delivery.ID, service.SignatureInput(timestamp, body)); err != nil {
		return outboxDomain.Transient(err)
	}

	err = d.sender.Send(ctx, service.Request{
		URL:        endpoint.URL,
		Event:      delivery.Event,
		DeliveryID: delivery.ID.String(),
		Timestamp:  timestamp,
		Signature:  d.signer.Header(timestamp, body),
		Body:       body,
	})
	if err != nil {
		return err
	}

	d.logger.Info("webhook delivered",
		slog.String("delivery_id", delivery.ID.String()),
		slog.String("event", delivery.Event),
		slog.String("endpoint_id", endpoint.ID.String()),
		slog.Int("attempt", attempt),
	)
	return nil
}
