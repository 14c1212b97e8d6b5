// Package usecase implements the notification delivery side of the outbox
// engine: payload validation, contact decryption, template rendering and
// channel fan-out.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	cryptoService "github.com/reservehq/reserve-outbox/internal/crypto/service"
	"github.com/reservehq/reserve-outbox/internal/notification/domain"
	"github.com/reservehq/reserve-outbox/internal/notification/service"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// subjectSuffix names the per-event subject template next to the body
// template (e.g. reservation.created.subject).
const subjectSuffix = ".subject"

// Deliverer executes notification outbox items. It is the channel-provider
// boundary: guest contacts are decrypted here, handed to the transport and
// never persisted back.
type Deliverer struct {
	renderer *service.Renderer
	email    *service.EmailProvider
	sms      *service.SMSProvider
	cipher   cryptoService.ContactCipher
	logger   *slog.Logger
}

// NewDeliverer creates a notification Deliverer.
func NewDeliverer(
	renderer *service.Renderer,
	email *service.EmailProvider,
	sms *service.SMSProvider,
	cipher cryptoService.ContactCipher,
	logger *slog.Logger,
) *Deliverer {
	return &Deliverer{
		renderer: renderer,
		email:    email,
		sms:      sms,
		cipher:   cipher,
		logger:   logger,
	}
}

// Ready fails the notification cycle closed when a transport lacks
// credentials. Marking rows sent without transmitting anything would
// silently lose business-critical messages.
func (d *Deliverer) Ready(_ context.Context) error {
	if !d.email.Configured() {
		return fmt.Errorf("%w: email transport credentials", outboxDomain.ErrMissingConfig)
	}
	if !d.sms.Configured() {
		return fmt.Errorf("%w: sms transport credentials", outboxDomain.ErrMissingConfig)
	}
	return nil
}

// Deliver renders and sends one notification.
func (d *Deliverer) Deliver(ctx context.Context, msg *domain.Message, attempt int) error {
	payload, err := domain.ParsePayload(msg.Payload)
	if err != nil {
		return err
	}

	// Decrypt only at the provider boundary. A ciphertext that cannot be
	// opened is as permanent as a malformed payload.
	contact, err := d.cipher.Decrypt(msg.GuestContact)
	if err != nil {
		return outboxDomain.Permanentf("decrypt guest contact: %v", err)
	}

	body, err := d.renderer.Render(msg.Language, msg.Event, payload.Variables)
	if err != nil {
		return err
	}

	switch msg.Channel {
	case domain.ChannelEmail:
		subject, err := d.renderer.Render(msg.Language, msg.Event+subjectSuffix, payload.Variables)
		if err != nil {
			return err
		}
		err = d.email.Send(ctx, contact, subject, body)
		if err != nil {
			return err
		}
	case domain.ChannelSMS:
		if err := d.sms.Send(ctx, contact, body); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", outboxDomain.ErrUnknownChannel, msg.Channel)
	}

	d.logger.Info("notification delivered",
		slog.String("record_id", msg.ID.String()),
		slog.String("event", msg.Event),
		slog.String("channel", string(msg.Channel)),
		slog.Int("attempt", attempt),
	)
	return nil
}
