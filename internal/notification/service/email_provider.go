package service

import (
	"context"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// EmailProvider delivers rendered notifications over a MailTransport.
// Transport failures surface as transient delivery errors so the dispatcher
// can retry them.
type EmailProvider struct {
	transport MailTransport
}

// NewEmailProvider creates an EmailProvider over the given transport.
func NewEmailProvider(transport MailTransport) *EmailProvider {
	return &EmailProvider{transport: transport}
}

// Configured reports whether the underlying transport can send.
func (p *EmailProvider) Configured() bool {
	return p.transport.Configured()
}

// Send delivers one email. Delivery is at-least-once: a retried item may
// produce a duplicate message, an accepted risk of the retry model.
func (p *EmailProvider) Send(ctx context.Context, to, subject, text string) error {
	if err := p.transport.Send(ctx, Mail{To: to, Subject: subject, Text: text}); err != nil {
		return outboxDomain.Transient(err)
	}
	return nil
}
