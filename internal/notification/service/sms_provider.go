package service

import (
	"context"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// SMSProvider delivers rendered notifications over an SMSTransport.
type SMSProvider struct {
	transport SMSTransport
}

// NewSMSProvider creates an SMSProvider over the given transport.
func NewSMSProvider(transport SMSTransport) *SMSProvider {
	return &SMSProvider{transport: transport}
}

// Configured reports whether the underlying transport can send. Missing
// credentials fail the cycle closed rather than marking rows sent without
// transmitting anything.
func (p *SMSProvider) Configured() bool {
	return p.transport.Configured()
}

// Send delivers one SMS. Transport failures are transient and retryable.
func (p *SMSProvider) Send(ctx context.Context, to, text string) error {
	if err := p.transport.Send(ctx, SMS{To: to, Text: text}); err != nil {
		return outboxDomain.Transient(err)
	}
	return nil
}
