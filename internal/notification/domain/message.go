// Package domain defines the guest notification outbox entities.
package domain

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// Channel identifies the transport a notification goes out on.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is a notification outbox row. GuestContact is stored encrypted at
// rest by the producer and is decrypted only at the provider boundary.
type Message struct {
	outboxDomain.Record

	Channel      Channel
	GuestContact string
	Language     string
	Payload      json.RawMessage
}

// Payload is the notification half of the outbox payload tagged union:
// the template variables interpolated into the rendered text.
type Payload struct {
	Variables map[string]any `json:"variables"`
}

// Validate checks the payload shape.
func (p *Payload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Variables, validation.NotNil),
	)
}

// ParsePayload validates a stored payload at claim time. An invalid shape is
// a permanent failure: the row dead-letters instead of failing deep inside a
// channel provider.
func ParsePayload(raw json.RawMessage) (*Payload, error) {
	if len(raw) == 0 {
		return nil, outboxDomain.Permanentf("empty notification payload")
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, outboxDomain.Permanentf("malformed notification payload: %v", err)
	}
	if err := payload.Validate(); err != nil {
		return nil, outboxDomain.Permanentf("invalid notification payload: %v", err)
	}

	return &payload, nil
}
