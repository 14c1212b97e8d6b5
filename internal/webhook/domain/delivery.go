// Package domain defines the webhook delivery outbox entities.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// Delivery is a webhook outbox row. SignatureInput retains the exact signed
// string and DeliveredAt the acknowledgement time, both for audit.
type Delivery struct {
	outboxDomain.Record

	EndpointID     uuid.UUID
	Payload        json.RawMessage
	SignatureInput *string
	DeliveredAt    *time.Time
}

// Endpoint is a registered integrator callback target.
type Endpoint struct {
	ID          uuid.UUID
	URL         string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

// Payload is the webhook half of the outbox payload tagged union: the opaque
// event data forwarded verbatim in the envelope's data field.
type Payload struct {
	Data json.RawMessage `json:"data"`
}

// Validate checks the payload shape.
func (p *Payload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Data, validation.Required.Error("cannot be blank")),
	)
}

// ParsePayload validates a stored payload at claim time. An invalid shape is
// a permanent failure: the row dead-letters instead of failing deep inside
// the HTTP sender.
func ParsePayload(raw json.RawMessage) (*Payload, error) {
	if len(raw) == 0 {
		return nil, outboxDomain.Permanentf("empty webhook payload")
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, outboxDomain.Permanentf("malformed webhook payload: %v", err)
	}
	if err := payload.Validate(); err != nil {
		return nil, outboxDomain.Permanentf("invalid webhook payload: %v", err)
	}

	return &payload, nil
}
