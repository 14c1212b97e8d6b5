// Package dto defines the request and response payloads of the admin API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/reservehq/reserve-outbox/internal/validation"
)

// CreateWebhookEndpointRequest registers a new integrator callback target.
type CreateWebhookEndpointRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Validate checks the request payload.
func (r *CreateWebhookEndpointRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required, customValidation.NotBlank, customValidation.AbsoluteURL),
		validation.Field(&r.Description, validation.Length(0, 255)),
	)
}
