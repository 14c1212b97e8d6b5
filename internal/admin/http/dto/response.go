package dto

import (
	"encoding/json"
	"time"

	notificationDomain "github.com/reservehq/reserve-outbox/internal/notification/domain"
	webhookDomain "github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// NotificationResponse is the admin view of a notification outbox row. The
// encrypted guest contact is intentionally omitted.
type NotificationResponse struct {
	ID          string          `json:"id"`
	Event       string          `json:"event"`
	Channel     string          `json:"channel"`
	Language    string          `json:"language"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	LastError   *string         `json:"last_error"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListNotificationsResponse wraps a page of notification rows.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

// MapNotificationToResponse converts a domain message to its admin view.
func MapNotificationToResponse(msg *notificationDomain.Message) NotificationResponse {
	return NotificationResponse{
		ID:          msg.ID.String(),
		Event:       msg.Event,
		Channel:     string(msg.Channel),
		Language:    msg.Language,
		Payload:     msg.Payload,
		Status:      string(msg.Status),
		Attempts:    msg.Attempts,
		LastError:   msg.LastError,
		ScheduledAt: msg.ScheduledAt,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   msg.UpdatedAt,
	}
}

// DeliveryResponse is the admin view of a webhook delivery row.
type DeliveryResponse struct {
	ID             string          `json:"id"`
	EndpointID     string          `json:"endpoint_id"`
	Event          string          `json:"event"`
	Payload        json.RawMessage `json:"payload"`
	Status         string          `json:"status"`
	Attempts       int             `json:"attempts"`
	LastError      *string         `json:"last_error"`
	SignatureInput *string         `json:"signature_input"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
	ScheduledAt    time.Time       `json:"scheduled_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ListDeliveriesResponse wraps a page of webhook delivery rows.
type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// MapDeliveryToResponse converts a domain delivery to its admin view.
func MapDeliveryToResponse(delivery *webhookDomain.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:             delivery.ID.String(),
		EndpointID:     delivery.EndpointID.String(),
		Event:          delivery.Event,
		Payload:        delivery.Payload,
		Status:         string(delivery.Status),
		Attempts:       delivery.Attempts,
		LastError:      delivery.LastError,
		SignatureInput: delivery.SignatureInput,
		DeliveredAt:    delivery.DeliveredAt,
		ScheduledAt:    delivery.ScheduledAt,
		CreatedAt:      delivery.CreatedAt,
		UpdatedAt:      delivery.UpdatedAt,
	}
}

// EndpointResponse is the admin view of a webhook endpoint.
type EndpointResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListEndpointsResponse wraps a page of webhook endpoints.
type ListEndpointsResponse struct {
	Endpoints []EndpointResponse `json:"endpoints"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// MapEndpointToResponse converts a domain endpoint to its admin view.
func MapEndpointToResponse(endpoint *webhookDomain.Endpoint) EndpointResponse {
	return EndpointResponse{
		ID:          endpoint.ID.String(),
		URL:         endpoint.URL,
		Description: endpoint.Description,
		IsActive:    endpoint.IsActive,
		CreatedAt:   endpoint.CreatedAt,
	}
}
