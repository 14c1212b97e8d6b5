package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/admin/http/dto"
	"github.com/reservehq/reserve-outbox/internal/httputil"
	webhookDomain "github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// DeliveryStore is the slice of the webhook delivery repository the admin
// API consumes.
type DeliveryStore interface {
	ListFailed(ctx context.Context, limit, offset int) ([]*webhookDomain.Delivery, error)
	Requeue(ctx context.Context, id uuid.UUID) error
}

// WebhookHandler handles admin requests against the webhook delivery outbox.
type WebhookHandler struct {
	store  DeliveryStore
	logger *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(store DeliveryStore, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		store:  store,
		logger: logger,
	}
}

// ListFailedHandler lists dead-lettered webhook deliveries.
// GET /v1/webhooks/failed?limit=N&offset=M
func (h *WebhookHandler) ListFailedHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	deliveries, err := h.store.ListFailed(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListDeliveriesResponse{
		Deliveries: make([]dto.DeliveryResponse, 0, len(deliveries)),
		Limit:      limit,
		Offset:     offset,
	}
	for _, delivery := range deliveries {
		response.Deliveries = append(response.Deliveries, dto.MapDeliveryToResponse(delivery))
	}

	c.JSON(http.StatusOK, response)
}

// RequeueHandler resets a dead-lettered webhook delivery back to pending.
// POST /v1/webhooks/:id/requeue
func (h *WebhookHandler) RequeueHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.store.Requeue(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("webhook delivery requeued", slog.String("delivery_id", id.String()))
	c.Status(http.StatusNoContent)
}
