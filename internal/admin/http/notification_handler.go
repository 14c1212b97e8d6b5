package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/admin/http/dto"
	"github.com/reservehq/reserve-outbox/internal/httputil"
	notificationDomain "github.com/reservehq/reserve-outbox/internal/notification/domain"
)

// NotificationStore is the slice of the notification repository the admin
// API consumes.
type NotificationStore interface {
	ListFailed(ctx context.Context, limit, offset int) ([]*notificationDomain.Message, error)
	Requeue(ctx context.Context, id uuid.UUID) error
}

// NotificationHandler handles admin requests against the notification
// outbox.
type NotificationHandler struct {
	store  NotificationStore
	logger *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(store NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		store:  store,
		logger: logger,
	}
}

// ListFailedHandler lists dead-lettered notifications.
// GET /v1/notifications/failed?limit=N&offset=M
func (h *NotificationHandler) ListFailedHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	messages, err := h.store.ListFailed(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListNotificationsResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(messages)),
		Limit:         limit,
		Offset:        offset,
	}
	for _, msg := range messages {
		response.Notifications = append(response.Notifications, dto.MapNotificationToResponse(msg))
	}

	c.JSON(http.StatusOK, response)
}

// RequeueHandler resets a dead-lettered notification back to pending.
// POST /v1/notifications/:id/requeue
func (h *NotificationHandler) RequeueHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.store.Requeue(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("notification requeued", slog.String("record_id", id.String()))
	c.Status(http.StatusNoContent)
}
