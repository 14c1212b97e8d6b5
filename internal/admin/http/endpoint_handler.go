package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/admin/http/dto"
	"github.com/reservehq/reserve-outbox/internal/httputil"
	customValidation "github.com/reservehq/reserve-outbox/internal/validation"
	webhookDomain "github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// EndpointStore is the slice of the webhook endpoint repository the admin
// API consumes.
type EndpointStore interface {
	Create(ctx context.Context, endpoint *webhookDomain.Endpoint) error
	List(ctx context.Context, limit, offset int) ([]*webhookDomain.Endpoint, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// EndpointHandler handles admin requests for webhook endpoint management.
type EndpointHandler struct {
	store  EndpointStore
	logger *slog.Logger
}

// NewEndpointHandler creates a new EndpointHandler.
func NewEndpointHandler(store EndpointStore, logger *slog.Logger) *EndpointHandler {
	return &EndpointHandler{
		store:  store,
		logger: logger,
	}
}

// CreateHandler registers a new webhook endpoint.
// POST /v1/webhook-endpoints
func (h *EndpointHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateWebhookEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	endpoint := &webhookDomain.Endpoint{
		ID:          uuid.Must(uuid.NewV7()),
		URL:         req.URL,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.store.Create(c.Request.Context(), endpoint); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("webhook endpoint created",
		slog.String("endpoint_id", endpoint.ID.String()),
		slog.String("url", endpoint.URL),
	)
	c.JSON(http.StatusCreated, dto.MapEndpointToResponse(endpoint))
}

// ListHandler lists registered webhook endpoints.
// GET /v1/webhook-endpoints?limit=N&offset=M
func (h *EndpointHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	endpoints, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListEndpointsResponse{
		Endpoints: make([]dto.EndpointResponse, 0, len(endpoints)),
		Limit:     limit,
		Offset:    offset,
	}
	for _, endpoint := range endpoints {
		response.Endpoints = append(response.Endpoints, dto.MapEndpointToResponse(endpoint))
	}

	c.JSON(http.StatusOK, response)
}

// DeactivateHandler marks a webhook endpoint inactive.
// POST /v1/webhook-endpoints/:id/deactivate
func (h *EndpointHandler) DeactivateHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.store.Deactivate(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("webhook endpoint deactivated", slog.String("endpoint_id", id.String()))
	c.Status(http.StatusNoContent)
}
