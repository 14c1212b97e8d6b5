package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// API groups the admin handlers under /v1 behind bearer authentication. It
// plugs into the shared HTTP server as a route registrar.
type API struct {
	token         string
	notifications *NotificationHandler
	webhooks      *WebhookHandler
	endpoints     *EndpointHandler
	logger        *slog.Logger
}

// NewAPI creates the admin API surface.
func NewAPI(
	token string,
	notifications *NotificationHandler,
	webhooks *WebhookHandler,
	endpoints *EndpointHandler,
	logger *slog.Logger,
) *API {
	return &API{
		token:         token,
		notifications: notifications,
		webhooks:      webhooks,
		endpoints:     endpoints,
		logger:        logger,
	}
}

// Register attaches the admin routes to the router.
func (a *API) Register(router *gin.Engine) {
	v1 := router.Group("/v1", AuthenticationMiddleware(a.token, a.logger))

	v1.GET("/notifications/failed", a.notifications.ListFailedHandler)
	v1.POST("/notifications/:id/requeue", a.notifications.RequeueHandler)

	v1.GET("/webhooks/failed", a.webhooks.ListFailedHandler)
	v1.POST("/webhooks/:id/requeue", a.webhooks.RequeueHandler)

	v1.GET("/webhook-endpoints", a.endpoints.ListHandler)
	v1.POST("/webhook-endpoints", a.endpoints.CreateHandler)
	v1.POST("/webhook-endpoints/:id/deactivate", a.endpoints.DeactivateHandler)
}
