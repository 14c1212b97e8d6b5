package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	notificationDomain "github.com/reservehq/reserve-outbox/internal/notification/domain"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
	webhookDomain "github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

const testToken = "admin-token"

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) ListFailed(ctx context.Context, limit, offset int) ([]*notificationDomain.Message, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notificationDomain.Message), args.Error(1)
}

func (m *MockNotificationStore) Requeue(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDeliveryStore struct {
	mock.Mock
}

func (m *MockDeliveryStore) ListFailed(ctx context.Context, limit, offset int) ([]*webhookDomain.Delivery, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhookDomain.Delivery), args.Error(1)
}

func (m *MockDeliveryStore) Requeue(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEndpointStore struct {
	mock.Mock
}

func (m *MockEndpointStore) Create(ctx context.Context, endpoint *webhookDomain.Endpoint) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *MockEndpointStore) List(ctx context.Context, limit, offset int) ([]*webhookDomain.Endpoint, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhookDomain.Endpoint), args.Error(1)
}

func (m *MockEndpointStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type testStores struct {
	notifications *MockNotificationStore
	deliveries    *MockDeliveryStore
	endpoints     *MockEndpointStore
}

func newTestRouter(t *testing.T) (*gin.Engine, *testStores) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores := &testStores{
		notifications: &MockNotificationStore{},
		deliveries:    &MockDeliveryStore{},
		endpoints:     &MockEndpointStore{},
	}

	api := NewAPI(
		testToken,
		NewNotificationHandler(stores.notifications, logger),
		NewWebhookHandler(stores.deliveries, logger),
		NewEndpointHandler(stores.endpoints, logger),
		logger,
	)

	router := gin.New()
	api.Register(router)
	return router, stores
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticationMiddleware(t *testing.T) {
	router, stores := newTestRouter(t)
	stores.notifications.On("ListFailed", mock.Anything, 50, 0).Return([]*notificationDomain.Message{}, nil)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"malformed header", "Basic foo", http.StatusUnauthorized},
		{"valid token", "Bearer " + testToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/notifications/failed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthenticationMiddlewareEmptyConfiguredToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	router.GET("/guarded", AuthenticationMiddleware("", logger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListFailedNotifications(t *testing.T) {
	router, stores := newTestRouter(t)

	lastError := "smtp down"
	msg := &notificationDomain.Message{
		Record: outboxDomain.Record{
			ID:        uuid.Must(uuid.NewV7()),
			Event:     "reservation.created",
			Status:    outboxDomain.StatusFailed,
			Attempts:  5,
			LastError: &lastError,
		},
		Channel:  notificationDomain.ChannelEmail,
		Language: "en",
	}
	stores.notifications.On("ListFailed", mock.Anything, 50, 0).Return([]*notificationDomain.Message{msg}, nil)

	w := doRequest(router, http.MethodGet, "/v1/notifications/failed", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	notifications := response["notifications"].([]any)
	require.Len(t, notifications, 1)

	first := notifications[0].(map[string]any)
	assert.Equal(t, msg.ID.String(), first["id"])
	assert.Equal(t, "failed", first["status"])
	assert.Equal(t, "smtp down", first["last_error"])
	// Encrypted guest contact never leaves the engine.
	assert.NotContains(t, first, "guest_contact")
}

func TestRequeueNotification(t *testing.T) {
	router, stores := newTestRouter(t)
	id := uuid.Must(uuid.NewV7())
	stores.notifications.On("Requeue", mock.Anything, id).Return(nil)

	w := doRequest(router, http.MethodPost, "/v1/notifications/"+id.String()+"/requeue", testToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	stores.notifications.AssertExpectations(t)
}

func TestRequeueNotificationConflict(t *testing.T) {
	router, stores := newTestRouter(t)
	id := uuid.Must(uuid.NewV7())
	stores.notifications.On("Requeue", mock.Anything, id).Return(apperrors.ErrConflict)

	w := doRequest(router, http.MethodPost, "/v1/notifications/"+id.String()+"/requeue", testToken, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRequeueNotificationBadID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/v1/notifications/not-a-uuid/requeue", testToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequeueWebhookNotFound(t *testing.T) {
	router, stores := newTestRouter(t)
	id := uuid.Must(uuid.NewV7())
	stores.deliveries.On("Requeue", mock.Anything, id).Return(apperrors.ErrNotFound)

	w := doRequest(router, http.MethodPost, "/v1/webhooks/"+id.String()+"/requeue", testToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWebhookEndpoint(t *testing.T) {
	router, stores := newTestRouter(t)
	stores.endpoints.On("Create", mock.Anything, mock.MatchedBy(func(e *webhookDomain.Endpoint) bool {
		return e.URL == "https://partner.example.com/hooks" && e.IsActive
	})).Return(nil)

	w := doRequest(router, http.MethodPost, "/v1/webhook-endpoints", testToken,
		`{"url": "https://partner.example.com/hooks", "description": "partner"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "https://partner.example.com/hooks", response["url"])
	assert.Equal(t, true, response["is_active"])
	stores.endpoints.AssertExpectations(t)
}

func TestCreateWebhookEndpointInvalidURL(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/v1/webhook-endpoints", testToken,
		`{"url": "not a url"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListWebhookEndpoints(t *testing.T) {
	router, stores := newTestRouter(t)
	endpoint := &webhookDomain.Endpoint{
		ID:        uuid.Must(uuid.NewV7()),
		URL:       "https://partner.example.com/hooks",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	stores.endpoints.On("List", mock.Anything, 50, 0).Return([]*webhookDomain.Endpoint{endpoint}, nil)

	w := doRequest(router, http.MethodGet, "/v1/webhook-endpoints", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	endpoints := response["endpoints"].([]any)
	require.Len(t, endpoints, 1)
}

func TestDeactivateWebhookEndpoint(t *testing.T) {
	router, stores := newTestRouter(t)
	id := uuid.Must(uuid.NewV7())
	stores.endpoints.On("Deactivate", mock.Anything, id).Return(nil)

	w := doRequest(router, http.MethodPost, "/v1/webhook-endpoints/"+id.String()+"/deactivate", testToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	stores.endpoints.AssertExpectations(t)
}
