// Package app provides the dependency injection container that assembles the
// delivery workers, admin API, and supporting infrastructure.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	adminHTTP "github.com/reservehq/reserve-outbox/internal/admin/http"
	"github.com/reservehq/reserve-outbox/internal/config"
	cryptoService "github.com/reservehq/reserve-outbox/internal/crypto/service"
	"github.com/reservehq/reserve-outbox/internal/database"
	"github.com/reservehq/reserve-outbox/internal/http"
	"github.com/reservehq/reserve-outbox/internal/metrics"
	notificationDomain "github.com/reservehq/reserve-outbox/internal/notification/domain"
	notificationRepository "github.com/reservehq/reserve-outbox/internal/notification/repository"
	notificationService "github.com/reservehq/reserve-outbox/internal/notification/service"
	notificationUsecase "github.com/reservehq/reserve-outbox/internal/notification/usecase"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
	outboxUsecase "github.com/reservehq/reserve-outbox/internal/outbox/usecase"
	webhookDomain "github.com/reservehq/reserve-outbox/internal/webhook/domain"
	webhookRepository "github.com/reservehq/reserve-outbox/internal/webhook/repository"
	webhookService "github.com/reservehq/reserve-outbox/internal/webhook/service"
	webhookUsecase "github.com/reservehq/reserve-outbox/internal/webhook/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Observability
	metricsProvider *metrics.Provider
	deliveryMetrics metrics.DeliveryMetrics

	// Shared services
	contactCipher cryptoService.ContactCipher
	renderer      *notificationService.Renderer

	// Notification channel
	emailProvider          *notificationService.EmailProvider
	smsProvider            *notificationService.SMSProvider
	notificationRepo       notificationUsecase.MessageRepository
	notificationDispatcher *outboxUsecase.Dispatcher[*notificationDomain.Message]

	// Webhook channel
	deliveryRepo      webhookUsecase.DeliveryRepository
	endpointRepo      webhookUsecase.EndpointRepository
	signer            *webhookService.Signer
	sender            *webhookService.Sender
	webhookDispatcher *outboxUsecase.Dispatcher[*webhookDomain.Delivery]

	// Servers
	adminServer   *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                         sync.Mutex
	loggerInit                 sync.Once
	dbInit                     sync.Once
	txManagerInit              sync.Once
	metricsProviderInit        sync.Once
	deliveryMetricsInit        sync.Once
	contactCipherInit          sync.Once
	rendererInit               sync.Once
	emailProviderInit          sync.Once
	smsProviderInit            sync.Once
	notificationRepoInit       sync.Once
	notificationDispatcherInit sync.Once
	deliveryRepoInit           sync.Once
	endpointRepoInit           sync.Once
	signerInit                 sync.Once
	senderInit                 sync.Once
	webhookDispatcherInit      sync.Once
	adminServerInit            sync.Once
	metricsServerInit          sync.Once
	initErrors                 map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		txManager, err := c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
			return
		}
		c.txManager = txManager
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry/Prometheus metrics provider.
// It returns nil when metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// DeliveryMetrics returns the delivery instrumentation shared by both
// dispatchers. It returns nil when metrics are disabled.
func (c *Container) DeliveryMetrics() (metrics.DeliveryMetrics, error) {
	c.deliveryMetricsInit.Do(func() {
		deliveryMetrics, err := c.initDeliveryMetrics()
		if err != nil {
			c.initErrors["deliveryMetrics"] = err
			return
		}
		c.deliveryMetrics = deliveryMetrics
	})
	if storedErr, exists := c.initErrors["deliveryMetrics"]; exists {
		return nil, storedErr
	}
	return c.deliveryMetrics, nil
}

// ContactCipher returns the cipher used for guest contact data at rest.
func (c *Container) ContactCipher() (cryptoService.ContactCipher, error) {
	c.contactCipherInit.Do(func() {
		cipher, err := cryptoService.NewAESGCMContactCipherFromBase64(c.config.PIIEncryptionKey)
		if err != nil {
			c.initErrors["contactCipher"] = fmt.Errorf("failed to create contact cipher: %w", err)
			return
		}
		c.contactCipher = cipher
	})
	if storedErr, exists := c.initErrors["contactCipher"]; exists {
		return nil, storedErr
	}
	return c.contactCipher, nil
}

// Renderer returns the locale-aware template renderer.
func (c *Container) Renderer() (*notificationService.Renderer, error) {
	c.rendererInit.Do(func() {
		renderer, err := c.initRenderer()
		if err != nil {
			c.initErrors["renderer"] = err
			return
		}
		c.renderer = renderer
	})
	if storedErr, exists := c.initErrors["renderer"]; exists {
		return nil, storedErr
	}
	return c.renderer, nil
}

// EmailProvider returns the SMTP-backed email provider.
func (c *Container) EmailProvider() (*notificationService.EmailProvider, error) {
	c.emailProviderInit.Do(func() {
		c.emailProvider = c.initEmailProvider()
	})
	return c.emailProvider, nil
}

// SMSProvider returns the HTTP-gateway-backed SMS provider.
func (c *Container) SMSProvider() (*notificationService.SMSProvider, error) {
	c.smsProviderInit.Do(func() {
		c.smsProvider = c.initSMSProvider()
	})
	return c.smsProvider, nil
}

// NotificationRepository returns the notification outbox repository instance.
func (c *Container) NotificationRepository() (notificationUsecase.MessageRepository, error) {
	c.notificationRepoInit.Do(func() {
		repo, err := c.initNotificationRepository()
		if err != nil {
			c.initErrors["notificationRepo"] = err
			return
		}
		c.notificationRepo = repo
	})
	if storedErr, exists := c.initErrors["notificationRepo"]; exists {
		return nil, storedErr
	}
	return c.notificationRepo, nil
}

// NotificationDispatcher returns the notification delivery worker.
func (c *Container) NotificationDispatcher() (*outboxUsecase.Dispatcher[*notificationDomain.Message], error) {
	c.notificationDispatcherInit.Do(func() {
		dispatcher, err := c.initNotificationDispatcher()
		if err != nil {
			c.initErrors["notificationDispatcher"] = err
			return
		}
		c.notificationDispatcher = dispatcher
	})
	if storedErr, exists := c.initErrors["notificationDispatcher"]; exists {
		return nil, storedErr
	}
	return c.notificationDispatcher, nil
}

// DeliveryRepository returns the webhook delivery outbox repository instance.
func (c *Container) DeliveryRepository() (webhookUsecase.DeliveryRepository, error) {
	c.deliveryRepoInit.Do(func() {
		repo, err := c.initDeliveryRepository()
		if err != nil {
			c.initErrors["deliveryRepo"] = err
			return
		}
		c.deliveryRepo = repo
	})
	if storedErr, exists := c.initErrors["deliveryRepo"]; exists {
		return nil, storedErr
	}
	return c.deliveryRepo, nil
}

// EndpointRepository returns the webhook endpoint repository instance.
func (c *Container) EndpointRepository() (webhookUsecase.EndpointRepository, error) {
	c.endpointRepoInit.Do(func() {
		repo, err := c.initEndpointRepository()
		if err != nil {
			c.initErrors["endpointRepo"] = err
			return
		}
		c.endpointRepo = repo
	})
	if storedErr, exists := c.initErrors["endpointRepo"]; exists {
		return nil, storedErr
	}
	return c.endpointRepo, nil
}

// Signer returns the webhook HMAC signer.
func (c *Container) Signer() (*webhookService.Signer, error) {
	c.signerInit.Do(func() {
		c.signer = webhookService.NewSigner(c.config.WebhookSigningSecret)
	})
	return c.signer, nil
}

// Sender returns the webhook HTTP sender.
func (c *Container) Sender() (*webhookService.Sender, error) {
	c.senderInit.Do(func() {
		client := &nethttp.Client{Timeout: c.config.DeliveryTimeout}
		c.sender = webhookService.NewSender(client)
	})
	return c.sender, nil
}

// WebhookDispatcher returns the webhook delivery worker.
func (c *Container) WebhookDispatcher() (*outboxUsecase.Dispatcher[*webhookDomain.Delivery], error) {
	c.webhookDispatcherInit.Do(func() {
		dispatcher, err := c.initWebhookDispatcher()
		if err != nil {
			c.initErrors["webhookDispatcher"] = err
			return
		}
		c.webhookDispatcher = dispatcher
	})
	if storedErr, exists := c.initErrors["webhookDispatcher"]; exists {
		return nil, storedErr
	}
	return c.webhookDispatcher, nil
}

// AdminServer returns the admin HTTP server instance.
// It returns nil when the admin API is disabled in configuration.
func (c *Container) AdminServer() (*http.Server, error) {
	c.adminServerInit.Do(func() {
		if !c.config.AdminEnabled {
			return
		}
		server, err := c.initAdminServer()
		if err != nil {
			c.initErrors["adminServer"] = err
			return
		}
		c.adminServer = server
	})
	if storedErr, exists := c.initErrors["adminServer"]; exists {
		return nil, storedErr
	}
	return c.adminServer, nil
}

// MetricsServer returns the Prometheus metrics server instance.
// It returns nil when metrics are disabled in configuration.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		server, err := c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = server
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown admin HTTP server if initialized
	if c.adminServer != nil {
		if err := c.adminServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush the metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initDeliveryMetrics creates the delivery instrumentation from the metrics
// provider. A disabled provider yields nil metrics, which the dispatchers
// treat as a no-op.
func (c *Container) initDeliveryMetrics() (metrics.DeliveryMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for delivery metrics: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	deliveryMetrics, err := metrics.NewDeliveryMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery metrics: %w", err)
	}
	return deliveryMetrics, nil
}

// initRenderer creates the template renderer over the configured templates
// directory.
func (c *Container) initRenderer() (*notificationService.Renderer, error) {
	info, err := os.Stat(c.config.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates directory %q: %w", c.config.TemplatesDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %q is not a directory", c.config.TemplatesDir)
	}
	return notificationService.NewRenderer(os.DirFS(c.config.TemplatesDir), c.config.DefaultLocale, c.Logger()), nil
}

// sendLimiter builds the shared outbound rate limiter for a transport.
func (c *Container) sendLimiter() *rate.Limiter {
	burst := int(c.config.SendRatePerSec)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.config.SendRatePerSec), burst)
}

// initEmailProvider creates the email provider over the SMTP transport.
func (c *Container) initEmailProvider() *notificationService.EmailProvider {
	transport := notificationService.NewSMTPTransport(notificationService.SMTPConfig{
		Host:        c.config.SMTPHost,
		Port:        c.config.SMTPPort,
		Username:    c.config.SMTPUsername,
		Password:    c.config.SMTPPassword,
		FromAddress: c.config.MailFromAddress,
		FromName:    c.config.MailFromName,
	}, c.sendLimiter())
	return notificationService.NewEmailProvider(transport)
}

// initSMSProvider creates the SMS provider over the HTTP gateway transport.
func (c *Container) initSMSProvider() *notificationService.SMSProvider {
	client := &nethttp.Client{Timeout: c.config.DeliveryTimeout}
	transport := notificationService.NewHTTPSMSTransport(notificationService.SMSGatewayConfig{
		URL:    c.config.SMSGatewayURL,
		APIKey: c.config.SMSAPIKey,
		From:   c.config.SMSFrom,
	}, client, c.sendLimiter())
	return notificationService.NewSMSProvider(transport)
}

// initNotificationRepository creates the notification outbox repository instance.
func (c *Container) initNotificationRepository() (notificationUsecase.MessageRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for notification repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return notificationRepository.NewMySQLNotificationRepository(db), nil
	case "postgres":
		return notificationRepository.NewPostgreSQLNotificationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initNotificationDispatcher creates the notification delivery worker with
// all its dependencies.
func (c *Container) initNotificationDispatcher() (*outboxUsecase.Dispatcher[*notificationDomain.Message], error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for notification dispatcher: %w", err)
	}

	repo, err := c.NotificationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification repository for notification dispatcher: %w", err)
	}

	renderer, err := c.Renderer()
	if err != nil {
		return nil, fmt.Errorf("failed to get renderer for notification dispatcher: %w", err)
	}

	cipher, err := c.ContactCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact cipher for notification dispatcher: %w", err)
	}

	emailProvider, _ := c.EmailProvider()
	smsProvider, _ := c.SMSProvider()

	deliveryMetrics, err := c.DeliveryMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery metrics for notification dispatcher: %w", err)
	}

	deliverer := notificationUsecase.NewDeliverer(renderer, emailProvider, smsProvider, cipher, logger)

	dispatcherConfig := outboxUsecase.Config{
		Name:            "notifications",
		Enabled:         c.config.Notifications.Enabled,
		PollInterval:    c.config.Notifications.PollInterval,
		BatchSize:       c.config.Notifications.BatchSize,
		MaxAttempts:     c.config.Notifications.MaxAttempts,
		DeliveryTimeout: c.config.DeliveryTimeout,
		Backoff:         outboxDomain.BackoffPolicy{Cap: c.config.BackoffCap},
	}

	return outboxUsecase.NewDispatcher[*notificationDomain.Message](
		dispatcherConfig,
		txManager,
		repo,
		deliverer,
		nil,
		logger,
		deliveryMetrics,
	), nil
}

// initDeliveryRepository creates the webhook delivery outbox repository instance.
func (c *Container) initDeliveryRepository() (webhookUsecase.DeliveryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for delivery repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return webhookRepository.NewMySQLDeliveryRepository(db), nil
	case "postgres":
		return webhookRepository.NewPostgreSQLDeliveryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEndpointRepository creates the webhook endpoint repository instance.
func (c *Container) initEndpointRepository() (webhookUsecase.EndpointRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for endpoint repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return webhookRepository.NewMySQLEndpointRepository(db), nil
	case "postgres":
		return webhookRepository.NewPostgreSQLEndpointRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initWebhookDispatcher creates the webhook delivery worker with all its
// dependencies.
func (c *Container) initWebhookDispatcher() (*outboxUsecase.Dispatcher[*webhookDomain.Delivery], error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for webhook dispatcher: %w", err)
	}

	deliveryRepo, err := c.DeliveryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery repository for webhook dispatcher: %w", err)
	}

	endpointRepo, err := c.EndpointRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint repository for webhook dispatcher: %w", err)
	}

	signer, _ := c.Signer()
	sender, _ := c.Sender()

	deliveryMetrics, err := c.DeliveryMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery metrics for webhook dispatcher: %w", err)
	}

	deliverer := webhookUsecase.NewDeliverer(
		signer,
		sender,
		endpointRepo,
		deliveryRepo,
		outboxUsecase.SystemClock{},
		logger,
	)

	dispatcherConfig := outboxUsecase.Config{
		Name:            "webhooks",
		Enabled:         c.config.Webhooks.Enabled,
		PollInterval:    c.config.Webhooks.PollInterval,
		BatchSize:       c.config.Webhooks.BatchSize,
		MaxAttempts:     c.config.Webhooks.MaxAttempts,
		DeliveryTimeout: c.config.DeliveryTimeout,
		Backoff:         outboxDomain.BackoffPolicy{Cap: c.config.BackoffCap},
	}

	return outboxUsecase.NewDispatcher[*webhookDomain.Delivery](
		dispatcherConfig,
		txManager,
		deliveryRepo,
		deliverer,
		nil,
		logger,
		deliveryMetrics,
	), nil
}

// initAdminServer creates the admin HTTP server with all its dependencies.
func (c *Container) initAdminServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for admin server: %w", err)
	}

	notificationRepo, err := c.NotificationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification repository for admin server: %w", err)
	}

	deliveryRepo, err := c.DeliveryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery repository for admin server: %w", err)
	}

	endpointRepo, err := c.EndpointRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint repository for admin server: %w", err)
	}

	api := adminHTTP.NewAPI(
		c.config.AdminAPIToken,
		adminHTTP.NewNotificationHandler(notificationRepo, logger),
		adminHTTP.NewWebhookHandler(deliveryRepo, logger),
		adminHTTP.NewEndpointHandler(endpointRepo, logger),
		logger,
	)

	var middlewares []gin.HandlerFunc
	if cors := http.CORSMiddleware(c.config.CORSEnabled, c.config.CORSAllowOrigins, logger); cors != nil {
		middlewares = append(middlewares, cors)
	}

	server := http.NewServer(db, c.config.AdminHost, c.config.AdminPort, logger, middlewares...)
	server.RegisterRoutes(api)

	return server, nil
}

// initMetricsServer creates the Prometheus metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	return http.NewMetricsServer("0.0.0.0", c.config.MetricsPort, c.Logger(), provider), nil
}
