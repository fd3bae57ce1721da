package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/api"
	"github.com/mindspace/mindspace-backend/internal/audit"
	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/config"
	"github.com/mindspace/mindspace-backend/internal/database"
	"github.com/mindspace/mindspace-backend/internal/logging"
	"github.com/mindspace/mindspace-backend/internal/persona"
	"github.com/mindspace/mindspace-backend/internal/relay"
	"github.com/mindspace/mindspace-backend/internal/repository"
	"github.com/mindspace/mindspace-backend/internal/repository/postgres"
	"github.com/mindspace/mindspace-backend/internal/responder"
	"github.com/mindspace/mindspace-backend/internal/services"
)

const (
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(cfg.Log)

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize repositories
	clock := repository.NewClock()
	sessionRepo := postgres.NewSessionRepository(db.DB, clock)
	messageRepo := postgres.NewMessageRepository(db.DB, clock)
	userRepo := postgres.NewUserRepository(db.DB)
	authSessionRepo := postgres.NewUserSessionRepository(db.DB) // Auth sessions
	auditLogRepo := postgres.NewAuditLogRepository(db.DB)

	personas := persona.NewMemoryStore(persona.Catalog())

	aiResponder, err := newResponder(cfg.AI, personas)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize AI responder")
	}

	group, err := newRelayGroup(ctx, cfg.Relay, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize relay")
	}

	svc := services.NewServices(db.DB, personas, sessionRepo, messageRepo, aiResponder, group, log)

	auditService := audit.NewService(auditLogRepo, log)

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		log.Warn("Using default JWT secret. Set MINDSPACE_AUTH_JWT_SECRET in production!")
	}
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authService := auth.NewService(userRepo, authSessionRepo, jwtService, log)

	go cleanupSessions(ctx, authService, log)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "MindSpace Backend",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	api.SetupRoutes(app, api.Dependencies{
		Services: svc,
		Auth:     authService,
		Audit:    auditService,
		Relay: relay.New(group, relay.Options{
			SendBuffer:   cfg.Relay.SendBuffer,
			WriteTimeout: cfg.Relay.WriteTimeout,
			PingInterval: cfg.Relay.PingInterval,
		}, log),
		RateLimit: cfg.Server.RateLimit,
		Logger:    log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr()).Info("MindSpace backend starting")
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	select {
	case <-ctx.Done():
		shutdown(app, group, log)
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}
}

// shutdown stops the HTTP server, then releases relay members. Upgraded
// websocket connections are hijacked and no longer tracked by the server.
func shutdown(app *fiber.App, group relay.Group, log *logrus.Logger) {
	log.Info("Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.WithField("members", group.Count()).Info("Closing relay connections")
	group.CloseAll()
}

// newResponder picks the AI backend named by the config
func newResponder(cfg config.AIConfig, personas persona.Store) (responder.Responder, error) {
	switch cfg.Backend {
	case "openai":
		return responder.NewOpenAIResponder(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.Timeout, personas)
	default:
		return responder.NewHTTPResponder(cfg.URL, cfg.Timeout), nil
	}
}

// newRelayGroup builds the relay group. The redis backend subscribes before
// returning so no broadcast published after startup is missed.
func newRelayGroup(ctx context.Context, cfg config.RelayConfig, log *logrus.Logger) (relay.Group, error) {
	if cfg.Backend != "redis" {
		return relay.NewLocalGroup(cfg.Group, log), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	group := relay.NewRedisGroup(cfg.Group, client, log)
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- group.Run(ctx, ready)
		_ = client.Close()
	}()

	select {
	case <-ready:
	case err := <-errCh:
		return nil, err
	}

	go func() {
		if err := <-errCh; err != nil {
			log.WithError(err).Error("Relay subscription ended")
		}
	}()
	return group, nil
}

func cleanupSessions(ctx context.Context, authService *auth.Service, log *logrus.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("Failed to clean up login sessions")
			}
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
