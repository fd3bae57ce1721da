package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/api/handlers"
	"github.com/mindspace/mindspace-backend/internal/api/middleware"
	"github.com/mindspace/mindspace-backend/internal/audit"
	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/config"
	"github.com/mindspace/mindspace-backend/internal/relay"
	"github.com/mindspace/mindspace-backend/internal/services"
)

// Dependencies are the collaborators the routes are wired against
type Dependencies struct {
	Services  *services.Services
	Auth      *auth.Service
	Audit     audit.Recorder
	Relay     *relay.Relay
	RateLimit config.RateLimitConfig
	Logger    *logrus.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	svc := deps.Services

	api := app.Group("/api")

	// ========================================
	// Public routes (no authentication needed)
	// ========================================

	api.Get("/health", handlers.Health(svc))
	api.Get("/psychologists/", handlers.GetPsychologists(svc))

	api.Post("/register/", middleware.SignupRateLimit(deps.RateLimit.SignupPerHour), handlers.Signup(deps.Auth, deps.Audit))
	api.Post("/login/", middleware.AuthRateLimit(deps.RateLimit.AuthPerMinute), handlers.Login(deps.Auth, deps.Audit))
	api.Post("/token/refresh/", handlers.RefreshToken(deps.Auth))

	// ========================================
	// Protected routes (authentication required)
	// ========================================

	protected := api.Group("",
		middleware.AuthRequired(deps.Auth, deps.Logger),
		middleware.AuditMiddleware(middleware.AuditConfig{Recorder: deps.Audit}),
	)

	protected.Post("/logout/", handlers.Logout(deps.Auth, deps.Audit))
	protected.Get("/user/", handlers.GetCurrentUser(deps.Auth))
	protected.Post("/change-password/", handlers.ChangePassword(deps.Auth, deps.Audit))
	protected.Delete("/delete-account/", handlers.DeleteAccount(deps.Auth, deps.Audit))

	protected.Post("/sessions/", handlers.CreateSession(svc))
	protected.Get("/sessions/", handlers.GetSessions(svc))
	protected.Get("/sessions/:id/", handlers.GetSession(svc))
	protected.Post("/sessions/:id/end/", handlers.EndSession(svc))

	protected.Get("/chat/history/:session_id/", handlers.GetChatHistory(svc))
	protected.Post("/chat/", middleware.ChatRateLimit(deps.RateLimit.ChatPerMinute), handlers.Chat(svc))

	// ========================================
	// WebSocket routes (with auth)
	// ========================================

	app.Use("/ws", middleware.WebSocketAuth(deps.Auth, deps.Logger))
	app.Get("/ws/chat/", websocket.New(handlers.RelaySocket(deps.Relay)))
}
