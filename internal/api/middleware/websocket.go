package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/auth"
)

// WebSocketAuth admits upgrade requests that carry a valid access token in
// the "token" query parameter or the Authorization header. Everything else
// is refused before the upgrade.
func WebSocketAuth(validator TokenValidator, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			token = auth.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		}

		if token != "" {
			user, claims, err := validator.ValidateAccessToken(c.UserContext(), token)
			if err == nil {
				storeUserContext(c, user)
				c.Locals("session_id", claims.SessionID)
				c.Locals("allowed", true)
				return c.Next()
			}
			logger.WithError(err).WithField("ip", c.IP()).Debug("Refused websocket token")
		}

		return unauthorized(c, "Authentication required for WebSocket")
	}
}
