package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/models"
)

// TokenValidator proves the identity behind an access token
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*models.User, *auth.JWTClaims, error)
}

// AuthRequired rejects requests without a valid access token taken from
// the Authorization header or the access_token cookie
func AuthRequired(validator TokenValidator, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))

		// Also check for token in cookie (for web clients)
		if token == "" {
			token = c.Cookies("access_token")
		}
		if token == "" {
			return unauthorized(c, "Authentication required")
		}

		user, claims, err := validator.ValidateAccessToken(c.UserContext(), token)
		if err != nil {
			logger.WithError(err).WithField("path", c.Path()).Debug("Rejected access token")
			return unauthorized(c, "Invalid or expired token")
		}

		storeUserContext(c, user)
		c.Locals("session_id", claims.SessionID)

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  fiber.StatusUnauthorized,
	})
}

// storeUserContext stores user information in the fiber context
func storeUserContext(c *fiber.Ctx, user *models.User) {
	c.Locals("user_id", user.ID.String())
	c.Locals("user_email", user.Email)
	c.Locals("user_type", user.UserType)
}

// GetUserID retrieves the user ID from the fiber context
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	if userID := c.Locals("user_id"); userID != nil {
		if id, ok := userID.(string); ok {
			return uuid.Parse(id)
		}
	}
	return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
}

// GetSessionID returns the login session behind the current token
func GetSessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals("session_id").(string); ok {
		return id
	}
	return ""
}
