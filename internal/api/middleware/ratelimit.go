package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}

func tooManyRequests(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": message,
			"code":  fiber.StatusTooManyRequests,
		})
	}
}

// AuthRateLimit limits login attempts per IP. max <= 0 disables it.
func AuthRateLimit(max int) fiber.Handler {
	if max <= 0 {
		return passThrough
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("auth:%s", c.IP())
		},
		LimitReached: tooManyRequests("Too many authentication attempts. Please try again later."),
	})
}

// SignupRateLimit limits registrations per IP. max <= 0 disables it.
func SignupRateLimit(max int) fiber.Handler {
	if max <= 0 {
		return passThrough
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Hour,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("signup:%s", c.IP())
		},
		LimitReached: tooManyRequests("Too many signup attempts. Please try again later."),
	})
}

// ChatRateLimit limits chat turns per user, falling back to IP. max <= 0
// disables it.
func ChatRateLimit(max int) fiber.Handler {
	if max <= 0 {
		return passThrough
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := c.Locals("user_id"); userID != nil {
				return fmt.Sprintf("chat:user:%s", userID)
			}
			return fmt.Sprintf("chat:ip:%s", c.IP())
		},
		LimitReached:           tooManyRequests("Chat rate limit exceeded. Please wait before sending more messages."),
		SkipSuccessfulRequests: false,
		SkipFailedRequests:     true,
	})
}
