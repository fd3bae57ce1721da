package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mindspace/mindspace-backend/internal/services"
)

// GetPsychologists returns the persona catalog
func GetPsychologists(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Personas.List())
	}
}

// Health reports database and relay status
func Health(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := svc.Health.Check(c.UserContext())
		code := fiber.StatusOK
		if status.Status != "healthy" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(status)
	}
}
