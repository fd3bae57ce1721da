package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/responder"
	"github.com/mindspace/mindspace-backend/internal/services"
)

// statusFor maps a service error onto an HTTP status
func statusFor(err error) int {
	var (
		validation *services.ValidationError
		upstream   *responder.UpstreamError
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrSessionExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, auth.ErrUserInactive):
		return fiber.StatusForbidden
	case errors.Is(err, auth.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, auth.ErrEmailAlreadyExists),
		errors.Is(err, auth.ErrUsernameAlreadyExists),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidUserType),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordTooWeak):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError writes the JSON error body for err. Internal failures are
// not echoed to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case fiber.StatusInternalServerError:
		message = "Internal server error"
	case fiber.StatusBadGateway:
		message = "AI service unavailable"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  status,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  fiber.StatusBadRequest,
	})
}
