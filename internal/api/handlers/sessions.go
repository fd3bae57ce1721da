package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mindspace/mindspace-backend/internal/api/middleware"
	"github.com/mindspace/mindspace-backend/internal/services"
)

// CreateSessionRequest is the body of a session creation
type CreateSessionRequest struct {
	PsychologistType string `json:"psychologist_type"`
	Language         string `json:"language"`
}

// CreateSession opens a session for the caller
func CreateSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "Invalid request body")
			}
		}

		var userID *string
		if id, err := middleware.GetUserID(c); err == nil {
			s := id.String()
			userID = &s
		}

		session, err := svc.Sessions.Create(c.UserContext(), services.CreateSessionInput{
			UserID:           userID,
			PsychologistType: req.PsychologistType,
			Language:         req.Language,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// GetSessions lists the caller's sessions
func GetSessions(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return respondError(c, err)
		}

		sessions, err := svc.Sessions.ListByUser(c.UserContext(), userID.String())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sessions)
	}
}

// GetSession returns one session
func GetSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := svc.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(session)
	}
}

// EndSession deactivates a session
func EndSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := svc.Sessions.End(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(session)
	}
}
