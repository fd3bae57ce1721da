package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mindspace/mindspace-backend/internal/responder"
	"github.com/mindspace/mindspace-backend/internal/services"
)

// Chat runs one chat turn and returns the AI reply
func Chat(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req responder.Request
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		reply, err := svc.Chat.Turn(c.UserContext(), services.TurnInput{
			SessionID:        req.SessionID,
			Message:          req.Message,
			PsychologistType: req.PsychologistType,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"response": reply})
	}
}

// GetChatHistory returns a session's messages oldest first
func GetChatHistory(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := svc.Chat.History(c.UserContext(), c.Params("session_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(messages)
	}
}
