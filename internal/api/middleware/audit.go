package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/mindspace/mindspace-backend/internal/audit"
)

// AuditConfig holds audit middleware configuration
type AuditConfig struct {
	Recorder  audit.Recorder
	SkipPaths []string // Paths to skip audit logging
}

// AuditMiddleware records the outcome of write requests
func AuditMiddleware(config AuditConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skipPath := range config.SkipPaths {
			if strings.HasPrefix(path, skipPath) {
				return c.Next()
			}
		}

		action := determineAction(c.Method(), path)
		if !ShouldAudit(action) {
			return c.Next()
		}

		var userID *string
		if id, ok := c.Locals("user_id").(string); ok {
			userID = &id
		}

		err := c.Next()

		// Strings taken from the request are only valid until the handler returns.
		event := audit.NewEvent(audit.EventType(action), userID, utils.CopyString(c.IP()), utils.CopyString(c.Get(fiber.HeaderUserAgent)))
		event.ResourceType, event.ResourceID = extractResourceInfo(utils.CopyString(path))

		status := c.Response().StatusCode()
		if err != nil || status >= 400 {
			event.Result = audit.ResultError
			if err != nil {
				event.Error = err.Error()
			} else {
				event.Error = fmt.Sprintf("HTTP %d", status)
			}
		}

		// The request context is recycled once the handler returns.
		go config.Recorder.Record(context.Background(), event)

		return err
	}
}

// determineAction maps a request onto an audit action name
func determineAction(method, path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return fmt.Sprintf("%s.%s", strings.ToLower(method), path)
	}

	switch {
	case parts[1] == "chat" && len(parts) == 2 && method == http.MethodPost:
		return string(audit.EventChatTurn)
	case parts[1] == "sessions" && len(parts) == 2 && method == http.MethodPost:
		return string(audit.EventSessionCreate)
	case parts[1] == "sessions" && len(parts) == 4 && parts[3] == "end":
		return string(audit.EventSessionEnd)
	}

	resource := parts[1]
	switch method {
	case http.MethodGet:
		if len(parts) > 2 {
			return fmt.Sprintf("%s.read", resource)
		}
		return fmt.Sprintf("%s.list", resource)
	case http.MethodPost:
		return fmt.Sprintf("%s.create", resource)
	case http.MethodPut, http.MethodPatch:
		return fmt.Sprintf("%s.update", resource)
	case http.MethodDelete:
		return fmt.Sprintf("%s.delete", resource)
	}
	return fmt.Sprintf("%s.%s", strings.ToLower(method), resource)
}

// extractResourceInfo extracts resource type and ID from path
func extractResourceInfo(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	if len(parts) > 2 {
		return parts[1], parts[2]
	}
	return parts[1], ""
}

// ShouldAudit determines if an action should be audited. Identity
// handlers record their own events.
func ShouldAudit(action string) bool {
	switch audit.EventType(action) {
	case audit.EventChatTurn, audit.EventSessionCreate, audit.EventSessionEnd:
		return true
	}
	return false
}
