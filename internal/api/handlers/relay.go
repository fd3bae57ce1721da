package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"

	"github.com/mindspace/mindspace-backend/internal/relay"
)

// RelaySocket serves an admitted websocket connection against the relay
func RelaySocket(r *relay.Relay) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		identity, _ := c.Locals("user_email").(string)
		if identity == "" {
			identity, _ = c.Locals("user_id").(string)
		}
		r.Serve(context.Background(), c, identity)
	}
}
