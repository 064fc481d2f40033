package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"todo-web/internal/middleware"
	myws "todo-web/internal/websocket"
)

// SocketUpgrade only lets WebSocket handshakes through.
func (h *Handler) SocketUpgrade(c *fiber.Ctx) error {
	if h.Hub != nil && websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Socket registers the connection with the hub until the client goes away.
// Incoming messages are ignored.
func (h *Handler) Socket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		account := middleware.SocketAccount(conn)
		client := &myws.Client{Conn: conn, AccountID: account.ID}
		if !h.Hub.Register(client) {
			return
		}
		defer h.Hub.Unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
