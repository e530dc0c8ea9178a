package chat

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// allow all origins for development purpose; can restrict later
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades the HTTP connection and hands it to the chat core.
// The credential is resolved exactly once here; a missing or bad token
// still gets a connection, as an anonymous guest (read-only semantics -
// the router rejects sends from guests, the connection itself never
// fails on auth).
func WSHandler(session *SessionManager, registry *Registry, sendBuffer int) gin.HandlerFunc {
	return func(c *gin.Context) {
		// browsers cannot set headers on WebSocket dials, so the token
		// arrives as a query param; the Authorization header works too
		token := c.Query("token")
		if token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}

		identity := registry.Authenticate(token)

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade to WebSocket"})
			return
		}

		client := NewClient(identity, conn, session, sendBuffer)
		registry.AddConnection(client)

		// start goroutines for read and write pumps
		go client.ReadPump()
		go client.WritePump()
	}
}
