package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lecturecast/signaling/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// HandleRealtime upgrades the connection and hands the socket to the hub.
// The socket joins rooms through join-room messages, not at connect time.
func HandleRealtime(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		client := hub.NewClient(uuid.New().String(), h, conn)
		h.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
