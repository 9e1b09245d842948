package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lecturecast/signaling/internal/models"
	"github.com/lecturecast/signaling/internal/negotiation"
)

// Broadcast handles a broadcaster's SDP offer, creating the room if absent.
func Broadcast(svc *negotiation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NegotiationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Printf("POST /broadcast: roomId=%s", req.RoomID)

		answer, err := svc.Broadcast(req.RoomID, req.SDP)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.NegotiationResponse{SDP: answer})
	}
}

// Consumer handles a viewer's SDP offer against an existing room. Unknown
// rooms decline with 404 and are not created.
func Consumer(svc *negotiation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NegotiationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Printf("POST /consumer: roomId=%s", req.RoomID)

		answer, err := svc.Consumer(req.RoomID, req.SDP)
		if err != nil {
			if errors.Is(err, negotiation.ErrRoomNotFound) {
				log.Printf("Room %s not found", req.RoomID)
				c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.NegotiationResponse{SDP: answer})
	}
}
