package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lecturecast/signaling/internal/models"
	"github.com/lecturecast/signaling/internal/store"
)

// GetRoom returns the public view of a room (public, no auth).
func GetRoom(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")

		snap, ok := st.Get(roomID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}

		c.JSON(http.StatusOK, models.RoomInfo{
			RoomID:          snap.RoomID,
			MemberCount:     len(snap.Members),
			CommentsEnabled: snap.CommentsEnabled,
			TrackCount:      len(snap.Tracks),
		})
	}
}
