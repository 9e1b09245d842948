package models

import "github.com/lecturecast/signaling/internal/rtc"

// NegotiationRequest carries an SDP offer for a room.
type NegotiationRequest struct {
	RoomID string                 `json:"roomId" binding:"required"`
	SDP    rtc.SessionDescription `json:"sdp" binding:"required"`
}

// NegotiationResponse carries the answer SDP.
type NegotiationResponse struct {
	SDP rtc.SessionDescription `json:"sdp"`
}

// RoomInfo is the public view of a room.
type RoomInfo struct {
	RoomID          string `json:"roomId"`
	MemberCount     int    `json:"memberCount"`
	CommentsEnabled bool   `json:"commentsEnabled"`
	TrackCount      int    `json:"trackCount"`
}
