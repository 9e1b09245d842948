package models

// EventType names a realtime control or fan-out message.
type EventType string

const (
	EventJoinRoom       EventType = "join-room"
	EventChatMessage    EventType = "chat-message"
	EventToggleComments EventType = "toggle-comments"
	EventHangup         EventType = "hangup"

	EventStudentJoined   EventType = "student-joined"
	EventStudentList     EventType = "student-list"
	EventCommentsStatus  EventType = "comments-status"
	EventForceDisconnect EventType = "force-disconnect"
)

// ClientMessage is an inbound realtime control frame.
type ClientMessage struct {
	Event    EventType `json:"event"`
	RoomID   string    `json:"roomId"`
	MemberID string    `json:"memberId,omitempty"`
	Sender   string    `json:"sender,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// ServerMessage is a room-scoped fan-out frame.
type ServerMessage struct {
	Event   EventType   `json:"event"`
	RoomID  string      `json:"roomId"`
	Payload interface{} `json:"payload,omitempty"`
}
