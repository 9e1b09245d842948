package rtc

// SessionDescription mirrors the browser-side RTCSessionDescription JSON.
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// Track is an outbound media track handle published by a broadcaster
// session and attachable to consumer sessions.
type Track interface {
	ID() string
	StreamID() string
}

// Session is one negotiation exchange with the media engine.
type Session interface {
	ID() string
	SetRemoteDescription(desc SessionDescription) error
	// CreateAnswer produces the local answer description and sets it on the
	// session before returning it.
	CreateAnswer() (SessionDescription, error)
	AddTrack(t Track) error
	OnTrack(fn func(t Track))
	Close() error
}

// Engine creates negotiation sessions against a static ICE server list.
type Engine interface {
	NewSession() (Session, error)
}
