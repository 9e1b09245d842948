package negotiation

import (
	"errors"
	"fmt"
	"log"

	"github.com/lecturecast/signaling/internal/models"
	"github.com/lecturecast/signaling/internal/rtc"
	"github.com/lecturecast/signaling/internal/store"
)

// ErrRoomNotFound is returned when a consumer negotiates against a room
// that does not exist. No room is created on this path.
var ErrRoomNotFound = errors.New("room not found")

// Error wraps a media-engine failure during an exchange.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("negotiation failed at %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Notifier fans an event out to every socket subscribed to a room.
type Notifier interface {
	Publish(roomID string, msg models.ServerMessage)
}

// Service owns the broadcaster and consumer SDP exchanges.
type Service struct {
	store    *store.Store
	engine   rtc.Engine
	notifier Notifier
}

func New(st *store.Store, engine rtc.Engine, notifier Notifier) *Service {
	return &Service{store: st, engine: engine, notifier: notifier}
}

// Broadcast answers a broadcaster's offer, creating the room if absent. The
// room is committed only after the engine exchange succeeds, so a malformed
// offer leaves the store untouched.
func (s *Service) Broadcast(roomID string, offer rtc.SessionDescription) (rtc.SessionDescription, error) {
	sess, err := s.engine.NewSession()
	if err != nil {
		return rtc.SessionDescription{}, &Error{Step: "create session", Err: err}
	}

	// Tracks arrive after the answer round-trips, by which point the room
	// exists. A track for a room torn down in the meantime is dropped.
	sess.OnTrack(func(t rtc.Track) {
		if err := s.store.AddBroadcastTrack(roomID, t, sess); err != nil {
			log.Printf("Dropping track %s for room %s: %v", t.ID(), roomID, err)
			return
		}
		log.Printf("Track %s published to room %s (stream %s)", t.ID(), roomID, t.StreamID())
	})

	if err := sess.SetRemoteDescription(offer); err != nil {
		sess.Close()
		return rtc.SessionDescription{}, &Error{Step: "set remote description", Err: err}
	}

	answer, err := sess.CreateAnswer()
	if err != nil {
		sess.Close()
		return rtc.SessionDescription{}, &Error{Step: "create answer", Err: err}
	}

	if s.store.CreateIfAbsent(roomID) {
		log.Printf("Created new room: %s", roomID)
	}
	log.Printf("New broadcast in room %s (session %s)", roomID, sess.ID())
	return answer, nil
}

// Consumer answers a viewer's offer against an existing room, attaching
// every track the broadcaster has published so far. Zero tracks is legal: a
// viewer negotiating before the broadcaster publishes gets an empty answer
// and is not retried.
func (s *Service) Consumer(roomID string, offer rtc.SessionDescription) (rtc.SessionDescription, error) {
	snap, ok := s.store.Get(roomID)
	if !ok {
		return rtc.SessionDescription{}, ErrRoomNotFound
	}

	sess, err := s.engine.NewSession()
	if err != nil {
		return rtc.SessionDescription{}, &Error{Step: "create session", Err: err}
	}

	if err := sess.SetRemoteDescription(offer); err != nil {
		sess.Close()
		return rtc.SessionDescription{}, &Error{Step: "set remote description", Err: err}
	}

	for _, track := range snap.Tracks {
		if err := sess.AddTrack(track); err != nil {
			sess.Close()
			return rtc.SessionDescription{}, &Error{Step: "add track", Err: err}
		}
	}

	answer, err := sess.CreateAnswer()
	if err != nil {
		sess.Close()
		return rtc.SessionDescription{}, &Error{Step: "create answer", Err: err}
	}

	// The viewer is not a member yet; membership arrives with a separate
	// join-room message. Current members still hear about the session now.
	s.notifier.Publish(roomID, models.ServerMessage{
		Event:   models.EventStudentJoined,
		RoomID:  roomID,
		Payload: map[string]string{"id": sess.ID()},
	})

	log.Printf("New consumer %s added to room %s (%d tracks)", sess.ID(), roomID, len(snap.Tracks))
	return answer, nil
}
