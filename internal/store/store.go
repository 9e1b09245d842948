package store

import (
	"errors"
	"sync"

	"github.com/lecturecast/signaling/internal/rtc"
)

// ErrRoomNotFound indicates that the requested room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrCommentsDisabled indicates the room is not accepting chat messages.
var ErrCommentsDisabled = errors.New("comments are disabled")

// Store is the authoritative registry of live rooms. The outer lock guards
// the map; each room carries its own lock so unrelated rooms never contend.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu              sync.Mutex
	members         []string
	chat            []string
	commentsEnabled bool
	streamID        string
	tracks          []rtc.Track
	sessions        []rtc.Session
}

// Snapshot is a copy of a room's state at a point in time. Callers never
// hold a live room handle.
type Snapshot struct {
	RoomID          string
	Members         []string
	Chat            []string
	CommentsEnabled bool
	StreamID        string
	Tracks          []rtc.Track
	Sessions        []rtc.Session
}

func New() *Store {
	return &Store{rooms: make(map[string]*room)}
}

// CreateIfAbsent reports whether a new room was created. Existing rooms are
// reused untouched.
func (s *Store) CreateIfAbsent(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; ok {
		return false
	}
	s.rooms[roomID] = &room{commentsEnabled: true}
	return true
}

func (s *Store) get(roomID string) (*room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

// Get returns a copy of the room state.
func (s *Store) Get(roomID string) (Snapshot, bool) {
	r, ok := s.get(roomID)
	if !ok {
		return Snapshot{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		RoomID:          roomID,
		Members:         append([]string(nil), r.members...),
		Chat:            append([]string(nil), r.chat...),
		CommentsEnabled: r.commentsEnabled,
		StreamID:        r.streamID,
		Tracks:          append([]rtc.Track(nil), r.tracks...),
		Sessions:        append([]rtc.Session(nil), r.sessions...),
	}, true
}

// Delete removes the room, reporting whether it existed.
func (s *Store) Delete(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return false
	}
	delete(s.rooms, roomID)
	return true
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// AppendChat appends an already-rendered chat line. The comments gate and
// the append are a single critical section.
func (s *Store) AppendChat(roomID, text string) error {
	r, ok := s.get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.commentsEnabled {
		return ErrCommentsDisabled
	}
	r.chat = append(r.chat, text)
	return nil
}

// AddMember appends memberID in join order (duplicates allowed) and returns
// the updated member list along with the current comments flag.
func (s *Store) AddMember(roomID, memberID string) ([]string, bool, error) {
	r, ok := s.get(roomID)
	if !ok {
		return nil, false, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, memberID)
	return append([]string(nil), r.members...), r.commentsEnabled, nil
}

// ToggleComments flips the comments flag and returns the new value.
func (s *Store) ToggleComments(roomID string) (bool, error) {
	r, ok := s.get(roomID)
	if !ok {
		return false, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commentsEnabled = !r.commentsEnabled
	return r.commentsEnabled, nil
}

// AddBroadcastTrack records a track published by the broadcaster session.
// The stream handle is established by the first track and never cleared for
// the room's lifetime. The session is registered at most once.
func (s *Store) AddBroadcastTrack(roomID string, track rtc.Track, session rtc.Session) error {
	r, ok := s.get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.streamID == "" {
		r.streamID = track.StreamID()
	}
	r.tracks = append(r.tracks, track)

	for _, existing := range r.sessions {
		if existing == session {
			return nil
		}
	}
	r.sessions = append(r.sessions, session)
	return nil
}
