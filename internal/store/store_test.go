package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lecturecast/signaling/internal/rtc"
)

type fakeTrack struct {
	id     string
	stream string
}

func (t fakeTrack) ID() string       { return t.id }
func (t fakeTrack) StreamID() string { return t.stream }

type fakeSession struct {
	id     string
	closed bool
}

func (s *fakeSession) ID() string                                        { return s.id }
func (s *fakeSession) SetRemoteDescription(rtc.SessionDescription) error { return nil }
func (s *fakeSession) CreateAnswer() (rtc.SessionDescription, error) {
	return rtc.SessionDescription{}, nil
}
func (s *fakeSession) AddTrack(rtc.Track) error { return nil }
func (s *fakeSession) OnTrack(func(rtc.Track))  {}
func (s *fakeSession) Close() error             { s.closed = true; return nil }

func TestCreateIfAbsentReusesRoom(t *testing.T) {
	s := New()

	if !s.CreateIfAbsent("r1") {
		t.Fatal("first create should report a new room")
	}

	if _, _, err := s.AddMember("r1", "u1"); err != nil {
		t.Fatal(err)
	}

	if s.CreateIfAbsent("r1") {
		t.Fatal("second create should reuse the existing room")
	}

	snap, ok := s.Get("r1")
	if !ok {
		t.Fatal("room should exist")
	}
	if len(snap.Members) != 1 || snap.Members[0] != "u1" {
		t.Fatalf("member list should survive a repeat create, got %v", snap.Members)
	}
	if s.Len() != 1 {
		t.Fatalf("store should hold one room, got %d", s.Len())
	}
}

func TestGetAbsentRoom(t *testing.T) {
	s := New()
	if _, ok := s.Get("nope"); ok {
		t.Fatal("absent room should not be found")
	}
}

func TestDelete(t *testing.T) {
	s := New()
	s.CreateIfAbsent("r1")

	if !s.Delete("r1") {
		t.Fatal("delete should report removal")
	}
	if _, ok := s.Get("r1"); ok {
		t.Fatal("room should be gone after delete")
	}
	if s.Delete("r1") {
		t.Fatal("second delete should report absence")
	}
}

func TestAddMemberKeepsJoinOrder(t *testing.T) {
	s := New()
	s.CreateIfAbsent("r1")

	s.AddMember("r1", "u1")
	s.AddMember("r1", "u2")
	members, comments, err := s.AddMember("r1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !comments {
		t.Fatal("comments should default to enabled")
	}

	want := []string{"u1", "u2", "u1"}
	if len(members) != len(want) {
		t.Fatalf("got members %v, want %v", members, want)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Fatalf("got members %v, want %v", members, want)
		}
	}

	if _, _, err := s.AddMember("r2", "u1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAppendChatGate(t *testing.T) {
	s := New()
	s.CreateIfAbsent("r1")

	if err := s.AppendChat("r1", "u1: hi"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ToggleComments("r1"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendChat("r1", "u1: ignored"); !errors.Is(err, ErrCommentsDisabled) {
		t.Fatalf("expected ErrCommentsDisabled, got %v", err)
	}

	snap, _ := s.Get("r1")
	if len(snap.Chat) != 1 || snap.Chat[0] != "u1: hi" {
		t.Fatalf("chat log should be unchanged by a refused append, got %v", snap.Chat)
	}

	if err := s.AppendChat("r2", "x"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestToggleCommentsIsItsOwnInverse(t *testing.T) {
	s := New()
	s.CreateIfAbsent("r1")

	enabled, err := s.ToggleComments("r1")
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Fatal("first toggle should disable comments")
	}

	enabled, _ = s.ToggleComments("r1")
	if !enabled {
		t.Fatal("second toggle should restore comments")
	}

	if _, err := s.ToggleComments("r2"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAddBroadcastTrack(t *testing.T) {
	s := New()
	s.CreateIfAbsent("r1")
	sess := &fakeSession{id: "b1"}

	if err := s.AddBroadcastTrack("r1", fakeTrack{"t1", "stream-a"}, sess); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBroadcastTrack("r1", fakeTrack{"t2", "stream-a"}, sess); err != nil {
		t.Fatal(err)
	}

	snap, _ := s.Get("r1")
	if snap.StreamID != "stream-a" {
		t.Fatalf("stream handle should come from the first track, got %q", snap.StreamID)
	}
	if len(snap.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(snap.Tracks))
	}
	if snap.Tracks[0].ID() != "t1" || snap.Tracks[1].ID() != "t2" {
		t.Fatal("tracks should keep arrival order")
	}
	if len(snap.Sessions) != 1 {
		t.Fatalf("session should be registered once, got %d registrations", len(snap.Sessions))
	}

	if err := s.AddBroadcastTrack("r2", fakeTrack{"t3", "s"}, sess); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestConcurrentMutationsOfOneRoom(t *testing.T) {
	s := New()
	s.CreateIfAbsent("r1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddMember("r1", fmt.Sprintf("u%d", i))
			s.AppendChat("r1", fmt.Sprintf("u%d: hello", i))
		}(i)
	}
	wg.Wait()

	snap, _ := s.Get("r1")
	if len(snap.Members) != 50 {
		t.Fatalf("expected 50 members, got %d", len(snap.Members))
	}
	if len(snap.Chat) != 50 {
		t.Fatalf("expected 50 chat lines, got %d", len(snap.Chat))
	}
}
