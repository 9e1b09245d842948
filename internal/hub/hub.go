package hub

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lecturecast/signaling/internal/models"
	"github.com/lecturecast/signaling/internal/store"
)

// Presence mirrors room membership into an external registry, best-effort.
type Presence interface {
	MemberJoined(roomID, memberID string)
	RoomClosed(roomID string)
}

// NopPresence is used when no mirror is configured.
type NopPresence struct{}

func (NopPresence) MemberJoined(string, string) {}
func (NopPresence) RoomClosed(string)           {}

type command struct {
	client *Client
	msg    models.ClientMessage
}

type event struct {
	roomID string
	msg    models.ServerMessage
}

// Hub routes realtime control messages and fans events out to room
// subscribers. A single Run goroutine owns the subscription table, which
// makes fan-out order within a room match processing order.
type Hub struct {
	store    *store.Store
	presence Presence

	register   chan *Client
	unregister chan *Client
	inbound    chan command
	outbound   chan event

	// room -> subscribed sockets, socket -> subscribed rooms
	subs   map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}
}

func New(st *store.Store, presence Presence) *Hub {
	if presence == nil {
		presence = NopPresence{}
	}
	return &Hub{
		store:      st,
		presence:   presence,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan command),
		outbound:   make(chan event),
		subs:       make(map[string]map[*Client]struct{}),
		joined:     make(map[*Client]map[string]struct{}),
	}
}

// Register adds a connected socket. It holds no room subscription until a
// join-room message arrives.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister drops the socket from every room it subscribed to.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Dispatch hands an inbound control message to the hub loop.
func (h *Hub) Dispatch(c *Client, msg models.ClientMessage) {
	h.inbound <- command{client: c, msg: msg}
}

// Publish fans a server-originated event out to a room's subscribers. It
// goes through the hub loop so ordering against control messages holds.
func (h *Hub) Publish(roomID string, msg models.ServerMessage) {
	h.outbound <- event{roomID: roomID, msg: msg}
}

// Run processes registrations and control messages until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.joined[c] = make(map[string]struct{})
			log.Printf("Client connected: %s", c.ID)

		case c := <-h.unregister:
			h.disconnect(c)

		case cmd := <-h.inbound:
			h.handle(cmd.client, cmd.msg)

		case ev := <-h.outbound:
			h.broadcast(ev.roomID, ev.msg)
		}
	}
}

func (h *Hub) handle(c *Client, msg models.ClientMessage) {
	switch msg.Event {
	case models.EventJoinRoom:
		h.join(c, msg.RoomID, msg.MemberID)
	case models.EventChatMessage:
		h.chat(msg.RoomID, msg.Sender, msg.Message)
	case models.EventToggleComments:
		h.toggleComments(msg.RoomID)
	case models.EventHangup:
		h.hangup(msg.RoomID)
	default:
		log.Printf("Unknown message type: %s", msg.Event)
	}
}

// join registers membership and subscribes the socket, then pushes the full
// member list and comments flag to every subscriber, the joiner included.
// Messages for absent rooms are dropped without feedback.
func (h *Hub) join(c *Client, roomID, memberID string) {
	members, commentsEnabled, err := h.store.AddMember(roomID, memberID)
	if err != nil {
		log.Printf("Join ignored, room %s not found", roomID)
		return
	}

	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[*Client]struct{})
	}
	h.subs[roomID][c] = struct{}{}
	if h.joined[c] == nil {
		h.joined[c] = make(map[string]struct{})
	}
	h.joined[c][roomID] = struct{}{}

	h.presence.MemberJoined(roomID, memberID)
	log.Printf("User %s joined room %s, members: %v", memberID, roomID, members)

	h.broadcast(roomID, models.ServerMessage{Event: models.EventStudentList, RoomID: roomID, Payload: members})
	h.broadcast(roomID, models.ServerMessage{Event: models.EventCommentsStatus, RoomID: roomID, Payload: commentsEnabled})
}

func (h *Hub) chat(roomID, sender, message string) {
	line := fmt.Sprintf("%s: %s", sender, message)
	if err := h.store.AppendChat(roomID, line); err != nil {
		// Disabled comments and absent rooms both drop silently.
		return
	}

	log.Printf("Chat message in room %s: %s", roomID, line)
	h.broadcast(roomID, models.ServerMessage{Event: models.EventChatMessage, RoomID: roomID, Payload: line})
}

func (h *Hub) toggleComments(roomID string) {
	enabled, err := h.store.ToggleComments(roomID)
	if err != nil {
		return
	}

	log.Printf("Comments status for room %s: %t", roomID, enabled)
	h.broadcast(roomID, models.ServerMessage{Event: models.EventCommentsStatus, RoomID: roomID, Payload: enabled})
}

// hangup notifies subscribers, closes the engine sessions recorded against
// the room, and removes it. Remaining subscriptions are orphaned: later
// messages for the room behave as room-absent.
func (h *Hub) hangup(roomID string) {
	snap, ok := h.store.Get(roomID)
	if !ok {
		return
	}

	h.broadcast(roomID, models.ServerMessage{Event: models.EventForceDisconnect, RoomID: roomID})

	for _, sess := range snap.Sessions {
		if err := sess.Close(); err != nil {
			log.Printf("Failed to close session %s: %v", sess.ID(), err)
		}
	}

	h.store.Delete(roomID)
	h.presence.RoomClosed(roomID)

	for c := range h.subs[roomID] {
		delete(h.joined[c], roomID)
	}
	delete(h.subs, roomID)
	log.Printf("Deleted room %s", roomID)
}

func (h *Hub) disconnect(c *Client) {
	for roomID := range h.joined[c] {
		delete(h.subs[roomID], c)
		if len(h.subs[roomID]) == 0 {
			delete(h.subs, roomID)
		}
	}
	delete(h.joined, c)
	close(c.send)
	log.Printf("Client disconnected: %s", c.ID)
}

func (h *Hub) broadcast(roomID string, msg models.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	for c := range h.subs[roomID] {
		select {
		case c.send <- data:
		default:
			log.Printf("Failed to send message to client %s, buffer full", c.ID)
		}
	}
}
