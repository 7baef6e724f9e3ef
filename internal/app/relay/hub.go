/*
Package relay contains the core logic of the chat relay.

This file defines the Hub, the routing engine shared by all sessions. It owns
the session and room membership tables and implements the three fan-out
modes: broadcast to everyone, broadcast to everyone except the sender, and
room-scoped broadcast except the sender. Direct (recipient-addressed)
delivery is room delivery to the self room every session joins under its own
identifier.
*/
package relay

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"gorelay/internal/pkg/logx"
)

// Hub is the shared routing engine. All mutation of the session and room
// tables is serialized behind one RWMutex; fan-out itself is a lock-free
// enqueue onto per-session send channels.
type Hub struct {
	// mu protects the sessions and rooms maps.
	mu sync.RWMutex

	// sessions maps session identifier to the attached session.
	sessions map[string]*Session

	// rooms maps room name to the set of member sessions.
	rooms map[string]map[string]*Session

	// registry is the presence registry published through this hub.
	registry *Registry

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub around the given presence registry.
func NewHub(registry *Registry) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
		registry: registry,
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Registry returns the presence registry behind this hub.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Attach adds a session to the hub and joins it to the default room and to
// its self room, making it addressable for direct delivery.
func (h *Hub) Attach(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.id] = s
	h.joinLocked(DefaultRoom, s)
	h.joinLocked(s.id, s)

	h.logger.Info().
		Str("session_id", s.id).
		Int("total_sessions", len(h.sessions)).
		Msg("Session attached.")
}

// Detach removes a session from the hub and from every room it joined.
func (h *Hub) Detach(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.id]; !ok {
		return
	}
	delete(h.sessions, s.id)

	for name, members := range h.rooms {
		if _, ok := members[s.id]; !ok {
			continue
		}
		delete(members, s.id)
		if len(members) == 0 {
			delete(h.rooms, name)
		}
	}

	h.logger.Info().
		Str("session_id", s.id).
		Int("total_sessions", len(h.sessions)).
		Msg("Session detached.")
}

// joinLocked adds the session to a room's member set. Callers hold h.mu.
func (h *Hub) joinLocked(room string, s *Session) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[room] = members
	}
	members[s.id] = s
}

// SessionCount returns the number of attached sessions, announced or not.
// This is the figure published as user_count.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// BroadcastAll emits the event to every attached session, sender included.
// Used for the users_online and user_count snapshots.
func (h *Hub) BroadcastAll(event string, payload any) {
	data, ok := h.marshal(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		s.enqueue(data)
	}
}

// BroadcastExcept emits the event to every attached session except the named
// sender. Used for the user_joined and user_left presence deltas.
func (h *Hub) BroadcastExcept(senderID, event string, payload any) {
	data, ok := h.marshal(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, s := range h.sessions {
		if id == senderID {
			continue
		}
		s.enqueue(data)
	}
}

// BroadcastRoom emits the event to every member of the room except the named
// sender. A room with no members is a silent zero-fan-out, not an error.
func (h *Hub) BroadcastRoom(room, senderID, event string, payload any) {
	data, ok := h.marshal(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members, exists := h.rooms[room]
	if !exists {
		h.logger.Debug().
			Str("room", room).
			Str("event", event).
			Msg("Delivery to room with no members. Dropping.")
		return
	}

	for id, s := range members {
		if id == senderID {
			continue
		}
		s.enqueue(data)
	}
}

// marshal encodes the outbound envelope once per fan-out.
func (h *Hub) marshal(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(Outbound{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", event).
			Msg("Error marshaling outbound event.")
		return nil, false
	}
	return data, true
}

// Shutdown closes the send channel of every attached session, unblocking
// their write pumps, and clears the routing tables.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.sessions {
		s.closeSend()
	}
	h.sessions = make(map[string]*Session)
	h.rooms = make(map[string]map[string]*Session)

	h.logger.Info().Msg("Hub shutdown complete.")
}
