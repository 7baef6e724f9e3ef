/*
Package relay contains the core logic of the chat relay.

This file defines the Session, the per-connection gateway. It owns the
WebSocket read/write pumps, the dispatch table binding inbound event names to
handlers, and the connection-scoped state. Handlers only touch the hub, the
registry, and the session's send channel, so they run without a live socket
in tests.
*/
package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gorelay/internal/app/user"
	"gorelay/internal/pkg/errs"
	"gorelay/internal/pkg/logx"
	"gorelay/internal/pkg/randx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// capacity of the per-session outbound queue.
	sendQueueSize = 256
)

// Session is one client connection from attach to disconnect. It carries a
// server-generated identifier that other clients use as the direct delivery
// target for this connection.
type Session struct {
	// server-generated session identifier.
	id string

	// the shared routing hub.
	hub *Hub

	// the shared message lifecycle tracker.
	lifecycle *Lifecycle

	// underlying WebSocket connection; nil when the session is driven
	// directly (tests).
	conn *websocket.Conn

	// buffered queue of marshaled envelopes awaiting the write pump.
	send chan []byte

	// closeOnce guards the send channel close.
	closeOnce sync.Once

	// handlers is the dispatch table from inbound event name to handler.
	handlers map[string]func(json.RawMessage)

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a session around an accepted connection and builds
// its dispatch table. The caller attaches it to the hub and starts the pumps.
func NewSession(hub *Hub, lifecycle *Lifecycle, conn *websocket.Conn) *Session {
	id := randx.SessionID()

	s := &Session{
		id:        id,
		hub:       hub,
		lifecycle: lifecycle,
		conn:      conn,
		send:      make(chan []byte, sendQueueSize),
		logger:    logx.Logger().With().Str("session_id", id).Logger(),
	}

	s.handlers = map[string]func(json.RawMessage){
		EventUserJoined:     s.handleUserJoined,
		EventChangeUsername: s.handleChangeUsername,
		EventMessage:        s.handleMessage,
		EventClientReceived: func(p json.RawMessage) { s.handleAck(p, StateClientRecv) },
		EventClientRead:     func(p json.RawMessage) { s.handleAck(p, StateClientRead) },
		EventTyping:         func(p json.RawMessage) { s.handleTyping(p, EventTyping) },
		EventResetTyping:    func(p json.RawMessage) { s.handleTyping(p, EventResetTyping) },
	}

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// dispatch routes one inbound event to its handler. An unknown event name is
// a logged no-op so a misbehaving client cannot take the dispatcher down.
func (s *Session) dispatch(event string, payload json.RawMessage) {
	handler, ok := s.handlers[event]
	if !ok {
		s.logger.Warn().
			Str("event", event).
			Err(errs.NewError(errs.ErrUnknownEvent)).
			Msg("Client sent unsupported event.")
		return
	}

	handler(payload)
}

// handleUserJoined records the announced identity, tells everyone else about
// the arrival, and republishes the full presence picture.
func (s *Session) handleUserJoined(payload json.RawMessage) {
	var u user.User
	if err := json.Unmarshal(payload, &u); err != nil {
		s.logger.Warn().Err(err).Msg("Client sent invalid user_joined payload.")
		return
	}

	if u.Name == "" {
		name, err := randx.Nickname()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to generate fallback nickname.")
		} else {
			u.Name = name
		}
	}

	s.hub.Registry().Register(s.id, u)

	s.hub.BroadcastExcept(s.id, EventUserJoined, PresencePayload{SocketID: s.id, User: u})
	s.hub.BroadcastAll(EventUsersOnline, s.hub.Registry().Snapshot())
	s.emitUserCount()
}

// handleChangeUsername renames this session's announced user in place.
func (s *Session) handleChangeUsername(payload json.RawMessage) {
	var newName string
	if err := json.Unmarshal(payload, &newName); err != nil {
		s.logger.Warn().Err(err).Msg("Client sent invalid change_username payload.")
		return
	}

	s.hub.Registry().Rename(s.id, newName)
}

// handleMessage accepts a chat message at the server boundary: the lifecycle
// tracker mints the authoritative identifier and resolves the delivery
// target, the sender gets the correlation receipt, and the message fans out
// to the target room. Delivering a message also clears the typing indicator
// for its room, the way the original send path did.
func (s *Session) handleMessage(payload json.RawMessage) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		s.logger.Warn().Err(err).Msg("Client sent invalid message payload.")
		return
	}

	if len(m.Content) > MaxContentBytes {
		// No nack channel exists; over-long content is dropped at the boundary.
		s.logger.Warn().
			Err(errs.NewError(errs.ErrMessageContentTooLong)).
			Int("content_bytes", len(m.Content)).
			Msg("Message content over limit. Dropping.")
		return
	}

	receipt := s.lifecycle.RegisterReceipt(&m)

	s.Emit(EventMessageRegistered, receipt)

	s.hub.BroadcastRoom(receipt.Room, s.id, EventMessage, m)
	s.hub.BroadcastRoom(receipt.Room, s.id, EventResetTyping, TypingPayload{Sender: m.Sender, Room: receipt.Room})
}

// handleAck relays a delivery or read acknowledgement back to the message's
// original sender via the lifecycle tracker.
func (s *Session) handleAck(payload json.RawMessage, ack MessageState) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		s.logger.Warn().
			Err(err).
			Str("ack", string(ack)).
			Msg("Client sent invalid acknowledgement payload.")
		return
	}

	out := s.lifecycle.NotifyState(&m, ack)

	s.hub.BroadcastRoom(out.Recipient, s.id, string(ack), out)
}

// handleTyping relays typing and reset_typing to the other members of the
// payload's room. An empty room falls back to the default room.
func (s *Session) handleTyping(payload json.RawMessage, event string) {
	var p TypingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("Client sent invalid typing payload.")
		return
	}

	if p.Room == "" {
		p.Room = DefaultRoom
	}

	s.hub.BroadcastRoom(p.Room, s.id, event, p)
}

// emitUserCount publishes the connected-socket count to everyone.
func (s *Session) emitUserCount() {
	s.hub.BroadcastAll(EventUserCount, s.hub.SessionCount())
}

// Emit marshals an envelope and queues it for this session only.
func (s *Session) Emit(event string, payload any) {
	data, err := json.Marshal(Outbound{Event: event, Payload: payload})
	if err != nil {
		s.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event for session.")
		return
	}
	s.enqueue(data)
}

// enqueue performs a non-blocking send to the session's queue. A full or
// already-closed queue drops the event; the transport is fire-and-forget.
func (s *Session) enqueue(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().Msg("Send to closed session queue dropped.")
		}
	}()

	select {
	case s.send <- data:
	default:
		s.logger.Warn().
			Int("queue_len", len(s.send)).
			Msg("Session send queue full, dropping event.")
	}
}

// closeSend closes the outbound queue exactly once.
func (s *Session) closeSend() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}

// ReadPump reads frames from the WebSocket connection, decodes the event
// envelope, and dispatches. It handles the Pong heartbeat and performs the
// disconnect sequence when the connection ends.
func (s *Session) ReadPump() {
	defer s.cleanupOnDisconnect()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		var inbound Inbound
		if err := json.Unmarshal(frame, &inbound); err != nil {
			s.logger.Warn().Err(err).
				Bytes("frame", frame).
				Msg("Client sent invalid JSON")
			continue
		}

		s.dispatch(inbound.Event, inbound.Payload)
	}
}

// cleanupOnDisconnect runs the disconnect sequence: leave the routing
// tables, withdraw presence, tell the others, and close the transport.
// A session that never announced a user skips the user_left broadcast.
func (s *Session) cleanupOnDisconnect() {
	s.logger.Info().Msg("Session cleanup starting.")

	s.hub.Detach(s)

	if u, ok := s.hub.Registry().Unregister(s.id); ok {
		s.hub.BroadcastExcept(s.id, EventUserLeft, PresencePayload{SocketID: s.id, User: u})
		s.hub.BroadcastAll(EventUsersOnline, s.hub.Registry().Snapshot())
	}

	s.emitUserCount()
	s.closeSend()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Session connection close error")
		}
	}
}

// WritePump drains the send queue onto the WebSocket connection and keeps
// the Ping heartbeat running. One writer per connection preserves per-pair
// delivery order.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := s.conn.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Session connection close error in WritePump")
		}
	}()

	for {
		select {
		case data, ok := <-s.send:
			if !s.writeQueued(data, ok) {
				return
			}

		case <-ticker.C:
			if !s.writePing() {
				return
			}
		}
	}
}

// writeQueued writes one queued envelope, or the close frame when the queue
// was closed. Returns false when the pump should stop.
func (s *Session) writeQueued(data []byte, ok bool) bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			s.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePing sends the heartbeat Ping. Returns false on write failure.
func (s *Session) writePing() bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		s.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
