/*
Package relay contains the core logic of the chat relay: the message model,
the presence registry, the routing hub, the message lifecycle tracker, and
the per-connection session dispatcher.

This file defines the message model and the wire-level event vocabulary.
*/
package relay

import (
	"encoding/json"

	"gorelay/internal/app/user"
)

// DefaultRoom is the broadcast room every session joins at connect time.
// A message whose room differs from it is treated as recipient-addressed.
const DefaultRoom = "main-room"

// MaxContentBytes is the maximum allowed size of chat message content.
const MaxContentBytes = 5000

// MessageState marks the delivery/read progress of a message.
type MessageState string

const (
	// StateReadyToSend marks a message waiting in the client, not yet sent.
	StateReadyToSend MessageState = "ready_to_send"

	// StateClientSent marks a message sent by the client; arrival at the
	// server is unconfirmed.
	StateClientSent MessageState = "client_sent"

	// StateServerReceived marks a message that reached the server but was
	// not yet forwarded.
	StateServerReceived MessageState = "server_received"

	// StateServerSent marks a message the server forwarded without a
	// delivery confirmation yet. Declared for completeness; no server code
	// path currently assigns it.
	StateServerSent MessageState = "server_sent"

	// StateClientRecv marks a message the recipient client confirmed
	// receiving.
	StateClientRecv MessageState = "client_received"

	// StateClientRead marks a message the recipient user has viewed.
	StateClientRead MessageState = "client_read"
)

// Inbound event names accepted by the session dispatcher. The acknowledgement
// events double as the outbound event label relayed to the original sender.
const (
	EventUserJoined     = "user_joined"
	EventChangeUsername = "change_username"
	EventMessage        = "message"
	EventClientReceived = "client_received"
	EventClientRead     = "client_read"
	EventTyping         = "typing"
	EventResetTyping    = "reset_typing"
)

// Outbound-only event names.
const (
	EventUsersOnline       = "users_online"
	EventUserCount         = "user_count"
	EventMessageRegistered = "message_registered"
	EventUserLeft          = "user_left"
)

// Message is a chat message together with its lifecycle state. The uuid is
// client-generated at creation and replaced with a server-minted identifier
// on receipt; sender and recipient are routing endpoints (room names or
// session identifiers) and get swapped when an acknowledgement travels back.
type Message struct {
	UUID      string       `json:"uuid"`
	User      string       `json:"user"`
	Sender    string       `json:"sender"`
	Recipient string       `json:"recipient"`
	Room      string       `json:"room"`
	Content   string       `json:"content"`
	State     MessageState `json:"state"`
}

// Inbound is the envelope a client sends: an event name plus a raw payload
// decoded by the matching handler.
type Inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is the envelope the server emits to clients.
type Outbound struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// PresencePayload is the body of user_joined and user_left broadcasts,
// pairing the session identifier with its user.
type PresencePayload struct {
	SocketID string    `json:"socketId"`
	User     user.User `json:"user"`
}

// TypingPayload is the body of typing and reset_typing events.
type TypingPayload struct {
	Sender string `json:"sender"`
	Room   string `json:"room"`
}
