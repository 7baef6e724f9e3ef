/*
Package relay contains the core logic of the chat relay.

This file defines the message lifecycle tracker. It rewrites message
identifiers at the server boundary and prepares the acknowledgement
round-trip back to the original sender.
*/
package relay

import (
	"github.com/rs/zerolog"

	"gorelay/internal/pkg/logx"
	"gorelay/internal/pkg/randx"
)

// Receipt is the correlation triple returned to the original sender after
// the server accepts a message, so the client can reconcile its local
// optimistic copy with the server-assigned identifier.
type Receipt struct {
	// Room is the effective delivery target after room resolution.
	Room string `json:"room"`

	// OldID is the identifier the client generated locally.
	OldID string `json:"old_id"`

	// NewID is the server-minted identifier the forwarded message carries.
	NewID string `json:"uuid"`
}

// Lifecycle drives the message delivery state machine at the server boundary.
type Lifecycle struct {
	logger zerolog.Logger
}

// NewLifecycle constructs a lifecycle tracker.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		logger: logx.Logger().With().Str("component", "Lifecycle").Logger(),
	}
}

// RegisterReceipt accepts an inbound message exactly once at the server
// boundary. It mints a new identifier in place of the client-supplied one,
// stamps the message server_received, and resolves the effective delivery
// room: a message addressed outside the default room routes by recipient,
// whatever its room field literally says.
func (lc *Lifecycle) RegisterReceipt(m *Message) Receipt {
	oldID := m.UUID

	m.UUID = randx.MessageID()
	m.State = StateServerReceived

	target := m.Room
	if m.Room != DefaultRoom {
		target = m.Recipient
	}

	lc.logger.Debug().
		Str("old_id", oldID).
		Str("new_id", m.UUID).
		Str("target", target).
		Msg("Message registered.")

	return Receipt{
		Room:  target,
		OldID: oldID,
		NewID: m.UUID,
	}
}

// NotifyState turns a recipient acknowledgement into the outbound
// notification for the original sender. The state is coalesced to
// client_read for both acknowledgement kinds (downstream consumers do not
// differentiate), the content is cleared so acknowledgements never carry
// payload back, the room is pointed at the recipient, and sender/recipient
// are swapped so the notification routes to whoever originated the message.
// The returned message is emitted under newState's own event label.
func (lc *Lifecycle) NotifyState(m *Message, newState MessageState) *Message {
	m.State = StateClientRead
	m.Content = ""
	m.Room = m.Recipient
	m.Sender, m.Recipient = m.Recipient, m.Sender

	lc.logger.Debug().
		Str("uuid", m.UUID).
		Str("ack", string(newState)).
		Str("notify_target", m.Recipient).
		Msg("Acknowledgement relayed.")

	return m
}
