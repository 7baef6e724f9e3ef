package relay

import "testing"

// TestRegisterReceiptMintsNewID verifies that the server replaces the
// client-generated uuid and reports both identifiers in the receipt.
func TestRegisterReceiptMintsNewID(t *testing.T) {
	lc := NewLifecycle()

	m := Message{
		UUID:      "c1",
		Sender:    "A",
		Recipient: DefaultRoom,
		Room:      DefaultRoom,
		Content:   "hi",
		State:     StateClientSent,
	}

	receipt := lc.RegisterReceipt(&m)

	if receipt.OldID != "c1" {
		t.Errorf("expected old_id c1, got %q", receipt.OldID)
	}
	if receipt.NewID == "" || receipt.NewID == "c1" {
		t.Errorf("expected a fresh server id, got %q", receipt.NewID)
	}
	if m.UUID != receipt.NewID {
		t.Errorf("message carries %q but receipt says %q", m.UUID, receipt.NewID)
	}
	if m.State != StateServerReceived {
		t.Errorf("expected state server_received, got %q", m.State)
	}
	if receipt.Room != DefaultRoom {
		t.Errorf("expected main-room delivery target, got %q", receipt.Room)
	}
}

// TestRegisterReceiptUniqueIDs verifies each receipt mints a distinct id.
func TestRegisterReceiptUniqueIDs(t *testing.T) {
	lc := NewLifecycle()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		m := Message{UUID: "c", Room: DefaultRoom}
		receipt := lc.RegisterReceipt(&m)
		if seen[receipt.NewID] {
			t.Fatalf("duplicate server id %q", receipt.NewID)
		}
		seen[receipt.NewID] = true
	}
}

// TestRegisterReceiptRoutesByRecipientOutsideDefaultRoom verifies the room
// resolution rule: a non-default room means the recipient identifier is the
// delivery target, regardless of the room field's literal value.
func TestRegisterReceiptRoutesByRecipientOutsideDefaultRoom(t *testing.T) {
	lc := NewLifecycle()

	m := Message{
		UUID:      "c2",
		Sender:    "A",
		Recipient: "session-b",
		Room:      "dm-room",
		Content:   "psst",
	}

	receipt := lc.RegisterReceipt(&m)

	if receipt.Room != "session-b" {
		t.Errorf("expected delivery target session-b, got %q", receipt.Room)
	}
}

// TestNotifyStateSwapsAndClears verifies the acknowledgement contract: the
// content is emptied, sender and recipient trade places, and the room points
// at the original recipient.
func TestNotifyStateSwapsAndClears(t *testing.T) {
	lc := NewLifecycle()

	m := Message{
		UUID:      "srv-1",
		Sender:    "A",
		Recipient: "B",
		Room:      DefaultRoom,
		Content:   "secret",
		State:     StateServerReceived,
	}

	out := lc.NotifyState(&m, StateClientRead)

	if out.Content != "" {
		t.Errorf("acknowledgement carried content %q back", out.Content)
	}
	if out.Sender != "B" || out.Recipient != "A" {
		t.Errorf("expected swapped endpoints B->A, got %s->%s", out.Sender, out.Recipient)
	}
	if out.Room != "B" {
		t.Errorf("expected room set to original recipient B, got %q", out.Room)
	}
	if out.State != StateClientRead {
		t.Errorf("expected state client_read, got %q", out.State)
	}
}

// TestNotifyStateCoalescesReceivedToRead verifies the preserved quirk: a
// client_received acknowledgement is also stamped client_read.
func TestNotifyStateCoalescesReceivedToRead(t *testing.T) {
	lc := NewLifecycle()

	m := Message{UUID: "srv-2", Sender: "A", Recipient: "B", Content: "x"}

	out := lc.NotifyState(&m, StateClientRecv)

	if out.State != StateClientRead {
		t.Errorf("expected client_received to coalesce to client_read, got %q", out.State)
	}
}
