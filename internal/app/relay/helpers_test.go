package relay

import (
	"encoding/json"
	"testing"
)

// envelope mirrors Outbound with a raw payload so tests can decode the body
// per event.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// newTestSession builds a session with a fixed identifier and no transport,
// attached to the hub. Handlers only touch the send queue, so tests drive the
// dispatch table directly and read emitted envelopes from the queue.
func newTestSession(t *testing.T, h *Hub, lc *Lifecycle, id string) *Session {
	t.Helper()

	s := NewSession(h, lc, nil)
	s.id = id
	h.Attach(s)
	return s
}

// newTestHub builds a hub with a fresh registry and lifecycle tracker.
func newTestHub(t *testing.T) (*Hub, *Lifecycle) {
	t.Helper()

	return NewHub(NewRegistry()), NewLifecycle()
}

// drain empties the session's send queue and decodes every envelope.
func drain(t *testing.T, s *Session) []envelope {
	t.Helper()

	var out []envelope
	for {
		select {
		case data := <-s.send:
			var env envelope
			if err := json.Unmarshal(data, &env); err != nil {
				t.Fatalf("invalid envelope on send queue: %v", err)
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

// find returns the first envelope with the given event name, or fails.
func find(t *testing.T, envs []envelope, event string) envelope {
	t.Helper()

	for _, env := range envs {
		if env.Event == event {
			return env
		}
	}
	t.Fatalf("no %q envelope among %d events", event, len(envs))
	return envelope{}
}

// count returns how many envelopes carry the given event name.
func count(envs []envelope, event string) int {
	n := 0
	for _, env := range envs {
		if env.Event == event {
			n++
		}
	}
	return n
}

// dispatchJSON marshals the payload and feeds it to the session's dispatcher
// under the given event name.
func dispatchJSON(t *testing.T, s *Session, event string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	s.dispatch(event, data)
}
