package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gorelay/internal/app/relay"
	"gorelay/internal/app/user"
	"gorelay/internal/configs"
)

func newTestDeps(t *testing.T) *AppDeps {
	t.Helper()

	registry := relay.NewRegistry()
	return &AppDeps{
		Hub:       relay.NewHub(registry),
		Lifecycle: relay.NewLifecycle(),
		Config: &configs.AppConfig{
			Environment:    "development",
			Port:           5000,
			AllowedOrigins: []string{},
		},
	}
}

func dialWS(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	frame, err := json.Marshal(relay.Inbound{Event: event, Payload: body})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var env struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("decode envelope %s: %v", frame, err)
	}
	return env.Event, env.Payload
}

// TestHealthEndpoint verifies the health check answers with the standard
// success envelope.
func TestHealthEndpoint(t *testing.T) {
	deps := newTestDeps(t)
	testServer := httptest.NewServer(Router(deps))
	defer testServer.Close()

	res, err := testServer.Client().Get(testServer.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != 0 || body.Message != "success" {
		t.Errorf("unexpected health body: %+v", body)
	}
}

// TestWebSocketPresenceRoundTrip verifies the full path over a real
// connection: two clients connect, one announces itself, and the other
// observes the user_joined broadcast followed by the presence snapshot.
func TestWebSocketPresenceRoundTrip(t *testing.T) {
	deps := newTestDeps(t)
	testServer := httptest.NewServer(Router(deps))
	defer testServer.Close()

	observer := dialWS(t, testServer.URL)
	joiner := dialWS(t, testServer.URL)

	// Let both sessions attach before announcing.
	deadline := time.Now().Add(2 * time.Second)
	for deps.Hub.SessionCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("sessions never attached, count=%d", deps.Hub.SessionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}

	sendEvent(t, joiner, relay.EventUserJoined, user.User{Name: "carol"})

	event, payload := readEvent(t, observer)
	if event != relay.EventUserJoined {
		t.Fatalf("expected user_joined first, got %q", event)
	}
	var presence relay.PresencePayload
	if err := json.Unmarshal(payload, &presence); err != nil {
		t.Fatalf("decode presence payload: %v", err)
	}
	if presence.User.Name != "carol" || presence.SocketID == "" {
		t.Errorf("unexpected presence payload: %+v", presence)
	}

	event, payload = readEvent(t, observer)
	if event != relay.EventUsersOnline {
		t.Fatalf("expected users_online second, got %q", event)
	}
	var snapshot map[string]user.User
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("decode snapshot payload: %v", err)
	}
	if len(snapshot) != 1 {
		t.Errorf("expected exactly the joiner in the snapshot, got %+v", snapshot)
	}

	event, _ = readEvent(t, observer)
	if event != relay.EventUserCount {
		t.Errorf("expected user_count third, got %q", event)
	}
}

// TestWebSocketMessageRegistered verifies a sender receives the correlation
// receipt over a real connection.
func TestWebSocketMessageRegistered(t *testing.T) {
	deps := newTestDeps(t)
	testServer := httptest.NewServer(Router(deps))
	defer testServer.Close()

	sender := dialWS(t, testServer.URL)

	deadline := time.Now().Add(2 * time.Second)
	for deps.Hub.SessionCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("session never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sendEvent(t, sender, relay.EventMessage, relay.Message{
		UUID:      "c1",
		Sender:    "me",
		Recipient: relay.DefaultRoom,
		Room:      relay.DefaultRoom,
		Content:   "hi",
	})

	event, payload := readEvent(t, sender)
	if event != relay.EventMessageRegistered {
		t.Fatalf("expected message_registered, got %q", event)
	}
	var receipt relay.Receipt
	if err := json.Unmarshal(payload, &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.OldID != "c1" || receipt.NewID == "c1" || receipt.NewID == "" {
		t.Errorf("unexpected receipt: %+v", receipt)
	}
}
