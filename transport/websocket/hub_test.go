package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}

	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}

	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}

	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.sessions["test-session"]; !exists {
		t.Error("Session was not created")
	}

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}

	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}

	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessageScopedToSession(t *testing.T) {
	hub := NewHub()

	inSession := &Client{hub: hub, sessionID: "ab12", send: make(chan []byte, 256)}
	otherSession := &Client{hub: hub, sessionID: "cd34", send: make(chan []byte, 256)}
	hub.registerClient(inSession)
	hub.registerClient(otherSession)

	hub.broadcastMessage(&Message{SessionID: "ab12", Event: "match"})

	select {
	case data := <-inSession.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != "match" {
			t.Errorf("Expected event 'match', got %s", message.Event)
		}
	default:
		t.Error("Client in session did not receive the message")
	}

	select {
	case <-otherSession.send:
		t.Error("Client in another session should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "tick"})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Slow client should have been unregistered")
	}
}

func TestHubNotify(t *testing.T) {
	hub := NewHub()

	state := &engine.GameState{Score: 10, MatchedPairs: 1, Phase: engine.PhaseIdle}
	hub.Notify("ab12", engine.Event{Type: engine.EventMatch, Score: 10}, state)

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "ab12" {
			t.Errorf("Expected sessionID 'ab12', got %s", message.SessionID)
		}
		if message.Event != "match" {
			t.Errorf("Expected event 'match', got %s", message.Event)
		}
		if message.GameState != state {
			t.Error("GameState not attached to message")
		}
		if ev, ok := message.Data.(engine.Event); !ok || ev.Score != 10 {
			t.Errorf("Expected engine event data, got %#v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubNotifyNeverBlocks(t *testing.T) {
	hub := NewHub()

	// Nothing drains the queue; overflow must be dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Notify("ab12", engine.Event{Type: engine.EventTick}, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected %d queued messages, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func newTestServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in session %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newTestServer(hub)
	defer server.Close()

	conn := dial(t, server, "ws-test")
	waitForClients(t, hub, "ws-test", 1)

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketEventDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newTestServer(hub)
	defer server.Close()

	conn := dial(t, server, "msg-test")
	defer conn.Close()
	waitForClients(t, hub, "msg-test", 1)

	state := &engine.GameState{Score: 9, Mismatches: 1, Phase: engine.PhaseIdle}
	hub.Notify("msg-test", engine.Event{Type: engine.EventFlipBack, Score: 9}, state)

	message := readMessage(t, conn)
	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}
	if message.Event != "flip_back" {
		t.Errorf("Expected event 'flip_back', got %s", message.Event)
	}
	if message.GameState == nil || message.GameState.Score != 9 || message.GameState.Mismatches != 1 {
		t.Errorf("GameState not correctly received: %+v", message.GameState)
	}
}

func TestWebSocketSnapshotOnConnect(t *testing.T) {
	hub := NewHub(WithSnapshot(func(ctx context.Context, sessionID string) (*engine.GameState, error) {
		if sessionID != "snap" {
			return nil, errors.New("unknown session")
		}
		return &engine.GameState{Score: 42, TotalPairs: engine.PairCount}, nil
	}))
	go hub.Run()
	defer hub.Stop()

	server := newTestServer(hub)
	defer server.Close()

	conn := dial(t, server, "snap")
	defer conn.Close()

	message := readMessage(t, conn)
	if message.Event != EventSnapshot {
		t.Errorf("Expected event %q, got %q", EventSnapshot, message.Event)
	}
	if message.GameState == nil || message.GameState.Score != 42 {
		t.Errorf("Expected snapshot state, got %+v", message.GameState)
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	server := newTestServer(hub)
	defer server.Close()

	conn := dial(t, server, "bye")
	defer conn.Close()
	waitForClients(t, hub, "bye", 1)

	hub.Stop()
	hub.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected connection to be closed after Stop")
	}

	if n := hub.ClientCount("bye"); n != 0 {
		t.Errorf("ClientCount after Stop = %d, want 0", n)
	}
}

func TestWebSocketSessionDeleted(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newTestServer(hub)
	defer server.Close()

	conn := dial(t, server, "del1")
	defer conn.Close()
	other := dial(t, server, "keep")
	defer other.Close()
	waitForClients(t, hub, "del1", 1)
	waitForClients(t, hub, "keep", 1)

	hub.SessionDeleted("del1")

	message := readMessage(t, conn)
	if message.Event != EventSessionDeleted {
		t.Errorf("Expected event %q, got %q", EventSessionDeleted, message.Event)
	}
	if message.SessionID != "del1" {
		t.Errorf("Expected sessionID 'del1', got %s", message.SessionID)
	}

	waitForClients(t, hub, "del1", 0)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after the delete event")
	}

	if got := hub.ClientCount("keep"); got != 1 {
		t.Errorf("Expected other session to keep its client, got %d", got)
	}
}
