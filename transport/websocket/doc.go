// Package websocket provides WebSocket transport for the memory match game.
//
// The websocket package implements:
//   - Session-scoped event streams
//   - Forwarding of engine events, including timer-driven flip-backs and clock ticks
//   - A state snapshot for newly connected clients
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. The client map is owned by the Run goroutine; every
// other method hands work to it through channels. Each connection has a read
// pump and a write pump goroutine.
//
// Message Protocol:
//
// Clients only receive. Clicks go through the REST API, and the results
// arrive here as events. Each frame is one JSON message:
//
//	{
//	  "session_id": "ab12",
//	  "event": "mismatch",
//	  "game_state": {...},
//	  "data": {"type": "mismatch", "changes": [...], "score": 9}
//	}
//
// The first frame after connecting has event "snapshot" when the hub was
// built WithSnapshot.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithSnapshot(gameService.GetGameState))
//	go hub.Run()
//	defer hub.Stop()
//
//	sessions := session.NewManager(session.WithEventSink(service.NewEventSink(hub)))
//
// Backpressure:
//
// Notify is called from session loops and never blocks. When the hub queue
// is full the event is dropped; a client whose own buffer is full is
// disconnected and can reconnect for a fresh snapshot.
package websocket
