// Package api provides HTTP REST API handlers for the memory match game.
//
// The api package implements:
//   - Session management endpoints
//   - Click and restart endpoints
//   - Configuration listing and lookup
//   - WebSocket upgrade handling
//   - Prometheus metrics and a health probe
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "relaxed"}, body optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board and score
//   - POST /api/sessions/{id}/click - Click a tile ({"position": 5} or {"row": 1, "col": 1})
//   - POST /api/sessions/{id}/restart - Reshuffle and start over
//
// Configuration:
//   - GET /api/configs - List available presets
//   - GET /api/configs/{name} - Get a single preset
//
// Other:
//   - GET /ws?session={id} - Live event stream for a session
//   - GET /metrics - Prometheus metrics
//   - GET /healthz - Liveness probe
//
// Click responses carry the outcome (selected, match, mismatch, ignored),
// the tiles whose visibility changed, and the full state afterwards. An
// ignored click is not an error and returns 200 with a reason. A mismatched
// pair flips back on its own after the preset's delay; clients learn about
// it from the WebSocket stream or by polling state.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Unknown sessions and presets map to 404, invalid bodies and presets to 400.
package api
