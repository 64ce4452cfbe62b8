// Package mcp provides a Model Context Protocol server for the memory match game.
//
// The server is a thin proxy: every tool call becomes a REST request against
// a running game server, and the JSON response is rendered as text an agent
// can read.
//
// MCP Tools:
//   - create_session: Create a session, optionally with a preset
//   - list_sessions: List active sessions
//   - get_session: Get session details
//   - game_state: Board, score, pairs and clock
//   - click_tile: Reveal a tile by position or row/col
//   - restart_game: Reshuffle and start over
//   - list_configs: List available presets
//   - game_instructions: Rules and strategy notes
//
// Board Rendering:
//
// game_state draws the 4x4 grid with row and column labels. Face-down tiles
// show as ??, face-up tiles as their value, matched tiles as (value).
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// API errors are returned as tool error results rather than protocol errors,
// so agents see the message and can recover.
package mcp
