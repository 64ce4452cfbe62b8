// Package service provides the business logic layer for the memory match game.
//
// The service package implements:
//   - Multi-session game management
//   - Click and restart handling routed through each session's loop
//   - Configuration listing and loading
//   - Event fan-out to connected clients, with metrics on the way
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Notifier receives engine events; the WebSocket hub is the usual one.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine and a loop goroutine; the
// service never calls the engine directly, it submits closures through
// Session.Do so clicks and timer callbacks are serialized.
//
// Usage:
//
//	hub := websocket.NewHub()
//	sessionMgr := session.NewManager(session.WithEventSink(service.NewEventSink(hub)))
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "timed")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := gameService.Click(ctx, sessionInfo.ID, 5)
package service
