// Package session provides session management for the memory match game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - One engine and one event loop per session
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session it creates gets its own loop goroutine; the engine is built on
// that loop and uses it as its scheduler, so flip-back and clock timers fire
// on the same goroutine as clicks.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Generated IDs are retried on collision.
//
// Usage:
//
//	manager := session.NewManager(session.WithEventSink(sink))
//	defer manager.Shutdown()
//
//	sess, err := manager.Create("", engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = sess.Do(ctx, func(eng engine.Engine) { eng.Click(3) })
//
// Cleanup:
//
// Deleting or expiring a session stops its loop, which drops any timer
// callback still in flight. RunCleanup performs expiry on an interval.
package session
