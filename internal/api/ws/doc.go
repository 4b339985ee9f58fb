// Package ws streams the live trace log to WebSocket clients.
//
// Every connection gets its own change and first-content subscriptions. A
// full snapshot is sent on connect and again after each batch of changes,
// so a client that falls behind simply skips intermediate states.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - snapshot: Whole buffer with cycle and version
//   - first_content: First line of a cycle arrived
//   - pong: Reply to ping
//   - error: Unsupported or malformed client message
//
// Example Usage:
//
//	handler := ws.NewHandler(store, logger, metrics, 10*time.Second)
//	router.GET("/stream", handler.HandleConnection)
package ws
