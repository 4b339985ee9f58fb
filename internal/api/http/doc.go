// Package http provides the read-only HTTP handlers for the trace log.
//
// Routes:
//   - GET /: service info
//   - GET /health: liveness with store state
//   - GET /logs: accumulated log as text/plain (gzip when accepted)
//   - GET /logs/stats: buffer statistics and ingestion totals
//
// The log is never modified over HTTP; lines arrive only through the
// datagram listener.
//
// Example Usage:
//
//	handlers := http.NewHandlers(store, metrics, logger)
//	router.GET("/logs", handlers.GetLogs)
package http
