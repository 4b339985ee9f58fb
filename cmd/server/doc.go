// Package main is the entry point for the TraceStream server.
//
// Trace probes send one line per UDP datagram; the server accumulates them
// and serves the live log over HTTP, WebSocket and optionally stdout.
//
// Architecture:
//
//	Probe (UDP) → Datagram Listener → Log Store → HTTP /logs
//	                                            → WebSocket /stream
//	                                            → Terminal tail
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Default ports (HTTP 8000, UDP 65530)
//	./server
//
//	# Custom ports with terminal tail
//	./server -port 9000 -udp-port 7000 -tail
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
