// Package server wires the trace log service together.
//
// Components:
//   - Datagram listener feeding the log store
//   - HTTP view with Gin (logs, stats, health, metrics)
//   - WebSocket stream of snapshots
//   - Optional terminal tail on stdout
//
// Server Lifecycle:
//  1. Build logger and metrics from configuration
//  2. Bind the datagram socket (failure is fatal)
//  3. Bind the HTTP socket and register routes
//  4. Run serves everything until the context ends
//  5. Graceful HTTP shutdown, then sockets are released
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
