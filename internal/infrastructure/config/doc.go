// Package config provides 12-factor configuration management for the trace
// stream backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server can override environment variables.
//
// Configuration Sections:
//   - Server: HTTP live view settings (port, host)
//   - Ingress: UDP datagram listener (port, host, read buffer)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting for the HTTP view
//   - View: Terminal tail and websocket write timeout
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Listening for trace datagrams on %s\n", cfg.IngressAddr())
//
// Environment Variables:
//   - PORT, HOST, UDP_PORT, UDP_HOST, UDP_READ_BUFFER
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - TAIL_STDOUT, WS_WRITE_TIMEOUT
package config
