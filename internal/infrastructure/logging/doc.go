// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that the terminal tail view can own stdout.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Datagram listener bound", zap.String("addr", "0.0.0.0:65530"))
//	logger.Component("ingress").Warn("Read failed", zap.Error(err))
package logging
