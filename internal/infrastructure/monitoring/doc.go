/*
Package monitoring provides metrics collection for the trace stream service.

# Overview

Each Metrics value owns a private Prometheus registry, so several instances
can coexist in one process (tests construct one per case). The registry is
exposed through Handler for the /metrics endpoint.

# Tracked

- Datagrams received, by kind (line or clear), and their payload bytes
- Payloads that needed charset transcoding, transient read errors
- Log buffer appends, resets, current size in bytes and lines
- Change subscribers and first-content signals
- HTTP requests and WebSocket connections/messages
- Uptime, Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
