/*
Package tracing provides lightweight request tracing for the HTTP view.

# Overview

Every HTTP request, including a websocket stream for its whole lifetime, gets
a span. Finished spans are logged through zap by a background collector, so
a slow client or a stream that disconnects can be followed in the logs by
its trace ID.

# Usage

	tracer := tracing.New("tracestream", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

# Trace Format

Traces use HTTP headers for propagation:
- X-Trace-ID: Identifier for the whole request flow (req_<ULID>)
- X-Span-ID: Identifier for the current operation (span_<ULID>)

Spans are buffered (1000) and dropped with a warning when the buffer is full.
*/
package tracing
