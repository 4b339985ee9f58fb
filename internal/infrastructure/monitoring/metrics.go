package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Ingress metrics
	DatagramsTotal  *prometheus.CounterVec
	DatagramBytes   *prometheus.CounterVec
	DecodeFallbacks prometheus.Counter
	ReadErrors      prometheus.Counter

	// Log store metrics
	Appends       prometheus.Counter
	Resets        prometheus.Counter
	BufferBytes   prometheus.Gauge
	BufferLines   prometheus.Gauge
	Subscribers   prometheus.Gauge
	FirstContents prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON stats API
type Snapshot struct {
	Datagrams     int64
	Appends       int64
	Resets        int64
	TotalRequests int64
	TotalErrors   int64
}

// NewMetrics creates a new metrics collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracestream_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracestream_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		DatagramsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracestream_datagrams_total",
				Help: "Total number of datagrams received",
			},
			[]string{"kind"},
		),
		DatagramBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracestream_datagram_bytes_total",
				Help: "Total datagram payload bytes received",
			},
			[]string{"kind"},
		),
		DecodeFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracestream_decode_fallbacks_total",
				Help: "Datagrams that were not valid UTF-8 and needed transcoding",
			},
		),
		ReadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracestream_read_errors_total",
				Help: "Transient datagram read errors",
			},
		),

		Appends: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracestream_log_appends_total",
				Help: "Total number of lines appended to the log buffer",
			},
		),
		Resets: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracestream_log_resets_total",
				Help: "Total number of log buffer resets",
			},
		),
		BufferBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracestream_log_buffer_bytes",
				Help: "Current size of the log buffer in bytes",
			},
		),
		BufferLines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracestream_log_buffer_lines",
				Help: "Lines appended since the last reset",
			},
		),
		Subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracestream_log_subscribers",
				Help: "Number of active change subscribers",
			},
		),
		FirstContents: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracestream_log_first_content_total",
				Help: "Number of reset cycles that produced content",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracestream_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracestream_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tracestream_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry all metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordDatagram records one received datagram of the given kind
func (m *Metrics) RecordDatagram(kind string, size int) {
	m.DatagramsTotal.WithLabelValues(kind).Inc()
	m.DatagramBytes.WithLabelValues(kind).Add(float64(size))

	m.mu.Lock()
	m.snapshot.Datagrams++
	m.mu.Unlock()
}

// IncDecodeFallbacks counts a payload that needed charset transcoding
func (m *Metrics) IncDecodeFallbacks() {
	m.DecodeFallbacks.Inc()
}

// IncReadErrors counts a transient read error
func (m *Metrics) IncReadErrors() {
	m.ReadErrors.Inc()
}

// RecordAppend records a line appended to the buffer
func (m *Metrics) RecordAppend(bufferBytes, lines int) {
	m.Appends.Inc()
	m.BufferBytes.Set(float64(bufferBytes))
	m.BufferLines.Set(float64(lines))

	m.mu.Lock()
	m.snapshot.Appends++
	m.mu.Unlock()
}

// RecordReset records a buffer reset
func (m *Metrics) RecordReset() {
	m.Resets.Inc()
	m.BufferBytes.Set(0)
	m.BufferLines.Set(0)

	m.mu.Lock()
	m.snapshot.Resets++
	m.mu.Unlock()
}

// IncFirstContent counts a first-content signal
func (m *Metrics) IncFirstContent() {
	m.FirstContents.Inc()
}

// SetSubscribers sets the number of change subscribers
func (m *Metrics) SetSubscribers(count int) {
	m.Subscribers.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// GetSnapshot returns a copy of the running totals
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// UptimeSeconds returns how long the collector has existed
func (m *Metrics) UptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}
