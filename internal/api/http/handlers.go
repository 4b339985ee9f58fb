package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceStream/backend/internal/domain/logstore"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/monitoring"
)

const (
	serviceName    = "TraceStream"
	serviceVersion = "0.1.0"
)

// Handlers serves the read-only HTTP surface of the log store
type Handlers struct {
	store   *logstore.Store
	metrics *monitoring.Metrics
	logger  *zap.Logger
	logs    gin.HandlerFunc
}

// NewHandlers creates HTTP handlers
func NewHandlers(store *logstore.Store, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
	h.logs = gin.WrapH(gzhttp.GzipHandler(http.HandlerFunc(h.writeLogs)))
	return h
}

// Root handles the root endpoint
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": serviceName,
		"version": serviceVersion,
		"endpoints": gin.H{
			"logs":    "/logs",
			"stats":   "/logs/stats",
			"stream":  "/stream",
			"metrics": "/metrics",
		},
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	stats := h.store.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store": gin.H{
			"state":       stats.State,
			"subscribers": stats.Subscribers,
		},
	})
}

// GetLogs returns the accumulated log as plain text, gzip-compressed when
// the client accepts it.
func (h *Handlers) GetLogs(c *gin.Context) {
	h.logs(c)
}

func (h *Handlers) writeLogs(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Log-Cycle", formatUint(snap.Cycle))
	w.Header().Set("X-Log-Version", formatUint(snap.Version))

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, snap.Content); err != nil {
		h.logger.Debug("Failed to write log body", zap.Error(err))
	}
}

// GetLogStats returns buffer statistics and ingestion totals
func (h *Handlers) GetLogStats(c *gin.Context) {
	response := gin.H{
		"store":     h.store.Stats(),
		"timestamp": time.Now().Unix(),
	}

	if h.metrics != nil {
		totals := h.metrics.GetSnapshot()
		response["ingress"] = gin.H{
			"datagrams": totals.Datagrams,
			"appends":   totals.Appends,
			"resets":    totals.Resets,
		}
		response["http"] = gin.H{
			"requests": totals.TotalRequests,
			"errors":   totals.TotalErrors,
		}
		response["uptime_seconds"] = h.metrics.UptimeSeconds()
	}

	c.JSON(http.StatusOK, response)
}
