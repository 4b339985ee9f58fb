package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceStream/backend/internal/domain/logstore"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/monitoring"
)

const maxClientMessage = 512

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only stream
	},
}

// Source is the part of the log store the stream needs.
type Source interface {
	Snapshot() logstore.Snapshot
	Subscribe() *logstore.Subscription
	SubscribeFirstContent() *logstore.Subscription
}

// Handler streams the live log to websocket clients
type Handler struct {
	source       Source
	logger       *zap.Logger
	metrics      *monitoring.Metrics
	writeTimeout time.Duration
}

// NewHandler creates a new WebSocket handler
func NewHandler(source Source, logger *zap.Logger, metrics *monitoring.Metrics, writeTimeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Handler{
		source:       source,
		logger:       logger,
		metrics:      metrics,
		writeTimeout: writeTimeout,
	}
}

// HandleConnection upgrades the request and streams snapshots until the
// client goes away. A failing client only ever tears down its own
// subscriptions.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	changes := h.source.Subscribe()
	defer changes.Close()
	firsts := h.source.SubscribeFirstContent()
	defer firsts.Close()

	log := h.logger.With(zap.String("subscription", changes.ID()))
	log.Debug("Live view connected")
	defer log.Debug("Live view disconnected")

	replies := make(chan EventMessage, 4)
	closed := make(chan struct{})
	go h.readPump(conn, replies, closed)

	if err := h.sendSnapshot(conn); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-changes.C():
			if err := h.flush(conn, changes, firsts); err != nil {
				log.Debug("Live view write failed", zap.Error(err))
				return
			}
		case <-firsts.C():
			if err := h.flush(conn, changes, firsts); err != nil {
				log.Debug("Live view write failed", zap.Error(err))
				return
			}
		case reply := <-replies:
			if err := h.sendEvent(conn, reply.Type, reply.Message); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

// flush sends the first-content notice before the snapshot it belongs to.
func (h *Handler) flush(conn *websocket.Conn, changes, firsts *logstore.Subscription) error {
	if firsts.Drain() > 0 {
		if err := h.sendEvent(conn, TypeFirstContent, "trace output started"); err != nil {
			return err
		}
	}
	if changes.Drain() > 0 {
		return h.sendSnapshot(conn)
	}
	return nil
}

// readPump consumes client frames. The writer goroutine owns all writes, so
// replies are handed over rather than sent here. Replies are dropped when the
// writer is behind.
func (h *Handler) readPump(conn *websocket.Conn, replies chan<- EventMessage, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxClientMessage)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var reply EventMessage
		var msg ClientMessage
		switch err := sonic.Unmarshal(data, &msg); {
		case err != nil:
			reply = EventMessage{Type: TypeError, Message: "invalid message"}
		case msg.Type == "ping":
			reply = EventMessage{Type: TypePong}
		default:
			reply = EventMessage{Type: TypeError, Message: "unsupported message type: " + msg.Type}
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		select {
		case replies <- reply:
		default:
		}
	}
}

func (h *Handler) sendSnapshot(conn *websocket.Conn) error {
	snap := h.source.Snapshot()
	return h.send(conn, TypeSnapshot, SnapshotMessage{
		Type:      TypeSnapshot,
		Content:   snap.Content,
		Lines:     snap.Lines,
		Cycle:     snap.Cycle,
		Version:   snap.Version,
		Timestamp: time.Now().Unix(),
	})
}

func (h *Handler) sendEvent(conn *websocket.Conn, msgType, message string) error {
	return h.send(conn, msgType, EventMessage{
		Type:      msgType,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

func (h *Handler) send(conn *websocket.Conn, msgType string, data interface{}) error {
	payload, err := sonic.Marshal(data)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", msgType)
	}
	return nil
}
