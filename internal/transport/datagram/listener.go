package datagram

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/monitoring"
)

// DefaultPort is the well-known port trace probes broadcast to.
const DefaultPort = 65530

// DefaultReadBuffer fits the largest possible UDP payload.
const DefaultReadBuffer = 65535

// Repeated read errors are retried after a delay that doubles from
// minReadBackoff up to maxReadBackoff and resets on the next good read.
const (
	minReadBackoff = 5 * time.Millisecond
	maxReadBackoff = time.Second
)

// Listener reads datagrams from one UDP socket and applies each, in the
// order received, to a Sink. It keeps no log state of its own.
type Listener struct {
	conn       net.PacketConn
	sink       Sink
	logger     *zap.Logger
	metrics    *monitoring.Metrics
	readBuffer int

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the listener's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records datagram metrics.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(l *Listener) {
		l.metrics = metrics
	}
}

// WithReadBuffer sets the largest datagram accepted; longer ones are
// truncated by the socket.
func WithReadBuffer(size int) Option {
	return func(l *Listener) {
		if size > 0 {
			l.readBuffer = size
		}
	}
}

// Listen binds a UDP socket on addr. A bind failure is returned to the
// caller and never retried.
func Listen(addr string, sink Sink, opts ...Option) (*Listener, error) {
	if sink == nil {
		return nil, errors.New("datagram listener requires a sink")
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind datagram listener on %s: %w", addr, err)
	}

	l := &Listener{
		conn:       conn,
		sink:       sink,
		logger:     zap.NewNop(),
		readBuffer: DefaultReadBuffer,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.logger.Info("Datagram listener bound", zap.String("addr", conn.LocalAddr().String()))
	return l, nil
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve runs the receive loop until ctx is cancelled or the listener is
// closed, both of which return nil. Datagrams are handled one at a time so
// mutations reach the sink in arrival order.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	buf := make([]byte, l.readBuffer)
	var backoff time.Duration
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if l.metrics != nil {
				l.metrics.IncReadErrors()
			}

			if backoff == 0 {
				backoff = minReadBackoff
			} else {
				backoff = min(2*backoff, maxReadBackoff)
			}
			l.logger.Warn("Datagram read failed", zap.Error(err), zap.Duration("retry_in", backoff))

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}
		backoff = 0

		l.handle(buf[:n], from)
	}
}

func (l *Listener) handle(payload []byte, from net.Addr) {
	kind, text, fallback := Interpret(payload)

	// Metrics go first so they are visible to anyone woken by the mutation.
	if l.metrics != nil {
		l.metrics.RecordDatagram(kind.String(), len(payload))
		if fallback {
			l.metrics.IncDecodeFallbacks()
		}
	}
	if fallback {
		l.logger.Debug("Datagram was not valid UTF-8",
			zap.Stringer("from", from),
			zap.Int("bytes", len(payload)),
		)
	}

	apply(l.sink, kind, text)
	if kind == KindClear {
		l.logger.Debug("Trace log cleared", zap.Stringer("from", from))
	}
}

// Close releases the socket. Serve returns once it observes the close.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.conn.Close()
	})
	return l.closeErr
}
