package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/TraceStream/backend/internal/api/http"
	"github.com/GriffinCanCode/TraceStream/backend/internal/api/middleware"
	"github.com/GriffinCanCode/TraceStream/backend/internal/api/ws"
	"github.com/GriffinCanCode/TraceStream/backend/internal/domain/logstore"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/TraceStream/backend/internal/transport/datagram"
	"github.com/GriffinCanCode/TraceStream/backend/internal/view/tail"
)

const shutdownTimeout = 5 * time.Second

// Server wires the datagram listener, the log store and the live views
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	httpLn     net.Listener
	store      *logstore.Store
	listener   *datagram.Listener
	tail       *tail.Tail
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer

	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// NewServer creates a new server instance. Both sockets are bound here, so a
// port that is already taken fails construction.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewWithLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing TraceStream Server",
		zap.String("http_addr", cfg.HTTPAddr()),
		zap.String("ingress_addr", cfg.IngressAddr()),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	store := logstore.New().WithMetrics(metrics)

	listener, err := datagram.Listen(cfg.IngressAddr(), store,
		datagram.WithLogger(logger.Component("ingress")),
		datagram.WithMetrics(metrics),
		datagram.WithReadBuffer(cfg.Ingress.ReadBuffer),
	)
	if err != nil {
		logger.Error("Failed to start datagram listener", zap.Error(err))
		return nil, err
	}
	logger.Info("Listening for trace datagrams", zap.String("addr", listener.Addr().String()))

	httpLn, err := net.Listen("tcp", cfg.HTTPAddr())
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to bind http view on %s: %w", cfg.HTTPAddr(), err)
	}

	// Initialize request tracing
	tracer := tracing.New("tracestream", logger.Component("tracing"))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := apihttp.NewHandlers(store, metrics, logger.Component("http"))
	wsHandler := ws.NewHandler(store, logger.Component("stream"), metrics, cfg.View.WSWriteTimeout)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/logs", handlers.GetLogs)
	router.HEAD("/logs", handlers.GetLogs)
	router.GET("/logs/stats", handlers.GetLogStats)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s := &Server{
		router:   router,
		httpLn:   httpLn,
		store:    store,
		listener: listener,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
	}

	// Hijacked websocket connections are not tracked by Shutdown; their
	// request contexts derive from baseCtx so they end with it.
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())
	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	s.httpServer.RegisterOnShutdown(s.cancelBase)

	if cfg.View.TailStdout {
		s.tail = tail.New(store, os.Stdout, logger.Component("tail"))
		logger.Info("Terminal tail enabled")
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Store returns the log store the server feeds
func (s *Server) Store() *logstore.Store {
	return s.store
}

// HTTPAddr returns the bound address of the HTTP view
func (s *Server) HTTPAddr() net.Addr {
	return s.httpLn.Addr()
}

// IngressAddr returns the bound address of the datagram listener
func (s *Server) IngressAddr() net.Addr {
	return s.listener.Addr()
}

// Run serves datagrams and the views until ctx is cancelled or a component
// fails, then shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	firsts := s.store.SubscribeFirstContent()
	defer firsts.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.listener.Serve(ctx)
	})

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpLn.Addr().String()))
		if err := s.httpServer.Serve(s.httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.announce(ctx, firsts)
		return nil
	})

	if s.tail != nil {
		g.Go(func() error {
			return s.tail.Run(ctx)
		})
	}

	return g.Wait()
}

// announce logs where the live view is each time a cycle gets its first line.
func (s *Server) announce(ctx context.Context, firsts *logstore.Subscription) {
	for {
		if _, err := firsts.Next(ctx); err != nil {
			return
		}
		s.logger.Info("Trace output started",
			zap.String("view", s.viewURL()),
			zap.Uint64("cycle", s.store.Snapshot().Cycle),
		)
	}
}

func (s *Server) viewURL() string {
	host := s.config.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	_, port, err := net.SplitHostPort(s.httpLn.Addr().String())
	if err != nil {
		port = s.config.Server.Port
	}
	return "http://" + net.JoinHostPort(host, port) + "/logs"
}

// Close releases both sockets without waiting for in-flight requests
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.cancelBase()
	var errs []error
	if err := s.listener.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close datagram listener: %w", err))
	}
	if err := s.httpServer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close http server: %w", err))
	}
	if err := s.httpLn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = append(errs, fmt.Errorf("failed to close http listener: %w", err))
	}

	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
