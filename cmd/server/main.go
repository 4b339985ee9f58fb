package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/TraceStream/backend/internal/server"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Parse flags (override env vars)
	port := flag.String("port", cfg.Server.Port, "HTTP view port")
	udpPort := flag.Int("udp-port", cfg.Ingress.Port, "UDP port trace lines are received on")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	tailStdout := flag.Bool("tail", cfg.View.TailStdout, "Print incoming lines to stdout")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Ingress.Port = *udpPort
	cfg.Logging.Development = *dev
	cfg.View.TailStdout = *tailStdout
	if cfg.Logging.Development && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create server; a taken UDP port ends the process here
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
