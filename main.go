package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobtracker_server/config"
	"jobtracker_server/internal/bootstrap"
	"jobtracker_server/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	mode := flag.String("mode", "api", "Run mode: api, sync")
	maxMessages := flag.Int("max", 0, "sync mode: number of recent messages to list (0 = SYNC_MAX_MESSAGES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "jobtracker",
		Console: cfg.IsDevelopment(),
	})

	switch *mode {
	case "api":
		runAPI(cfg)
	case "sync":
		runSync(cfg, *maxMessages)
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	// Graceful shutdown with timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down: %v", err)
			return
		}
		logger.Info("API server shut down gracefully")
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Error("Failed to start server: %v", err)
	}
}

func runSync(cfg *config.Config, maxMessages int) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunSync(ctx, cfg, maxMessages, os.Stdout); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
