package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"relist/internal/config"
	"relist/internal/logger"
	"relist/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	if cfg.KafkaBrokers == "" {
		logger.Fatal("KAFKA_BROKERS is required for the log-shipper worker")
	}

	// Initialize worker
	w := worker.New(cfg, logger)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
