package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"propfi/internal/amqp"
	"propfi/internal/config"
	"propfi/internal/core"
	"propfi/internal/log"
	"propfi/internal/schema"
	"propfi/internal/services"
	"propfi/internal/storage"
	"propfi/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.ParseLevel(os.Getenv("LOG_LEVEL")), log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting ingest-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath, cfg.DBMaxConns)
	if err != nil {
		logger.Error("Failed to open repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPJobQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	sch := schema.Default()
	if start, err := core.ParsePeriod(cfg.PeriodSchemaStart); err == nil {
		sch = schema.ForYearStarting(start)
	}

	service := services.NewIngestionService(repo, amqpClient, sch, cfg.DBMaxConns, cfg.DryRunDir, logger)
	ingestWorker := worker.NewIngestWorker(service, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := amqpClient.ConsumeIngestionJobs(ctx, ingestWorker.HandleJob); err != nil && err != context.Canceled {
		logger.Error("Job consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
