// Package worker consumes ingestion jobs from the queue and runs them
// through the pipeline.
package worker

import (
	"context"
	"fmt"
	"os"

	"propfi/internal/amqp"
	"propfi/internal/core"
	"propfi/internal/log"
	"propfi/internal/services"
)

// IngestWorker handles queued ingestion jobs.
type IngestWorker struct {
	service *services.IngestionService
	logger  *log.Logger
}

// NewIngestWorker creates a worker backed by the given service.
func NewIngestWorker(service *services.IngestionService, logger *log.Logger) *IngestWorker {
	return &IngestWorker{
		service: service,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleJob processes a single ingestion job message. Schema errors are
// permanent for the file, so they are logged and swallowed rather than
// returned; returning an error would requeue a poison message forever.
func (w *IngestWorker) HandleJob(ctx context.Context, msg *amqp.IngestionJobMessage) error {
	w.logger.InfoContext(ctx, "Processing ingestion job",
		log.FieldRunID, msg.RunID,
		log.FieldPropertyID, msg.PropertyID,
		"path", msg.Path)

	buf, err := os.ReadFile(msg.Path)
	if err != nil {
		return fmt.Errorf("read statement file: %w", err)
	}

	report, err := w.service.Ingest(ctx, msg.PropertyID, buf)
	if err != nil {
		if core.IsSchemaError(err) {
			w.logger.ErrorContext(ctx, "Rejecting job with invalid schema",
				log.FieldRunID, msg.RunID,
				log.FieldPropertyID, msg.PropertyID,
				log.FieldError, err)
			return nil
		}
		return fmt.Errorf("ingest %s: %w", msg.Path, err)
	}

	w.logger.InfoContext(ctx, "Ingestion job finished",
		log.FieldRunID, report.RunID,
		log.FieldPropertyID, msg.PropertyID,
		log.FieldAccounts, report.Result.AccountsUpserted,
		log.FieldFacts, report.Result.MonthlyDataUpserted,
		log.FieldRowErrors, len(report.Result.Errors))

	return nil
}
