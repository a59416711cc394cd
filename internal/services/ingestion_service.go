// Package services orchestrates the ingestion pipeline: normalize the raw
// buffer, categorize the distinct account names, persist or preview the
// result. One call is one sequential unit of work.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"propfi/internal/amqp"
	"propfi/internal/categorize"
	"propfi/internal/core"
	"propfi/internal/ingest"
	"propfi/internal/log"
	"propfi/internal/schema"
	"propfi/internal/storage"
)

// IngestReport is what an ingestion run hands back to the caller.
type IngestReport struct {
	RunID       string
	PropertyID  string
	Stats       core.NormalizeStats
	Assignments []core.CategoryAssignment
	Result      core.IngestionResult
}

// IngestionService runs the pipeline against one repository. The slot
// semaphore bounds concurrent runs to the database pool size; acquisition
// is scoped with a guaranteed release on every exit path.
type IngestionService struct {
	repo      *storage.Repository
	events    *amqp.Client
	schema    schema.Schema
	rules     []categorize.Rule
	slots     *semaphore.Weighted
	dryRunDir string
	logger    *log.Logger
}

// NewIngestionService wires the pipeline. events may be nil to disable
// messaging. maxRuns should match the database pool size.
func NewIngestionService(repo *storage.Repository, events *amqp.Client, sch schema.Schema, maxRuns int, dryRunDir string, logger *log.Logger) *IngestionService {
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &IngestionService{
		repo:      repo,
		events:    events,
		schema:    sch,
		rules:     categorize.DefaultRules(),
		slots:     semaphore.NewWeighted(int64(maxRuns)),
		dryRunDir: dryRunDir,
		logger:    logger.WithComponent(log.ComponentPipeline),
	}
}

// Ingest normalizes, categorizes and persists one statement buffer for a
// property. Schema errors surface before any database work; transaction
// errors mean nothing was written. Row-level soft failures ride along in
// the returned result.
func (s *IngestionService) Ingest(ctx context.Context, propertyID string, buf []byte) (*IngestReport, error) {
	runID := uuid.NewString()

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire ingestion slot: %w", err)
	}
	defer s.slots.Release(1)

	s.logger.InfoContext(ctx, "Starting ingestion run",
		log.FieldRunID, runID,
		log.FieldPropertyID, propertyID,
		log.FieldOperation, log.OpUpsert,
		"bytes", len(buf))

	norm, assignments, err := s.prepare(ctx, propertyID, buf)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.UpsertIngestion(ctx, propertyID, norm.Rows, assignments)
	if err != nil {
		return nil, err
	}

	// Learning memory and events are best-effort: the run is committed.
	if err := s.repo.RecordAssignments(ctx, propertyID, assignments); err != nil {
		s.logger.WarnContext(ctx, "Failed to record category assignments",
			log.FieldRunID, runID,
			log.FieldError, err)
	}
	s.publishCompleted(ctx, runID, propertyID, result)

	s.logger.InfoContext(ctx, "Ingestion run finished",
		log.FieldRunID, runID,
		log.FieldPropertyID, propertyID,
		log.FieldAccounts, result.AccountsUpserted,
		log.FieldFacts, result.MonthlyDataUpserted,
		log.FieldRowErrors, len(result.Errors))

	return &IngestReport{
		RunID:       runID,
		PropertyID:  propertyID,
		Stats:       norm.Stats,
		Assignments: assignments,
		Result:      *result,
	}, nil
}

// Correct records a user-supplied bucket for an account name; every later
// run for the property replays it ahead of the keyword rules.
func (s *IngestionService) Correct(ctx context.Context, propertyID, accountName string, bucket core.Bucket) error {
	if !bucket.Valid() {
		return fmt.Errorf("unknown bucket %q", bucket)
	}
	return s.repo.RecordCorrection(ctx, propertyID, accountName, bucket)
}

// prepare runs the write-free front half of the pipeline shared by Ingest
// and DryRun.
func (s *IngestionService) prepare(ctx context.Context, propertyID string, buf []byte) (*ingest.Result, []core.CategoryAssignment, error) {
	norm, err := ingest.NewNormalizer(s.schema).Normalize(ctx, buf)
	if err != nil {
		return nil, nil, err
	}

	overrides, err := s.repo.LoadCategoryMemory(ctx, propertyID)
	if err != nil {
		// Memory only sharpens confidence; rules alone are still correct.
		s.logger.WarnContext(ctx, "Failed to load category memory",
			log.FieldPropertyID, propertyID,
			log.FieldError, err)
		overrides = nil
	}

	assignments := categorize.New(s.rules).WithOverrides(overrides).AssignAll(norm.Stats.AccountNames)
	return norm, assignments, nil
}

func (s *IngestionService) publishCompleted(ctx context.Context, runID, propertyID string, result *core.IngestionResult) {
	if s.events == nil {
		return
	}
	msg := amqp.NewIngestionCompletedMessage(runID, propertyID, result.AccountsUpserted, result.MonthlyDataUpserted)
	if err := s.events.PublishIngestionCompleted(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ingestion completed event",
			log.FieldRunID, runID,
			log.FieldError, err)
	}
}
