package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldPropertyID = "property_id"
	FieldOperation  = "operation"
	FieldError      = "error"

	FieldTotalRows    = "total_rows"
	FieldDroppedRows  = "dropped_section_rows"
	FieldParsedRows   = "parsed_rows"
	FieldInvalidCells = "invalid_currency_cells"
	FieldAccounts     = "accounts"
	FieldFacts        = "monthly_data_upserted"
	FieldRowErrors    = "row_errors"
	FieldBucket       = "bucket"
	FieldConfidence   = "confidence"
	FieldPeriod       = "period"
	FieldArtifact     = "artifact"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentPipeline   = "pipeline"
	ComponentCategorize = "categorize"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentCLI        = "cli"
)

// Operations defines standard operation names
const (
	OpNormalize  = "normalize"
	OpCategorize = "categorize"
	OpUpsert     = "upsert"
	OpDryRun     = "dry_run"
	OpCorrect    = "correct"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
