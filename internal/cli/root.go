// Package cli wires the ingestion pipeline into the propfi command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"propfi/internal/amqp"
	"propfi/internal/config"
	"propfi/internal/core"
	"propfi/internal/log"
	"propfi/internal/schema"
	"propfi/internal/services"
	"propfi/internal/storage"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "propfi",
		Short: "Ingest property cash-flow statements into time-series facts",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newIngestCommand())
	rootCmd.AddCommand(newDryRunCommand())
	rootCmd.AddCommand(newCategorizeCommand())
	rootCmd.AddCommand(newCorrectCommand())
	rootCmd.AddCommand(newEnqueueCommand())

	return rootCmd
}

// app bundles the wired pipeline for one command invocation.
type app struct {
	cfg     *config.Config
	repo    *storage.Repository
	events  *amqp.Client
	service *services.IngestionService
	logger  *log.Logger
}

// newApp loads configuration and opens the repository. withEvents controls
// whether the AMQP client is dialed; commands that only read or preview
// skip it. Callers must Close.
func newApp(withEvents bool) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(log.ParseLevel(os.Getenv("LOG_LEVEL")), log.ComponentCLI)
	log.SetDefault(logger)

	repo, err := storage.Open(cfg.SQLiteDBPath, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	var events *amqp.Client
	if withEvents && cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPJobQueue)
		if err != nil {
			// Events are best-effort; ingestion works without a broker.
			logger.Warn("AMQP unavailable, continuing without events", log.FieldError, err)
			events = nil
		}
	}

	a := &app{
		cfg:    cfg,
		repo:   repo,
		events: events,
		logger: logger,
	}
	a.service = services.NewIngestionService(repo, events, schemaFromConfig(cfg), cfg.DBMaxConns, cfg.DryRunDir, logger)
	return a, nil
}

func (a *app) Close() {
	if a.events != nil {
		a.events.Close()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// schemaFromConfig builds the declared 12-month period schema. An invalid
// start was already rejected by config validation.
func schemaFromConfig(cfg *config.Config) schema.Schema {
	start, err := core.ParsePeriod(cfg.PeriodSchemaStart)
	if err != nil {
		return schema.Default()
	}
	return schema.ForYearStarting(start)
}
