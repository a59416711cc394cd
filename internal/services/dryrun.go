package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfi/internal/core"
	"propfi/internal/log"
)

// AccountPreview is the would-be persisted state of one account.
type AccountPreview struct {
	Name       string  `json:"name"`
	Bucket     string  `json:"bucket"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// FactPreview is the would-be persisted state of one monthly fact. Amount
// is the decimal rendered as a string, null when the cell had no amount.
type FactPreview struct {
	AccountName string  `json:"account_name"`
	Period      string  `json:"period"`
	Amount      *string `json:"amount"`
	AmountRaw   string  `json:"amount_raw"`
}

// DryRunReport mirrors the shape a real run would persist, plus a
// total-amount rollup, without touching the database.
type DryRunReport struct {
	RunID               string              `json:"run_id"`
	PropertyID          string              `json:"property_id"`
	Stats               core.NormalizeStats `json:"stats"`
	Accounts            []AccountPreview    `json:"accounts"`
	MonthlyData         []FactPreview       `json:"monthly_data"`
	AccountsUpserted    int                 `json:"accounts_upserted"`
	MonthlyDataUpserted int                 `json:"monthly_data_upserted"`
	Errors              []string            `json:"errors"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	ArtifactPath        string              `json:"-"`
}

// DryRun executes the normalize and categorize stages and assembles the
// persistence-equivalent result as an inspectable JSON artifact. Nothing
// is written to the database.
func (s *IngestionService) DryRun(ctx context.Context, propertyID string, buf []byte) (*DryRunReport, error) {
	runID := uuid.NewString()

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire ingestion slot: %w", err)
	}
	defer s.slots.Release(1)

	norm, assignments, err := s.prepare(ctx, propertyID, buf)
	if err != nil {
		return nil, err
	}

	report := &DryRunReport{
		RunID:      runID,
		PropertyID: propertyID,
		Stats:      norm.Stats,
		Errors:     []string{},
	}

	for _, a := range assignments {
		report.Accounts = append(report.Accounts, AccountPreview{
			Name:       a.AccountName,
			Bucket:     string(a.Bucket),
			Confidence: a.Confidence,
			Reasoning:  a.Reasoning,
		})
	}

	total := decimal.Zero
	for _, rec := range norm.Rows {
		fact := FactPreview{
			AccountName: rec.AccountName,
			Period:      rec.Period.String(),
			AmountRaw:   rec.AmountRaw,
		}
		if rec.Amount.Valid {
			amount := rec.Amount.Decimal.String()
			fact.Amount = &amount
			total = total.Add(rec.Amount.Decimal)
		}
		report.MonthlyData = append(report.MonthlyData, fact)
	}
	report.TotalAmount = total
	report.AccountsUpserted = len(report.Accounts)
	report.MonthlyDataUpserted = len(report.MonthlyData)

	path, err := s.writeArtifact(report)
	if err != nil {
		return nil, err
	}
	report.ArtifactPath = path

	s.logger.InfoContext(ctx, "Dry run finished",
		log.FieldRunID, runID,
		log.FieldPropertyID, propertyID,
		log.FieldOperation, log.OpDryRun,
		log.FieldAccounts, len(report.Accounts),
		log.FieldParsedRows, norm.Stats.ParsedRows,
		log.FieldArtifact, path)

	return report, nil
}

func (s *IngestionService) writeArtifact(report *DryRunReport) (string, error) {
	if err := os.MkdirAll(s.dryRunDir, 0755); err != nil {
		return "", fmt.Errorf("create dry run directory: %w", err)
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dry run report: %w", err)
	}

	path := filepath.Join(s.dryRunDir, "dryrun-"+report.RunID+".json")
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("write dry run artifact: %w", err)
	}
	return path, nil
}
