package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"propfi/internal/categorize"
	"propfi/internal/core"
)

// LoadCategoryMemory returns the per-account overrides remembered for a
// property: prior predictions and any user corrections. Keyed by exact
// account name.
func (r *Repository) LoadCategoryMemory(ctx context.Context, propertyID string) (map[string]categorize.Override, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_name, predicted_bucket, confidence, corrected_bucket
		FROM category_memory
		WHERE property_id = ?`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("query category memory: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]categorize.Override)
	for rows.Next() {
		var name, predicted string
		var confidence float64
		var corrected sql.NullString
		if err := rows.Scan(&name, &predicted, &confidence, &corrected); err != nil {
			return nil, fmt.Errorf("scan category memory: %w", err)
		}

		o := categorize.Override{Bucket: core.Bucket(predicted), Confidence: confidence}
		if corrected.Valid && corrected.String != "" {
			o.Bucket = core.Bucket(corrected.String)
			o.Corrected = true
		}
		overrides[name] = o
	}
	return overrides, rows.Err()
}

// RecordAssignments remembers this run's predictions, bumping usage counts
// for accounts seen before. A stored user correction is never clobbered by
// a new prediction.
func (r *Repository) RecordAssignments(ctx context.Context, propertyID string, assignments []core.CategoryAssignment) error {
	for _, a := range assignments {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO category_memory (property_id, account_name, predicted_bucket, confidence)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (property_id, account_name) DO UPDATE SET
				predicted_bucket = excluded.predicted_bucket,
				confidence = excluded.confidence,
				usage_count = usage_count + 1,
				updated_at = CURRENT_TIMESTAMP`,
			propertyID, a.AccountName, string(a.Bucket), a.Confidence)
		if err != nil {
			return fmt.Errorf("record assignment for %q: %w", a.AccountName, err)
		}
	}

	slog.DebugContext(ctx, "Recorded category assignments",
		"property_id", propertyID,
		"count", len(assignments))
	return nil
}

// RecordCorrection stores a user-supplied bucket for an account name. The
// correction wins over rule predictions on every later run.
func (r *Repository) RecordCorrection(ctx context.Context, propertyID, accountName string, bucket core.Bucket) error {
	if !bucket.Valid() {
		return fmt.Errorf("unknown bucket %q", bucket)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO category_memory (property_id, account_name, predicted_bucket, confidence, corrected_bucket)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (property_id, account_name) DO UPDATE SET
			corrected_bucket = excluded.corrected_bucket,
			usage_count = usage_count + 1,
			updated_at = CURRENT_TIMESTAMP`,
		propertyID, accountName, string(core.BucketOther), categorize.FallbackConfidence, string(bucket))
	if err != nil {
		return fmt.Errorf("record correction for %q: %w", accountName, err)
	}

	slog.InfoContext(ctx, "Recorded category correction",
		"property_id", propertyID,
		"account", accountName,
		"bucket", string(bucket))
	return nil
}
