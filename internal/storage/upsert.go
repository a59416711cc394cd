package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"propfi/internal/core"
)

// UpsertIngestion persists one ingestion run as a single transaction.
//
// Accounts are inserted if absent; only real inserts count towards
// AccountsUpserted. Facts are upserted on (account_id, period); every
// successful insert or overwrite counts towards MonthlyDataUpserted.
// A record whose account cannot be resolved is a row-level soft failure
// appended to Errors and does not abort the run. Any database failure
// rolls the whole transaction back and surfaces as a TransactionError;
// no partial writes survive.
func (r *Repository) UpsertIngestion(ctx context.Context, propertyID string, records []core.NormalizedRecord, assignments []core.CategoryAssignment) (*core.IngestionResult, error) {
	result := &core.IngestionResult{Errors: []string{}}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &core.TransactionError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	for _, a := range assignments {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (property_id, name, bucket, confidence)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (property_id, name) DO NOTHING`,
			propertyID, a.AccountName, string(a.Bucket), a.Confidence)
		if err != nil {
			return nil, &core.TransactionError{Op: "insert account", Err: err}
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return nil, &core.TransactionError{Op: "insert account", Err: err}
		}
		result.AccountsUpserted += int(inserted)
	}

	ids, err := resolveAccountIDs(ctx, tx, propertyID)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		accountID, ok := ids[rec.AccountName]
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("no account id for %q (period %s)", rec.AccountName, rec.Period))
			continue
		}

		var amount any
		if rec.Amount.Valid {
			amount = rec.Amount.Decimal.String()
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO monthly_facts (account_id, period, amount, amount_raw, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (account_id, period) DO UPDATE SET
				amount = excluded.amount,
				amount_raw = excluded.amount_raw,
				updated_at = CURRENT_TIMESTAMP`,
			accountID, rec.Period.FirstOfMonth().Format(periodLayout), amount, rec.AmountRaw)
		if err != nil {
			return nil, &core.TransactionError{Op: "upsert monthly fact", Err: err}
		}
		result.MonthlyDataUpserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, &core.TransactionError{Op: "commit", Err: err}
	}

	slog.InfoContext(ctx, "Ingestion run committed",
		"property_id", propertyID,
		"accounts_upserted", result.AccountsUpserted,
		"monthly_data_upserted", result.MonthlyDataUpserted,
		"row_errors", len(result.Errors))

	return result, nil
}

// resolveAccountIDs maps every account name of a property to its id inside
// the running transaction, so facts see accounts inserted moments ago.
func resolveAccountIDs(ctx context.Context, tx queryer, propertyID string) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM accounts WHERE property_id = ?`, propertyID)
	if err != nil {
		return nil, &core.TransactionError{Op: "resolve accounts", Err: err}
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, &core.TransactionError{Op: "resolve accounts", Err: err}
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, &core.TransactionError{Op: "resolve accounts", Err: err}
	}
	return ids, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
