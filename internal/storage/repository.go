// Package storage persists accounts and monthly facts in SQLite. The
// upsert path runs as one transaction per ingestion and relies on the
// uniqueness constraints on (property_id, name) and (account_id, period)
// to make re-ingestion idempotent.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"propfi/internal/core"

	_ "modernc.org/sqlite"
)

// periodLayout is how fact periods are stored, first-of-month.
const periodLayout = "2006-01-02"

// Repository wraps the SQLite handle shared by all pipeline stages.
type Repository struct {
	db *sql.DB
}

// Open creates the database file if needed, runs migrations and bounds the
// connection pool. maxConns is the shared pool size from configuration.
func Open(dbPath string, maxConns int) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AccountsForProperty returns every account of a property ordered by name.
func (r *Repository) AccountsForProperty(ctx context.Context, propertyID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, property_id, name, bucket, confidence, created_at
		FROM accounts
		WHERE property_id = ?
		ORDER BY name`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var bucket string
		if err := rows.Scan(&a.ID, &a.PropertyID, &a.Name, &bucket, &a.Confidence, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Bucket = core.Bucket(bucket)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// FactsForAccount returns an account's monthly facts ordered by period.
func (r *Repository) FactsForAccount(ctx context.Context, propertyID, accountName string) ([]core.MonthlyFact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.account_id, f.period, f.amount, f.amount_raw, f.updated_at
		FROM monthly_facts f
		JOIN accounts a ON a.id = f.account_id
		WHERE a.property_id = ? AND a.name = ?
		ORDER BY f.period`, propertyID, accountName)
	if err != nil {
		return nil, fmt.Errorf("query monthly facts: %w", err)
	}
	defer rows.Close()

	var facts []core.MonthlyFact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func scanFact(rows *sql.Rows) (core.MonthlyFact, error) {
	var f core.MonthlyFact
	var period string
	var amount sql.NullString
	if err := rows.Scan(&f.ID, &f.AccountID, &period, &amount, &f.AmountRaw, &f.UpdatedAt); err != nil {
		return core.MonthlyFact{}, fmt.Errorf("scan monthly fact: %w", err)
	}

	t, err := time.Parse(periodLayout, period)
	if err != nil {
		return core.MonthlyFact{}, fmt.Errorf("parse fact period %q: %w", period, err)
	}
	f.Period = core.NewPeriod(t.Year(), t.Month())

	if amount.Valid {
		d, err := decimal.NewFromString(amount.String)
		if err != nil {
			return core.MonthlyFact{}, fmt.Errorf("parse fact amount %q: %w", amount.String, err)
		}
		f.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return f, nil
}
