package rulestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitbound/bitbound-core/internal/event"
)

// Repository defines the interface for rule declaration persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	Save(ctx context.Context, record RuleRecord) error
	Get(ctx context.Context, id event.RuleID) (*RuleRecord, error)
	List(ctx context.Context) ([]RuleRecord, error)
	ListByDevice(ctx context.Context, deviceID string) ([]RuleRecord, error)
	Delete(ctx context.Context, id event.RuleID) error
	DeleteByDevice(ctx context.Context, deviceID string) (int, error)
}

// ruleColumns is the SELECT column list for rule queries.
const ruleColumns = `id, kind, device_id, expression, property, period_ms, debounce_ms, created_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema creates the rules table if it does not exist.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS rules (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			device_id   TEXT NOT NULL,
			expression  TEXT NOT NULL DEFAULT '',
			property    TEXT NOT NULL DEFAULT '',
			period_ms   INTEGER NOT NULL DEFAULT 0,
			debounce_ms INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rules_device_id ON rules(device_id);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating rules schema: %w", err)
	}
	return nil
}

// Save inserts a new rule declaration.
func (r *SQLiteRepository) Save(ctx context.Context, record RuleRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO rules (id, kind, device_id, expression, property, period_ms, debounce_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		string(record.ID),
		string(record.Kind),
		record.DeviceID,
		record.Expression,
		record.Property,
		record.Period.Milliseconds(),
		record.Debounce.Milliseconds(),
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrExists, record.ID)
		}
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

// Get retrieves a rule declaration by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id event.RuleID) (*RuleRecord, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE id = ?`

	record, err := scanRule(r.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying rule by id: %w", err)
	}
	return record, nil
}

// List retrieves all rule declarations ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context) ([]RuleRecord, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules ORDER BY created_at, id`
	return r.queryRules(ctx, query)
}

// ListByDevice retrieves all rule declarations for a specific device.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string) ([]RuleRecord, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE device_id = ? ORDER BY created_at, id`
	return r.queryRules(ctx, query, deviceID)
}

// Delete removes a rule declaration by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id event.RuleID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteByDevice removes all declarations for a device and returns the
// number of rows removed.
func (r *SQLiteRepository) DeleteByDevice(ctx context.Context, deviceID string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rules WHERE device_id = ?", deviceID)
	if err != nil {
		return 0, fmt.Errorf("deleting device rules: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// queryRules executes a multi-row rule query.
func (r *SQLiteRepository) queryRules(ctx context.Context, query string, args ...any) ([]RuleRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []RuleRecord
	for rows.Next() {
		record, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rule rows: %w", err)
	}
	return records, nil
}

// scanner abstracts sql.Row and sql.Rows for scanRule.
type scanner interface {
	Scan(dest ...any) error
}

// scanRule reads one rule row.
func scanRule(s scanner) (*RuleRecord, error) {
	var (
		record     RuleRecord
		id, kind   string
		periodMS   int64
		debounceMS int64
		createdAt  string
	)

	err := s.Scan(
		&id,
		&kind,
		&record.DeviceID,
		&record.Expression,
		&record.Property,
		&periodMS,
		&debounceMS,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.ID = event.RuleID(id)
	record.Kind = event.RuleKind(kind)
	record.Period = time.Duration(periodMS) * time.Millisecond
	record.Debounce = time.Duration(debounceMS) * time.Millisecond

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	record.CreatedAt = ts

	return &record, nil
}

// isUniqueConstraintError reports whether the error is a SQLite unique
// constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
