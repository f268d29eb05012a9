// internal/storage/history_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/sqlprompt/internal/core"
	"github.com/Annany2002/sqlprompt/internal/domain"
)

var (
	ErrHistoryNotFound = errors.New("history entry not found")
)

const historyColumns = `id, prompt, driver, host, database_name, generated_sql, status,
	error_message, rows_returned, rows_affected, duration_ms, created_at`

// InsertHistory records one query run. ID and CreatedAt are filled in when empty.
func InsertHistory(ctx context.Context, db *sql.DB, entry *domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	sqlStatement := `INSERT INTO query_history (` + historyColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement,
		entry.ID, entry.Prompt, entry.Driver, entry.Host, entry.Database, entry.SQL, entry.Status,
		entry.ErrorMessage, entry.RowsReturned, entry.RowsAffected, entry.DurationMs, entry.CreatedAt,
	)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert history entry %s: %v", entry.ID, err)
		return fmt.Errorf("database error recording history: %w", err)
	}
	return nil
}

// ListHistory returns entries ordered by creation time, filtered and paginated by opts.
func ListHistory(ctx context.Context, db *sql.DB, opts *core.ListQueryOptions) ([]domain.HistoryEntry, error) {
	var whereClauses []string
	var args []any
	if opts.Status != "" {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, opts.Status)
	}

	query := "SELECT " + historyColumns + " FROM query_history"
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	order := "DESC"
	if opts.SortOrder == "asc" {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY created_at %s, id %s LIMIT ? OFFSET ?", order, order)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed listing history: %v", err)
		return nil, fmt.Errorf("database error listing history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading history: %w", err)
	}
	return entries, nil
}

// GetHistory returns a single entry or ErrHistoryNotFound.
func GetHistory(ctx context.Context, db *sql.DB, id string) (*domain.HistoryEntry, error) {
	row := db.QueryRowContext(ctx, "SELECT "+historyColumns+" FROM query_history WHERE id = ? LIMIT 1", id)
	entry, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// DeleteHistory removes a single entry or returns ErrHistoryNotFound.
func DeleteHistory(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM query_history WHERE id = ?", id)
	if err != nil {
		customLog.Warnf("Storage: Failed DELETE history %s: %v", id, err)
		return fmt.Errorf("database error during delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming delete: %w", err)
	}
	if rowsAffected == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	err := row.Scan(&entry.ID, &entry.Prompt, &entry.Driver, &entry.Host, &entry.Database, &entry.SQL,
		&entry.Status, &entry.ErrorMessage, &entry.RowsReturned, &entry.RowsAffected, &entry.DurationMs, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		customLog.Warnf("Storage: Failed scanning history row: %v", err)
		return nil, fmt.Errorf("failed reading history entry: %w", err)
	}
	return &entry, nil
}
