// internal/storage/target_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Annany2002/sqlprompt/internal/core"
	"github.com/Annany2002/sqlprompt/internal/dialect"
	"github.com/Annany2002/sqlprompt/internal/domain"
	"github.com/Annany2002/sqlprompt/internal/logger"
)

// Specific errors for target DB operations
var (
	ErrTargetUnavailable = errors.New("database connection failed")
	ErrTableNotFound     = errors.New("table not found")
	ErrQueryFailed       = errors.New("query failed")
)

// --- Target DB Connection ---

// ConnectTarget opens and pings a connection to the caller's database.
// The caller is responsible for closing the connection.
func ConnectTarget(ctx context.Context, d dialect.Dialect, dsn string) (*sql.DB, error) {
	customLog.Printf("Storage: Opening %s target: %s", d.Name(), logger.Mask(dsn))
	targetDB, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		customLog.Warnf("Storage: Failed to open %s target: %v", d.Name(), err)
		return nil, fmt.Errorf("%w: %v", ErrTargetUnavailable, err)
	}
	// One request, one short-lived pool.
	targetDB.SetMaxOpenConns(2)
	targetDB.SetMaxIdleConns(1)

	if err = targetDB.PingContext(ctx); err != nil {
		targetDB.Close()
		customLog.Warnf("Storage: Failed to ping %s target: %v", d.Name(), logger.Mask(err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrTargetUnavailable, err)
	}
	return targetDB, nil
}

// --- Target DB Schema Operations ---

// ListTables returns the table names of the connected database.
func ListTables(ctx context.Context, targetDB *sql.DB, d dialect.Dialect) ([]string, error) {
	rows, err := targetDB.QueryContext(ctx, d.ListTablesQuery())
	if err != nil {
		customLog.Warnf("Storage: Error listing tables: %v", err)
		return nil, fmt.Errorf("database error listing tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			customLog.Warnf("Storage: Error scanning table name: %v", err)
			return nil, fmt.Errorf("failed processing table list: %w", err)
		}
		tables = append(tables, name)
	}
	if err = rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating table list: %v", err)
		return nil, fmt.Errorf("failed reading table list: %w", err)
	}
	return tables, nil
}

// DescribeTable returns the columns of one table in ordinal order.
// A table with no columns is reported as ErrTableNotFound.
func DescribeTable(ctx context.Context, targetDB *sql.DB, d dialect.Dialect, tableName string) ([]domain.ColumnInfo, error) {
	rows, err := targetDB.QueryContext(ctx, d.ColumnsQuery(), tableName)
	if err != nil {
		customLog.Warnf("Storage: Error getting column info for table %s: %v", tableName, err)
		return nil, fmt.Errorf("database error getting column info: %w", err)
	}
	defer rows.Close()

	var columns []domain.ColumnInfo
	for rows.Next() {
		var col domain.ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			customLog.Warnf("Storage: Error scanning column info: %v", err)
			return nil, fmt.Errorf("failed processing column info: %w", err)
		}
		columns = append(columns, col)
	}
	if err = rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating column info: %v", err)
		return nil, fmt.Errorf("failed reading column info: %w", err)
	}
	if len(columns) == 0 {
		return nil, ErrTableNotFound
	}
	return columns, nil
}

// FormatSchemaLine renders a table as "name(col type, col type)" for model prompts.
func FormatSchemaLine(table domain.TableSchema) string {
	parts := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		parts = append(parts, strings.TrimSpace(col.Name+" "+col.Type))
	}
	return fmt.Sprintf("%s(%s)", table.Name, strings.Join(parts, ", "))
}

// --- Statement Execution ---

// Execute runs one statement inside a transaction.
// Row-returning statements fill Columns/Data; anything else reports rows affected.
func Execute(ctx context.Context, targetDB *sql.DB, statement string) (*domain.Result, error) {
	tx, err := targetDB.BeginTx(ctx, nil)
	if err != nil {
		customLog.Warnf("Storage: Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result := &domain.Result{SQL: statement}
	if core.ReturnsRows(statement) {
		columns, data, err := queryRows(ctx, tx, statement)
		if err != nil {
			return nil, err
		}
		result.Columns = columns
		result.Data = data
	} else {
		res, err := tx.ExecContext(ctx, statement)
		if err != nil {
			customLog.Warnf("Storage: Failed statement: %v\nSQL: %s", err, statement)
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			customLog.Warnf("Storage: Failed getting RowsAffected: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		result.RowsAffected = affected
		result.Message = fmt.Sprintf("%d rows affected.", affected)
	}

	if err := tx.Commit(); err != nil {
		customLog.Warnf("Storage: Failed to commit: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return result, nil
}

func queryRows(ctx context.Context, tx *sql.Tx, statement string) ([]string, []map[string]any, error) {
	rows, err := tx.QueryContext(ctx, statement)
	if err != nil {
		customLog.Warnf("Storage: Failed query: %v\nSQL: %s", err, statement)
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed processing results: %w", err)
	}
	columns = uniqueColumns(columns)
	numColumns := len(columns)
	results := make([]map[string]any, 0)

	for rows.Next() {
		scanArgs := make([]any, numColumns)
		values := make([]any, numColumns)
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("failed reading row data: %w", err)
		}

		rowData := make(map[string]any, numColumns)
		for i, colName := range columns {
			rowData[colName] = normalizeValue(values[i])
		}
		results = append(results, rowData)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return columns, results, nil
}

// uniqueColumns renames repeated result columns (id, id_2, ...) so no value
// is lost when rows are keyed by column name.
func uniqueColumns(columns []string) []string {
	original := make(map[string]bool, len(columns))
	for _, name := range columns {
		original[name] = true
	}
	used := make(map[string]bool, len(columns))
	out := make([]string, len(columns))
	for i, name := range columns {
		candidate := name
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
			if original[candidate] {
				candidate = name
			}
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// normalizeValue converts driver values into JSON-friendly ones.
func normalizeValue(raw any) any {
	switch v := raw.(type) {
	case []byte:
		return string(v)
	case [16]byte:
		return uuid.UUID(v).String()
	default:
		return v
	}
}
