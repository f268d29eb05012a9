// Package service runs the prompt-to-SQL pipeline against a caller's database.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/sqlprompt/internal/core"
	"github.com/Annany2002/sqlprompt/internal/dialect"
	"github.com/Annany2002/sqlprompt/internal/domain"
	"github.com/Annany2002/sqlprompt/internal/logger"
	"github.com/Annany2002/sqlprompt/internal/metrics"
	"github.com/Annany2002/sqlprompt/internal/nl2sql"
	"github.com/Annany2002/sqlprompt/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// Options tunes the pipeline. Zero values fall back to defaults.
type Options struct {
	QueryTimeout     time.Duration
	FuzzyThreshold   int
	SchemaTableLimit int

	// SQLiteTargetDir confines sqlite targets to one directory. Empty disables them.
	SQLiteTargetDir string
	// DeniedPaths are files never opened as targets, such as the history database.
	DeniedPaths []string
}

// Service turns a prompt into SQL, runs it and records the outcome.
type Service struct {
	translator nl2sql.Translator
	historyDB  *sql.DB // nil disables history
	opts       Options
}

// New creates a Service. historyDB may be nil.
func New(translator nl2sql.Translator, historyDB *sql.DB, opts Options) *Service {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 60 * time.Second
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = core.DefaultMatchThreshold
	}
	if opts.SchemaTableLimit <= 0 {
		opts.SchemaTableLimit = 50
	}
	return &Service{translator: translator, historyDB: historyDB, opts: opts}
}

// Run executes the full pipeline for one prompt.
func (s *Service) Run(ctx context.Context, prompt string, conn domain.Connection) (*domain.Result, error) {
	start := time.Now()
	entry := &domain.HistoryEntry{
		Prompt:   prompt,
		Driver:   conn.Driver,
		Host:     conn.Host,
		Database: conn.Database,
	}
	if d, err := dialect.Lookup(conn.Driver); err == nil {
		entry.Driver = d.Name()
	}

	generatedSQL, result, err := s.run(ctx, prompt, conn)
	elapsed := time.Since(start)

	entry.SQL = generatedSQL
	entry.DurationMs = elapsed.Milliseconds()
	if err != nil {
		entry.Status = domain.HistoryStatusError
		entry.ErrorMessage = UserMessage(err)
		customLog.Warnf("Service: Run failed after %s: %v", elapsed, logger.Mask(err.Error()))
	} else {
		entry.Status = domain.HistoryStatusSuccess
		entry.RowsReturned = int64(len(result.Data))
		entry.RowsAffected = result.RowsAffected
		customLog.Printf("Service: Run succeeded in %s (%d rows)", elapsed, len(result.Data))
	}

	metrics.ObserveQuery(entry.Driver, entry.Status, elapsed)
	s.record(ctx, entry)
	return result, err
}

func (s *Service) run(ctx context.Context, prompt string, conn domain.Connection) (string, *domain.Result, error) {
	if strings.TrimSpace(prompt) == "" || conn.IsEmpty() {
		return "", nil, ErrMissingInput
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	d, targetDB, err := s.open(ctx, conn)
	if err != nil {
		return "", nil, err
	}
	defer targetDB.Close()

	actualTables, err := storage.ListTables(ctx, targetDB, d)
	if err != nil {
		return "", nil, err
	}

	requested, err := s.translator.ExtractTables(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranslate, err)
	}
	tables := s.resolveTables(requested, actualTables)

	schemaLines := make([]string, 0, len(tables))
	for _, table := range tables {
		columns, err := describe(ctx, targetDB, d, table, actualTables)
		if err != nil {
			return "", nil, err
		}
		schemaLines = append(schemaLines, storage.FormatSchemaLine(domain.TableSchema{Name: table, Columns: columns}))
	}

	generated, err := s.translator.GenerateSQL(ctx, nl2sql.SQLRequest{
		DialectLabel: d.Label(),
		Schema:       strings.Join(schemaLines, "\n"),
		Prompt:       prompt,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTranslate, err)
	}
	customLog.Printf("Service: Generated %s SQL: %s", d.Name(), generated.SQL)

	result, err := storage.Execute(ctx, targetDB, generated.SQL)
	if err != nil {
		return generated.SQL, nil, err
	}
	return generated.SQL, result, nil
}

// Inspect connects and describes the target's tables, up to the schema table limit.
func (s *Service) Inspect(ctx context.Context, conn domain.Connection) (string, []domain.TableSchema, error) {
	if conn.IsEmpty() {
		return "", nil, ErrMissingInput
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	d, targetDB, err := s.open(ctx, conn)
	if err != nil {
		return "", nil, err
	}
	defer targetDB.Close()

	actualTables, err := storage.ListTables(ctx, targetDB, d)
	if err != nil {
		return "", nil, err
	}
	if len(actualTables) > s.opts.SchemaTableLimit {
		actualTables = actualTables[:s.opts.SchemaTableLimit]
	}

	schemas := make([]domain.TableSchema, 0, len(actualTables))
	for _, table := range actualTables {
		columns, err := storage.DescribeTable(ctx, targetDB, d, table)
		if err != nil && !errors.Is(err, storage.ErrTableNotFound) {
			return "", nil, &SchemaError{Table: table, Err: err}
		}
		schemas = append(schemas, domain.TableSchema{Name: table, Columns: columns})
	}
	return d.Name(), schemas, nil
}

func (s *Service) open(ctx context.Context, conn domain.Connection) (dialect.Dialect, *sql.DB, error) {
	d, err := dialect.Lookup(conn.Driver)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := d.(dialect.SQLite); ok {
		path, err := dialect.ConfineSQLitePath(conn.Database, s.opts.SQLiteTargetDir, s.opts.DeniedPaths...)
		if err != nil {
			customLog.Warnf("Service: Rejected sqlite target '%s': %v", conn.Database, err)
			return nil, nil, err
		}
		conn.Database = path
	}
	dsn, err := d.BuildDSN(conn)
	if err != nil {
		return nil, nil, err
	}
	targetDB, err := storage.ConnectTarget(ctx, d, dsn)
	if err != nil {
		return nil, nil, err
	}
	return d, targetDB, nil
}

// resolveTables maps model-extracted names onto actual tables.
// With nothing extracted the whole database (up to the limit) is described.
func (s *Service) resolveTables(requested, actual []string) []string {
	if len(requested) == 0 {
		customLog.Println("Service: No tables extracted from prompt; describing all tables.")
		if len(actual) > s.opts.SchemaTableLimit {
			return actual[:s.opts.SchemaTableLimit]
		}
		return actual
	}

	seen := make(map[string]bool)
	resolved := make([]string, 0, len(requested))
	for _, name := range requested {
		corrected := core.CorrectTableName(name, actual, s.opts.FuzzyThreshold)
		if corrected != name {
			customLog.Printf("Service: Corrected table name '%s' -> '%s'", name, corrected)
			if !strings.EqualFold(corrected, name) {
				metrics.TableCorrected()
			}
		}
		key := strings.ToLower(corrected)
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, corrected)
		if len(resolved) == s.opts.SchemaTableLimit {
			break
		}
	}
	return resolved
}

func describe(ctx context.Context, targetDB *sql.DB, d dialect.Dialect, table string, actualTables []string) ([]domain.ColumnInfo, error) {
	known := false
	for _, actual := range actualTables {
		if actual == table {
			known = true
			break
		}
	}
	if !known {
		if !core.IsValidIdentifier(table) {
			return nil, &SchemaError{Table: table, Err: ErrInvalidTableName}
		}
		return nil, &SchemaError{Table: table, Err: storage.ErrTableNotFound}
	}
	columns, err := storage.DescribeTable(ctx, targetDB, d, table)
	if err != nil {
		return nil, &SchemaError{Table: table, Err: err}
	}
	return columns, nil
}

func (s *Service) record(ctx context.Context, entry *domain.HistoryEntry) {
	if s.historyDB == nil {
		return
	}
	// History must be written even when the request context was cancelled.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := storage.InsertHistory(ctx, s.historyDB, entry); err != nil {
		customLog.Warnf("Service: Failed to record history: %v", err)
	}
}
