// internal/storage/database.go
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/sqlprompt/config"
	"github.com/Annany2002/sqlprompt/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// ConnectHistoryDB initializes the connection pool for the history SQLite database
// and ensures the 'query_history' table exists.
func ConnectHistoryDB(cfg *config.Config) (*sql.DB, error) {
	dbPath := filepath.Join(cfg.HistoryDbDir, cfg.HistoryDbFile)
	customLog.Printf("Storage: Initializing history database: %s", dbPath)

	if err := os.MkdirAll(cfg.HistoryDbDir, 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.HistoryDbDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode and a 5s busy timeout so concurrent requests can record history
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		customLog.Warnf("Storage: Failed to open history db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping history db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to history db: %w", err)
	}
	customLog.Println("Storage: History database connection successful.")

	createHistoryTableSQL := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY NOT NULL,
		prompt TEXT NOT NULL,
		driver TEXT NOT NULL,
		host TEXT NOT NULL DEFAULT '',
		database_name TEXT NOT NULL DEFAULT '',
		generated_sql TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		rows_returned INTEGER NOT NULL DEFAULT 0,
		rows_affected INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);`
	if _, err = db.Exec(createHistoryTableSQL); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to create query_history table: %v", err)
		return nil, fmt.Errorf("failed to ensure query_history table: %w", err)
	}

	createIndexSQL := `CREATE INDEX IF NOT EXISTS idx_query_history_created_at ON query_history (created_at);`
	if _, err = db.Exec(createIndexSQL); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to create query_history index: %v", err)
		return nil, fmt.Errorf("failed to ensure query_history index: %w", err)
	}
	customLog.Println("Storage: Query history table ensured.")

	return db, nil
}
