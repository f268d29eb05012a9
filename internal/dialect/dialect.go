// Package dialect knows how to reach and introspect each supported target database.
package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Annany2002/sqlprompt/internal/domain"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidConnection = errors.New("invalid connection")
)

// Dialect describes one target database family.
type Dialect interface {
	// Name is the canonical driver name accepted in connection.driver.
	Name() string
	// Label is the human name used in model prompts, e.g. "MySQL".
	Label() string
	// DriverName is the database/sql driver registered for this dialect.
	DriverName() string
	// BuildDSN validates the connection and formats a driver DSN.
	BuildDSN(conn domain.Connection) (string, error)
	// ListTablesQuery returns a query yielding one table name per row.
	ListTablesQuery() string
	// ColumnsQuery returns a query taking the table name as its only argument
	// and yielding (column name, column type) rows in ordinal order.
	ColumnsQuery() string
}

// Lookup resolves a driver name from a connection. Empty means MySQL.
func Lookup(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mysql", "mariadb":
		return MySQL{}, nil
	case "postgres", "postgresql", "pg":
		return Postgres{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedDriver, driver)
	}
}

// Names lists the canonical driver names in display order.
func Names() []string {
	return []string{MySQL{}.Name(), Postgres{}.Name(), SQLite{}.Name()}
}

// requireNetworkFields checks the fields every server-based dialect needs
// and returns the port to use.
func requireNetworkFields(conn domain.Connection, defaultPort string) (string, error) {
	if strings.TrimSpace(conn.Host) == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidConnection)
	}
	if strings.TrimSpace(conn.User) == "" {
		return "", fmt.Errorf("%w: user is required", ErrInvalidConnection)
	}
	if strings.TrimSpace(conn.Database) == "" {
		return "", fmt.Errorf("%w: database is required", ErrInvalidConnection)
	}
	port := strings.TrimSpace(conn.Port)
	if port == "" {
		return defaultPort, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: port '%s' must be a number between 1 and 65535", ErrInvalidConnection, conn.Port)
	}
	return port, nil
}
