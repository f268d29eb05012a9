package dialect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/sqlprompt/internal/domain"
)

// SQLite targets a database file on the server's filesystem.
// Only the database field is used; it holds the file path.
type SQLite struct{}

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) Label() string      { return "SQLite" }
func (SQLite) DriverName() string { return "sqlite3" }

func (SQLite) BuildDSN(conn domain.Connection) (string, error) {
	path := strings.TrimSpace(conn.Database)
	if path == "" {
		return "", fmt.Errorf("%w: database file path is required", ErrInvalidConnection)
	}
	// Opening a missing file would silently create an empty database.
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: database file '%s' not found", ErrInvalidConnection, path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: '%s' is a directory", ErrInvalidConnection, path)
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000", nil
}

func (SQLite) ListTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (SQLite) ColumnsQuery() string {
	return `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`
}

// ConfineSQLitePath resolves a sqlite target path against dir and rejects
// anything outside it, as well as the denied files and their journals.
// Relative paths are taken relative to dir. An empty dir disables sqlite targets.
func ConfineSQLitePath(path, dir string, denied ...string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: sqlite targets are disabled on this server", ErrInvalidConnection)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: database file path is required", ErrInvalidConnection)
	}
	// go-sqlite3 treats file: DSNs as URIs with their own parameters.
	if strings.HasPrefix(strings.ToLower(path), "file:") || strings.ContainsRune(path, '?') {
		return "", fmt.Errorf("%w: database file '%s' must be a plain path", ErrInvalidConnection, path)
	}

	root, err := resolvePath(dir)
	if err != nil {
		return "", fmt.Errorf("%w: sqlite target directory is unavailable", ErrInvalidConnection)
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	target, err := resolvePath(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: database file '%s' not found", ErrInvalidConnection, path)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: database file '%s' is outside the allowed directory", ErrInvalidConnection, path)
	}

	for _, d := range denied {
		if strings.TrimSpace(d) == "" {
			continue
		}
		reserved, err := resolvePath(d)
		if err != nil {
			continue
		}
		for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
			if target == reserved+suffix {
				return "", fmt.Errorf("%w: database file '%s' is reserved", ErrInvalidConnection, path)
			}
		}
	}
	return target, nil
}

// resolvePath returns an absolute path with symlinks evaluated. For a missing
// file only the parent directory is evaluated.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs)), nil
	}
	return abs, nil
}
