// internal/domain/models.go
package domain

import (
	"encoding/json"
	"time"
)

// Connection holds the parameters a caller supplies for the target database.
// All fields are plain strings as entered in the form.
type Connection struct {
	Driver   string `json:"driver,omitempty" yaml:"driver"`
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
}

// IsEmpty reports whether no connection field was filled in.
func (c Connection) IsEmpty() bool {
	return c.Host == "" && c.Port == "" && c.User == "" && c.Password == "" && c.Database == ""
}

// Result is the outcome of running generated SQL.
// Row-returning statements fill Columns and Data, others fill Message and RowsAffected.
type Result struct {
	SQL          string           `json:"sql"`
	Columns      []string         `json:"columns,omitempty"`
	Data         []map[string]any `json:"data,omitempty"`
	Message      string           `json:"message,omitempty"`
	RowsAffected int64            `json:"rows_affected,omitempty"`
}

// MarshalJSON always emits "data" for row results, including an empty set.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	out := struct {
		alias
		Data *[]map[string]any `json:"data,omitempty"`
	}{alias: alias(r)}
	if r.Columns != nil || r.Data != nil {
		data := r.Data
		if data == nil {
			data = []map[string]any{}
		}
		out.Data = &data
	}
	return json.Marshal(out)
}

// ColumnInfo describes one column of a target table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableSchema describes one target table.
type TableSchema struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// HistoryEntry is one recorded /query run. Passwords are never stored.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	Driver       string    `json:"driver"`
	Host         string    `json:"host"`
	Database     string    `json:"database"`
	SQL          string    `json:"sql"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error,omitempty"`
	RowsReturned int64     `json:"rows_returned"`
	RowsAffected int64     `json:"rows_affected"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	HistoryStatusSuccess = "success"
	HistoryStatusError   = "error"
)
