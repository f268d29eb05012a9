package nl2sql

import (
	"context"
	"errors"
)

var ErrEmptySQL = errors.New("model returned empty SQL")

type SQLRequest struct {
	// DialectLabel names the target engine in the system prompt, e.g. "MySQL".
	DialectLabel string `json:"dialect"`
	// Schema holds one "table(col type, ...)" line per table.
	Schema string `json:"schema"`
	Prompt string `json:"prompt"`
}

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Translator turns natural language into table names and SQL.
type Translator interface {
	ExtractTables(ctx context.Context, prompt string) ([]string, error)
	GenerateSQL(ctx context.Context, req SQLRequest) (Result, error)
}
