package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Annany2002/sqlprompt/internal/dialect"
	"github.com/Annany2002/sqlprompt/internal/logger"
)

var (
	ErrMissingInput = errors.New("prompt or connection details missing")
	ErrTranslate    = errors.New("sql translation failed")

	ErrInvalidTableName = errors.New("invalid table name")
)

// SchemaError reports a table that could not be described.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error for '%s': %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// UserMessage renders an error the way the /query endpoint reports it in its "error" field.
func UserMessage(err error) string {
	var schemaErr *SchemaError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "Prompt or DB connection details missing."
	case errors.Is(err, dialect.ErrInvalidConnection), errors.Is(err, dialect.ErrUnsupportedDriver):
		detail := strings.TrimPrefix(err.Error(), dialect.ErrInvalidConnection.Error()+": ")
		return "Invalid connection: " + logger.Mask(detail)
	case errors.As(err, &schemaErr):
		return fmt.Sprintf("Schema error for '%s': %s", schemaErr.Table, logger.Mask(schemaErr.Err.Error()))
	default:
		return "Server error: " + logger.Mask(err.Error())
	}
}
