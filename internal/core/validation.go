// internal/core/validation.go
package core

import (
	"regexp"
	"strings"
)

// Regular expression for valid table/column names (alphanumeric, underscore, dollar)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_$]+$`)

// rowStatementKeywords are leading keywords of statements that return a result set.
var rowStatementKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"VALUES":   true,
	"TABLE":    true,
}

// IsValidIdentifier checks if a string is a valid table or column identifier.
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// ReturnsRows reports whether a SQL statement produces a result set,
// judged by its first keyword after leading comments and parentheses.
func ReturnsRows(sqlText string) bool {
	keyword := strings.ToUpper(firstKeyword(sqlText))
	return rowStatementKeywords[keyword]
}

func firstKeyword(sqlText string) string {
	s := strings.TrimSpace(sqlText)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = strings.TrimSpace(s[i+1:])
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = strings.TrimSpace(s[i+2:])
				continue
			}
			return ""
		case strings.HasPrefix(s, "("):
			s = strings.TrimSpace(s[1:])
			continue
		}
		break
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

// SplitTableList parses a comma-separated list of table names as returned by the model.
// Surrounding whitespace, quotes and backticks are removed; blanks and duplicates are dropped.
func SplitTableList(raw string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.Trim(strings.TrimSpace(part), "`\"'.;[] \t\n")
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}
