// Package web holds the server-rendered form page.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strconv"

	"github.com/Annany2002/sqlprompt/internal/dialect"
	"github.com/Annany2002/sqlprompt/internal/domain"
)

// IndexTemplate is the name the form page is registered under.
const IndexTemplate = "index.html.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

// FormState is everything the page shows. After a submit at most one of
// Result and Error is set.
type FormState struct {
	Prompt     string
	Connection domain.Connection
	Result     *domain.Result
	Error      string
	Tables     []domain.TableSchema
	Drivers    []string
}

// NewFormState returns an idle form with the default driver selected.
func NewFormState() *FormState {
	return &FormState{
		Connection: domain.Connection{Driver: dialect.MySQL{}.Name()},
		Drivers:    dialect.Names(),
	}
}

// Clear resets prompt, output and error. Connection fields are kept.
func (f *FormState) Clear() {
	f.Prompt = ""
	f.Result = nil
	f.Error = ""
	f.Tables = nil
}

// SetResult shows a result and drops any previous error.
func (f *FormState) SetResult(result *domain.Result) {
	f.Result = result
	f.Error = ""
}

// SetError shows an error and drops any previous result.
func (f *FormState) SetError(message string) {
	f.Error = message
	f.Result = nil
	f.Tables = nil
}

// ShowTable reports whether the output table is rendered.
// Write statements show their message instead.
func (f *FormState) ShowTable() bool {
	return f.Result != nil && (f.Result.Message == "" || len(f.Result.Data) > 0)
}

// Headers returns the table columns. The server's column order wins;
// otherwise the first row's keys are used, sorted.
func (f *FormState) Headers() []string {
	if f.Result == nil {
		return nil
	}
	if len(f.Result.Columns) > 0 {
		return f.Result.Columns
	}
	if len(f.Result.Data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f.Result.Data[0]))
	for key := range f.Result.Data[0] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Rows renders every cell as text in Headers order.
func (f *FormState) Rows() [][]string {
	if f.Result == nil {
		return nil
	}
	headers := f.Headers()
	rows := make([][]string, 0, len(f.Result.Data))
	for _, row := range f.Result.Data {
		cells := make([]string, len(headers))
		for i, header := range headers {
			cells[i] = FormatCell(row[header])
		}
		rows = append(rows, cells)
	}
	return rows
}

// FormatCell renders one result value. NULL renders as an empty cell.
func FormatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
