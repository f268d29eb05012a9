// api/models/query_models.go
package models

import "github.com/Annany2002/sqlprompt/internal/domain"

// --- Query Request/Response Structs ---

// ConnectionRequest mirrors domain.Connection with binding rules.
// Presence checks happen in the service so the error text stays uniform.
type ConnectionRequest struct {
	Driver   string `json:"driver" binding:"max=32"`
	Host     string `json:"host" binding:"max=255"`
	Port     string `json:"port" binding:"omitempty,numeric"`
	User     string `json:"user" binding:"max=128"`
	Password string `json:"password"`
	Database string `json:"database" binding:"max=1024"`
}

// ToDomain converts the request into a domain connection.
func (r ConnectionRequest) ToDomain() domain.Connection {
	return domain.Connection{
		Driver:   r.Driver,
		Host:     r.Host,
		Port:     r.Port,
		User:     r.User,
		Password: r.Password,
		Database: r.Database,
	}
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Prompt     string            `json:"prompt" binding:"max=4000"`
	Connection ConnectionRequest `json:"connection"`
}

// ConnectionTestRequest is the body of POST /connection/test.
type ConnectionTestRequest struct {
	Connection ConnectionRequest `json:"connection"`
}

// ConnectionTestResponse lists the tables reachable through a connection.
type ConnectionTestResponse struct {
	Driver string               `json:"driver"`
	Tables []domain.TableSchema `json:"tables"`
}

// --- History Response Structs ---

// HistoryListResponse wraps a page of history entries.
type HistoryListResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// --- Form UI ---

// FormRequest is the urlencoded body of POST /.
type FormRequest struct {
	Action   string `form:"action"`
	Prompt   string `form:"prompt"`
	Driver   string `form:"driver"`
	Host     string `form:"host"`
	Port     string `form:"port"`
	User     string `form:"user"`
	Password string `form:"password"`
	Database string `form:"database"`
}

// Connection returns the connection fields of the form.
func (f FormRequest) Connection() domain.Connection {
	return domain.Connection{
		Driver:   f.Driver,
		Host:     f.Host,
		Port:     f.Port,
		User:     f.User,
		Password: f.Password,
		Database: f.Database,
	}
}
