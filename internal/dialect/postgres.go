package dialect

import (
	"net"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver registration

	"github.com/Annany2002/sqlprompt/internal/domain"
)

// Postgres targets PostgreSQL through pgx's database/sql driver.
type Postgres struct{}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) Label() string      { return "PostgreSQL" }
func (Postgres) DriverName() string { return "pgx" }

func (Postgres) BuildDSN(conn domain.Connection) (string, error) {
	port, err := requireNetworkFields(conn, "5432")
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conn.User, conn.Password),
		Host:     net.JoinHostPort(strings.TrimSpace(conn.Host), port),
		Path:     "/" + strings.TrimSpace(conn.Database),
		RawQuery: url.Values{"connect_timeout": []string{"10"}}.Encode(),
	}
	return u.String(), nil
}

func (Postgres) ListTablesQuery() string {
	return `SELECT table_name FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`
}

func (Postgres) ColumnsQuery() string {
	return `SELECT column_name, data_type FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`
}
