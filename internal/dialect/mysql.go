package dialect

import (
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Annany2002/sqlprompt/internal/domain"
)

// MySQL targets MySQL and MariaDB servers.
type MySQL struct{}

func (MySQL) Name() string       { return "mysql" }
func (MySQL) Label() string      { return "MySQL" }
func (MySQL) DriverName() string { return "mysql" }

func (MySQL) BuildDSN(conn domain.Connection) (string, error) {
	port, err := requireNetworkFields(conn, "3306")
	if err != nil {
		return "", err
	}
	cfg := mysql.NewConfig()
	cfg.User = conn.User
	cfg.Passwd = conn.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(strings.TrimSpace(conn.Host), port)
	cfg.DBName = strings.TrimSpace(conn.Database)
	cfg.Timeout = 10 * time.Second
	return cfg.FormatDSN(), nil
}

func (MySQL) ListTablesQuery() string {
	return "SHOW TABLES"
}

func (MySQL) ColumnsQuery() string {
	return `SELECT COLUMN_NAME, COLUMN_TYPE FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
}
