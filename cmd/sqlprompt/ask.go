package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Annany2002/sqlprompt/internal/client"
	"github.com/Annany2002/sqlprompt/internal/domain"
	"github.com/Annany2002/sqlprompt/internal/logger"
	"github.com/Annany2002/sqlprompt/internal/web"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var askFlags struct {
	server         string
	connectionFile string
	output         string
	timeout        time.Duration
	conn           domain.Connection
}

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Generate and run SQL for a prompt",
	Example: `  sqlprompt ask --host localhost --user root --database shop "top 5 customers by revenue"
  sqlprompt ask --connection-file shop.yaml --output json "how many orders last week"`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if askFlags.output != outputTable && askFlags.output != outputJSON {
			return fmt.Errorf("unknown output format '%s' (use table or json)", askFlags.output)
		}

		conn, err := resolveConnection(cmd)
		if err != nil {
			return err
		}
		prompt := strings.Join(args, " ")

		var spinner *pterm.SpinnerPrinter
		if askFlags.output == outputTable && strings.TrimSpace(prompt) != "" {
			spinner, _ = pterm.DefaultSpinner.WithWriter(cmd.ErrOrStderr()).Start("Generating...")
		}

		c := client.New(askFlags.server, askFlags.timeout)
		result, err := c.Query(cmd.Context(), prompt, conn)
		if spinner != nil {
			if err != nil {
				spinner.Fail("Failed")
			} else {
				_ = spinner.Stop()
			}
		}
		if err != nil {
			return err
		}

		if askFlags.output == outputJSON {
			return renderJSON(cmd.OutOrStdout(), result)
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Database: ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(describeTarget(conn)))
		return renderTable(cmd.OutOrStdout(), result)
	},
}

func init() {
	f := askCmd.Flags()
	f.StringVar(&askFlags.server, "server", envOr("SQLPROMPT_SERVER", "http://localhost:8000"), "sqlprompt server base URL")
	f.StringVar(&askFlags.connectionFile, "connection-file", "", "YAML file with driver, host, port, user, password and database")
	f.StringVarP(&askFlags.output, "output", "o", outputTable, "output format: table or json")
	f.DurationVar(&askFlags.timeout, "timeout", 2*time.Minute, "request timeout")
	f.StringVar(&askFlags.conn.Driver, "driver", "", "database driver: mysql, postgres or sqlite")
	f.StringVar(&askFlags.conn.Host, "host", "", "database host")
	f.StringVar(&askFlags.conn.Port, "port", "", "database port")
	f.StringVarP(&askFlags.conn.User, "user", "u", "", "database user")
	f.StringVarP(&askFlags.conn.Password, "password", "p", "", "database password")
	f.StringVarP(&askFlags.conn.Database, "database", "d", "", "database name (file path for sqlite)")
}

// resolveConnection loads the connection file, then applies explicitly set flags on top.
func resolveConnection(cmd *cobra.Command) (domain.Connection, error) {
	var conn domain.Connection
	if askFlags.connectionFile != "" {
		loaded, err := loadConnectionFile(askFlags.connectionFile)
		if err != nil {
			return conn, err
		}
		conn = loaded
	}

	overrides := map[string]*string{
		"driver":   &conn.Driver,
		"host":     &conn.Host,
		"port":     &conn.Port,
		"user":     &conn.User,
		"password": &conn.Password,
		"database": &conn.Database,
	}
	values := map[string]string{
		"driver":   askFlags.conn.Driver,
		"host":     askFlags.conn.Host,
		"port":     askFlags.conn.Port,
		"user":     askFlags.conn.User,
		"password": askFlags.conn.Password,
		"database": askFlags.conn.Database,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			*target = values[name]
		}
	}
	return conn, nil
}

func loadConnectionFile(path string) (domain.Connection, error) {
	var conn domain.Connection
	raw, err := os.ReadFile(path)
	if err != nil {
		return conn, fmt.Errorf("read connection file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &conn); err != nil {
		return conn, fmt.Errorf("parse connection file %s: %w", path, err)
	}
	return conn, nil
}

func describeTarget(conn domain.Connection) string {
	driver := conn.Driver
	if driver == "" {
		driver = "mysql"
	}
	target := conn.Database
	if conn.Host != "" {
		target = conn.Host + "/" + conn.Database
	}
	return logger.Mask(driver + " " + target)
}

func renderJSON(w io.Writer, result *domain.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func renderTable(w io.Writer, result *domain.Result) error {
	fmt.Fprintf(w, "Generated SQL:\n%s\n\n", result.SQL)

	state := web.NewFormState()
	state.SetResult(result)
	if !state.ShowTable() {
		fmt.Fprintln(w, result.Message)
		return nil
	}

	headers := state.Headers()
	if len(headers) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(state.Rows())
	table.Render()
	fmt.Fprintf(w, "%d row(s)\n", len(result.Data))
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
