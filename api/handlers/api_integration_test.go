// api/handlers/api_integration_test.go
package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/sqlprompt/api"
	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/config"
	"github.com/Annany2002/sqlprompt/internal/auth"
	"github.com/Annany2002/sqlprompt/internal/nl2sql"
	"github.com/Annany2002/sqlprompt/internal/storage"
)

const (
	testSecret   = "test_secret_key_for_integration_tests_1234567890"
	testPassword = "StrongPassword123!"
)

type testEnv struct {
	server    *httptest.Server
	historyDB *sql.DB
	targetDB  string
	llmCalls  *atomic.Int32
}

// fakeLLM answers table extraction with "customer" and SQL generation with a fenced query.
func fakeLLM(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		reply := "```sql\nSELECT id, name FROM customers ORDER BY id\n```"
		if len(req.Messages) > 0 && strings.HasPrefix(req.Messages[0].Content, "Extract table names") {
			reply = "customer"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func createTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`
		CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		INSERT INTO customers (id, name) VALUES (1, 'Ada'), (2, 'Linus');
	`)
	require.NoError(t, err)
	return path
}

// setupTestServer creates a test server with a temp history DB, a temp SQLite target and a fake LLM.
func setupTestServer(t *testing.T, adminPasswordHash string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	llm, calls := fakeLLM(t)
	target := createTarget(t)
	cfg := &config.Config{
		JWTSecret:          testSecret,
		JWTExpiration:      time.Minute * 5,
		AdminPasswordHash:  adminPasswordHash,
		AllowedOrigins:     []string{"http://localhost:5173"},
		RateLimitPerMinute: 1000,
		QueryTimeout:       10 * time.Second,
		FuzzyThreshold:     70,
		SchemaTableLimit:   50,
		HistoryDbDir:       filepath.Dir(target),
		HistoryDbFile:      "test_history.db",
		SQLiteTargetDir:    filepath.Dir(target),
	}

	historyDB, err := storage.ConnectHistoryDB(cfg)
	require.NoError(t, err)

	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{BaseURL: llm.URL, APIKey: "test-key", Model: "test-model"})
	require.NoError(t, err)

	server := httptest.NewServer(api.SetupRouter(historyDB, cfg, translator))
	t.Cleanup(func() {
		server.Close()
		if err := historyDB.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return &testEnv{server: server, historyDB: historyDB, targetDB: target, llmCalls: calls}
}

func postJSON(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestPing(t *testing.T) {
	env := setupTestServer(t, "")

	res, err := http.Get(env.server.URL + "/ping")
	require.NoError(t, err)
	body := decodeBody(t, res)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "pong", body["message"])
}

func TestQueryEndpoint(t *testing.T) {
	env := setupTestServer(t, "")

	t.Run("Success", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/query", map[string]any{
			"prompt":     "show all customers",
			"connection": map[string]string{"driver": "sqlite", "database": env.targetDB},
		}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "SELECT id, name FROM customers ORDER BY id", body["sql"])
		assert.Equal(t, []any{"id", "name"}, body["columns"])
		data, ok := body["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 2)
		assert.Equal(t, "Ada", data[0].(map[string]any)["name"])
		assert.NotContains(t, body, "error")
	})

	t.Run("Missing Input", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/query", map[string]any{"prompt": "", "connection": map[string]string{}}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, map[string]any{"error": "Prompt or DB connection details missing."}, body)
	})

	t.Run("Invalid Connection", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/query", map[string]any{
			"prompt":     "show all customers",
			"connection": map[string]string{"driver": "sqlite", "database": "nope.db"},
		}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		msg := body["error"].(string)
		assert.True(t, strings.HasPrefix(msg, "Invalid connection: database file '"), msg)
		assert.True(t, strings.HasSuffix(msg, "nope.db' not found"), msg)
	})

	t.Run("File Outside Target Dir", func(t *testing.T) {
		outside := createTarget(t)
		res := postJSON(t, env.server.URL+"/query", map[string]any{
			"prompt":     "show all customers",
			"connection": map[string]string{"driver": "sqlite", "database": outside},
		}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "Invalid connection: database file '"+outside+"' is outside the allowed directory", body["error"])
	})

	t.Run("History Database Refused", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/query", map[string]any{
			"prompt":     "show the query history",
			"connection": map[string]string{"driver": "sqlite", "database": "test_history.db"},
		}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "Invalid connection: database file 'test_history.db' is reserved", body["error"])
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/query", map[string]any{
			"prompt":     "show all customers",
			"connection": map[string]string{"driver": "oracle", "host": "db"},
		}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "Invalid connection: unsupported database driver: 'oracle'", body["error"])
	})

	t.Run("Driver Name Is Case Insensitive", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/query", map[string]any{
			"prompt":     "show all customers",
			"connection": map[string]string{"driver": " SQLite ", "database": env.targetDB},
		}, "")
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Equal(t, []any{"id", "name"}, body["columns"])
	})

	t.Run("Malformed Body", func(t *testing.T) {
		res, err := http.Post(env.server.URL+"/query", "application/json", strings.NewReader("{not json"))
		require.NoError(t, err)
		body := decodeBody(t, res)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "Invalid request body.", body["error"])
	})
}

func TestConnectionTestEndpoint(t *testing.T) {
	env := setupTestServer(t, "")

	res := postJSON(t, env.server.URL+"/connection/test", map[string]any{
		"connection": map[string]string{"driver": "sqlite", "database": env.targetDB},
	}, "")
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body models.ConnectionTestResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "sqlite", body.Driver)
	require.Len(t, body.Tables, 1)
	assert.Equal(t, "customers", body.Tables[0].Name)
	assert.Equal(t, int32(0), env.llmCalls.Load())
}

func postForm(t *testing.T, target string, form url.Values) string {
	t.Helper()
	res, err := http.PostForm(target, form)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestFormUI(t *testing.T) {
	env := setupTestServer(t, "")

	t.Run("Index", func(t *testing.T) {
		res, err := http.Get(env.server.URL + "/")
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, string(body), "Communicate with Database")
		assert.Contains(t, string(body), "Run Query")
	})

	t.Run("Empty Prompt Issues No Request", func(t *testing.T) {
		before := env.llmCalls.Load()
		html := postForm(t, env.server.URL+"/", url.Values{
			"action": {"run"}, "prompt": {"   "}, "driver": {"sqlite"}, "database": {env.targetDB},
		})

		assert.Contains(t, html, "❌ Please enter a prompt before submitting.")
		assert.Equal(t, before, env.llmCalls.Load())
	})

	t.Run("Run", func(t *testing.T) {
		html := postForm(t, env.server.URL+"/", url.Values{
			"action": {"run"}, "prompt": {"show all customers"}, "driver": {"sqlite"}, "database": {env.targetDB},
		})

		assert.Contains(t, html, "SELECT id, name FROM customers ORDER BY id")
		assert.Contains(t, html, "<th>id</th><th>name</th>")
		assert.Contains(t, html, "<td>Linus</td>")
		assert.NotContains(t, html, `class="error-message"`)
	})

	t.Run("Server Error Suppresses Table", func(t *testing.T) {
		html := postForm(t, env.server.URL+"/", url.Values{
			"action": {"run"}, "prompt": {"show all customers"}, "driver": {"sqlite"}, "database": {"/definitely/missing.db"},
		})

		assert.Contains(t, html, "❌ Invalid connection: database file &#39;/definitely/missing.db&#39; is outside the allowed directory")
		assert.NotContains(t, html, `class="results-table"`)
	})

	t.Run("Clear Keeps Connection", func(t *testing.T) {
		html := postForm(t, env.server.URL+"/", url.Values{
			"action": {"clear"}, "prompt": {"show all customers"}, "driver": {"postgres"}, "host": {"db.internal"},
		})

		assert.Contains(t, html, `value="db.internal"`)
		assert.NotContains(t, html, "show all customers")
		assert.Contains(t, html, `<option value="postgres" selected>`)
	})

	t.Run("Test Connection", func(t *testing.T) {
		html := postForm(t, env.server.URL+"/", url.Values{
			"action": {"test"}, "driver": {"sqlite"}, "database": {env.targetDB},
		})

		assert.Contains(t, html, "<strong>customers</strong>")
	})
}

func TestLoginAndHistory(t *testing.T) {
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	env := setupTestServer(t, hash)

	// One recorded run to look at.
	res := postJSON(t, env.server.URL+"/query", map[string]any{
		"prompt":     "show all customers",
		"connection": map[string]string{"driver": "sqlite", "database": env.targetDB, "password": "hunter2"},
	}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	t.Run("Login Unauthorized (Wrong Password)", func(t *testing.T) {
		res := postJSON(t, env.server.URL+"/auth/login", models.LoginRequest{Password: "IncorrectPassword"}, "")
		body := decodeBody(t, res)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Invalid credentials.", body["error"])
	})

	t.Run("History Requires Token", func(t *testing.T) {
		res, err := http.Get(env.server.URL + "/api/v1/history")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	res = postJSON(t, env.server.URL+"/auth/login", models.LoginRequest{Password: testPassword}, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var login models.LoginResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&login))
	res.Body.Close()
	require.NotEmpty(t, login.Token)

	subject, err := auth.ValidateJWT(login.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "operator", subject)

	authed := func(method, path string) *http.Response {
		req, err := http.NewRequest(method, env.server.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return res
	}

	res = authed(http.MethodGet, "/api/v1/history?status=success")
	require.Equal(t, http.StatusOK, res.StatusCode)
	raw, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	var list models.HistoryListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Entries, 1)
	entry := list.Entries[0]
	assert.Equal(t, "show all customers", entry.Prompt)
	assert.Equal(t, "SELECT id, name FROM customers ORDER BY id", entry.SQL)

	res = authed(http.MethodGet, "/api/v1/history/"+entry.ID)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = authed(http.MethodDelete, "/api/v1/history/"+entry.ID)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()

	res = authed(http.MethodGet, "/api/v1/history/"+entry.ID)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res = authed(http.MethodGet, "/api/v1/history/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	res = authed(http.MethodGet, "/api/v1/history?limit=zero")
	body := decodeBody(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid 'limit' parameter: must be an integer", body["error"])
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	env := setupTestServer(t, "")

	res := postJSON(t, env.server.URL+"/auth/login", models.LoginRequest{Password: testPassword}, "")
	body := decodeBody(t, res)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, "Operator login is not configured.", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, "")

	res := postJSON(t, env.server.URL+"/query", map[string]any{
		"prompt":     "show all customers",
		"connection": map[string]string{"driver": "sqlite", "database": env.targetDB},
	}, "")
	res.Body.Close()

	res, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "sqlprompt_queries_total")
	assert.Contains(t, string(body), `path="/query"`)
}
