package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/sqlprompt/internal/domain"
)

var testConn = domain.Connection{Host: "db", Port: "3306", User: "root", Password: "pw", Database: "shop"}

func TestQueryEmptyPromptSendsNothing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	for _, prompt := range []string{"", "   \n\t"} {
		result, err := c.Query(context.Background(), prompt, testConn)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrEmptyPrompt)
		assert.Equal(t, "Please enter a prompt before submitting.", err.Error())
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestQuerySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "list customers", body["prompt"])
		conn, _ := body["connection"].(map[string]any)
		assert.Equal(t, "shop", conn["database"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sql":"SELECT * FROM customers","columns":["id","name"],"data":[{"id":1,"name":"Ada"}]}`))
	}))
	defer server.Close()

	result, err := New(server.URL+"/", time.Second).Query(context.Background(), "list customers", testConn)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM customers", result.SQL)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Ada", result.Data[0]["name"])
}

func TestQueryServerErrorIsVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"Schema error for 'users': table not found"}`))
	}))
	defer server.Close()

	result, err := New(server.URL, time.Second).Query(context.Background(), "list users", testConn)
	assert.Nil(t, result)

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusUnprocessableEntity, serverErr.StatusCode)
	assert.Equal(t, "Schema error for 'users': table not found", err.Error())
}

func TestQueryTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result, err := New(url, time.Second).Query(context.Background(), "list customers", testConn)
	assert.Nil(t, result)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to connect to server: "))
}

func TestQueryUndecodableReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Query(context.Background(), "list customers", testConn)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to connect to server: "))
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connection/test", r.URL.Path)
		_, _ = w.Write([]byte(`{"driver":"mysql","tables":[{"name":"customers","columns":[{"name":"id","type":"int"}]}]}`))
	}))
	defer server.Close()

	driver, tables, err := New(server.URL, time.Second).TestConnection(context.Background(), testConn)
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Equal(t, []domain.TableSchema{{Name: "customers", Columns: []domain.ColumnInfo{{Name: "id", Type: "int"}}}}, tables)
}
