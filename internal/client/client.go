// Package client talks to a sqlprompt server's JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Annany2002/sqlprompt/internal/domain"
	"github.com/Annany2002/sqlprompt/internal/logger"
)

var (
	customLog = logger.NewLogger()

	// ErrEmptyPrompt is returned before any request is made.
	ErrEmptyPrompt = errors.New("Please enter a prompt before submitting.") //nolint:staticcheck // displayed verbatim
)

// TransportError wraps failures to reach the server or read its reply.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "Failed to connect to server: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError carries the server's "error" field verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client posts prompts to a sqlprompt server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:8000.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type queryBody struct {
	Prompt     string            `json:"prompt,omitempty"`
	Connection domain.Connection `json:"connection"`
}

type queryReply struct {
	domain.Result
	Error string `json:"error"`
}

type connectionReply struct {
	Driver string               `json:"driver"`
	Tables []domain.TableSchema `json:"tables"`
	Error  string               `json:"error"`
}

// Query sends one prompt. At most one of the result and the error is set.
func (c *Client) Query(ctx context.Context, prompt string, conn domain.Connection) (*domain.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	var reply queryReply
	status, err := c.post(ctx, "/query", queryBody{Prompt: prompt, Connection: conn}, &reply)
	if err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, &ServerError{StatusCode: status, Message: reply.Error}
	}
	if status >= http.StatusBadRequest {
		return nil, &ServerError{StatusCode: status, Message: fmt.Sprintf("Server error: unexpected status %d", status)}
	}
	return &reply.Result, nil
}

// TestConnection asks the server to describe the tables behind conn.
func (c *Client) TestConnection(ctx context.Context, conn domain.Connection) (string, []domain.TableSchema, error) {
	var reply connectionReply
	status, err := c.post(ctx, "/connection/test", queryBody{Connection: conn}, &reply)
	if err != nil {
		return "", nil, err
	}
	if reply.Error != "" {
		return "", nil, &ServerError{StatusCode: status, Message: reply.Error}
	}
	if status >= http.StatusBadRequest {
		return "", nil, &ServerError{StatusCode: status, Message: fmt.Sprintf("Server error: unexpected status %d", status)}
	}
	return reply.Driver, reply.Tables, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		customLog.Warnf("Client: POST %s failed: %v", path, err)
		return 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		customLog.Warnf("Client: Undecodable reply from %s (status %d): %v", path, resp.StatusCode, err)
		return resp.StatusCode, &TransportError{Err: err}
	}
	return resp.StatusCode, nil
}
