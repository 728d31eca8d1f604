package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrFlowNotFound signals that a run id is unknown to or expired on the
// backend. The polling controller treats it as terminal; all other errors
// are retried on the next tick.
var ErrFlowNotFound = errors.New("flow not found")

// defaultTimeout bounds each individual request. Polling relies on this
// being shorter than the poll period so a hung request cannot pile up
// behind the in-flight guard forever.
const defaultTimeout = 15 * time.Second

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAuthToken sets the bearer token attached to every request.
func WithAuthToken(token string) ClientOption {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// startResponse is the envelope returned by the start endpoint.
type startResponse struct {
	RunID string `json:"runId"`
}

// StartAnalysis creates a new run and returns its id.
func (c *Client) StartAnalysis(ctx context.Context, cfg AnalysisConfig) (string, error) {
	var resp startResponse
	if err := c.do(ctx, http.MethodPost, "/api/analysis", cfg, &resp); err != nil {
		return "", fmt.Errorf("failed to start analysis: %w", err)
	}
	if resp.RunID == "" {
		return "", fmt.Errorf("backend returned an empty run id")
	}
	return resp.RunID, nil
}

// statusResponse is the envelope returned by the status endpoint. A null
// shared field means the run exists but has not published state yet.
type statusResponse struct {
	Shared *StatusSnapshot `json:"shared"`
}

// FlowStatus fetches the status snapshot for a run.
func (c *Client) FlowStatus(ctx context.Context, runID string) (*StatusSnapshot, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/api/flows/"+runID+"/status", nil, &resp); err != nil {
		if errors.Is(err, ErrFlowNotFound) {
			return nil, ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to fetch flow status: %w", err)
	}
	return resp.Shared, nil
}

// inputEnvelope wraps a UserInput with a client-generated id so the backend
// can deduplicate a retried send.
type inputEnvelope struct {
	InputID string `json:"inputId"`
	UserInput
}

// SendInput forwards a typed human response to a run.
func (c *Client) SendInput(ctx context.Context, runID string, input UserInput) error {
	env := inputEnvelope{InputID: uuid.NewString(), UserInput: input}
	if err := c.do(ctx, http.MethodPost, "/api/flows/"+runID+"/input", env, nil); err != nil {
		if errors.Is(err, ErrFlowNotFound) {
			return ErrFlowNotFound
		}
		return fmt.Errorf("failed to send input: %w", err)
	}
	return nil
}

// listResponse is the envelope returned by the flows endpoint.
type listResponse struct {
	Flows []FlowListItem `json:"flows"`
}

// ListFlows returns summaries of all backend-tracked runs.
func (c *Client) ListFlows(ctx context.Context) ([]FlowListItem, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/flows", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	return resp.Flows, nil
}

// DeleteFlow removes a backend-tracked run.
func (c *Client) DeleteFlow(ctx context.Context, runID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/flows/"+runID, nil, nil); err != nil {
		if errors.Is(err, ErrFlowNotFound) {
			return ErrFlowNotFound
		}
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// do performs one request/response round trip. A non-nil body is JSON
// encoded; a non-nil out receives the decoded response body. 404 responses
// map to ErrFlowNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrFlowNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
