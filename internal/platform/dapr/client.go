// Package dapr provides the HTTP client for the Dapr sidecar. All
// infrastructure interactions (pub/sub publishing, job scheduling, state and
// secrets) go through the sidecar's local HTTP API; only this package knows
// the URL shapes involved.
package dapr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// apiVersion is the path segment for the stable sidecar API.
	apiVersion = "v1.0"

	// jobsAPIVersion is the path segment for the jobs API, which is still
	// alpha in the sidecar.
	jobsAPIVersion = "v1.0-alpha1"

	defaultTimeout = 30 * time.Second
)

// Error reports a failed sidecar request. StatusCode is zero when the
// request never reached the sidecar.
type Error struct {
	Operation  string
	StatusCode int
	Err        error
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dapr %s failed: sidecar returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("dapr %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Client is an HTTP client for the Dapr sidecar.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a sidecar client rooted at the given base URL
// (e.g. "http://localhost:3500").
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.With(slog.String("component", "dapr_client")),
	}
}

// Healthz checks whether the sidecar is up.
func (c *Client) Healthz(ctx context.Context) error {
	return c.do(ctx, "health check", http.MethodGet,
		fmt.Sprintf("%s/%s/healthz", c.baseURL, apiVersion), nil, nil, nil)
}

// Publish publishes an event body to a topic on the named pub/sub component.
// The call is a single best-effort request: there is no retry here, by
// contract the caller owns that decision.
func (c *Client) Publish(ctx context.Context, pubsubName, topic string, data any, metadata map[string]string) error {
	payload := map[string]any{"data": data}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}

	url := fmt.Sprintf("%s/%s/publish/%s/%s", c.baseURL, apiVersion, pubsubName, topic)
	if err := c.do(ctx, "publish", http.MethodPost, url, payload, nil, nil); err != nil {
		return err
	}

	c.logger.Debug("published event",
		slog.String("pubsub", pubsubName),
		slog.String("topic", topic))
	return nil
}

// ScheduleJob schedules a job to fire at dueTime (RFC 3339 timestamp or
// duration string). Scheduling an ID that already exists overwrites the
// existing job. period optionally makes the job recurring; ttl bounds its
// lifetime. Both may be empty.
func (c *Client) ScheduleJob(ctx context.Context, jobID, dueTime string, data any, period, ttl string) error {
	payload := map[string]any{
		"dueTime": dueTime,
		"data":    data,
	}
	if period != "" {
		payload["period"] = period
	}
	if ttl != "" {
		payload["ttl"] = ttl
	}

	url := fmt.Sprintf("%s/%s/jobs/%s", c.baseURL, jobsAPIVersion, jobID)
	if err := c.do(ctx, "schedule job", http.MethodPost, url, payload, nil, nil); err != nil {
		return err
	}

	c.logger.Debug("scheduled job",
		slog.String("job_id", jobID),
		slog.String("due_time", dueTime))
	return nil
}

// CancelJob cancels a scheduled job. Cancelling a job that does not exist
// is treated as success: the desired state (no job) already holds.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	url := fmt.Sprintf("%s/%s/jobs/%s", c.baseURL, jobsAPIVersion, jobID)
	err := c.do(ctx, "cancel job", http.MethodDelete, url, nil, nil, []int{http.StatusNotFound})
	if err != nil {
		return err
	}

	c.logger.Debug("cancelled job", slog.String("job_id", jobID))
	return nil
}

// GetSecret retrieves a secret by key from the named secret store.
func (c *Client) GetSecret(ctx context.Context, storeName, key string) (string, error) {
	url := fmt.Sprintf("%s/%s/secrets/%s/%s", c.baseURL, apiVersion, storeName, key)

	var secrets map[string]string
	if err := c.do(ctx, "get secret", http.MethodGet, url, nil, &secrets, nil); err != nil {
		return "", err
	}

	return secrets[key], nil
}

// GetState retrieves a state value by key from the named state store.
// A missing key yields (nil, nil).
func (c *Client) GetState(ctx context.Context, storeName, key string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s/state/%s/%s", c.baseURL, apiVersion, storeName, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Operation: "get state", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Operation: "get state", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Operation: "get state", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Operation: "get state", Err: err}
	}
	if len(body) == 0 {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// SaveState stores a state value under the given key in the named state store.
func (c *Client) SaveState(ctx context.Context, storeName, key string, value any) error {
	url := fmt.Sprintf("%s/%s/state/%s", c.baseURL, apiVersion, storeName)

	payload := []map[string]any{
		{"key": key, "value": value},
	}

	return c.do(ctx, "save state", http.MethodPost, url, payload, nil, nil)
}

// DeleteState removes a state value by key from the named state store.
func (c *Client) DeleteState(ctx context.Context, storeName, key string) error {
	url := fmt.Sprintf("%s/%s/state/%s/%s", c.baseURL, apiVersion, storeName, key)
	return c.do(ctx, "delete state", http.MethodDelete, url, nil, nil, nil)
}

// do issues one request against the sidecar. body, when non-nil, is JSON
// encoded; out, when non-nil, receives the decoded response body.
// okStatuses lists non-2xx codes to treat as success.
func (c *Client) do(
	ctx context.Context,
	operation, method, url string,
	body any,
	out any,
	okStatuses []int,
) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Operation: operation, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Error{Operation: operation, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Operation: operation, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		for _, ok := range okStatuses {
			if resp.StatusCode == ok {
				return nil
			}
		}
		c.logger.Warn("sidecar request failed",
			slog.String("operation", operation),
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode))
		return &Error{Operation: operation, StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Operation: operation, Err: fmt.Errorf("failed to decode response body: %w", err)}
		}
	}

	return nil
}
