package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// RequestTimeout bounds GET, POST, and PUT requests.
	RequestTimeout = 20 * time.Second
	// DeleteTimeout bounds DELETE requests, which GitHub answers quickly.
	DeleteTimeout = 5 * time.Second
)

// Response is the raw outcome of one labels API call. The action reports it
// as-is: no retries, no status-code branching, the full body preserved. A
// non-2xx response is not an error here.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// String renders the compact form written to the action output. GITHUB_OUTPUT
// values are single lines, so this is the HTTP status line; the body is
// available in trace logs.
func (r *Response) String() string {
	if r.Status != "" {
		return r.Status
	}
	return fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
}

// do executes one request against the labels API and drains the response.
// The request body, if any, is JSON.
func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	timeout := RequestTimeout
	if method == http.MethodDelete {
		timeout = DeleteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
