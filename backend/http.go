// Shared HTTP plumbing for the backend clients: request construction,
// status code mapping, and transport error wrapping.

package backend

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

// httpCore holds the state every HTTP-based backend shares. Embedded by the
// concrete clients.
type httpCore struct {
	backendType Type
	baseURL     string
	model       string
	timeout     time.Duration
	client      *http.Client
	logger      *slog.Logger
}

func newHTTPCore(t Type, baseURL, model string, timeout time.Duration, opts []Option) httpCore {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	cfg := newClientConfig(timeout, opts)
	cfg.logger.Debug("initialized backend", "type", t.String(), "base_url", baseURL, "model", model)
	return httpCore{
		backendType: t,
		baseURL:     baseURL,
		model:       model,
		timeout:     timeout,
		client:      cfg.httpClient,
		logger:      cfg.logger,
	}
}

// BaseURL returns the resolved base URL.
func (c *httpCore) BaseURL() string { return c.baseURL }

// ModelName returns the configured model.
func (c *httpCore) ModelName() string { return c.model }

// Close releases pooled transport connections.
func (c *httpCore) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// postJSON sends the marshaled body to url and returns the raw response.
// The caller owns resp.Body. Transport failures come back as typed
// connection errors tagged with the backend type and URL.
func (c *httpCore) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, invalidResponseError(c.backendType, url, 0, fmt.Errorf("encoding request: %w", err))
	}
	c.logger.Debug("sending request", "url", url, "bytes", len(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, connectionError(c.backendType, url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, connectionError(c.backendType, url, err)
	}
	return resp, nil
}

// checkStatus maps a non-200 response to a typed error, consuming the body
// for the diagnostic message.
func (c *httpCore) checkStatus(resp *http.Response, url string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return modelNotFoundError(c.backendType, url, c.model)
	case resp.StatusCode >= 500:
		return connectionError(c.backendType, url, fmt.Errorf("server error: %s", bytes.TrimSpace(body)))
	default:
		return invalidResponseError(c.backendType, url, resp.StatusCode, fmt.Errorf("unexpected response: %s", bytes.TrimSpace(body)))
	}
}
