// Package apiclient is the JSON-over-HTTP transport shared by the embedding
// and LLM provider adapters.
package apiclient

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

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Code, e.Body)
}

// Client talks to one provider. Transport failures and 5xx replies wrap
// the sentinel given to New; 429 wraps domain.ErrRateLimited.
type Client struct {
	http        *http.Client
	provider    string
	baseURL     string
	header      http.Header
	unavailable error
}

// New returns a client for baseURL. header is sent with every request.
func New(provider, baseURL string, timeout time.Duration, unavailable error, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		provider:    provider,
		baseURL:     strings.TrimRight(baseURL, "/"),
		header:      header,
		unavailable: unavailable,
	}
}

// PostJSON sends in as JSON to path and decodes the reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Ping issues GET path and expects 200. Any failure wraps the
// unavailable sentinel.
func (c *Client) Ping(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		if errors.Is(err, c.unavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", c.unavailable, err)
	}
	return nil
}

// Errorf formats a provider error, prefixed with the provider name.
func (c *Client) Errorf(format string, args ...any) error {
	return fmt.Errorf(c.provider+": "+format, args...)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", c.unavailable, c.provider, err)
	}
	return resp, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &StatusError{Provider: c.provider, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, statusErr)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", c.unavailable, statusErr)
	default:
		return statusErr
	}
}

// Floats32 narrows a JSON-decoded vector.
func Floats32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
