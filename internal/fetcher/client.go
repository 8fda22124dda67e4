package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spikeradar/internal/metrics"
	"spikeradar/internal/version"
)

const defaultBaseURL = "http://localhost:8000"

// Options parameterise the backend client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks JSON to the spike-detection backend.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// APIError is a non-success backend response. Error returns the backend's
// message verbatim so it can be shown to the viewer as-is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// New constructs a backend client.
func New(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "backend_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do issues one request. in, when non-nil, is sent as the JSON body; out, when
// non-nil, receives the decoded response.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, in, out any) (err error) {
	started := time.Now()
	defer func() {
		metrics.ObserveRequest(operation, err, time.Since(started))
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			return fmt.Errorf("marshal %s payload: %w", operation, marshalErr)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseHTTPError(resp.StatusCode, payload)
		c.logger.Debug().Str("operation", operation).Int("status", resp.StatusCode).Str("detail", apiErr.Message).Msg("backend rejected request")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func parseHTTPError(status int, payload []byte) *APIError {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && len(apiErr.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(apiErr.Detail, &detail); err == nil && detail != "" {
			return &APIError{StatusCode: status, Message: detail}
		}
		if string(apiErr.Detail) != "null" {
			return &APIError{StatusCode: status, Message: string(apiErr.Detail)}
		}
	}
	if text := http.StatusText(status); text != "" {
		return &APIError{StatusCode: status, Message: text}
	}
	return &APIError{StatusCode: status, Message: "Request failed"}
}

// Health pings the backend health endpoint.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
