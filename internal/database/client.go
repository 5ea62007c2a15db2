package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultURL is the Mbed online board database endpoint listing every target.
const DefaultURL = "https://os.mbed.com/api/v4/targets/all"

// DefaultTimeout bounds a single database request.
const DefaultTimeout = 10 * time.Second

// the full board database is a few MB of JSON
const maxResponseBodySize = 16 << 20 // 16MB

const (
	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 60 * time.Second
)

var (
	// ErrUnexpectedStatus is returned when the database answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected response status from target database")

	// ErrMalformedResponse is returned when the response is not a JSON object
	// with a "data" array of records.
	ErrMalformedResponse = errors.New("malformed response from target database")

	// ErrResponseTooLarge is returned when the response body exceeds the
	// client's size limit.
	ErrResponseTooLarge = errors.New("response from target database too large")
)

// Config holds the settings of a [Client].
type Config struct {
	// URL is the database endpoint. Empty means [DefaultURL].
	URL string

	// AuthToken is sent as a bearer token when non-empty.
	AuthToken string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// Timeout is the per-request timeout. Zero means [DefaultTimeout].
	Timeout time.Duration

	// Logger receives debug events. Nil means slog.Default().
	Logger *slog.Logger
}

// envelope is the top-level shape of a database response.
type envelope struct {
	Data *[]map[string]any `json:"data"`
}

// Client fetches raw target records from the online board database.
//
// Client uses a per-request timeout via context rather than a global
// client timeout, so the caller's context still controls cancellation.
// Response bodies are limited to 16MB.
type Client struct {
	httpClient *http.Client
	url        string
	authToken  string
	headers    map[string]string
	timeout    time.Duration
	maxBody    int64
	logger     *slog.Logger
}

// NewClient creates a database [Client] from cfg, applying defaults for
// empty fields. The headers map is copied.
func NewClient(cfg Config) *Client {
	c := &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    defaultMaxIdleConns,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		},
		url:       cfg.URL,
		authToken: cfg.AuthToken,
		timeout:   cfg.Timeout,
		maxBody:   maxResponseBodySize,
		logger:    cfg.Logger,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if len(cfg.Headers) > 0 {
		c.headers = make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			c.headers[k] = v
		}
	}
	return c
}

// URL returns the database endpoint the client queries.
func (c *Client) URL() string {
	return c.url
}

// FetchTargets performs one GET against the database and returns the
// records of the "data" array in response order.
//
// Every call is a fresh request; nothing is cached. Each request carries a
// new X-Request-ID so it can be correlated with server-side logs.
func (c *Client) FetchTargets(ctx context.Context) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()
	c.logger.Debug("fetching target data", "url", c.url, "request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d from %s (request_id: %s)", ErrUnexpectedStatus, resp.StatusCode, c.url, requestID)
	}

	// one byte past the limit tells a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes from %s (request_id: %s)", ErrResponseTooLarge, c.maxBody, c.url, requestID)
	}

	records, err := Decode(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched target data",
		"url", c.url,
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
		"count", len(records),
	)
	return records, nil
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times and on a nil client.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// Decode parses a database document ({"data": [...]}) into its records.
// It is shared by the online client and the offline snapshot readers.
func Decode(body []byte) ([]map[string]any, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing \"data\" array", ErrMalformedResponse)
	}
	return *env.Data, nil
}
