// Package jsonbin fetches the Lab 3 book document from a JSONBin-style endpoint.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labdesk/labdesk-server/internal/books"
	"github.com/labdesk/labdesk-server/internal/ratelimit"
)

const (
	// Rate limit: 2 requests per second per host, burst of 2
	defaultRPS   = 2.0
	defaultBurst = 2

	defaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a document we read.
	maxBodySize = 4 << 20

	// RequestIDHeader carries the correlation ID of an outbound call.
	RequestIDHeader = "X-Request-ID"
)

// Options configures a Client. Zero values take defaults.
type Options struct {
	URL               string
	AccessKey         string // sent as X-Access-Key
	MasterKey         string // sent as X-Master-Key
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is a rate-limited client for one JSON document.
type Client struct {
	http      *http.Client
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
	url       string
	accessKey string
	masterKey string
}

// New creates a new client.
func New(logger *slog.Logger, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:   ratelimit.New(opts.RequestsPerSecond, opts.Burst),
		logger:    logger,
		url:       opts.URL,
		accessKey: opts.AccessKey,
		masterKey: opts.MasterKey,
	}
}

// URL returns the document URL.
func (c *Client) URL() string {
	return c.url
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// FetchRecords downloads the document and decodes its record array.
// It makes exactly one request; failures are not retried.
func (c *Client) FetchRecords(ctx context.Context) ([]books.Record, error) {
	body, status, err := c.doRequest(ctx)
	if err != nil {
		return nil, wrapError("fetch", c.url, status, err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, wrapError("fetch", c.url, 0, err)
	}

	return records, nil
}

// doRequest executes the GET with rate limiting. The returned status is
// non-zero only for non-2xx responses.
func (c *Client) doRequest(ctx context.Context) ([]byte, int, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, 0, fmt.Errorf("parse url: %w", err)
	}

	// Wait for rate limit
	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "labdesk/1.0")
	req.Header.Set(RequestIDHeader, requestID)
	if c.accessKey != "" {
		req.Header.Set("X-Access-Key", c.accessKey)
	}
	if c.masterKey != "" {
		req.Header.Set("X-Master-Key", c.masterKey)
	}

	c.logger.Debug("jsonbin request",
		"host", u.Host,
		"path", u.Path,
		"request_id", requestID,
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("jsonbin response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
		"request_id", requestID,
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if len(body) > maxBodySize {
			return nil, 0, fmt.Errorf("%w: document exceeds %d bytes", ErrMalformed, maxBodySize)
		}
		return body, 0, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resp.StatusCode, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, resp.StatusCode, ErrServer
	default:
		return nil, resp.StatusCode, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}

// decodeRecords pulls the record array out of {"record": [...]}.
func decodeRecords(body []byte) ([]books.Record, error) {
	var envelope struct {
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	raw := bytes.TrimSpace(envelope.Record)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: record is not an array", ErrMalformed)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(items) == 0 {
		return nil, ErrEmpty
	}

	records := make([]books.Record, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		switch {
		case len(item) == 0 || bytes.Equal(item, []byte("null")):
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformed, i)
		case item[0] != '{':
			// Strings, numbers, booleans and arrays carry no fields.
			item = []byte("{}")
		}
		if err := json.Unmarshal(item, &records[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformed, i, err)
		}
	}

	return records, nil
}
