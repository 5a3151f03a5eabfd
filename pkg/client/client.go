// Package client is the transport and validation layer for the BitBrowser
// local API. Every operation is a JSON POST to a fixed path whose response is
// wrapped in a {success, msg, data} envelope; Call returns the envelope data
// or one of NetworkError, HTTPStatusError, ResponseDecodeError and APIError,
// and Typed additionally decodes the data into a named shape, failing with
// ResponseValidationError when it does not fit.
package client

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
	"github.com/sirupsen/logrus"
)

const (
	// DefaultURL is where the BitBrowser desktop app serves its local API
	DefaultURL = "http://127.0.0.1:54345"
	// DefaultTimeout is applied to every call
	DefaultTimeout = 10 * time.Second

	apiKeyHeader    = "x-api-key"
	requestIDHeader = "X-Request-ID"
)

// Config holds what the client needs at construction. Nothing is discovered
// at runtime.
type Config struct {
	BaseURL string
	Headers map[string]string
	Token   string
	Timeout time.Duration

	// HTTPClient replaces the default client; its Timeout is left alone.
	HTTPClient *http.Client
}

// Validate checks the config and fills in defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultURL
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must be http(s): %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// Client talks to one BitBrowser service. The underlying http.Client and its
// connection pool are created once and shared by all calls.
type Client struct {
	http    *http.Client
	baseURL string
	headers http.Header
	logger  logrus.FieldLogger
}

// NewClient builds a client from cfg. A nil logger discards all output.
func NewClient(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	if cfg.Token != "" {
		headers.Set(apiKeyHeader, cfg.Token)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: headers,
		logger:  logger.WithField("component", "bitbrowser-client"),
	}, nil
}

// BaseURL returns the address all endpoints are appended to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Call posts payload to endpoint and returns the envelope's data untouched.
// payload may be nil, a map, a request struct (see Payload) or raw JSON.
// Absent and null data both come back as nil.
func (c *Client) Call(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	body, err := encodeBody(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.headers.Clone()
	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)

	logger := c.logger.WithFields(logrus.Fields{
		"endpoint":   endpoint,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Debug("Request failed")
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithError(err).Debug("Failed to read response body")
		return nil, &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	logger = logger.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("Unexpected HTTP status")
		return nil, &HTTPStatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		logger.WithError(err).Debug("Failed to decode envelope")
		return nil, &ResponseDecodeError{Endpoint: endpoint, Body: string(raw), Err: err}
	}

	data := env.Data
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = nil
	}

	if !*env.Success {
		logger.WithField("msg", env.Msg.String).Debug("Service reported failure")
		return nil, &APIError{Endpoint: endpoint, Message: env.Msg.String, Data: data}
	}

	logger.Debug("Request completed")
	return data, nil
}
