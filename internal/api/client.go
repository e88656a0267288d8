package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/nlq/internal/errors"
	"github.com/diogo/nlq/internal/models"
)

// QueryClient is the remote translation/execution service as seen by the
// request controller.
type QueryClient interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

// ServiceClientInterface is the full client surface used by commands
type ServiceClientInterface interface {
	QueryClient
	Health(ctx context.Context) error
	Endpoint() string
	Close()
}

// Client is the HTTP client for the nl-query service
type Client struct {
	httpClient tls_client.HttpClient
	endpoint   string
	timeout    time.Duration
	insecure   bool
	logger     *slog.Logger
	mu         sync.RWMutex
	closed     bool
}

// Ensure Client implements ServiceClientInterface
var _ ServiceClientInterface = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithInsecureSkipVerify disables TLS certificate verification
func WithInsecureSkipVerify(enabled bool) ClientOption {
	return func(c *Client) {
		c.insecure = enabled
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the service at endpoint (scheme, host and
// optional base path).
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = models.DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}

	client := &Client{
		endpoint: endpoint,
		timeout:  120 * time.Second,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		if client.insecure {
			options = append(options, tls_client.WithInsecureSkipVerify())
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the service base URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close releases idle connections. Further calls fail with a network error.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Query posts req to the nl-query endpoint and validates the reply.
// Non-2xx replies yield RequestFailed, transport failures Network, and a
// malformed success payload InvalidResponse.
func (c *Client) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	url := c.endpoint + models.EndpointQuery

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	start := time.Now()
	status, body, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		c.logger.Debug("query transport failure", slog.String("url", url), slog.Any("error", err))
		return nil, err
	}
	c.logger.Debug("query response",
		slog.String("url", url),
		slog.Int("status", status),
		slog.Int("bytes", len(body)),
		slog.Duration("took", time.Since(start)),
	)

	if status < 200 || status > 299 {
		return nil, apierrors.NewRequestFailedError(status, url, errorMessage(body))
	}

	return ParseQueryResponse(body)
}

// Health probes the service health endpoint
func (c *Client) Health(ctx context.Context) error {
	url := c.endpoint + models.EndpointHealth

	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return apierrors.NewRequestFailedError(status, url, errorMessage(body))
	}

	if st := gjson.GetBytes(body, "status"); st.Exists() && st.String() != "ok" {
		return apierrors.NewInvalidResponseError("status", fmt.Sprintf("service reported %q", st.String()))
	}
	return nil
}

// do performs a request and reads the whole body. Any failure to obtain a
// complete response is a Network error.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	if c.IsClosed() {
		return 0, nil, apierrors.NewNetworkError(url, fmt.Errorf("client is closed"))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(url, fmt.Errorf("failed to create request: %w", err))
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(url, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(url, fmt.Errorf("failed to read response body: %w", err))
	}

	return resp.StatusCode, body, nil
}
