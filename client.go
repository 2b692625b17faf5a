package labelzoom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the production LabelZoom API host.
	DefaultEndpoint = "https://api.labelzoom.net"

	convertEndpoint       = "/api/v2/convert/%s/to/zpl"
	streamConvertEndpoint = "/api/v2.5/convert/%s/to/zpl"
	defaultUserAgent      = "labelzoom-go"
)

// Client represents a LabelZoom API client.
//
// A Client may be reused for any number of sequential calls. Concurrent
// conversions are safe as long as the underlying *http.Client is, but
// SetEndpoint must not race with in-flight calls.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	userAgent  string
	timeout    time.Duration
	logger     *slog.Logger
	optErr     error
}

// Option is a function that configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoint sets a custom base URL for the API.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout limits how long a call may wait on the server. For Convert
// and the other whole-document calls it covers the entire exchange. For
// streaming calls it covers only the wait for response headers, so slow
// label callbacks never trip it. Without this option the only limit is the
// caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			c.optErr = invalidArgument("timeout must be greater than zero")
			return
		}
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request debugging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a new LabelZoom client authenticated with token.
func New(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, invalidArgument("token cannot be empty")
	}

	c := &Client{
		endpoint:  DefaultEndpoint,
		token:     token,
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.optErr != nil {
		return nil, c.optErr
	}
	if strings.TrimSpace(c.endpoint) == "" {
		return nil, invalidArgument("endpoint cannot be empty")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return c, nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SetEndpoint changes the base URL for subsequent calls.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// Close releases the client. The client holds no resources that need
// explicit teardown, so Close always returns nil.
func (c *Client) Close() error {
	return nil
}

// doRequest posts body to the conversion endpoint for the given source
// format. The caller owns the response body.
func (c *Client) doRequest(ctx context.Context, pathFmt string, format Format, body io.Reader) (*http.Response, error) {
	fullURL := strings.TrimSuffix(c.endpoint, "/") + fmt.Sprintf(pathFmt, format.pathSegment())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, body)
	if err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", format.ContentType())
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.DebugContext(ctx, "sending conversion request", "url", fullURL, "format", format.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Prefer the context's cause so cancellation stays visible to errors.Is.
		if ctx.Err() != nil {
			return nil, &ConversionError{Err: fmt.Errorf("executing request: %w", context.Cause(ctx))}
		}
		return nil, &ConversionError{Err: fmt.Errorf("executing request: %w", err)}
	}

	c.logger.DebugContext(ctx, "received conversion response", "url", fullURL, "status", resp.StatusCode)

	return resp, nil
}

// checkResponse returns a ConversionError carrying the full body when the
// response is not 200 OK. It closes the body in that case.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConversionError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading error body: %w", err),
		}
	}
	return &ConversionError{StatusCode: resp.StatusCode, Body: string(body)}
}
