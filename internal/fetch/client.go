package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/webrisk/internal/model"
	"golang.org/x/net/proxy"
)

const (
	// DefaultMaxBodySize caps upstream responses at 2 MiB.
	DefaultMaxBodySize int64 = 2 << 20

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "webrisk"

	// apiKeyHeader carries the upstream credential.
	apiKeyHeader = "X-Api-Key"

	// errorBodyLimit bounds the body excerpt kept in a StatusError.
	errorBodyLimit = 256

	checkProxyTimeout = 2 * time.Second
)

// Client fetches website reports from the upstream API.
type Client struct {
	endpoint     *url.URL
	apiKey       string
	userAgent    string
	proxyAddress string
	maxBodySize  int64
	timeout      time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithAPIKey sets the key sent in the X-Api-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithProxy routes requests through the SOCKS5 proxy at address ("host:port").
// An empty address leaves the client on a direct connection.
func WithProxy(address string) Option {
	return func(c *Client) error {
		if address == "" {
			return nil
		}
		if !isValidProxyAddress(address) {
			return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, address)
		}
		c.proxyAddress = address
		return nil
	}
}

// WithMaxBodySize limits how many bytes of a response are read.
// Values <= 0 keep the default.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) error {
		if n > 0 {
			c.maxBodySize = n
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithHTTPClient replaces the HTTP client. The proxy option is ignored
// when a custom client is supplied.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// NewClient creates a Client for the API at endpoint.
// It validates configuration but does not contact the upstream.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid api endpoint %q: must be an absolute http(s) URL", endpoint)
	}

	c := &Client{
		endpoint:    u,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     timeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.httpClient == nil {
		hc, err := c.newHTTPClient()
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}
	return c, nil
}

// ProxyAddress returns the configured SOCKS5 proxy, or "" for direct.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// newHTTPClient builds the HTTP client, dialing through the proxy if set.
func (c *Client) newHTTPClient() (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if c.proxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// requestURL returns {endpoint}?url=<target>, keeping existing query values.
func (c *Client) requestURL(target string) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch retrieves the report for target.
// A 404 yields ErrNotFound; any other non-2xx status yields *StatusError.
func (c *Client) Fetch(ctx context.Context, target string) (*model.WebsiteReport, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(target), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report for %s: %w", target, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream responded",
		"url", target,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
		"authenticated", c.apiKey != "",
	)

	body, err := readLimited(resp.Body, c.maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to read report for %s: %w", target, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > errorBodyLimit {
			excerpt = excerpt[:errorBodyLimit]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: excerpt}
	}

	var report model.WebsiteReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report for %s: %w", target, err)
	}
	return &report, nil
}

// readLimited reads at most limit bytes, failing if the body is larger.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)
	}
	return data, nil
}

// isValidProxyAddress checks that address is "host:port" with a usable port.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// CheckProxy verifies that the configured proxy completes a SOCKS5
// method negotiation without authentication. A client without a proxy
// always reports ProxyStatusOK.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}
