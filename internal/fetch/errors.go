package fetch

import (
	"errors"
	"fmt"
)

// Fetch errors.
var (
	// ErrNotFound is returned when the upstream has no report for the URL.
	ErrNotFound = errors.New("report not found")

	// ErrEmptyEndpoint is returned when no API endpoint is configured.
	ErrEmptyEndpoint = errors.New("api endpoint is empty")

	// ErrEmptyURL is returned when Fetch is called without a target.
	ErrEmptyURL = errors.New("target url is empty")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrBodyTooLarge is returned when a response exceeds the size limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrUnsupportedFile is returned by LoadFile for unknown extensions.
	ErrUnsupportedFile = errors.New("unsupported report file extension")

	// ErrProxyCannotConnect is returned when the proxy does not accept TCP connections.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyNotSOCKS5 is returned when the proxy does not speak SOCKS5.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyTimeout is returned when the proxy handshake times out.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)

// StatusError reports an unexpected HTTP status from the upstream.
type StatusError struct {
	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Body holds the start of the response body, for diagnostics.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected upstream status %d: %s", e.StatusCode, e.Body)
}

// ProxyStatus represents the result of checking the SOCKS5 proxy.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the proxy completed a SOCKS5 handshake.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates the proxy answered but not as SOCKS5.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates we could not establish a connection.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the connection attempt timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not SOCKS5)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the matching sentinel error, or nil if OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotSOCKS5
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
