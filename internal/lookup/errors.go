package lookup

import (
	"errors"
	"fmt"
)

// Lookup errors.
var (
	// ErrLookupFailed wraps every error returned by Client.Lookup.
	ErrLookupFailed = errors.New("lookup failed")

	// ErrTransport is returned when no response was received
	// (connection refused, DNS failure, timeout, cancelled context).
	ErrTransport = errors.New("transport error")

	// ErrHTTPStatus is returned when the endpoint answers with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrResponseTooLarge is returned when the body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("response body too large")

	// ErrInvalidEndpoint is returned when the endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: expected http(s)://host[:port]")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrTorNotRunning is returned when the embedded Tor daemon is used before Start.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")
)

// StatusError carries the status code of a non-2xx response.
// It unwraps to ErrHTTPStatus.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// Body is the beginning of the response body, for diagnostics.
	Body string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d", ErrHTTPStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d: %s", ErrHTTPStatus, e.Code, e.Body)
}

// Unwrap returns ErrHTTPStatus.
func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// ProxyStatus is the result of probing a SOCKS5 proxy.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the proxy completed a SOCKS5 greeting.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates something answered but not as a SOCKS5 proxy.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates the TCP connection failed.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the greeting did not finish in time.
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
