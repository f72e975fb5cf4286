package errors

// HTTP/network-specific helpers for classifying upstream API failures.
// The scrapers talk to rate-limited third-party APIs; most of what goes
// wrong on that path is transient and worth a bounded retry.

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// FromHTTPStatus maps an upstream HTTP status to an *Error with a retry-aware code.
// Statuses below 400 return nil
func FromHTTPStatus(status int, msg string) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusTooManyRequests:
		return Newf(ErrorCodeTooManyRequests, "%s: status %d", msg, status)
	case status == http.StatusRequestTimeout,
		status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		return Newf(ErrorCodeUnavailable, "%s: status %d", msg, status)
	case status == http.StatusNotFound:
		return Newf(ErrorCodeNotFound, "%s: status %d", msg, status)
	default:
		return Newf(ErrorCodeUpstream, "%s: status %d", msg, status)
	}
}

// IsTransientNet reports whether the error looks like a transient network failure
// (timeouts, resets, refused connections, DNS hiccups). Local cancellation is not transient
func IsTransientNet(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ne net.Error
	if stderrs.As(err, &ne) && ne.Timeout() {
		return true
	}
	if stderrs.Is(err, syscall.ECONNRESET) || stderrs.Is(err, syscall.ECONNREFUSED) ||
		stderrs.Is(err, syscall.EPIPE) {
		return true
	}
	var dnsErr *net.DNSError
	if stderrs.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "http2: server sent goaway"),
		strings.Contains(s, "tls handshake timeout"):
		return true
	default:
		return false
	}
}
