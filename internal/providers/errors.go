package providers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	KindBadRequest  ErrorKind = "bad_request"
	KindForbidden   ErrorKind = "forbidden"
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindServer      ErrorKind = "server"
	KindNetwork     ErrorKind = "network"
	KindOther       ErrorKind = "other"
)

// UpstreamError is the typed failure surfaced for every unsuccessful upstream call.
type UpstreamError struct {
	Kind       ErrorKind
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %s %s: %s (status=%d)", e.Kind, e.Endpoint, msg, e.StatusCode)
	}
	return fmt.Sprintf("upstream %s %s: %s", e.Kind, e.Endpoint, msg)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// KindForStatus maps an HTTP status code onto an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusForbidden, status == http.StatusUnauthorized:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindOther
	}
}

// AsUpstreamError attempts to unwrap an error into an UpstreamError.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr, true
	}
	return nil, false
}

// IsRateLimited reports whether err represents an upstream 429.
func IsRateLimited(err error) bool {
	if _, ok := AsRateLimitError(err); ok {
		return true
	}
	if upErr, ok := AsUpstreamError(err); ok {
		return upErr.Kind == KindRateLimited
	}
	return false
}

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}
