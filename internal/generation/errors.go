package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrorCode groups generation failures by how a caller should react.
type ErrorCode string

const (
	CodeRateLimit      ErrorCode = "rate_limit_exceeded"
	CodeAuth           ErrorCode = "authentication_failed"
	CodeQuota          ErrorCode = "quota_exceeded"
	CodeServer         ErrorCode = "server_error"
	CodeNetwork        ErrorCode = "network_error"
	CodeInvalidRequest ErrorCode = "invalid_request"
	CodeTimeout        ErrorCode = "timeout"
	CodeCanceled       ErrorCode = "canceled"
	CodeEmpty          ErrorCode = "empty_response"
	CodeUnknown        ErrorCode = "unknown_error"
)

// ErrNoGenerator is reported when no backend is configured at all.
var ErrNoGenerator = errors.New("no text generator configured")

// GenerationError is a classified backend failure.
type GenerationError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	// RetryAfter is the backend's suggested wait before another attempt.
	RetryAfter time.Duration
	Err        error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("generation %s: %s", e.Code, msg)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func newError(code ErrorCode, msg string, err error) *GenerationError {
	ge := &GenerationError{Code: code, Message: msg, Err: err}
	switch code {
	case CodeRateLimit:
		ge.Retryable, ge.RetryAfter = true, time.Minute
	case CodeQuota:
		ge.Retryable, ge.RetryAfter = true, time.Hour
	case CodeNetwork:
		ge.Retryable, ge.RetryAfter = true, 10*time.Second
	case CodeServer, CodeTimeout, CodeUnknown:
		ge.Retryable, ge.RetryAfter = true, 5*time.Second
	}
	return ge
}

// Classify maps any error onto a GenerationError. Errors that already are
// one are returned as is; nil stays nil.
func Classify(err error) *GenerationError {
	if err == nil {
		return nil
	}

	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}

	switch {
	case errors.Is(err, context.Canceled):
		return newError(CodeCanceled, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(CodeTimeout, "", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newError(CodeTimeout, "", err)
		}
		return newError(CodeNetwork, "", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") || strings.Contains(msg, "too many requests"):
		return newError(CodeRateLimit, "", err)
	case strings.Contains(msg, "quota"):
		return newError(CodeQuota, "", err)
	case strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized"):
		return newError(CodeAuth, "", err)
	case strings.Contains(msg, "invalid"):
		return newError(CodeInvalidRequest, "", err)
	case strings.Contains(msg, "server error") || strings.Contains(msg, "internal error"):
		return newError(CodeServer, "", err)
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection"):
		return newError(CodeNetwork, "", err)
	}
	return newError(CodeUnknown, "", err)
}

// FromStatus classifies a non-2xx HTTP reply. retryAfter overrides the
// default wait when the server sent a Retry-After header.
func FromStatus(status int, msg string, retryAfter time.Duration) *GenerationError {
	if msg == "" {
		msg = http.StatusText(status)
	}

	var ge *GenerationError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		ge = newError(CodeAuth, msg, nil)
	case status == http.StatusTooManyRequests && strings.Contains(strings.ToLower(msg), "quota"):
		ge = newError(CodeQuota, msg, nil)
	case status == http.StatusTooManyRequests:
		ge = newError(CodeRateLimit, msg, nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		ge = newError(CodeTimeout, msg, nil)
	case status >= 500:
		ge = newError(CodeServer, msg, nil)
	case status >= 400:
		ge = newError(CodeInvalidRequest, msg, nil)
	default:
		ge = newError(CodeUnknown, msg, nil)
	}
	if retryAfter > 0 && ge.Retryable {
		ge.RetryAfter = retryAfter
	}
	return ge
}
