// Package llm is a client for the JSON text-generation service used to draft
// email templates.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ServiceError wraps errors with service context
type ServiceError struct {
	Service   string // Client name (e.g., "ollama")
	Operation string // Operation that failed (e.g., "request", "decode")
	Err       error  // Underlying error
	Retryable bool   // Whether this error is retryable
}

func (e *ServiceError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("llm %q %s failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("llm %q: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-success response from the service
type HTTPError struct {
	Service    string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("llm %q: HTTP %d %s: %s", e.Service, e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("llm %q: HTTP %d %s", e.Service, e.StatusCode, e.Status)
}

// IsRetryable returns true for 5xx errors and 429 (rate limit)
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// ReplyError means the service answered but the reply could not be used.
type ReplyError struct {
	Service string
	Reason  string
	Err     error
}

func (e *ReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm %q: unusable reply: %s: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("llm %q: unusable reply: %s", e.Service, e.Reason)
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}

// CircuitOpenError indicates the circuit breaker is open
type CircuitOpenError struct {
	Service string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("llm %q: circuit breaker open, service temporarily unavailable", e.Service)
}

// ErrDisabled is returned by a client configured not to call the service.
var ErrDisabled = errors.New("llm: generation service disabled")

func newServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       err,
		Retryable: isRetryableError(err),
	}
}

// isRetryableError checks if a transport error is worth another attempt
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"eof",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsUnavailable reports whether err means the service could not be reached
// or refused the request, as opposed to answering with an unusable reply.
func IsUnavailable(err error) bool {
	var replyErr *ReplyError
	return err != nil && !errors.As(err, &replyErr)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
