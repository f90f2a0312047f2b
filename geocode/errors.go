// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ProviderError represents errors specific to geocoding provider calls.
type ProviderError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding provider errors.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit means the provider's rate limit was hit.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded means the provider quota was exceeded.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout means the call timed out.
	ErrorTypeTimeout
	// ErrorTypeInvalidRequest means the request was rejected as invalid.
	ErrorTypeInvalidRequest
	// ErrorTypeNetwork means a transport-level failure.
	ErrorTypeNetwork
	// ErrorTypeParse means the provider response could not be decoded.
	ErrorTypeParse
)

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTimeoutError reports whether the error is a provider timeout. Timeouts
// are the one retryable condition and the one outcome the scorer reports
// separately from failures.
func IsTimeoutError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsRateLimitError reports whether the error is a provider rate limit.
func IsRateLimitError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// ClassifyHTTPError converts a non-200 status into a typed provider error.
func ClassifyHTTPError(statusCode int) *ProviderError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &ProviderError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &ProviderError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &ProviderError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusGatewayTimeout: // 504
		return &ProviderError{
			Type:    ErrorTypeTimeout,
			Message: "gateway timeout",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return &ProviderError{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
