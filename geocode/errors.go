// Copyright 2025 The GeoTowns Authors
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

// GeocodingError represents geocoding specific errors.
type GeocodingError struct {
	Type ErrorType
	// Status is the provider status for answered requests that did not
	// succeed, empty otherwise.
	Status  string
	Message string
	Err     error
}

// ErrorType defines geocoding error types.
type ErrorType int

const (
	// ErrorTypeUnknown unknown error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit rate limit reached.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exceeded.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout connection timeout.
	ErrorTypeTimeout
	// ErrorTypeNotFound location not found.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest invalid request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError network error.
	ErrorTypeNetworkError
	// ErrorTypeRequestDenied the key was rejected.
	ErrorTypeRequestDenied
	// ErrorTypeMalformedResponse the response could not be understood.
	ErrorTypeMalformedResponse
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:           "unknown",
	ErrorTypeRateLimit:         "rate_limit",
	ErrorTypeQuotaExceeded:     "quota_exceeded",
	ErrorTypeTimeout:           "timeout",
	ErrorTypeNotFound:          "not_found",
	ErrorTypeInvalidRequest:    "invalid_request",
	ErrorTypeNetworkError:      "network_error",
	ErrorTypeRequestDenied:     "request_denied",
	ErrorTypeMalformedResponse: "malformed_response",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// Provider statuses with a meaning of their own.
const (
	// StatusOK is the provider status for a successful lookup.
	StatusOK = "OK"
	// StatusUnknownError stands for a status the provider left blank.
	StatusUnknownError = "UNKNOWN_ERROR"
)

// StatusError reports whether err is a provider answer with a non OK
// status, and returns that status. Such errors affect one entry only.
func StatusError(err error) (string, bool) {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) && geoErr.Status != "" {
		return geoErr.Status, true
	}

	return "", false
}

// IsRateLimitError checks whether the error is due to rate limiting.
func IsRateLimitError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError checks whether the error is due to an exhausted quota.
func IsQuotaExceededError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "over_daily_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError checks whether the error is a timeout.
func IsTimeoutError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) && geoErr.Type == ErrorTypeTimeout {
		return true
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

// ClassifyStatus converts a non OK Geocoding API status into an error.
func ClassifyStatus(status, message string) *GeocodingError {
	e := &GeocodingError{
		Status:  status,
		Message: "google maps status: " + status,
	}

	if message != "" {
		e.Message += " (" + message + ")"
	}

	switch status {
	case "ZERO_RESULTS":
		e.Type = ErrorTypeNotFound
	case "OVER_QUERY_LIMIT":
		e.Type = ErrorTypeRateLimit
	case "OVER_DAILY_LIMIT":
		e.Type = ErrorTypeQuotaExceeded
	case "REQUEST_DENIED":
		e.Type = ErrorTypeRequestDenied
	case "INVALID_REQUEST":
		e.Type = ErrorTypeInvalidRequest
	default:
		e.Type = ErrorTypeUnknown
	}

	return e
}

// ClassifyHTTPError classifies an HTTP status code into a geocoding error.
func ClassifyHTTPError(statusCode int, _ string) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound: // 404
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "geocoding endpoint not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (code %d)", statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

func transportError(err error) *GeocodingError {
	t := ErrorTypeNetworkError
	if IsTimeoutError(err) {
		t = ErrorTypeTimeout
	}

	return &GeocodingError{
		Type:    t,
		Message: "geocoding request failed",
		Err:     err,
	}
}

func malformed(err error) *GeocodingError {
	return &GeocodingError{
		Type:    ErrorTypeMalformedResponse,
		Message: "decoding response",
		Err:     err,
	}
}
