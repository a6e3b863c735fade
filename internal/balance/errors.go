package balance

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error categories used to pick a user-facing message
const (
	CategoryAuthFailure = "authentication_failure"
	CategoryRateLimit   = "rate_limit"
	CategoryServerError = "server_error"
	CategoryNetwork     = "network_error"
	CategoryFormat      = "format_incompatibility"
	CategoryUnknown     = "unknown_error"
)

var userMessages = map[string]string{
	CategoryAuthFailure: "Authentication failed. Please check the API key.",
	CategoryRateLimit:   "Rate limit exceeded. Please try again later.",
	CategoryServerError: "Server error occurred. Please try again later.",
	CategoryNetwork:     "Network error: unable to reach the usage API.",
	CategoryFormat:      "The usage API returned an unexpected response.",
	CategoryUnknown:     "An unknown error occurred.",
}

// CategorizeStatus maps a non-200 status code to an error category
func CategorizeStatus(statusCode int) string {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return CategoryAuthFailure
	case statusCode == http.StatusTooManyRequests:
		return CategoryRateLimit
	case statusCode >= http.StatusInternalServerError:
		return CategoryServerError
	default:
		return CategoryUnknown
	}
}

// UserMessage returns the message shown for a category
func UserMessage(category string) string {
	if msg, ok := userMessages[category]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}

// HTTPError is returned when the usage API answers with a non-200 status
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// Category returns the error category for the status code
func (e *HTTPError) Category() string {
	return CategorizeStatus(e.StatusCode)
}

// NetworkError wraps transport failures, including timeouts
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Category returns CategoryNetwork
func (e *NetworkError) Category() string {
	return CategoryNetwork
}

// ShapeError is returned when a 200 response does not carry the expected fields
type ShapeError struct {
	Body string
	Err  error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("failed to parse usage response: %v", e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// Category returns CategoryFormat
func (e *ShapeError) Category() string {
	return CategoryFormat
}

// Categorize returns the category of any error produced by this package
func Categorize(err error) string {
	var c interface{ Category() string }
	if errors.As(err, &c) {
		return c.Category()
	}
	return CategoryUnknown
}
