package internal

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors returned by the model backends and the analyzer
var (
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrEmptyResponse     = errors.New("empty backend response")
	ErrEmptyTranscript   = errors.New("transcript is empty")
	ErrReportNotFound    = errors.New("report not found")
	ErrHistoryDisabled   = errors.New("report history is disabled")
)

// APIError represents a non-200 response from a model backend
type APIError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Backend, e.StatusCode, e.Body)
}

// HTTPStatus returns the upstream status code
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// parseAPIError reads up to 4KB of the response body into an APIError
func parseAPIError(backend string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{Backend: backend, StatusCode: resp.StatusCode, Body: string(body)}
}

// errorKind classifies a backend failure for metrics and logs
func errorKind(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return "status"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	default:
		return "transport"
	}
}
