package provisionr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the error body returned by the provisionR API. Detail is
// a string for most errors and a list of field errors for validation
// failures.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Message flattens Detail into one line.
func (e *ErrorResponse) Message() string {
	if e == nil || len(e.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(e.Detail, &text); err == nil {
		return text
	}
	var fields []ValidationDetail
	if err := json.Unmarshal(e.Detail, &fields); err == nil && len(fields) > 0 {
		return fields[0].Message
	}
	return string(e.Detail)
}

// ValidationDetail is one entry of a 422 response.
type ValidationDetail struct {
	Location []any  `json:"loc"`
	Message  string `json:"msg"`
	Type     string `json:"type"`
}

var (
	ErrorNotFound     = errors.New("resource not found")
	ErrorUnauthorized = errors.New("unauthorized")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("provisionR API returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("provisionR API returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets callers match the sentinel errors with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrorNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrorUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}
