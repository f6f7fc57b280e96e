package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// ErrNetwork wraps a transport failure. The request may not have reached
// the server, so it is safe to retry.
type ErrNetwork struct {
	Err error
}

func (e ErrNetwork) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e ErrNetwork) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failed call may be retried as-is
func (e ErrNetwork) Retryable() bool {
	return true
}

// ErrValidation indicates the server rejected the payload field by field
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e ErrValidation) Error() string {
	if len(e.Fields) == 0 {
		return "validation rejected: " + e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation rejected: " + strings.Join(parts, "; ")
}

// ErrUnauthorized indicates the credentials were missing, expired or lack
// access. The caller should re-authenticate.
type ErrUnauthorized struct {
	Status int
}

func (e ErrUnauthorized) Error() string {
	return fmt.Sprintf("not authorized (status %d)", e.Status)
}

// ErrNotFound indicates the addressed record does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrStatus is any other unexpected response status
type ErrStatus struct {
	Code    int
	Message string
}

func (e ErrStatus) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// ErrRateLimited indicates rate limiting persisted past the retry budget
type ErrRateLimited struct {
	RetryAfter int
}

func (e ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

// errorBody is the API's JSON error envelope
type errorBody struct {
	Error         string            `json:"error"`
	Errors        map[string]string `json:"errors,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// responseError maps a non-success response onto the error taxonomy.
// The body is consumed.
func responseError(resp *http.Response, resource, id string) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized{Status: resp.StatusCode}
	case http.StatusNotFound:
		return ErrNotFound{Resource: resource, ID: id}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation{Message: body.Error, Fields: body.Errors}
	default:
		return ErrStatus{Code: resp.StatusCode, Message: body.Error}
	}
}
