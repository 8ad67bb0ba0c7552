package habitica

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Direction is a score direction for habits and dailies
type Direction string

const (
	ScoreUp   Direction = "up"
	ScoreDown Direction = "down"
)

// Task is a task as the Habitica API reports it
type Task struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Type     string  `json:"type"`
	Notes    string  `json:"notes"`
	Priority float64 `json:"priority"`
	Value    float64 `json:"value"`
}

// TaskCreate is the payload for creating a task
type TaskCreate struct {
	Text     string  `json:"text"`
	Type     string  `json:"type"`
	Notes    string  `json:"notes,omitempty"`
	Priority float64 `json:"priority,omitempty"`
}

// TaskUpdate is the payload for updating a task. Pointer fields are
// omitted when nil so untouched fields keep their remote values.
type TaskUpdate struct {
	Text     *string  `json:"text,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Priority *float64 `json:"priority,omitempty"`
}

// IsAuth reports whether err is a credential rejection (401/403)
func IsAuth(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsRateLimited reports whether err is an HTTP 429
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// IsTransient reports whether err is worth retrying: a 5xx response or
// a transport-level failure that never produced a status.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	// Cancellation is the caller's signal to stop, not a network
	// hiccup. Per-call deadline expiry still counts as transient.
	if errors.Is(err, context.Canceled) {
		return false
	}
	return err != nil
}

// RetryAfter returns the server-requested delay from a rate-limit
// response, or zero when none was sent.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}
