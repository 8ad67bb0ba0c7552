package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExhausted marks a submission that kept hitting 429
	// past the retry budget.
	ErrRateLimitExhausted = errors.New("rate limit retry budget exhausted")

	// ErrInterrupted marks work cut short by shutdown
	ErrInterrupted = errors.New("interrupted")
)

// AuthError is a credential rejection. It aborts the whole run; nothing
// else can succeed without valid credentials.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("credentials rejected: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// RejectedError is a remote rejection that retrying cannot fix, such as
// a malformed payload.
type RejectedError struct {
	Err error
}

func (e *RejectedError) Error() string { return fmt.Sprintf("rejected by server: %v", e.Err) }
func (e *RejectedError) Unwrap() error { return e.Err }
