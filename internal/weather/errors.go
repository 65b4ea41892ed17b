package weather

import (
	"errors"
	"fmt"
)

// Ingestion error kinds. Fetch always wraps one of these so callers can
// branch with errors.Is regardless of the underlying cause.
var (
	// ErrAuth means the provider rejected the API credential. Not retryable;
	// a full cycle of these is escalated loudly by the scheduler.
	ErrAuth = errors.New("invalid or missing API credential")

	// ErrRateLimited means the provider is throttling us. Retryable.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrCityNotFound means the provider does not know the requested city.
	ErrCityNotFound = errors.New("city not found")

	// ErrNetwork covers timeouts, connection failures and provider-side
	// 5xx responses. Retryable.
	ErrNetwork = errors.New("network failure")

	// ErrBadPayload means the response arrived but its shape was not usable.
	ErrBadPayload = errors.New("unexpected provider response")
)

// Retryable reports whether the ingestion error is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimited)
}

// ValidationError is returned by Normalize when a required field is
// missing or malformed. The record is rejected, never persisted.
type ValidationError struct {
	City   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.City == "" {
		return fmt.Sprintf("invalid weather payload: %s", e.Reason)
	}
	return fmt.Sprintf("invalid weather payload for %q: %s", e.City, e.Reason)
}
