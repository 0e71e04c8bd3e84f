package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the upstream has no document for the requested
	// company and period. Callers treat this as data absence, not failure.
	ErrNotFound = errors.New("document not found")

	// ErrRateLimited means the upstream throttled us after retries were
	// exhausted.
	ErrRateLimited = errors.New("rate limited by upstream")
)

// TransientError wraps failures worth retrying, network faults and 5xx
// responses. The backoff loop retries these and gives up on anything else.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fetch failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
