package exec

import (
	"errors"
	"fmt"
	"time"
)

// errNilResponse marks a RequestFunc that returned neither a response nor an
// error. It flows through the transport-error retry path.
var errNilResponse = errors.New("request function returned neither a response nor an error")

// RetryAfterTooLongError reports a 429 whose provider-mandated wait exceeds
// the caller's configured cap. The call is not retried; the caller decides
// whether to skip this unit of work or handle it out-of-band rather than
// blocking a whole batch on one oversized wait.
type RetryAfterTooLongError struct {
	// Context is the call context string the caller supplied.
	Context string

	// RetryAfter is the wait the provider requested.
	RetryAfter time.Duration

	// Cap is the caller's configured maximum wait.
	Cap time.Duration
}

// Error implements the error interface.
func (e *RetryAfterTooLongError) Error() string {
	return fmt.Sprintf("%s: provider requested %s wait, exceeds cap of %s",
		e.Context, e.RetryAfter, e.Cap)
}

// RetriesExhaustedError reports that the retry loop completed every attempt
// without reaching a terminal return.
type RetriesExhaustedError struct {
	// Context is the call context string the caller supplied.
	Context string

	// Attempts is the number of attempts that were made.
	Attempts int
}

// Error implements the error interface.
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s: max retries exceeded after %d attempts", e.Context, e.Attempts)
}
