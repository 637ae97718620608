/*
errors.go - Error types for the scheduling engine

PURPOSE:
  All scheduling failures are modeled as result values: a nil error means the
  job was created, a non-nil error carries one of a fixed set of reasons.
  Nothing in this package panics for a recoverable condition.

ERROR CATEGORIES:
  1. Policy errors - A scheduling rule rejected the job
  2. Lookup errors - A referenced record does not exist

USAGE:
  API handlers map errors to HTTP status via the helper predicates:

    if schedule.IsNotFound(err) { ... 404 ... }
    if schedule.IsClientError(err) { ... 409 ... }

SEE ALSO:
  - policy.go: Produces these errors in a fixed validation order
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotSaturday is returned when Saturday-only is enabled and the
	// requested date does not fall on a Saturday.
	ErrNotSaturday = errors.New("jobs can only be scheduled on Saturdays")

	// ErrDailyLimitReached is returned when the requested date already holds
	// the configured maximum number of jobs, counting every status.
	ErrDailyLimitReached = errors.New("daily limit reached")

	// ErrClientNotFound is returned when the referenced client does not exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrDuplicateClientOnDate is returned when the client already has a job
	// on the requested date.
	ErrDuplicateClientOnDate = errors.New("client already scheduled for this date")

	// ErrJobNotFound is returned by lookups for a missing job id.
	ErrJobNotFound = errors.New("job not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DailyLimitError reports a date at capacity.
type DailyLimitError struct {
	Date  Date
	Limit int
	Count int
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily limit reached: %s holds %d of %d jobs", e.Date, e.Count, e.Limit)
}

func (e *DailyLimitError) Unwrap() error { return ErrDailyLimitReached }

// DuplicateClientError reports a (date, client) pair that already exists.
type DuplicateClientError struct {
	Date     Date
	ClientID string
}

func (e *DuplicateClientError) Error() string {
	return fmt.Sprintf("client %s already scheduled on %s", e.ClientID, e.Date)
}

func (e *DuplicateClientError) Unwrap() error { return ErrDuplicateClientOnDate }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a scheduling rule rejection
// caused by the request rather than by the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotSaturday) ||
		errors.Is(err, ErrDailyLimitReached) ||
		errors.Is(err, ErrDuplicateClientOnDate)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrJobNotFound)
}
