/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Sentinels are matched with errors.Is(); structured errors carry the
  context a caller needs to explain the rejection and unwrap to a sentinel.

ERROR CATEGORIES:
  1. Request errors - invalid/past date, duplicate day, quota exceeded
  2. Lifecycle errors - unknown record, illegal status transition
  3. Upstream errors - the record store could not be queried

None of these are retried by the engine. Callers report them.

SEE ALSO:
  - timeoff/validator.go: InvalidDateError, DuplicateRecordError
  - timeoff/ledger.go: QuotaExceededError
  - calendar/service.go: UpstreamFetchError (fail closed)
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for unparseable or past-dated requests.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDuplicateRecord is returned when a non-rejected record already
	// exists for the same submitter and date.
	ErrDuplicateRecord = errors.New("duplicate leave record for date")

	// ErrQuotaExceeded is returned when approved + pending paid days plus
	// the request would exceed the annual limit.
	ErrQuotaExceeded = errors.New("paid time off quota would be exceeded")

	// ErrUpstreamFetch is returned when the record store could not be read.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrRecordNotFound is returned when a referenced record doesn't exist.
	ErrRecordNotFound = errors.New("leave record not found")

	// ErrInvalidTransition is returned for any status change other than
	// pending -> approved or pending -> rejected.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidAmount is returned for non-positive hours or days.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidRequest is returned for a request missing required fields.
	ErrInvalidRequest = errors.New("invalid request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError describes an unparseable or out-of-policy date.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// DuplicateRecordError names the conflicting date.
type DuplicateRecordError struct {
	Submitter  string
	Date       Date
	ExistingID string // empty when detected by the storage constraint
	InRequest  bool   // the same date appears twice in one submission
}

func (e *DuplicateRecordError) Error() string {
	if e.InRequest {
		return fmt.Sprintf("duplicate date in request: %s is listed more than once", e.Date)
	}
	if e.ExistingID == "" {
		return fmt.Sprintf("leave already requested for %s", e.Date)
	}
	return fmt.Sprintf("leave already requested for %s (record %s)", e.Date, e.ExistingID)
}

func (e *DuplicateRecordError) Unwrap() error { return ErrDuplicateRecord }

// QuotaExceededError reports the committed total against the limit so the
// user knows to wait for pending requests to resolve.
type QuotaExceededError struct {
	Committed decimal.Decimal // approved + pending paid days
	Requested decimal.Decimal
	Limit     decimal.Decimal
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota would be exceeded: %s committed + %s requested > %s allowed; wait for pending requests to be resolved",
		e.Committed, e.Requested, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// UpstreamFetchError wraps a failed read from an external source.
type UpstreamFetchError struct {
	Source string // "leave_records", "holidays", "birthdays"
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *UpstreamFetchError) Unwrap() []error { return []error{ErrUpstreamFetch, e.Err} }

// TransitionError names the rejected status change.
type TransitionError struct {
	RecordID string
	From     string
	To       string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("record %s: cannot move from %s to %s", e.RecordID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// FetchError wraps err as an UpstreamFetchError unless it already is one.
func FetchError(source string, err error) error {
	if err == nil {
		return nil
	}
	var ufe *UpstreamFetchError
	if errors.As(err, &ufe) {
		return err
	}
	return &UpstreamFetchError{Source: source, Err: err}
}
