package timeoff

import (
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// REQUEST VALIDATOR - Temporal and uniqueness pre-checks
// =============================================================================

// Validator rejects past dates and dates the submitter already holds a
// pending or approved record for. It is an optimistic pre-check; storage
// uniqueness is the authoritative guard.
type Validator struct {
	// Location defines "today". Nil means time.Local.
	Location *time.Location

	// Now is overridable for tests.
	Now func() time.Time
}

// Today returns the current date in the validator's location.
func (v Validator) Today() generic.Date {
	loc := v.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return generic.DateOf(now().In(loc))
}

// Validate checks one requested date against the submitter's existing
// records. Records owned by other submitters and rejected records never
// conflict.
func (v Validator) Validate(submitter string, date generic.Date, existing []LeaveRecord) error {
	if date.Before(v.Today()) {
		return &generic.InvalidDateError{Input: date.String(), Reason: "leave must be requested for today or a future date"}
	}

	for _, r := range existing {
		if r.Submitter != submitter || !r.Active() {
			continue
		}
		if r.Date == date {
			return &generic.DuplicateRecordError{Submitter: submitter, Date: date, ExistingID: r.ID}
		}
	}
	return nil
}
