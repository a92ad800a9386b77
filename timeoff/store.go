package timeoff

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// RECORD STORE - External collaborator contract
// =============================================================================

// RecordFilter selects leave records. Zero fields don't filter; From and To
// are inclusive.
type RecordFilter struct {
	Submitter  string
	EmployeeID string
	From       *generic.Date
	To         *generic.Date
	Statuses   []Status
}

// Matches reports whether r passes the filter. Backends that can't push a
// filter down use this.
func (f RecordFilter) Matches(r LeaveRecord) bool {
	if f.Submitter != "" && r.Submitter != f.Submitter {
		return false
	}
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
		return false
	}
	return true
}

// RecordStore persists leave records.
//
// InsertLeaveRecords is all-or-nothing and must enforce, atomically, that no
// two non-rejected records share (Submitter, Date). A violation is reported
// as a *generic.DuplicateRecordError.
//
// UpdateLeaveStatus is a compare-and-set: it moves the record from `from` to
// `to` and fails with generic.ErrInvalidTransition if the stored status is no
// longer `from`, or generic.ErrRecordNotFound if the record is gone.
type RecordStore interface {
	ListLeaveRecords(ctx context.Context, filter RecordFilter) ([]LeaveRecord, error)
	GetLeaveRecord(ctx context.Context, id string) (LeaveRecord, error)
	InsertLeaveRecords(ctx context.Context, records []LeaveRecord) error
	UpdateLeaveStatus(ctx context.Context, id string, from, to Status, at time.Time) (LeaveRecord, error)
}

// SortRecords orders records by date, then employee, then ID.
func SortRecords(records []LeaveRecord) {
	slices.SortFunc(records, func(a, b LeaveRecord) int {
		return cmp.Or(
			a.Date.Compare(b.Date),
			cmp.Compare(a.EmployeeID, b.EmployeeID),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
