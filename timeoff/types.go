// Package timeoff implements leave accounting: per-day leave records, the
// ranges derived from them, the paid-time-off quota ledger, and the request
// lifecycle that decides and persists new records.
package timeoff

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the accounting bucket of a leave day. It is decided once, when
// the record is created, and never recomputed.
type Category string

const (
	CategoryPaidTimeOff  Category = "paid_time_off"
	CategoryNonPaidLeave Category = "non_paid_leave"
)

func (c Category) Valid() bool {
	return c == CategoryPaidTimeOff || c == CategoryNonPaidLeave
}

// =============================================================================
// STATUS - Pending -> {Approved, Rejected}, both terminal
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether s -> next is a legal lifecycle step.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// =============================================================================
// LEAVE RECORD - One day of requested or realized absence
// =============================================================================

// FullDayHours is the length of one leave day in hours.
const FullDayHours = 8

// LeaveRecord is one day of leave. At most one non-rejected record exists per
// (Submitter, Date); storage enforces it.
type LeaveRecord struct {
	ID           string
	Date         generic.Date
	Hours        decimal.Decimal
	EmployeeID   string
	EmployeeName string
	Submitter    string // identity that owns the record
	Category     Category
	Status       Status
	Reason       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the record takes part in aggregation.
func (r LeaveRecord) Active() bool {
	return r.Status != StatusRejected
}

// Days converts Hours into days of fullDayHours (FullDayHours when zero).
func (r LeaveRecord) Days(fullDayHours decimal.Decimal) decimal.Decimal {
	return generic.Amount{Value: r.Hours, Unit: generic.UnitHours}.InDays(fullDayHours).Value
}

// ActiveRecords drops rejected records. Range building and calendar marks
// only ever see the result of this filter.
func ActiveRecords(records []LeaveRecord) []LeaveRecord {
	out := make([]LeaveRecord, 0, len(records))
	for _, r := range records {
		if r.Active() {
			out = append(out, r)
		}
	}
	return out
}
