/*
ledger.go - Paid-time-off quota ledger

PURPOSE:
  Answers two questions for one employee and one accounting year:
    1. Where does the quota stand? (Evaluate -> Snapshot)
    2. Which category must a new request take? (DecideCategory)

RECOMPUTED, NOT STORED:
  The snapshot is a pure projection of the employee's records. There is no
  persisted "quota exhausted" flag; every decision re-reads the full history.

  approvedPaidDays   = sum(hours, approved, paid) / fullDayHours
  pendingPaidDays    = sum(hours, pending, paid) / fullDayHours
  remainingPaidDays  = max(0, quota - approvedPaidDays)
  isQuotaExhausted   = remainingPaidDays == 0 AND pendingPaidDays == 0

DECISION:
  Not exhausted:  committed = approved + pending
                  committed + requested > quota -> QuotaExceededError
                  otherwise                     -> PaidTimeOff
  Exhausted:      NonPaidLeave, no upper bound

  Pending paid days can block a request without exhausting the quota: the
  user has to wait for them to be approved or rejected.

CONCURRENCY:
  Two submissions evaluated against the same snapshot can both land as
  PaidTimeOff and overrun the quota together. Storage guards per-day
  uniqueness; the quota bound itself is best-effort.

SEE ALSO:
  - request.go: Submit, which feeds the ledger
  - policies.go: QuotaPolicy
*/
package timeoff

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// SNAPSHOT - Derived per-employee per-year summary
// =============================================================================

type Snapshot struct {
	EmployeeID string
	Year       int
	Period     generic.Period

	ApprovedPaidDays   decimal.Decimal
	PendingPaidDays    decimal.Decimal
	ApprovedUnpaidDays decimal.Decimal
	PendingUnpaidDays  decimal.Decimal

	QuotaLimitDays    decimal.Decimal
	RemainingPaidDays decimal.Decimal
	QuotaExhausted    bool
}

// Committed is approved plus pending paid days.
func (s Snapshot) Committed() decimal.Decimal {
	return s.ApprovedPaidDays.Add(s.PendingPaidDays)
}

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	Policy QuotaPolicy
}

func NewLedger(policy QuotaPolicy) Ledger {
	return Ledger{Policy: policy}
}

// Evaluate summarizes records for employeeID in the accounting year named by
// year. Records of other employees, outside the year, or rejected are
// ignored. An empty employeeID accepts every record.
func (l Ledger) Evaluate(employeeID string, year int, records []LeaveRecord) Snapshot {
	period := l.Policy.Period.Year(year)

	s := Snapshot{
		EmployeeID:         employeeID,
		Year:               year,
		Period:             period,
		ApprovedPaidDays:   decimal.Zero,
		PendingPaidDays:    decimal.Zero,
		ApprovedUnpaidDays: decimal.Zero,
		PendingUnpaidDays:  decimal.Zero,
		QuotaLimitDays:     l.Policy.AnnualPaidDays,
	}

	for _, r := range records {
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}
		if !period.Contains(r.Date) {
			continue
		}
		days := r.Days(l.Policy.FullDayHours)

		switch {
		case r.Category == CategoryPaidTimeOff && r.Status == StatusApproved:
			s.ApprovedPaidDays = s.ApprovedPaidDays.Add(days)
		case r.Category == CategoryPaidTimeOff && r.Status == StatusPending:
			s.PendingPaidDays = s.PendingPaidDays.Add(days)
		case r.Category == CategoryNonPaidLeave && r.Status == StatusApproved:
			s.ApprovedUnpaidDays = s.ApprovedUnpaidDays.Add(days)
		case r.Category == CategoryNonPaidLeave && r.Status == StatusPending:
			s.PendingUnpaidDays = s.PendingUnpaidDays.Add(days)
		}
	}

	s.RemainingPaidDays = decimal.Max(decimal.Zero, s.QuotaLimitDays.Sub(s.ApprovedPaidDays))
	s.QuotaExhausted = s.RemainingPaidDays.IsZero() && s.PendingPaidDays.IsZero()
	return s
}

// Decision is the category a request must take, with the snapshot it was
// derived from.
type Decision struct {
	Category  Category
	Requested decimal.Decimal
	Snapshot  Snapshot
}

// DecideCategory returns the category for a request of requestedDays, or a
// *generic.QuotaExceededError. It depends on the snapshot alone.
func (l Ledger) DecideCategory(s Snapshot, requestedDays decimal.Decimal) (Decision, error) {
	d := Decision{Requested: requestedDays, Snapshot: s}

	if s.QuotaExhausted {
		d.Category = CategoryNonPaidLeave
		return d, nil
	}

	committed := s.Committed()
	if committed.Add(requestedDays).GreaterThan(s.QuotaLimitDays) {
		return d, &generic.QuotaExceededError{
			Committed: committed,
			Requested: requestedDays,
			Limit:     s.QuotaLimitDays,
		}
	}

	d.Category = CategoryPaidTimeOff
	return d, nil
}
