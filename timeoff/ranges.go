package timeoff

import (
	"cmp"
	"slices"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEAVE RANGE - Derived, read-only run of consecutive leave days
// =============================================================================

// LeaveRange is a maximal run of consecutive dates for one employee and
// category. Rollup is never StatusRejected.
type LeaveRange struct {
	EmployeeID string
	Category   Category
	generic.Period
	Rollup Status
}

type rangeKey struct {
	employeeID string
	category   Category
}

// BuildLeaveRanges groups active records by (employee, category), merges each
// group into maximal ranges and rolls up the per-day statuses of every range.
// Rejected records are dropped first. Output is ordered by employee, category,
// then start date.
func BuildLeaveRanges(records []LeaveRecord) []LeaveRange {
	groups := make(map[rangeKey][]LeaveRecord)
	for _, r := range ActiveRecords(records) {
		k := rangeKey{employeeID: r.EmployeeID, category: r.Category}
		groups[k] = append(groups[k], r)
	}

	keys := make([]rangeKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b rangeKey) int {
		return cmp.Or(cmp.Compare(a.employeeID, b.employeeID), cmp.Compare(a.category, b.category))
	})

	out := []LeaveRange{}
	for _, k := range keys {
		group := groups[k]

		statuses := make(map[generic.Date][]Status, len(group))
		dates := make([]generic.Date, 0, len(group))
		for _, r := range group {
			statuses[r.Date] = append(statuses[r.Date], r.Status)
			dates = append(dates, r.Date)
		}

		for _, p := range generic.BuildRanges(dates) {
			var covered []Status
			for _, day := range p.Days() {
				covered = append(covered, statuses[day]...)
			}
			out = append(out, LeaveRange{
				EmployeeID: k.employeeID,
				Category:   k.category,
				Period:     p,
				Rollup:     Rollup(covered),
			})
		}
	}
	return out
}

// RangeQuery narrows a range listing. Zero fields don't filter.
type RangeQuery struct {
	Category Category
	Month    *generic.YearMonth
	From     *generic.Date
	To       *generic.Date
}

// FilterLeaveRanges applies q, preserving order. Month takes precedence over
// the From/To window when both are set.
func FilterLeaveRanges(ranges []LeaveRange, q RangeQuery) []LeaveRange {
	out := make([]LeaveRange, 0, len(ranges))
	for _, r := range ranges {
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if q.Month != nil {
			if !generic.IntersectsMonth(r.Period, *q.Month) {
				continue
			}
		} else if !generic.IntersectsWindow(r.Period, q.From, q.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SplitByCategory partitions ranges into paid and unpaid.
func SplitByCategory(ranges []LeaveRange) (paid, unpaid []LeaveRange) {
	for _, r := range ranges {
		switch r.Category {
		case CategoryPaidTimeOff:
			paid = append(paid, r)
		case CategoryNonPaidLeave:
			unpaid = append(unpaid, r)
		}
	}
	return paid, unpaid
}
