package generic

import "slices"

// =============================================================================
// RANGE BUILDER - Dates -> maximal contiguous periods
// =============================================================================

// BuildRanges merges a set of dates into the sorted list of maximal
// contiguous periods. Duplicates and input order are irrelevant; the input
// slice is not modified.
//
// Two dates are contiguous iff they are exactly one calendar day apart.
func BuildRanges(dates []Date) []Period {
	if len(dates) == 0 {
		return []Period{}
	}

	sorted := slices.Clone(dates)
	SortDates(sorted)

	ranges := make([]Period, 0, 1)
	current := Single(sorted[0])
	for _, d := range sorted[1:] {
		switch {
		case d == current.End:
			// duplicate
		case d == current.End.AddDays(1):
			current.End = d
		default:
			ranges = append(ranges, current)
			current = Single(d)
		}
	}
	return append(ranges, current)
}

// ExpandRanges returns every date covered by ranges, ascending and unique.
// ExpandRanges(BuildRanges(d)) equals the sorted unique set of d.
func ExpandRanges(ranges []Period) []Date {
	var out []Date
	for _, r := range ranges {
		out = append(out, r.Days()...)
	}
	SortDates(out)
	return slices.Compact(out)
}

// =============================================================================
// RANGE FILTER
// =============================================================================

// IntersectsMonth reports whether any date of p falls in ym.
func IntersectsMonth(p Period, ym YearMonth) bool {
	return p.Overlaps(ym.Period())
}

// IntersectsWindow reports whether p overlaps [from, to]. A nil bound is
// unbounded on that side.
func IntersectsWindow(p Period, from, to *Date) bool {
	if from != nil && p.End.Before(*from) {
		return false
	}
	if to != nil && p.Start.After(*to) {
		return false
	}
	return true
}

// FilterMonth keeps the periods intersecting ym, preserving order.
func FilterMonth(ranges []Period, ym YearMonth) []Period {
	out := make([]Period, 0, len(ranges))
	for _, r := range ranges {
		if IntersectsMonth(r, ym) {
			out = append(out, r)
		}
	}
	return out
}

// FilterWindow keeps the periods intersecting [from, to], preserving order.
func FilterWindow(ranges []Period, from, to *Date) []Period {
	out := make([]Period, 0, len(ranges))
	for _, r := range ranges {
		if IntersectsWindow(r, from, to) {
			out = append(out, r)
		}
	}
	return out
}
