package calendar

import (
	"slices"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// AGGREGATOR - Leave, holidays, birthdays -> per-date tag sets
// =============================================================================

// Marks maps a date to its tag set. Tags accumulate: a date can be a
// holiday, someone's birthday and someone's leave day at once.
type Marks map[generic.Date]Mark

func (m Marks) add(d generic.Date, t Tag) {
	mark, ok := m[d]
	if !ok {
		mark = Mark{Date: d}
	}
	if slices.Contains(mark.Tags, t) {
		return
	}
	mark.Tags = append(mark.Tags, t)
	m[d] = mark
}

// Get returns the mark of d; ok is false for an unmarked date.
func (m Marks) Get(d generic.Date) (Mark, bool) {
	mark, ok := m[d]
	return mark, ok
}

// Between returns the marks in [from, to], ascending by date.
func (m Marks) Between(from, to generic.Date) []Mark {
	out := make([]Mark, 0)
	for d, mark := range m {
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, mark)
	}
	slices.SortFunc(out, func(a, b Mark) int { return a.Date.Compare(b.Date) })
	return out
}

// Sorted returns every mark, ascending by date.
func (m Marks) Sorted() []Mark {
	out := make([]Mark, 0, len(m))
	for _, mark := range m {
		out = append(out, mark)
	}
	slices.SortFunc(out, func(a, b Mark) int { return a.Date.Compare(b.Date) })
	return out
}

// MarkInput is everything one aggregation pass reads. Ranges must already
// exclude rejected records.
type MarkInput struct {
	PaidRanges   []timeoff.LeaveRange
	UnpaidRanges []timeoff.LeaveRange
	Holidays     []Holiday
	Birthdays    []Birthday
	Year         int // birthdays and recurring holidays are projected here
}

type Aggregator struct {
	Palette Palette
}

func NewAggregator(p Palette) Aggregator {
	if p == nil {
		p = DefaultPalette()
	}
	return Aggregator{Palette: p}
}

// BuildMarks expands leave ranges to their days, tags holiday dates directly
// and projects birthdays and recurring holidays onto in.Year. Tags within a
// mark follow category order.
func (a Aggregator) BuildMarks(in MarkInput) Marks {
	marks := make(Marks)

	for _, r := range in.PaidRanges {
		for _, d := range r.Days() {
			marks.add(d, a.Palette.Tag(MarkPaidLeave))
		}
	}
	for _, r := range in.UnpaidRanges {
		for _, d := range r.Days() {
			marks.add(d, a.Palette.Tag(MarkUnpaidLeave))
		}
	}

	for _, h := range in.Holidays {
		if !h.Recurring {
			marks.add(h.Date, a.Palette.Tag(MarkHoliday))
			continue
		}
		if d, ok := h.On(in.Year); ok {
			marks.add(d, a.Palette.Tag(MarkHoliday))
		}
	}

	for _, b := range in.Birthdays {
		if d, ok := ProjectMonthDay(b.MonthDay, in.Year); ok {
			marks.add(d, a.Palette.Tag(MarkBirthday))
		}
	}
	return marks
}
