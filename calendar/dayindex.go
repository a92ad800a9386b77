package calendar

import (
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// DayDetail is every raw record touching one date.
type DayDetail struct {
	Date         generic.Date          `json:"date"`
	LeaveRecords []timeoff.LeaveRecord `json:"leave_records"`
	Birthdays    []Birthday            `json:"birthdays"`
	Holidays     []Holiday             `json:"holidays"`
}

// DayIndex answers point queries with the underlying records rather than
// tags. Build one per aggregation pass.
type DayIndex struct {
	leave     map[generic.Date][]timeoff.LeaveRecord
	holidays  []Holiday
	birthdays []Birthday
}

// NewDayIndex indexes records. Rejected leave records are dropped.
func NewDayIndex(records []timeoff.LeaveRecord, holidays []Holiday, birthdays []Birthday) *DayIndex {
	idx := &DayIndex{
		leave:     make(map[generic.Date][]timeoff.LeaveRecord),
		holidays:  holidays,
		birthdays: birthdays,
	}
	for _, r := range timeoff.ActiveRecords(records) {
		idx.leave[r.Date] = append(idx.leave[r.Date], r)
	}
	return idx
}

// DayDetail returns the leave records, birthdays and holidays on d. Slices
// are never nil.
func (idx *DayIndex) DayDetail(d generic.Date) DayDetail {
	detail := DayDetail{
		Date:         d,
		LeaveRecords: append([]timeoff.LeaveRecord{}, idx.leave[d]...),
		Birthdays:    []Birthday{},
		Holidays:     []Holiday{},
	}
	timeoff.SortRecords(detail.LeaveRecords)

	for _, h := range idx.holidays {
		if on, ok := h.On(d.Year); ok && on == d {
			detail.Holidays = append(detail.Holidays, h)
		}
	}
	for _, b := range idx.birthdays {
		if on, ok := ProjectMonthDay(b.MonthDay, d.Year); ok && on == d {
			detail.Birthdays = append(detail.Birthdays, b)
		}
	}
	return detail
}
