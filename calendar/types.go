/*
Package calendar merges independently sourced date facts into one per-day
view: leave ranges, holidays and recurring birthdays.

PURPOSE:
  The calendar answers two queries:
    - Marks: for every date, the set of category tags to render
    - DayDetail: for one date, the underlying records themselves

  Both are rebuilt from their inputs on every call. Nothing is cached.

KEY CONCEPTS:
  Tag        {category, color}; a date accumulates every applicable tag
  Holiday    a fixed date, or a month/day that recurs every year
  Birthday   a month/day projected onto the requested year

SEE ALSO:
  - aggregator.go: BuildMarks
  - dayindex.go: DayDetail
  - service.go: fail-closed fetch of every source
*/
package calendar

import (
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// Holiday is a public or company holiday. Recurring holidays repeat on the
// same month/day every year; Date carries the first known occurrence.
type Holiday struct {
	ID          string
	Date        generic.Date
	Name        string
	Description string
	Recurring   bool
}

// On returns the date of h within year, if any.
func (h Holiday) On(year int) (generic.Date, bool) {
	if !h.Recurring {
		return h.Date, h.Date.Year == year
	}
	return ProjectMonthDay(h.Date.MonthDay(), year)
}

// Birthday is an employee's recurring birthday.
type Birthday struct {
	EmployeeID string
	Name       string
	MonthDay   generic.MonthDay
}

// Employee is the minimal directory entry the calendar needs. A zero
// Birthday means unknown.
type Employee struct {
	ID       string
	Name     string
	Birthday generic.MonthDay
}

// BirthdayFact returns the employee's birthday, if known.
func (e Employee) BirthdayFact() (Birthday, bool) {
	if e.Birthday.IsZero() {
		return Birthday{}, false
	}
	return Birthday{EmployeeID: e.ID, Name: e.Name, MonthDay: e.Birthday}, true
}

// =============================================================================
// MARKS
// =============================================================================

type MarkCategory string

const (
	MarkPaidLeave   MarkCategory = "paid_leave"
	MarkUnpaidLeave MarkCategory = "unpaid_leave"
	MarkHoliday     MarkCategory = "holiday"
	MarkBirthday    MarkCategory = "birthday"
)

// MarkCategoryOf maps a leave category to its mark.
func MarkCategoryOf(c timeoff.Category) MarkCategory {
	if c == timeoff.CategoryNonPaidLeave {
		return MarkUnpaidLeave
	}
	return MarkPaidLeave
}

// Categories in display order.
var Categories = []MarkCategory{MarkPaidLeave, MarkUnpaidLeave, MarkHoliday, MarkBirthday}

// Tag is one indicator on a calendar date.
type Tag struct {
	Category MarkCategory `json:"category"`
	Color    string       `json:"color"`
}

// Palette assigns a color to each category.
type Palette map[MarkCategory]string

func DefaultPalette() Palette {
	return Palette{
		MarkPaidLeave:   "#2e7d32",
		MarkUnpaidLeave: "#f9a825",
		MarkHoliday:     "#c62828",
		MarkBirthday:    "#6a1b9a",
	}
}

// Tag returns the tag for c. Categories without a color fall back to the
// default palette.
func (p Palette) Tag(c MarkCategory) Tag {
	if color, ok := p[c]; ok && color != "" {
		return Tag{Category: c, Color: color}
	}
	return Tag{Category: c, Color: DefaultPalette()[c]}
}

// Mark is the tag set of one date.
type Mark struct {
	Date generic.Date `json:"date"`
	Tags []Tag        `json:"tags"`
}

// Has reports whether the mark carries category c.
func (m Mark) Has(c MarkCategory) bool {
	for _, t := range m.Tags {
		if t.Category == c {
			return true
		}
	}
	return false
}
