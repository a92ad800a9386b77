package generic

import (
	"fmt"
	"slices"
	"time"
)

// =============================================================================
// DATE - Calendar date without a clock or zone
// =============================================================================

// Date is a calendar date. Identity is (Year, Month, Day) only, so Date is
// comparable and safe to use as a map key.
//
// All arithmetic goes through UTC midnight, which has no DST transitions:
// consecutive dates are always exactly one day apart.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate builds a Date, normalizing overflow (Feb 30 -> Mar 1/2) the same
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location. No zone
// conversion happens.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc (time.Local when nil).
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate parses a canonical YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	return DateOf(t), nil
}

// MustParseDate panics on malformed input. Tests and constants only.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns UTC midnight of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return d.Compare(other) <= 0 }
func (d Date) AfterOrEqual(other Date) bool { return d.Compare(other) >= 0 }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.Time().AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date { return DateOf(d.Time().AddDate(n, 0, 0)) }

// DaysUntil returns the number of calendar days from d to other (negative
// when other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// Properties
func (d Date) IsZero() bool { return d == Date{} }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) MonthDay() MonthDay { return MonthDay{Month: d.Month, Day: d.Day} }
func (d Date) YearMonth() YearMonth { return YearMonth{Year: d.Year, Month: d.Month} }
func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day) }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MarshalText implements encoding.TextMarshaler (JSON, YAML).
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts every shape
// Normalize understands, and rejects the rest.
func (d *Date) UnmarshalText(b []byte) error {
	n := Normalize(string(b))
	switch n.Kind {
	case KindEmpty:
		*d = Date{}
		return nil
	case KindParsed:
		*d = n.Date
		return nil
	default:
		return &InvalidDateError{Input: n.Original, Reason: "unrecognized date format"}
	}
}

// =============================================================================
// YEAR-MONTH
// =============================================================================

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, &InvalidDateError{Input: s, Reason: "expected YYYY-MM"}
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) First() Date { return Date{Year: ym.Year, Month: ym.Month, Day: 1} }

func (ym YearMonth) Last() Date {
	return DateOf(time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

func (ym YearMonth) Period() Period { return Period{Start: ym.First(), End: ym.Last()} }
func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// =============================================================================
// MONTH-DAY - Year-independent recurring date
// =============================================================================

// MonthDay is a recurring date such as a birthday or a fixed holiday.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay accepts "MM-DD", the vCard form "--MM-DD", or a full date
// (the year is dropped).
func ParseMonthDay(s string) (MonthDay, error) {
	raw := s
	if len(s) == 7 && s[:2] == "--" {
		s = s[2:]
	}
	if len(s) == 5 {
		// Parse against a leap year so 02-29 is accepted.
		t, err := time.Parse("2006-01-02", "2000-"+s)
		if err == nil {
			return MonthDay{Month: t.Month(), Day: t.Day()}, nil
		}
	}
	if n := Normalize(s); n.Kind == KindParsed {
		return n.Date.MonthDay(), nil
	}
	return MonthDay{}, &InvalidDateError{Input: raw, Reason: "expected MM-DD"}
}

// In projects the month/day onto year. Feb 29 falls back to Feb 28 in
// non-leap years; ok is false in that case.
func (md MonthDay) In(year int) (d Date, ok bool) {
	d = NewDate(year, md.Month, md.Day)
	if d.Month != md.Month {
		return NewDate(year, md.Month+1, 0), false
	}
	return d, true
}

func (md MonthDay) IsZero() bool { return md == MonthDay{} }
func (md MonthDay) String() string { return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day) }

func (md MonthDay) MarshalText() ([]byte, error) { return []byte(md.String()), nil }

func (md *MonthDay) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthDay(string(b))
	if err != nil {
		return err
	}
	*md = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func StartOfYear(year int) Date { return Date{Year: year, Month: time.January, Day: 1} }
func EndOfYear(year int) Date { return Date{Year: year, Month: time.December, Day: 31} }

// SortDates sorts ascending in place.
func SortDates(dates []Date) {
	slices.SortFunc(dates, Date.Compare)
}
