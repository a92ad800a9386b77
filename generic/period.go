package generic

import "time"

// =============================================================================
// PERIOD - Inclusive run of calendar dates
// =============================================================================

// Period is the closed interval [Start, End] of calendar dates. It is both
// the output of the range builder and the accounting window of the ledger.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Single returns the one-day period [d, d].
func Single(d Date) Period {
	return Period{Start: d, End: d}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps returns true if the two closed intervals share at least one date.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

// Len returns the number of dates in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return p.Start.DaysUntil(p.End) + 1
}

// Days returns all dates in the period, ascending.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Validate returns ErrInvalidPeriod when End is before Start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// YearPeriod is the calendar year [Jan 1, Dec 31].
func YearPeriod(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// =============================================================================
// ACCOUNTING PERIOD
// =============================================================================

// PeriodType defines how accounting years are laid out.
type PeriodType string

const (
	PeriodCalendarYear PeriodType = "calendar_year" // Jan 1 - Dec 31
	PeriodFiscalYear   PeriodType = "fiscal_year"   // Custom start month
)

// PeriodConfig decides which accounting year a date belongs to.
type PeriodConfig struct {
	Type PeriodType

	// For fiscal year: which month starts the year (1-12). A fiscal year is
	// named after the calendar year it starts in.
	FiscalYearStartMonth time.Month
}

// Year returns the accounting period named by year.
func (pc PeriodConfig) Year(year int) Period {
	if pc.Type != PeriodFiscalYear || pc.FiscalYearStartMonth <= time.January || pc.FiscalYearStartMonth > time.December {
		return YearPeriod(year)
	}
	start := Date{Year: year, Month: pc.FiscalYearStartMonth, Day: 1}
	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

// PeriodFor returns the accounting period that contains d.
func (pc PeriodConfig) PeriodFor(d Date) Period {
	return pc.Year(pc.YearOf(d))
}

// YearOf returns the name of the accounting year containing d.
func (pc PeriodConfig) YearOf(d Date) int {
	if pc.Type != PeriodFiscalYear || pc.FiscalYearStartMonth <= time.January || pc.FiscalYearStartMonth > time.December {
		return d.Year
	}
	if d.Month < pc.FiscalYearStartMonth {
		return d.Year - 1
	}
	return d.Year
}
