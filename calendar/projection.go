package calendar

import (
	"time"

	"github.com/teambition/rrule-go"
	"github.com/warp/leave-engine/generic"
)

// ProjectMonthDay places a recurring month/day in year. Feb 29 lands on
// Feb 28 in non-leap years; ok is false only for an invalid month/day.
func ProjectMonthDay(md generic.MonthDay, year int) (generic.Date, bool) {
	occ := Occurrences(md, generic.YearPeriod(year))
	if len(occ) > 0 {
		return occ[0], true
	}
	if md.Month == time.February && md.Day == 29 {
		d, _ := md.In(year)
		return d, true
	}
	return generic.Date{}, false
}

// Occurrences lists every date in p falling on md, using a yearly
// recurrence rule. Feb 29 only occurs in leap years here; ProjectMonthDay
// applies the Feb 28 fallback.
func Occurrences(md generic.MonthDay, p generic.Period) []generic.Date {
	if md.IsZero() || p.Validate() != nil {
		return nil
	}
	if _, ok := md.In(2000); !ok { // 2000 is a leap year, so only impossible dates fail
		return nil
	}
	start := p.Start.Time()
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(md.Month)},
		Bymonthday: []int{md.Day},
		Dtstart:    start,
	})
	if err != nil {
		return nil
	}

	times := r.Between(start, p.End.Time(), true)
	out := make([]generic.Date, 0, len(times))
	for _, t := range times {
		out = append(out, generic.DateOf(t))
	}
	return out
}
