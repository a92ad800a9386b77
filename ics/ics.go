// Package ics converts between calendar data and iCalendar (RFC 5545) feeds.
//
// Export writes a year of leave ranges, holidays and birthdays as all-day
// VEVENTs. Import reads holidays from an all-day VEVENT feed, such as a
// public-holiday calendar.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

const productID = "-//warp//leave-engine//EN"

const icsDateLayout = "20060102"

// =============================================================================
// EXPORT
// =============================================================================

// Export serializes the snapshot's leave ranges, holidays falling in the
// snapshot year, and birthdays projected onto it. DTEND is exclusive, as
// the format requires for all-day events.
func Export(snap calendar.Snapshot, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	names := make(map[string]string)
	for _, r := range snap.Records {
		if r.EmployeeName != "" {
			names[r.EmployeeID] = r.EmployeeName
		}
	}

	for _, r := range timeoff.BuildLeaveRanges(snap.Records) {
		who := r.EmployeeID
		if n, ok := names[r.EmployeeID]; ok {
			who = n
		}
		uid := fmt.Sprintf("leave-%s-%s-%s", r.EmployeeID, r.Category, r.Start)
		addAllDay(cal, uid, stamp, r.Period,
			fmt.Sprintf("%s: %s", leaveLabel(r.Category), who),
			"Status: "+string(r.Rollup),
			string(calendar.MarkCategoryOf(r.Category)))
	}

	for _, h := range snap.Holidays {
		d, ok := h.On(snap.Year)
		if !ok {
			continue
		}
		addAllDay(cal, fmt.Sprintf("holiday-%s-%d", h.ID, snap.Year), stamp, generic.Single(d),
			h.Name, h.Description, string(calendar.MarkHoliday))
	}

	for _, b := range snap.Birthdays {
		d, ok := calendar.ProjectMonthDay(b.MonthDay, snap.Year)
		if !ok {
			continue
		}
		name := b.Name
		if name == "" {
			name = b.EmployeeID
		}
		addAllDay(cal, fmt.Sprintf("birthday-%s-%d", b.EmployeeID, snap.Year), stamp, generic.Single(d),
			"Birthday: "+name, "", string(calendar.MarkBirthday))
	}

	return cal.Serialize()
}

func addAllDay(cal *ical.Calendar, uid string, stamp time.Time, p generic.Period, summary, description, category string) {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(stamp)
	ev.SetAllDayStartAt(p.Start.Time())
	ev.SetAllDayEndAt(p.End.AddDays(1).Time())
	ev.SetSummary(summary)
	if description != "" {
		ev.SetDescription(description)
	}
	ev.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(category))
}

func leaveLabel(c timeoff.Category) string {
	if c == timeoff.CategoryNonPaidLeave {
		return "Unpaid leave"
	}
	return "Paid time off"
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportResult is the outcome of ImportHolidays. Skipped counts VEVENTs that
// were not all-day, had no usable DTSTART, or spanned more than
// MaxHolidaySpanDays.
type ImportResult struct {
	Holidays []calendar.Holiday
	Skipped  int
}

// ImportHolidays reads all-day VEVENTs as holidays. A yearly RRULE makes the
// holiday recurring; any other rule is ignored and only DTSTART is kept.
// Multi-day events become one holiday per day.
func ImportHolidays(r io.Reader) (ImportResult, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse calendar: %w", err)
	}

	var res ImportResult
	for _, ev := range cal.Events() {
		holidays, err := parseHoliday(ev)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Holidays = append(res.Holidays, holidays...)
	}
	return res, nil
}

// MaxHolidaySpanDays bounds how many holidays a single VEVENT may expand to.
const MaxHolidaySpanDays = 366

var (
	errNotAllDay   = errors.New("not an all-day event")
	errSpanTooLong = errors.New("event spans too many days")
)

func parseHoliday(ev *ical.VEvent) ([]calendar.Holiday, error) {
	start, err := allDayValue(ev.GetProperty(ical.ComponentPropertyDtStart))
	if err != nil {
		return nil, err
	}
	end := start
	if p := ev.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		if exclusive, err := allDayValue(p); err == nil && exclusive.After(start) {
			end = exclusive.AddDays(-1)
		}
	}
	if start.DaysUntil(end) >= MaxHolidaySpanDays {
		return nil, errSpanTooLong
	}

	uid := ""
	if p := ev.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = strings.TrimSpace(p.Value)
	}
	if uid == "" {
		uid = uuid.NewString()
	}

	h := calendar.Holiday{}
	if p := ev.GetProperty(ical.ComponentPropertySummary); p != nil {
		h.Name = p.Value
	}
	if p := ev.GetProperty(ical.ComponentPropertyDescription); p != nil {
		h.Description = p.Value
	}
	if p := ev.GetProperty(ical.ComponentPropertyRrule); p != nil {
		if rule, err := rrule.StrToRRule(p.Value); err == nil && rule.OrigOptions.Freq == rrule.YEARLY {
			h.Recurring = true
		}
	}

	days := generic.Period{Start: start, End: end}.Days()
	out := make([]calendar.Holiday, 0, len(days))
	for i, d := range days {
		hd := h
		hd.Date = d
		hd.ID = uid
		if i > 0 {
			hd.ID = fmt.Sprintf("%s-%d", uid, i)
		}
		out = append(out, hd)
	}
	return out, nil
}

// allDayValue parses a DATE-valued property ("20241225").
func allDayValue(p *ical.IANAProperty) (generic.Date, error) {
	if p == nil {
		return generic.Date{}, errNotAllDay
	}
	v := strings.TrimSpace(p.Value)
	if strings.Contains(v, "T") {
		return generic.Date{}, errNotAllDay
	}
	t, err := time.Parse(icsDateLayout, v)
	if err != nil {
		return generic.Date{}, &generic.InvalidDateError{Input: v, Reason: "expected YYYYMMDD"}
	}
	return generic.DateOf(t), nil
}
