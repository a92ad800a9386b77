package ics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/ics"
	"github.com/warp/leave-engine/timeoff"
)

const holidayFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:newyear@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240101\r\n" +
	"DTEND;VALUE=DATE:20240102\r\n" +
	"RRULE:FREQ=YEARLY\r\n" +
	"SUMMARY:New Year's Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:golden-week@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240503\r\n" +
	"DTEND;VALUE=DATE:20240506\r\n" +
	"SUMMARY:Golden Week\r\n" +
	"DESCRIPTION:Office closed\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:meeting@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240610T090000Z\r\n" +
	"DTEND:20240610T100000Z\r\n" +
	"SUMMARY:Not a holiday\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportHolidays(t *testing.T) {
	res, err := ics.ImportHolidays(strings.NewReader(holidayFeed))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped, "timed events are skipped")
	require.Len(t, res.Holidays, 4)

	ny := res.Holidays[0]
	assert.Equal(t, "newyear@test", ny.ID)
	assert.Equal(t, "New Year's Day", ny.Name)
	assert.Equal(t, generic.MustParseDate("2024-01-01"), ny.Date)
	assert.True(t, ny.Recurring)

	// DTEND is exclusive: May 3-5.
	var days []string
	for _, h := range res.Holidays[1:] {
		days = append(days, h.Date.String())
		assert.Equal(t, "Golden Week", h.Name)
		assert.Equal(t, "Office closed", h.Description)
		assert.False(t, h.Recurring)
	}
	assert.Equal(t, []string{"2024-05-03", "2024-05-04", "2024-05-05"}, days)
	assert.Equal(t, "golden-week@test-2", res.Holidays[3].ID)
}

func TestImportHolidays_SkipsOverlongEvents(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//holidays//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:century@test\r\n" +
		"DTSTAMP:20240101T000000Z\r\n" +
		"DTSTART;VALUE=DATE:19000101\r\n" +
		"DTEND;VALUE=DATE:21000101\r\n" +
		"SUMMARY:Forever\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:leap-year@test\r\n" +
		"DTSTAMP:20240101T000000Z\r\n" +
		"DTSTART;VALUE=DATE:20240101\r\n" +
		"DTEND;VALUE=DATE:20250101\r\n" +
		"SUMMARY:Sabbatical\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	res, err := ics.ImportHolidays(strings.NewReader(feed))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	// A full leap year is exactly the limit.
	require.Len(t, res.Holidays, ics.MaxHolidaySpanDays)
	assert.Equal(t, "Sabbatical", res.Holidays[0].Name)
}

func TestImportHolidays_Malformed(t *testing.T) {
	_, err := ics.ImportHolidays(strings.NewReader("not a calendar"))
	assert.Error(t, err)
}

func TestExport_RoundTripsHolidays(t *testing.T) {
	snap := calendar.Snapshot{
		Year: 2024,
		Records: []timeoff.LeaveRecord{
			{ID: "r1", Date: generic.MustParseDate("2024-07-01"), Hours: decimal.NewFromInt(8), EmployeeID: "emp-1",
				EmployeeName: "Ada", Category: timeoff.CategoryPaidTimeOff, Status: timeoff.StatusApproved},
			{ID: "r2", Date: generic.MustParseDate("2024-07-02"), Hours: decimal.NewFromInt(8), EmployeeID: "emp-1",
				EmployeeName: "Ada", Category: timeoff.CategoryPaidTimeOff, Status: timeoff.StatusPending},
		},
		Holidays: []calendar.Holiday{
			{ID: "xmas", Date: generic.MustParseDate("2024-12-25"), Name: "Christmas"},
			{ID: "old", Date: generic.MustParseDate("2019-01-02"), Name: "Other year"},
		},
		Birthdays: []calendar.Birthday{
			{EmployeeID: "emp-2", Name: "Grace", MonthDay: generic.MonthDay{Month: time.February, Day: 29}},
		},
	}

	out := ics.Export(snap, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Paid time off: Ada")
	assert.Contains(t, out, "Status: pending")
	assert.Contains(t, out, "SUMMARY:Birthday: Grace")
	assert.NotContains(t, out, "Other year")

	// Exported all-day events read back as holidays with the same extent.
	res, err := ics.ImportHolidays(strings.NewReader(out))
	require.NoError(t, err)

	byName := map[string][]string{}
	for _, h := range res.Holidays {
		byName[h.Name] = append(byName[h.Name], h.Date.String())
	}
	assert.Equal(t, []string{"2024-07-01", "2024-07-02"}, byName["Paid time off: Ada"])
	assert.Equal(t, []string{"2024-12-25"}, byName["Christmas"])
	assert.Equal(t, []string{"2024-02-29"}, byName["Birthday: Grace"])
}
