/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes of the HTTP API. Domain types stay free of JSON concerns;
  conversion happens here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers around several DTOs

FORMATS:
  Dates are "YYYY-MM-DD", birthdays "MM-DD", amounts are decimal strings
  ("0.5", "12"), timestamps RFC 3339.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO is a directory entry.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Birthday string `json:"birthday,omitempty"`
}

// CreateEmployeeRequest creates or updates an employee.
type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Birthday string `json:"birthday,omitempty"`
}

// SubmitLeaveRequest asks for one or more days of leave. Hours is per day
// and defaults to a full day.
type SubmitLeaveRequest struct {
	Submitter    string          `json:"submitter"`
	EmployeeID   string          `json:"employee_id,omitempty"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Dates        []string        `json:"dates"`
	Hours        decimal.Decimal `json:"hours"`
	Reason       string          `json:"reason,omitempty"`
}

// LeaveRecordDTO is one day of leave.
type LeaveRecordDTO struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	Hours        decimal.Decimal `json:"hours"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Submitter    string          `json:"submitter"`
	Category     string          `json:"category"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
}

// LedgerDTO is the quota summary of one employee and accounting year.
type LedgerDTO struct {
	EmployeeID         string          `json:"employee_id"`
	Year               int             `json:"year"`
	PeriodStart        string          `json:"period_start"`
	PeriodEnd          string          `json:"period_end"`
	ApprovedPaidDays   decimal.Decimal `json:"approved_paid_days"`
	PendingPaidDays    decimal.Decimal `json:"pending_paid_days"`
	ApprovedUnpaidDays decimal.Decimal `json:"approved_unpaid_days"`
	PendingUnpaidDays  decimal.Decimal `json:"pending_unpaid_days"`
	QuotaLimitDays     decimal.Decimal `json:"quota_limit_days"`
	RemainingPaidDays  decimal.Decimal `json:"remaining_paid_days"`
	QuotaExhausted     bool            `json:"quota_exhausted"`
}

// DecisionDTO explains the category given to one accounting year of a
// submission.
type DecisionDTO struct {
	Year          int             `json:"year"`
	Category      string          `json:"category"`
	RequestedDays decimal.Decimal `json:"requested_days"`
	Ledger        LedgerDTO       `json:"ledger"`
}

// SubmitLeaveResponse is returned by POST /api/requests.
type SubmitLeaveResponse struct {
	Records   []LeaveRecordDTO `json:"records"`
	Decisions []DecisionDTO    `json:"decisions"`
}

// LeaveRangeDTO is a run of consecutive leave days.
type LeaveRangeDTO struct {
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Days       int    `json:"days"`
	Status     string `json:"status"`
}

// HolidayDTO is a holiday in requests and responses. ID is optional on
// create.
type HolidayDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Recurring   bool   `json:"recurring"`
}

// BirthdayDTO is a birthday fact.
type BirthdayDTO struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Birthday   string `json:"birthday"`
}

// ImportHolidaysResponse reports an iCalendar import.
type ImportHolidaysResponse struct {
	Imported int          `json:"imported"`
	Skipped  int          `json:"skipped"`
	Holidays []HolidayDTO `json:"holidays"`
}

// MarkDTO is the tag set of one date.
type MarkDTO struct {
	Date string         `json:"date"`
	Tags []calendar.Tag `json:"tags"`
}

// CalendarResponse is returned by GET /api/calendar.
type CalendarResponse struct {
	Year  int       `json:"year"`
	Marks []MarkDTO `json:"marks"`
}

// DayDetailDTO lists the raw records on one date.
type DayDetailDTO struct {
	Date         string           `json:"date"`
	LeaveRecords []LeaveRecordDTO `json:"leave_records"`
	Holidays     []HolidayDTO     `json:"holidays"`
	Birthdays    []BirthdayDTO    `json:"birthdays"`
}

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLeaveRecordDTO(r timeoff.LeaveRecord) LeaveRecordDTO {
	dto := LeaveRecordDTO{
		ID:           r.ID,
		Date:         r.Date.String(),
		Hours:        r.Hours,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Submitter:    r.Submitter,
		Category:     string(r.Category),
		Status:       string(r.Status),
		Reason:       r.Reason,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toLeaveRecordDTOs(records []timeoff.LeaveRecord) []LeaveRecordDTO {
	out := make([]LeaveRecordDTO, len(records))
	for i, r := range records {
		out[i] = toLeaveRecordDTO(r)
	}
	return out
}

func toLedgerDTO(s timeoff.Snapshot) LedgerDTO {
	return LedgerDTO{
		EmployeeID:         s.EmployeeID,
		Year:               s.Year,
		PeriodStart:        s.Period.Start.String(),
		PeriodEnd:          s.Period.End.String(),
		ApprovedPaidDays:   s.ApprovedPaidDays,
		PendingPaidDays:    s.PendingPaidDays,
		ApprovedUnpaidDays: s.ApprovedUnpaidDays,
		PendingUnpaidDays:  s.PendingUnpaidDays,
		QuotaLimitDays:     s.QuotaLimitDays,
		RemainingPaidDays:  s.RemainingPaidDays,
		QuotaExhausted:     s.QuotaExhausted,
	}
}

func toLeaveRangeDTO(r timeoff.LeaveRange) LeaveRangeDTO {
	return LeaveRangeDTO{
		EmployeeID: r.EmployeeID,
		Category:   string(r.Category),
		Start:      r.Start.String(),
		End:        r.End.String(),
		Days:       r.Len(),
		Status:     string(r.Rollup),
	}
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:          h.ID,
		Date:        h.Date.String(),
		Name:        h.Name,
		Description: h.Description,
		Recurring:   h.Recurring,
	}
}

func toHolidayDTOs(holidays []calendar.Holiday) []HolidayDTO {
	out := make([]HolidayDTO, len(holidays))
	for i, h := range holidays {
		out[i] = toHolidayDTO(h)
	}
	return out
}

func toEmployeeDTO(e calendar.Employee) EmployeeDTO {
	dto := EmployeeDTO{ID: e.ID, Name: e.Name}
	if !e.Birthday.IsZero() {
		dto.Birthday = e.Birthday.String()
	}
	return dto
}

func toDayDetailDTO(d calendar.DayDetail) DayDetailDTO {
	dto := DayDetailDTO{
		Date:         d.Date.String(),
		LeaveRecords: toLeaveRecordDTOs(d.LeaveRecords),
		Holidays:     toHolidayDTOs(d.Holidays),
		Birthdays:    make([]BirthdayDTO, len(d.Birthdays)),
	}
	for i, b := range d.Birthdays {
		dto.Birthdays[i] = BirthdayDTO{EmployeeID: b.EmployeeID, Name: b.Name, Birthday: b.MonthDay.String()}
	}
	return dto
}

func toMarkDTOs(marks []calendar.Mark) []MarkDTO {
	out := make([]MarkDTO, len(marks))
	for i, m := range marks {
		out[i] = MarkDTO{Date: m.Date.String(), Tags: m.Tags}
	}
	return out
}
