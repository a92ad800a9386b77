/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Submission, duplicate and quota responses
- Approval transitions
- Calendar marks, day detail and iCalendar export/import
- Error mapping of failing sources
- Access log levels
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/timeoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var today = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

type testServer struct {
	store  *memory.Store
	router http.Handler
	h      *Handler
}

func newTestServer(t *testing.T, logger *zap.Logger) *testServer {
	t.Helper()
	store := memory.New()

	requests := timeoff.NewRequestService(store, timeoff.DefaultQuotaPolicy(), time.UTC, logger)
	requests.Validator.Now = func() time.Time { return today }

	cal := calendar.NewService(store, store, store, nil, logger)
	h := NewHandler(store, requests, cal, logger)
	h.Now = func() time.Time { return today }

	return &testServer{
		store:  store,
		h:      h,
		router: NewRouter(h, RouterOptions{AllowedOrigins: []string{"*"}}),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) seed(t *testing.T, employeeID string, start string, n int, status timeoff.Status) {
	t.Helper()
	d := generic.MustParseDate(start)
	records := make([]timeoff.LeaveRecord, n)
	for i := range records {
		day := d.AddDays(i)
		records[i] = timeoff.LeaveRecord{
			ID:         employeeID + "-" + day.String(),
			Date:       day,
			Hours:      decimal.NewFromInt(8),
			EmployeeID: employeeID,
			Submitter:  employeeID,
			Category:   timeoff.CategoryPaidTimeOff,
			Status:     status,
		}
	}
	require.NoError(t, s.store.InsertLeaveRecords(context.Background(), records))
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestSubmitRequest_CreatesPendingRecords(t *testing.T) {
	srv := newTestServer(t, nil)

	// WHEN: submitting two days
	rec := srv.do(t, http.MethodPost, "/api/requests",
		`{"submitter":"emp-1","employee_name":"Ada","dates":["2024-07-02","01/07/2024"],"reason":"trip"}`)

	// THEN: both are created pending and paid, in date order
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[SubmitLeaveResponse](t, rec)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "2024-07-01", resp.Records[0].Date)
	assert.Equal(t, "pending", resp.Records[0].Status)
	assert.Equal(t, "paid_time_off", resp.Records[0].Category)
	assert.Equal(t, "emp-1", resp.Records[0].EmployeeID)
	require.Len(t, resp.Decisions, 1)
	assert.Equal(t, 2024, resp.Decisions[0].Year)
	assert.True(t, resp.Decisions[0].RequestedDays.Equal(decimal.NewFromInt(2)))

	// AND: the ledger counts them as pending paid days
	rec = srv.do(t, http.MethodGet, "/api/employees/emp-1/ledger?year=2024", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[LedgerDTO](t, rec)
	assert.True(t, ledger.PendingPaidDays.Equal(decimal.NewFromInt(2)))
	// Remaining counts approved days only; pending days don't reduce it.
	assert.True(t, ledger.RemainingPaidDays.Equal(decimal.NewFromInt(12)))
	assert.False(t, ledger.QuotaExhausted)
	assert.Equal(t, "2024-01-01", ledger.PeriodStart)

	// AND: they show up as pending
	rec = srv.do(t, http.MethodGet, "/api/requests/pending", "")
	assert.Len(t, decode[[]LeaveRecordDTO](t, rec), 2)
}

func TestSubmitRequest_ErrorMapping(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seed(t, "emp-1", "2024-07-01", 1, timeoff.StatusPending)
	srv.seed(t, "emp-full", "2024-01-08", 10, timeoff.StatusApproved)
	srv.seed(t, "emp-full", "2024-02-05", 2, timeoff.StatusPending)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"duplicate day", `{"submitter":"emp-1","dates":["2024-07-01"]}`, http.StatusConflict, "duplicate_record"},
		{"past date", `{"submitter":"emp-1","dates":["2024-06-02"]}`, http.StatusBadRequest, "invalid_date"},
		{"unparseable date", `{"submitter":"emp-1","dates":["next tuesday"]}`, http.StatusBadRequest, "invalid_date"},
		{"quota pending", `{"submitter":"emp-full","dates":["2024-07-01"]}`, http.StatusUnprocessableEntity, "quota_exceeded"},
		{"no dates", `{"submitter":"emp-1","dates":[]}`, http.StatusBadRequest, "invalid_request"},
		{"too many hours", `{"submitter":"emp-1","dates":["2024-07-09"],"hours":9}`, http.StatusBadRequest, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/requests", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}

	rec := srv.do(t, http.MethodPost, "/api/requests", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRequest_QuotaDetails(t *testing.T) {
	// GIVEN: 10 approved and 2 pending paid days
	srv := newTestServer(t, nil)
	srv.seed(t, "emp-1", "2024-01-08", 10, timeoff.StatusApproved)
	srv.seed(t, "emp-1", "2024-02-05", 2, timeoff.StatusPending)

	// WHEN: asking for one more day
	rec := srv.do(t, http.MethodPost, "/api/requests", `{"submitter":"emp-1","dates":["2024-07-01"]}`)

	// THEN: the response carries the numbers behind the refusal
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "12", body.Details["committed"])
	assert.Equal(t, "1", body.Details["requested"])
	assert.Equal(t, "12", body.Details["limit"])
	assert.Contains(t, body.Details["message"], "pending")
}

func TestSubmitRequest_ExhaustedQuotaBecomesUnpaid(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seed(t, "emp-1", "2024-01-08", 12, timeoff.StatusApproved)

	rec := srv.do(t, http.MethodPost, "/api/requests", `{"submitter":"emp-1","dates":["2024-07-01"],"hours":"4"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[SubmitLeaveResponse](t, rec)
	assert.Equal(t, "non_paid_leave", resp.Records[0].Category)
	assert.True(t, resp.Records[0].Hours.Equal(decimal.NewFromInt(4)))
}

func TestApproveReject(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seed(t, "emp-1", "2024-07-01", 2, timeoff.StatusPending)

	rec := srv.do(t, http.MethodPost, "/api/requests/emp-1-2024-07-01/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[LeaveRecordDTO](t, rec).Status)

	// Approved is final.
	rec = srv.do(t, http.MethodPost, "/api/requests/emp-1-2024-07-01/reject", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_transition", decode[ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodPost, "/api/requests/emp-1-2024-07-02/reject", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", decode[LeaveRecordDTO](t, rec).Status)

	rec = srv.do(t, http.MethodPost, "/api/requests/nope/approve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The rejected day can be requested again.
	rec = srv.do(t, http.MethodPost, "/api/requests", `{"submitter":"emp-1","dates":["2024-07-02"]}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// =============================================================================
// EMPLOYEES AND RANGES
// =============================================================================

func TestEmployees(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/employees", `{"id":"emp-1","name":"Ada","birthday":"02-29"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/employees/emp-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, EmployeeDTO{ID: "emp-1", Name: "Ada", Birthday: "02-29"}, decode[EmployeeDTO](t, rec))

	rec = srv.do(t, http.MethodPost, "/api/employees", `{"id":"emp-2","name":"Bob","birthday":"31-12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/employees/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRanges(t *testing.T) {
	// GIVEN: two runs, one crossing into August
	srv := newTestServer(t, nil)
	srv.seed(t, "emp-1", "2024-07-01", 3, timeoff.StatusApproved)
	srv.seed(t, "emp-1", "2024-07-30", 4, timeoff.StatusPending)

	// WHEN: listing August
	rec := srv.do(t, http.MethodGet, "/api/employees/emp-1/ranges?month=2024-08", "")

	// THEN: only the crossing run is returned, whole
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ranges := decode[[]LeaveRangeDTO](t, rec)
	require.Len(t, ranges, 1)
	assert.Equal(t, LeaveRangeDTO{
		EmployeeID: "emp-1", Category: "paid_time_off",
		Start: "2024-07-30", End: "2024-08-02", Days: 4, Status: "pending",
	}, ranges[0])

	rec = srv.do(t, http.MethodGet, "/api/employees/emp-1/ranges", "")
	assert.Len(t, decode[[]LeaveRangeDTO](t, rec), 2)

	rec = srv.do(t, http.MethodGet, "/api/employees/emp-1/ranges?month=2024-13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(t, http.MethodGet, "/api/employees/emp-1/ranges?category=vacation", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/employees/emp-1/records", "")
	assert.Len(t, decode[[]LeaveRecordDTO](t, rec), 7)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestCalendar_MarksAndDayDetail(t *testing.T) {
	// GIVEN: a recurring holiday and a birthday on the same date, and leave
	srv := newTestServer(t, nil)
	srv.do(t, http.MethodPost, "/api/employees", `{"id":"emp-1","name":"Grace","birthday":"12-25"}`)
	rec := srv.do(t, http.MethodPost, "/api/holidays", `{"id":"xmas","date":"2019-12-25","name":"Christmas","recurring":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	srv.seed(t, "emp-1", "2024-12-24", 2, timeoff.StatusApproved)

	// WHEN: loading 2024
	rec = srv.do(t, http.MethodGet, "/api/calendar?year=2024", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cal := decode[CalendarResponse](t, rec)

	// THEN: 12-24 has leave, 12-25 has leave, holiday and birthday in order
	require.Len(t, cal.Marks, 2)
	assert.Equal(t, "2024-12-24", cal.Marks[0].Date)
	assert.Equal(t, "2024-12-25", cal.Marks[1].Date)
	var cats []calendar.MarkCategory
	for _, tag := range cal.Marks[1].Tags {
		cats = append(cats, tag.Category)
	}
	assert.Equal(t, []calendar.MarkCategory{calendar.MarkPaidLeave, calendar.MarkHoliday, calendar.MarkBirthday}, cats)

	// AND: the day detail has the raw records
	rec = srv.do(t, http.MethodGet, "/api/calendar/days/2024-12-25", "")
	require.Equal(t, http.StatusOK, rec.Code)
	day := decode[DayDetailDTO](t, rec)
	assert.Len(t, day.LeaveRecords, 1)
	assert.Len(t, day.Holidays, 1)
	assert.Equal(t, []BirthdayDTO{{EmployeeID: "emp-1", Name: "Grace", Birthday: "12-25"}}, day.Birthdays)

	rec = srv.do(t, http.MethodGet, "/api/calendar/days/25-12-2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(t, http.MethodGet, "/api/calendar?year=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendar_ICSExportAndImport(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seed(t, "emp-1", "2024-07-01", 2, timeoff.StatusApproved)

	rec := srv.do(t, http.MethodGet, "/api/calendar.ics?year=2024", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VEVENT")

	feed := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:bastille@test\r\nDTSTAMP:20240101T000000Z\r\n" +
		"DTSTART;VALUE=DATE:20240714\r\nDTEND;VALUE=DATE:20240715\r\nSUMMARY:Bastille Day\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	rec = srv.do(t, http.MethodPost, "/api/holidays/import", feed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	imported := decode[ImportHolidaysResponse](t, rec)
	assert.Equal(t, 1, imported.Imported)

	rec = srv.do(t, http.MethodGet, "/api/holidays", "")
	holidays := decode[[]HolidayDTO](t, rec)
	require.Len(t, holidays, 1)
	assert.Equal(t, "2024-07-14", holidays[0].Date)

	rec = srv.do(t, http.MethodPost, "/api/holidays/import", "garbage")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenHolidays struct{}

func (brokenHolidays) ListHolidays(context.Context) ([]calendar.Holiday, error) {
	return nil, errors.New("connection refused")
}

func TestCalendar_FailingSourceIsBadGateway(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.h.Calendar.Holidays = brokenHolidays{}

	rec := srv.do(t, http.MethodGet, "/api/calendar?year=2024", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_unavailable", decode[ErrorResponse](t, rec).Code)
}

// =============================================================================
// SCENARIOS AND LOGGING
// =============================================================================

func TestLoadScenario(t *testing.T) {
	srv := newTestServer(t, nil)

	for range 2 {
		rec := srv.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"team-calendar"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := srv.do(t, http.MethodGet, "/api/calendar?year=2024", "")
	assert.NotEmpty(t, decode[CalendarResponse](t, rec).Marks)

	rec = srv.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"quota-pending"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/requests", `{"submitter":"emp-pending","dates":["2024-07-01"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"quota-exhausted"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/requests", `{"submitter":"emp-exhausted","dates":["2024-07-01"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "non_paid_leave", decode[SubmitLeaveResponse](t, rec).Records[0].Category)

	rec = srv.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	srv := newTestServer(t, zap.New(core))

	srv.do(t, http.MethodGet, "/health", "")
	srv.do(t, http.MethodGet, "/api/employees/ghost", "")

	ok := logs.FilterMessage("request completed").All()
	require.Len(t, ok, 1)
	assert.Equal(t, int64(http.StatusOK), ok[0].ContextMap()["status"])

	warn := logs.FilterMessage("client error").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zapcore.WarnLevel, warn[0].Level)
	assert.Equal(t, "/api/employees/ghost", warn[0].ContextMap()["path"])
}
