/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes leave requests, quota ledgers, leave ranges and the aggregated
  calendar over REST. Handlers parse and validate the HTTP input, call the
  services, and serialize the result. No accounting happens here.

ENDPOINTS:
  Employees:
    POST   /api/employees                 Create or update an employee
    GET    /api/employees/{id}            Get an employee
    GET    /api/employees/{id}/ledger     Quota summary (?year=YYYY)
    GET    /api/employees/{id}/ranges     Leave ranges (?month=YYYY-MM | ?from=&to=, &category=)
    GET    /api/employees/{id}/records    Raw leave records

  Requests:
    POST   /api/requests                  Submit leave for one or more dates
    GET    /api/requests/pending          Records awaiting a decision
    POST   /api/requests/{id}/approve     Approve a pending record
    POST   /api/requests/{id}/reject      Reject a pending record

  Calendar:
    GET    /api/calendar                  Marks of a year (?year=YYYY)
    GET    /api/calendar/days/{date}      Raw records on one date
    GET    /api/calendar.ics              iCalendar feed of a year

  Holidays:
    GET    /api/holidays                  List holidays
    POST   /api/holidays                  Create a holiday
    POST   /api/holidays/import           Import all-day VEVENTs (text/calendar)

  Scenarios:
    GET    /api/scenarios                 List demo data sets
    POST   /api/scenarios/load            Load one (see scenarios.go)

ERROR HANDLING:
  Errors are returned as ErrorResponse with a status derived from the
  domain error:
  - 400: invalid date, amount, period, request or status transition
  - 404: record not found
  - 409: duplicate leave day
  - 422: paid quota would be exceeded
  - 502: a backing source failed to load
  - 500: anything else

SECURITY NOTE:
  No authentication. Submitter is taken from the request body.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/ics"
	"github.com/warp/leave-engine/timeoff"
	"go.uber.org/zap"
)

// maxImportBytes bounds an iCalendar upload.
const maxImportBytes = 5 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the storage the handlers read and write directly. Leave records
// are written through the request service only.
type Store interface {
	ListLeaveRecords(ctx context.Context, filter timeoff.RecordFilter) ([]timeoff.LeaveRecord, error)
	SaveEmployee(ctx context.Context, e calendar.Employee) error
	GetEmployee(ctx context.Context, id string) (calendar.Employee, error)
	SaveHolidays(ctx context.Context, holidays []calendar.Holiday) error
	ListHolidays(ctx context.Context) ([]calendar.Holiday, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Requests *timeoff.RequestService
	Calendar *calendar.Service
	Logger   *zap.Logger

	// Now stamps exported feeds. Defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a handler over the given services.
func NewHandler(store Store, requests *timeoff.RequestService, cal *calendar.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Requests: requests,
		Calendar: cal,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := calendar.Employee{ID: req.ID, Name: req.Name}
	if req.Birthday != "" {
		md, err := generic.ParseMonthDay(req.Birthday)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid birthday format (use MM-DD)", err)
			return
		}
		emp.Birthday = md
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, r, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// GetLedger returns the quota summary of an employee for one accounting
// year. The year defaults to the one containing today.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	defaultYear := h.Requests.Ledger.Policy.Period.YearOf(h.Requests.Validator.Today())
	year, err := yearParam(r, defaultYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	snap, err := h.Requests.LedgerFor(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to evaluate ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTO(snap))
}

// GetRanges lists an employee's leave ranges. month=YYYY-MM takes
// precedence over the from/to window.
func (h *Handler) GetRanges(w http.ResponseWriter, r *http.Request) {
	q, err := parseRangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range query", err)
		return
	}

	ranges, err := h.Requests.Ranges(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list ranges", err)
		return
	}

	dtos := make([]LeaveRangeDTO, len(ranges))
	for i, lr := range ranges {
		dtos[i] = toLeaveRangeDTO(lr)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRecords returns the raw leave records of an employee, rejected ones
// included.
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListLeaveRecords(r.Context(), timeoff.RecordFilter{EmployeeID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeDomainError(w, r, "Failed to list records", generic.FetchError("leave_records", err))
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRecordDTOs(records))
}

func parseRangeQuery(r *http.Request) (timeoff.RangeQuery, error) {
	var q timeoff.RangeQuery
	values := r.URL.Query()

	if c := values.Get("category"); c != "" {
		q.Category = timeoff.Category(c)
		if !q.Category.Valid() {
			return q, fmt.Errorf("%w: unknown category %q", generic.ErrInvalidRequest, c)
		}
	}
	if m := values.Get("month"); m != "" {
		ym, err := generic.ParseYearMonth(m)
		if err != nil {
			return q, err
		}
		q.Month = &ym
	}
	if f := values.Get("from"); f != "" {
		d, err := generic.ParseDate(f)
		if err != nil {
			return q, err
		}
		q.From = &d
	}
	if t := values.Get("to"); t != "" {
		d, err := generic.ParseDate(t)
		if err != nil {
			return q, err
		}
		q.To = &d
	}
	return q, nil
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest records leave for one or more dates. All records are
// created pending, or none is.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Requests.Submit(r.Context(), timeoff.SubmitInput{
		Submitter:    req.Submitter,
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		Dates:        req.Dates,
		Hours:        req.Hours,
		Reason:       req.Reason,
	})
	if err != nil {
		h.writeDomainError(w, r, "Request rejected", err)
		return
	}

	resp := SubmitLeaveResponse{
		Records:   toLeaveRecordDTOs(res.Records),
		Decisions: make([]DecisionDTO, len(res.Decisions)),
	}
	for i, d := range res.Decisions {
		resp.Decisions[i] = DecisionDTO{
			Year:          d.Snapshot.Year,
			Category:      string(d.Category),
			RequestedDays: d.Requested,
			Ledger:        toLedgerDTO(d.Snapshot),
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListPendingRequests returns every record awaiting a decision.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListLeaveRecords(r.Context(), timeoff.RecordFilter{
		Statuses: []timeoff.Status{timeoff.StatusPending},
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to list pending requests", generic.FetchError("leave_records", err))
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRecordDTOs(records))
}

// ApproveRequest approves a pending record.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Requests.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRecordDTO(rec))
}

// RejectRequest rejects a pending record.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Requests.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRecordDTO(rec))
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar returns the marks of every tagged date in a year.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, h.Requests.Validator.Today().Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	marks, err := h.Calendar.MarksForYear(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Year: year, Marks: toMarkDTOs(marks)})
}

// GetCalendarDay returns the raw records on one date.
func (h *Handler) GetCalendarDay(w http.ResponseWriter, r *http.Request) {
	d, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	detail, err := h.Calendar.DayDetail(r.Context(), d)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load day", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDetailDTO(detail))
}

// ExportCalendar writes a year as an iCalendar feed.
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, h.Requests.Validator.Today().Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	snap, err := h.Calendar.Fetch(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build calendar", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leave-%d.ics"`, year))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, ics.Export(snap, h.Now().UTC()))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list holidays", generic.FetchError("holidays", err))
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(holidays))
}

// CreateHoliday adds or replaces a holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	d, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := calendar.Holiday{
		ID:          req.ID,
		Date:        d,
		Name:        req.Name,
		Description: req.Description,
		Recurring:   req.Recurring,
	}
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}

	if err := h.Store.SaveHolidays(r.Context(), []calendar.Holiday{holiday}); err != nil {
		h.writeDomainError(w, r, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// ImportHolidays reads all-day events from an iCalendar body. Timed events
// are skipped and counted.
func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	res, err := ics.ImportHolidays(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid iCalendar body", err)
		return
	}

	if len(res.Holidays) > 0 {
		if err := h.Store.SaveHolidays(r.Context(), res.Holidays); err != nil {
			h.writeDomainError(w, r, "Failed to save holidays", err)
			return
		}
	}

	h.Logger.Info("holidays imported",
		zap.Int("imported", len(res.Holidays)),
		zap.Int("skipped", res.Skipped))
	writeJSON(w, http.StatusOK, ImportHolidaysResponse{
		Imported: len(res.Holidays),
		Skipped:  res.Skipped,
		Holidays: toHolidayDTOs(res.Holidays),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: year %q", generic.ErrInvalidRequest, raw)
	}
	return year, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps err to a status and error code. Server-side
// failures are logged; client errors are left to the access log.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, code := classify(err)
	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}

	var quotaErr *generic.QuotaExceededError
	if errors.As(err, &quotaErr) {
		resp.Details = map[string]string{
			"message":   err.Error(),
			"committed": quotaErr.Committed.String(),
			"requested": quotaErr.Requested.String(),
			"limit":     quotaErr.Limit.String(),
		}
	}

	if status >= http.StatusInternalServerError {
		h.Logger.Error(message,
			zap.String("path", r.URL.Path),
			zap.String("code", code),
			zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, generic.ErrUpstreamFetch):
		return http.StatusBadGateway, "upstream_unavailable"
	case generic.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, generic.ErrDuplicateRecord):
		return http.StatusConflict, "duplicate_record"
	case errors.Is(err, generic.ErrQuotaExceeded):
		return http.StatusUnprocessableEntity, "quota_exceeded"
	case errors.Is(err, generic.ErrInvalidDate):
		return http.StatusBadRequest, "invalid_date"
	case errors.Is(err, generic.ErrInvalidTransition):
		return http.StatusBadRequest, "invalid_transition"
	case generic.IsClientError(err):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
