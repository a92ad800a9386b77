/*
scenarios.go - Demo data loaders

PURPOSE:
  Populates the store with a small, realistic data set so the calendar and
  ledger endpoints have something to show. Dates are laid out relative to
  today so submissions still pass the "today or later" check.

AVAILABLE SCENARIOS:
  team-calendar:   three employees, birthdays (one on Feb 29), holidays,
                   approved and pending leave next week
  quota-exhausted: an employee whose paid quota is fully approved, so new
                   requests become non-paid leave
  quota-pending:   10 approved + 2 pending paid days, so new requests are
                   refused until the pending ones are decided

  Loading is additive and repeatable: employees and holidays are upserted
  and already present leave days are left alone. Nothing is reset.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "team-calendar"}

SEE ALSO:
  - handlers.go: Handler
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "team-calendar",
		Name:        "Team Calendar",
		Description: "Birthdays, holidays and a week of overlapping leave",
	},
	{
		ID:          "quota-exhausted",
		Name:        "Quota Exhausted",
		Description: "Paid quota fully approved; new requests are recorded as non-paid",
	},
	{
		ID:          "quota-pending",
		Name:        "Quota Pending",
		Description: "Paid quota reached only through pending requests; new requests are refused",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads one scenario by ID.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ScenarioID {
	case "team-calendar":
		err = h.loadTeamCalendarScenario(ctx)
	case "quota-exhausted":
		err = h.loadQuotaScenario(ctx, "emp-exhausted", "Exhausted Employee", 12, 0)
	case "quota-pending":
		err = h.loadQuotaScenario(ctx, "emp-pending", "Pending Employee", 10, 2)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}

	h.Logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadTeamCalendarScenario(ctx context.Context) error {
	today := h.Requests.Validator.Today()

	employees := []calendar.Employee{
		{ID: "ada", Name: "Ada", Birthday: generic.MonthDay{Month: time.February, Day: 29}},
		{ID: "grace", Name: "Grace", Birthday: generic.MonthDay{Month: time.December, Day: 25}},
		{ID: "linus", Name: "Linus"},
	}
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	holidays := []calendar.Holiday{
		{ID: "new-year", Date: generic.NewDate(today.Year, time.January, 1), Name: "New Year's Day", Recurring: true},
		{ID: "christmas", Date: generic.NewDate(today.Year, time.December, 25), Name: "Christmas Day", Recurring: true},
		{ID: fmt.Sprintf("offsite-%d", today.Year), Date: today.AddDays(14), Name: "Company offsite"},
	}
	if err := h.Store.SaveHolidays(ctx, holidays); err != nil {
		return err
	}

	nextWeek := today.AddDays(7)
	ada, err := h.submitIfFree(ctx, "ada", "Ada", dayStrings(nextWeek, 3), "family trip")
	if err != nil {
		return err
	}
	for _, rec := range ada {
		if _, err := h.Requests.Approve(ctx, rec.ID); err != nil {
			return err
		}
	}
	if _, err := h.submitIfFree(ctx, "grace", "Grace", dayStrings(nextWeek.AddDays(1), 2), "conference"); err != nil {
		return err
	}
	_, err = h.submitIfFree(ctx, "linus", "Linus", dayStrings(nextWeek.AddDays(2), 1), "")
	return err
}

// loadQuotaScenario writes approved and pending paid days at the start of
// the current accounting year. History is inserted directly because it may
// lie in the past.
func (h *Handler) loadQuotaScenario(ctx context.Context, id, name string, approved, pending int) error {
	if err := h.Store.SaveEmployee(ctx, calendar.Employee{ID: id, Name: name}); err != nil {
		return err
	}

	policy := h.Requests.Ledger.Policy
	period := policy.Period.PeriodFor(h.Requests.Validator.Today())
	now := time.Now().UTC()

	records := make([]timeoff.LeaveRecord, 0, approved+pending)
	for i := range approved + pending {
		status := timeoff.StatusApproved
		if i >= approved {
			status = timeoff.StatusPending
		}
		d := period.Start.AddDays(i)
		records = append(records, timeoff.LeaveRecord{
			ID:           fmt.Sprintf("scn-%s-%s", id, d),
			Date:         d,
			Hours:        policy.FullDayHours,
			EmployeeID:   id,
			EmployeeName: name,
			Submitter:    id,
			Category:     timeoff.CategoryPaidTimeOff,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	err := h.Requests.Store.InsertLeaveRecords(ctx, records)
	if errors.Is(err, generic.ErrDuplicateRecord) {
		return nil
	}
	return err
}

// submitIfFree submits a request and treats an already booked day as
// success, so loading twice is harmless.
func (h *Handler) submitIfFree(ctx context.Context, id, name string, dates []string, reason string) ([]timeoff.LeaveRecord, error) {
	res, err := h.Requests.Submit(ctx, timeoff.SubmitInput{
		Submitter:    id,
		EmployeeName: name,
		Dates:        dates,
		Hours:        decimal.Zero,
		Reason:       reason,
	})
	if errors.Is(err, generic.ErrDuplicateRecord) {
		return nil, nil
	}
	return res.Records, err
}

func dayStrings(start generic.Date, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = start.AddDays(i).String()
	}
	return out
}
