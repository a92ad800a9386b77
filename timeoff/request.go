package timeoff

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
	"go.uber.org/zap"
)

// =============================================================================
// REQUEST SERVICE - Submission and approval lifecycle
// =============================================================================

// RequestService turns submissions into pending leave records and moves
// records through approval.
//
// Submit is check-then-act: it reads the submitter's records, validates,
// decides the category, then inserts. Nothing holds the read stable until
// the insert. The store's uniqueness constraint closes the race for
// duplicate days; two concurrent submissions can still both be granted paid
// days against the same snapshot and overrun the quota.
type RequestService struct {
	Store     RecordStore
	Ledger    Ledger
	Validator Validator
	Logger    *zap.Logger

	// NewID generates record IDs. Defaults to uuid.NewString.
	NewID func() string
}

func NewRequestService(store RecordStore, policy QuotaPolicy, loc *time.Location, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		Store:     store,
		Ledger:    NewLedger(policy),
		Validator: Validator{Location: loc},
		Logger:    logger,
		NewID:     uuid.NewString,
	}
}

// SubmitInput is one leave request covering one or more days.
type SubmitInput struct {
	Submitter    string
	EmployeeID   string // defaults to Submitter
	EmployeeName string
	Dates        []string
	Hours        decimal.Decimal // per day; zero means a full day
	Reason       string
}

// SubmitResult holds the created records and one decision per accounting
// year the request touched.
type SubmitResult struct {
	Records   []LeaveRecord
	Decisions []Decision
}

// Submit validates and records a leave request. Every date must parse, be
// today or later, and be free for the submitter; the request is then decided
// per accounting year and all records are inserted in one batch, status
// pending. Any failure leaves the store untouched.
func (s *RequestService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if in.Submitter == "" {
		return SubmitResult{}, fmt.Errorf("%w: submitter is required", generic.ErrInvalidRequest)
	}
	if len(in.Dates) == 0 {
		return SubmitResult{}, fmt.Errorf("%w: at least one date is required", generic.ErrInvalidRequest)
	}
	employeeID := in.EmployeeID
	if employeeID == "" {
		employeeID = in.Submitter
	}

	fullDay := s.Ledger.Policy.FullDayHours
	hours := in.Hours
	if hours.IsZero() {
		hours = fullDay
	}
	if !hours.IsPositive() || hours.GreaterThan(fullDay) {
		return SubmitResult{}, fmt.Errorf("%w: hours per day must be in (0, %s], got %s",
			generic.ErrInvalidAmount, fullDay, hours)
	}

	dates, err := generic.NormalizeAll(in.Dates)
	if err != nil {
		return SubmitResult{}, err
	}

	existing, err := s.Store.ListLeaveRecords(ctx, RecordFilter{Submitter: in.Submitter})
	if err != nil {
		return SubmitResult{}, generic.FetchError("leave_records", err)
	}

	seen := make(map[generic.Date]bool, len(dates))
	byYear := make(map[int][]generic.Date)
	for _, d := range dates {
		if seen[d] {
			return SubmitResult{}, &generic.DuplicateRecordError{Submitter: in.Submitter, Date: d, InRequest: true}
		}
		seen[d] = true

		if err := s.Validator.Validate(in.Submitter, d, existing); err != nil {
			return SubmitResult{}, err
		}
		year := s.Ledger.Policy.Period.YearOf(d)
		byYear[year] = append(byYear[year], d)
	}

	// The quota counts every record of the employee, whoever filed it.
	years := slices.Sorted(maps.Keys(byYear))
	first := s.Ledger.Policy.Period.Year(years[0])
	last := s.Ledger.Policy.Period.Year(years[len(years)-1])
	history, err := s.Store.ListLeaveRecords(ctx, RecordFilter{
		EmployeeID: employeeID,
		From:       &first.Start,
		To:         &last.End,
	})
	if err != nil {
		return SubmitResult{}, generic.FetchError("leave_records", err)
	}

	perDay := hours.Div(fullDay)
	now := time.Now().UTC()
	var result SubmitResult

	for _, year := range years {
		group := byYear[year]
		requested := perDay.Mul(decimal.NewFromInt(int64(len(group))))

		snapshot := s.Ledger.Evaluate(employeeID, year, history)
		decision, err := s.Ledger.DecideCategory(snapshot, requested)
		if err != nil {
			s.Logger.Info("leave request over quota",
				zap.String("submitter", in.Submitter),
				zap.String("employee_id", employeeID),
				zap.Int("year", year),
				zap.String("committed_days", snapshot.Committed().String()),
				zap.String("requested_days", requested.String()),
				zap.String("limit_days", snapshot.QuotaLimitDays.String()))
			return SubmitResult{}, err
		}
		result.Decisions = append(result.Decisions, decision)

		for _, d := range group {
			result.Records = append(result.Records, LeaveRecord{
				ID:           s.newID(),
				Date:         d,
				Hours:        hours,
				EmployeeID:   employeeID,
				EmployeeName: in.EmployeeName,
				Submitter:    in.Submitter,
				Category:     decision.Category,
				Status:       StatusPending,
				Reason:       in.Reason,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
	}

	if err := s.Store.InsertLeaveRecords(ctx, result.Records); err != nil {
		if errors.Is(err, generic.ErrDuplicateRecord) {
			s.Logger.Warn("leave insert lost uniqueness race",
				zap.String("submitter", in.Submitter), zap.Error(err))
			return SubmitResult{}, err
		}
		return SubmitResult{}, fmt.Errorf("insert leave records: %w", err)
	}

	SortRecords(result.Records)
	s.Logger.Info("leave request submitted",
		zap.String("submitter", in.Submitter),
		zap.String("employee_id", employeeID),
		zap.Int("days", len(result.Records)))
	return result, nil
}

// Approve moves a pending record to approved.
func (s *RequestService) Approve(ctx context.Context, id string) (LeaveRecord, error) {
	return s.transition(ctx, id, StatusApproved)
}

// Reject moves a pending record to rejected. The date becomes free again for
// the submitter.
func (s *RequestService) Reject(ctx context.Context, id string) (LeaveRecord, error) {
	return s.transition(ctx, id, StatusRejected)
}

func (s *RequestService) transition(ctx context.Context, id string, to Status) (LeaveRecord, error) {
	rec, err := s.Store.GetLeaveRecord(ctx, id)
	if err != nil {
		return LeaveRecord{}, err
	}
	if !rec.Status.CanTransitionTo(to) {
		return LeaveRecord{}, &generic.TransitionError{RecordID: id, From: string(rec.Status), To: string(to)}
	}

	updated, err := s.Store.UpdateLeaveStatus(ctx, id, rec.Status, to, time.Now().UTC())
	if err != nil {
		return LeaveRecord{}, err
	}
	s.Logger.Info("leave record status changed",
		zap.String("id", id),
		zap.String("from", string(rec.Status)),
		zap.String("to", string(to)))
	return updated, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// LedgerFor evaluates the quota of employeeID for the accounting year named
// by year.
func (s *RequestService) LedgerFor(ctx context.Context, employeeID string, year int) (Snapshot, error) {
	period := s.Ledger.Policy.Period.Year(year)
	records, err := s.Store.ListLeaveRecords(ctx, RecordFilter{
		EmployeeID: employeeID,
		From:       &period.Start,
		To:         &period.End,
	})
	if err != nil {
		return Snapshot{}, generic.FetchError("leave_records", err)
	}
	return s.Ledger.Evaluate(employeeID, year, records), nil
}

// Ranges lists the leave ranges of employeeID matching q. Ranges are built
// from the employee's full history before filtering, so a range crossing the
// query bounds is returned whole.
func (s *RequestService) Ranges(ctx context.Context, employeeID string, q RangeQuery) ([]LeaveRange, error) {
	records, err := s.Store.ListLeaveRecords(ctx, RecordFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, generic.FetchError("leave_records", err)
	}
	return FilterLeaveRanges(BuildLeaveRanges(records), q), nil
}

func (s *RequestService) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}
