// Package storetest holds behavior tests every record store backend must
// pass. Backends call Run from their own _test.go files.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// Store is the full surface a backend exposes.
type Store interface {
	timeoff.RecordStore
	calendar.HolidaySource
	calendar.BirthdaySource
	SaveHolidays(ctx context.Context, holidays []calendar.Holiday) error
	SaveEmployee(ctx context.Context, e calendar.Employee) error
	GetEmployee(ctx context.Context, id string) (calendar.Employee, error)
}

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertAndList", func(t *testing.T) { testInsertAndList(t, newStore(t)) })
	t.Run("UniqueActiveDay", func(t *testing.T) { testUniqueActiveDay(t, newStore(t)) })
	t.Run("BatchIsAtomic", func(t *testing.T) { testBatchIsAtomic(t, newStore(t)) })
	t.Run("RepeatedIDInBatch", func(t *testing.T) { testRepeatedIDInBatch(t, newStore(t)) })
	t.Run("RejectFreesDate", func(t *testing.T) { testRejectFreesDate(t, newStore(t)) })
	t.Run("StatusCompareAndSet", func(t *testing.T) { testStatusCompareAndSet(t, newStore(t)) })
	t.Run("HolidaysAndBirthdays", func(t *testing.T) { testHolidaysAndBirthdays(t, newStore(t)) })
}

func record(id, submitter, day string, status timeoff.Status) timeoff.LeaveRecord {
	at := time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	return timeoff.LeaveRecord{
		ID:           id,
		Date:         generic.MustParseDate(day),
		Hours:        decimal.NewFromFloat(7.5),
		EmployeeID:   submitter,
		EmployeeName: "Name of " + submitter,
		Submitter:    submitter,
		Category:     timeoff.CategoryPaidTimeOff,
		Status:       status,
		Reason:       "trip",
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func testInsertAndList(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("b", "emp-1", "2024-03-02", timeoff.StatusPending),
		record("a", "emp-1", "2024-03-01", timeoff.StatusApproved),
		record("c", "emp-2", "2024-03-01", timeoff.StatusPending),
		record("d", "emp-1", "2024-04-01", timeoff.StatusRejected),
	}))

	all, err := s.ListLeaveRecords(ctx, timeoff.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "a", all[0].ID, "ordered by date, employee, id")

	got := all[0]
	assert.Equal(t, generic.MustParseDate("2024-03-01"), got.Date)
	assert.True(t, decimal.NewFromFloat(7.5).Equal(got.Hours))
	assert.Equal(t, "Name of emp-1", got.EmployeeName)
	assert.Equal(t, "trip", got.Reason)
	assert.Equal(t, timeoff.StatusApproved, got.Status)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)))

	from := generic.MustParseDate("2024-03-02")
	to := generic.MustParseDate("2024-04-30")
	filtered, err := s.ListLeaveRecords(ctx, timeoff.RecordFilter{
		EmployeeID: "emp-1",
		From:       &from,
		To:         &to,
		Statuses:   []timeoff.Status{timeoff.StatusPending, timeoff.StatusApproved},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].ID)

	bySubmitter, err := s.ListLeaveRecords(ctx, timeoff.RecordFilter{Submitter: "emp-2"})
	require.NoError(t, err)
	assert.Len(t, bySubmitter, 1)

	one, err := s.GetLeaveRecord(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "emp-2", one.Submitter)

	_, err = s.GetLeaveRecord(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
}

func testUniqueActiveDay(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("a", "emp-1", "2024-03-01", timeoff.StatusPending),
	}))

	err := s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("b", "emp-1", "2024-03-01", timeoff.StatusPending),
	})
	require.ErrorIs(t, err, generic.ErrDuplicateRecord)

	var dupErr *generic.DuplicateRecordError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, generic.MustParseDate("2024-03-01"), dupErr.Date)

	// Rejected rows don't count, and other submitters are independent.
	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("c", "emp-1", "2024-03-01", timeoff.StatusRejected),
		record("d", "emp-2", "2024-03-01", timeoff.StatusPending),
	}))
}

func testBatchIsAtomic(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("a", "emp-1", "2024-03-05", timeoff.StatusApproved),
	}))

	err := s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("b", "emp-1", "2024-03-04", timeoff.StatusPending),
		record("c", "emp-1", "2024-03-05", timeoff.StatusPending),
	})
	require.ErrorIs(t, err, generic.ErrDuplicateRecord)

	_, err = s.GetLeaveRecord(ctx, "b")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound, "failed batch must leave nothing behind")
}

func testRepeatedIDInBatch(t *testing.T, s Store) {
	ctx := context.Background()

	err := s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("a", "emp-1", "2024-03-04", timeoff.StatusPending),
		record("a", "emp-1", "2024-03-05", timeoff.StatusPending),
	})
	require.ErrorIs(t, err, generic.ErrDuplicateRecord)

	_, err = s.GetLeaveRecord(ctx, "a")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
}

func testRejectFreesDate(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("a", "emp-1", "2024-03-01", timeoff.StatusPending),
	}))

	at := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	rejected, err := s.UpdateLeaveStatus(ctx, "a", timeoff.StatusPending, timeoff.StatusRejected, at)
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusRejected, rejected.Status)
	assert.True(t, rejected.UpdatedAt.Equal(at))

	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("b", "emp-1", "2024-03-01", timeoff.StatusPending),
	}))
}

func testStatusCompareAndSet(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{
		record("a", "emp-1", "2024-03-01", timeoff.StatusPending),
	}))
	now := time.Now().UTC()

	_, err := s.UpdateLeaveStatus(ctx, "a", timeoff.StatusPending, timeoff.StatusApproved, now)
	require.NoError(t, err)

	_, err = s.UpdateLeaveStatus(ctx, "a", timeoff.StatusPending, timeoff.StatusRejected, now)
	assert.ErrorIs(t, err, generic.ErrInvalidTransition)

	_, err = s.UpdateLeaveStatus(ctx, "missing", timeoff.StatusPending, timeoff.StatusApproved, now)
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)

	got, err := s.GetLeaveRecord(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusApproved, got.Status)
}

func testHolidaysAndBirthdays(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveHolidays(ctx, []calendar.Holiday{
		{ID: "xmas", Date: generic.MustParseDate("2024-12-25"), Name: "Christmas", Recurring: true},
		{ID: "ny", Date: generic.MustParseDate("2024-01-01"), Name: "New Year", Description: "closed"},
	}))
	// Upsert by ID.
	require.NoError(t, s.SaveHolidays(ctx, []calendar.Holiday{
		{ID: "ny", Date: generic.MustParseDate("2024-01-01"), Name: "New Year's Day", Description: "closed"},
	}))

	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "New Year's Day", holidays[0].Name)
	assert.Equal(t, "closed", holidays[0].Description)
	assert.True(t, holidays[1].Recurring)

	require.NoError(t, s.SaveEmployee(ctx, calendar.Employee{
		ID: "emp-1", Name: "Ada", Birthday: generic.MonthDay{Month: time.February, Day: 29},
	}))
	require.NoError(t, s.SaveEmployee(ctx, calendar.Employee{ID: "emp-2", Name: "Unknown"}))

	birthdays, err := s.ListBirthdays(ctx)
	require.NoError(t, err)
	require.Len(t, birthdays, 1)
	assert.Equal(t, calendar.Birthday{
		EmployeeID: "emp-1",
		Name:       "Ada",
		MonthDay:   generic.MonthDay{Month: time.February, Day: 29},
	}, birthdays[0])

	e, err := s.GetEmployee(ctx, "emp-2")
	require.NoError(t, err)
	assert.True(t, e.Birthday.IsZero())

	_, err = s.GetEmployee(ctx, "nobody")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
}
