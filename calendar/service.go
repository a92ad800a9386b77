package calendar

import (
	"context"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// SOURCES - External collaborators
// =============================================================================

type LeaveSource interface {
	ListLeaveRecords(ctx context.Context, filter timeoff.RecordFilter) ([]timeoff.LeaveRecord, error)
}

type HolidaySource interface {
	ListHolidays(ctx context.Context) ([]Holiday, error)
}

type BirthdaySource interface {
	ListBirthdays(ctx context.Context) ([]Birthday, error)
}

// =============================================================================
// SERVICE - Fetch every source, then aggregate
// =============================================================================

// Service fetches leave, holidays and birthdays concurrently and aggregates
// them. It fails closed: if any fetch fails, no marks are computed.
type Service struct {
	Leave      LeaveSource
	Holidays   HolidaySource
	Birthdays  BirthdaySource
	Aggregator Aggregator
	Logger     *zap.Logger
}

func NewService(leave LeaveSource, holidays HolidaySource, birthdays BirthdaySource, palette Palette, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Leave:      leave,
		Holidays:   holidays,
		Birthdays:  birthdays,
		Aggregator: NewAggregator(palette),
		Logger:     logger,
	}
}

// Snapshot is one consistent, fully fetched set of inputs for a year.
type Snapshot struct {
	Year      int
	Records   []timeoff.LeaveRecord // active only
	Holidays  []Holiday
	Birthdays []Birthday
}

// Ranges builds the leave ranges of the snapshot, split by category.
func (s Snapshot) Ranges() (paid, unpaid []timeoff.LeaveRange) {
	return timeoff.SplitByCategory(timeoff.BuildLeaveRanges(s.Records))
}

// Fetch loads every source for year. Leave ranges crossing the year
// boundary are clipped to it, which leaves the marks inside the year intact.
func (s *Service) Fetch(ctx context.Context, year int) (Snapshot, error) {
	from := generic.StartOfYear(year)
	to := generic.EndOfYear(year)

	snap := Snapshot{Year: year}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := s.Leave.ListLeaveRecords(ctx, timeoff.RecordFilter{
			From:     &from,
			To:       &to,
			Statuses: []timeoff.Status{timeoff.StatusPending, timeoff.StatusApproved},
		})
		if err != nil {
			return generic.FetchError("leave_records", err)
		}
		snap.Records = timeoff.ActiveRecords(records)
		return nil
	})
	g.Go(func() error {
		holidays, err := s.Holidays.ListHolidays(ctx)
		if err != nil {
			return generic.FetchError("holidays", err)
		}
		snap.Holidays = holidays
		return nil
	})
	g.Go(func() error {
		birthdays, err := s.Birthdays.ListBirthdays(ctx)
		if err != nil {
			return generic.FetchError("birthdays", err)
		}
		snap.Birthdays = birthdays
		return nil
	})

	if err := g.Wait(); err != nil {
		s.Logger.Error("calendar fetch failed", zap.Int("year", year), zap.Error(err))
		return Snapshot{}, err
	}
	return snap, nil
}

// MarksForYear returns the marks of every date in year.
func (s *Service) MarksForYear(ctx context.Context, year int) ([]Mark, error) {
	snap, err := s.Fetch(ctx, year)
	if err != nil {
		return nil, err
	}
	paid, unpaid := snap.Ranges()
	marks := s.Aggregator.BuildMarks(MarkInput{
		PaidRanges:   paid,
		UnpaidRanges: unpaid,
		Holidays:     snap.Holidays,
		Birthdays:    snap.Birthdays,
		Year:         year,
	})
	return marks.Between(generic.StartOfYear(year), generic.EndOfYear(year)), nil
}

// DayDetail returns the raw records on d.
func (s *Service) DayDetail(ctx context.Context, d generic.Date) (DayDetail, error) {
	snap, err := s.Fetch(ctx, d.Year)
	if err != nil {
		return DayDetail{}, err
	}
	return NewDayIndex(snap.Records, snap.Holidays, snap.Birthdays).DayDetail(d), nil
}
