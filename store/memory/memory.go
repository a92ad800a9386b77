// Package memory provides an in-memory record store for tests and local runs.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	records   map[string]timeoff.LeaveRecord
	active    map[dayKey]string // (submitter, date) -> non-rejected record ID
	holidays  map[string]calendar.Holiday
	employees map[string]calendar.Employee
}

type dayKey struct {
	Submitter string
	Date      generic.Date
}

// Compile-time interface checks
var (
	_ timeoff.RecordStore     = (*Store)(nil)
	_ calendar.HolidaySource  = (*Store)(nil)
	_ calendar.BirthdaySource = (*Store)(nil)
)

func New() *Store {
	return &Store{
		records:   make(map[string]timeoff.LeaveRecord),
		active:    make(map[dayKey]string),
		holidays:  make(map[string]calendar.Holiday),
		employees: make(map[string]calendar.Employee),
	}
}

func (s *Store) Close() error { return nil }

// =============================================================================
// LEAVE RECORDS
// =============================================================================

func (s *Store) ListLeaveRecords(_ context.Context, filter timeoff.RecordFilter) ([]timeoff.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]timeoff.LeaveRecord, 0)
	for _, r := range s.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	timeoff.SortRecords(out)
	return out, nil
}

func (s *Store) GetLeaveRecord(_ context.Context, id string) (timeoff.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return timeoff.LeaveRecord{}, generic.ErrRecordNotFound
	}
	return r, nil
}

// InsertLeaveRecords adds records atomically. The whole batch is checked
// against the uniqueness index (and itself) before anything is written.
func (s *Store) InsertLeaveRecords(_ context.Context, records []timeoff.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[dayKey]bool, len(records))
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		if _, exists := s.records[r.ID]; exists || ids[r.ID] {
			return &generic.DuplicateRecordError{Submitter: r.Submitter, Date: r.Date, ExistingID: r.ID}
		}
		ids[r.ID] = true
		if !r.Active() {
			continue
		}
		k := dayKey{Submitter: r.Submitter, Date: r.Date}
		if id, taken := s.active[k]; taken {
			return &generic.DuplicateRecordError{Submitter: r.Submitter, Date: r.Date, ExistingID: id}
		}
		if batch[k] {
			return &generic.DuplicateRecordError{Submitter: r.Submitter, Date: r.Date, InRequest: true}
		}
		batch[k] = true
	}

	for _, r := range records {
		s.records[r.ID] = r
		if r.Active() {
			s.active[dayKey{Submitter: r.Submitter, Date: r.Date}] = r.ID
		}
	}
	return nil
}

func (s *Store) UpdateLeaveStatus(_ context.Context, id string, from, to timeoff.Status, at time.Time) (timeoff.LeaveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return timeoff.LeaveRecord{}, generic.ErrRecordNotFound
	}
	if r.Status != from {
		return timeoff.LeaveRecord{}, &generic.TransitionError{RecordID: id, From: string(r.Status), To: string(to)}
	}

	r.Status = to
	r.UpdatedAt = at
	s.records[id] = r
	if !r.Active() {
		delete(s.active, dayKey{Submitter: r.Submitter, Date: r.Date})
	}
	return r, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHolidays upserts holidays by ID.
func (s *Store) SaveHolidays(_ context.Context, holidays []calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range holidays {
		s.holidays[h.ID] = h
	}
	return nil
}

func (s *Store) ListHolidays(_ context.Context) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]calendar.Holiday, 0, len(s.holidays))
	for _, h := range s.holidays {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b calendar.Holiday) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, e calendar.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (calendar.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return calendar.Employee{}, generic.ErrRecordNotFound
	}
	return e, nil
}

// ListBirthdays returns the birthdays of employees that have one.
func (s *Store) ListBirthdays(_ context.Context) ([]calendar.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]calendar.Birthday, 0, len(s.employees))
	for _, e := range s.employees {
		if b, ok := e.BirthdayFact(); ok {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b calendar.Birthday) int { return cmp.Compare(a.EmployeeID, b.EmployeeID) })
	return out, nil
}
