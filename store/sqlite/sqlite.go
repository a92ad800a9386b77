/*
Package sqlite provides a SQLite-backed record store.

PURPOSE:
  Persists leave records, holidays and employees. Implements
  timeoff.RecordStore, calendar.HolidaySource and calendar.BirthdaySource.

UNIQUENESS:
  The authoritative duplicate-day guard lives here, not in the validator:

    CREATE UNIQUE INDEX idx_unique_active_day
        ON leave_records(submitter, date) WHERE status <> 'rejected';

  A rejected record frees its date. Batch inserts run in one transaction,
  so a violation anywhere leaves nothing behind.

KEY TABLES:
  leave_records: one row per leave day; only status/updated_at ever change
  holidays:      fixed or recurring holidays
  employees:     directory entries with an optional MM-DD birthday

DATES:
  Calendar dates are stored as YYYY-MM-DD text so range filters compare
  lexically. Hours are decimal text.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite serializes writers anyway;
  the mutex keeps read-modify-write sequences consistent.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timeoff/store.go: RecordStore contract
  - store/memory: in-memory implementation for tests
  - store/postgres: PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// Store implements the record store interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ timeoff.RecordStore     = (*Store)(nil)
	_ calendar.HolidaySource  = (*Store)(nil)
	_ calendar.BirthdaySource = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL DEFAULT '',
		submitter TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: at most one non-rejected record per submitter and day
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_active_day
		ON leave_records(submitter, date)
		WHERE status <> 'rejected';

	CREATE INDEX IF NOT EXISTS idx_leave_records_employee_date
		ON leave_records(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_leave_records_date
		ON leave_records(date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		recurring INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		birthday TEXT,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEAVE RECORDS (timeoff.RecordStore)
// =============================================================================

const recordColumns = `id, date, hours, employee_id, employee_name, submitter, category, status, reason, created_at, updated_at`

// ListLeaveRecords returns records matching filter, ordered by date.
func (s *Store) ListLeaveRecords(ctx context.Context, filter timeoff.RecordFilter) ([]timeoff.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.Submitter != "" {
		where = append(where, "submitter = ?")
		args = append(args, filter.Submitter)
	}
	if filter.EmployeeID != "" {
		where = append(where, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.From != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.To.String())
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}

	query := "SELECT " + recordColumns + " FROM leave_records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, employee_id, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	out := make([]timeoff.LeaveRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLeaveRecord returns one record or generic.ErrRecordNotFound.
func (s *Store) GetLeaveRecord(ctx context.Context, id string) (timeoff.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRecord(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, db queryRower, id string) (timeoff.LeaveRecord, error) {
	row := db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM leave_records WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.LeaveRecord{}, generic.ErrRecordNotFound
	}
	return r, err
}

// InsertLeaveRecords inserts all records in one transaction.
func (s *Store) InsertLeaveRecords(ctx context.Context, records []timeoff.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `INSERT INTO leave_records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, r := range records {
		_, err := sqlTx.ExecContext(ctx, query,
			r.ID,
			r.Date.String(),
			r.Hours.String(),
			r.EmployeeID,
			r.EmployeeName,
			r.Submitter,
			string(r.Category),
			string(r.Status),
			r.Reason,
			formatTime(r.CreatedAt),
			formatTime(r.UpdatedAt),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return &generic.DuplicateRecordError{Submitter: r.Submitter, Date: r.Date}
			}
			return fmt.Errorf("failed to insert leave record: %w", err)
		}
	}

	return sqlTx.Commit()
}

// UpdateLeaveStatus moves a record from `from` to `to` if it is still `from`.
func (s *Store) UpdateLeaveStatus(ctx context.Context, id string, from, to timeoff.Status, at time.Time) (timeoff.LeaveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return timeoff.LeaveRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx,
		`UPDATE leave_records SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), formatTime(at), id, string(from))
	if err != nil {
		return timeoff.LeaveRecord{}, fmt.Errorf("failed to update leave record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return timeoff.LeaveRecord{}, err
	}

	rec, err := getRecord(ctx, sqlTx, id)
	if err != nil {
		return timeoff.LeaveRecord{}, err
	}
	if n == 0 {
		return timeoff.LeaveRecord{}, &generic.TransitionError{RecordID: id, From: string(rec.Status), To: string(to)}
	}
	return rec, sqlTx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (timeoff.LeaveRecord, error) {
	var (
		r                    timeoff.LeaveRecord
		date, hours          string
		category, status     string
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &date, &hours, &r.EmployeeID, &r.EmployeeName, &r.Submitter,
		&category, &status, &r.Reason, &createdAt, &updatedAt)
	if err != nil {
		return r, err
	}

	if r.Date, err = generic.ParseDate(date); err != nil {
		return r, fmt.Errorf("record %s: %w", r.ID, err)
	}
	if r.Hours, err = decimal.NewFromString(hours); err != nil {
		return r, fmt.Errorf("record %s: hours: %w", r.ID, err)
	}
	r.Category = timeoff.Category(category)
	r.Status = timeoff.Status(status)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

// =============================================================================
// HOLIDAYS (calendar.HolidaySource)
// =============================================================================

// SaveHolidays upserts holidays by ID in one transaction.
func (s *Store) SaveHolidays(ctx context.Context, holidays []calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO holidays (id, date, name, description, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			description = excluded.description,
			recurring = excluded.recurring
	`
	now := formatTime(time.Now())
	for _, h := range holidays {
		if _, err := sqlTx.ExecContext(ctx, query, h.ID, h.Date.String(), h.Name, h.Description, h.Recurring, now); err != nil {
			return fmt.Errorf("failed to save holiday %s: %w", h.ID, err)
		}
	}
	return sqlTx.Commit()
}

// ListHolidays returns every holiday ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, name, description, recurring FROM holidays ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	out := make([]calendar.Holiday, 0)
	for rows.Next() {
		var (
			h    calendar.Holiday
			date string
		)
		if err := rows.Scan(&h.ID, &date, &h.Name, &h.Description, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYEES (calendar.BirthdaySource)
// =============================================================================

// SaveEmployee upserts an employee.
func (s *Store) SaveEmployee(ctx context.Context, e calendar.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var birthday sql.NullString
	if !e.Birthday.IsZero() {
		birthday = sql.NullString{String: e.Birthday.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, birthday, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			birthday = excluded.birthday
	`, e.ID, e.Name, birthday, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns one employee or generic.ErrRecordNotFound.
func (s *Store) GetEmployee(ctx context.Context, id string) (calendar.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		e        calendar.Employee
		birthday sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, birthday FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &birthday)
	if errors.Is(err, sql.ErrNoRows) {
		return e, generic.ErrRecordNotFound
	}
	if err != nil {
		return e, err
	}
	if birthday.Valid {
		if e.Birthday, err = generic.ParseMonthDay(birthday.String); err != nil {
			return e, fmt.Errorf("employee %s: %w", e.ID, err)
		}
	}
	return e, nil
}

// ListBirthdays returns the birthdays of employees that have one.
func (s *Store) ListBirthdays(ctx context.Context) ([]calendar.Birthday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, birthday FROM employees WHERE birthday IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query birthdays: %w", err)
	}
	defer rows.Close()

	out := make([]calendar.Birthday, 0)
	for rows.Next() {
		var (
			b  calendar.Birthday
			md string
		)
		if err := rows.Scan(&b.EmployeeID, &b.Name, &md); err != nil {
			return nil, err
		}
		if b.MonthDay, err = generic.ParseMonthDay(md); err != nil {
			return nil, fmt.Errorf("employee %s: %w", b.EmployeeID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Helper functions

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
