package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/store/sqlite"
	"github.com/warp/leave-engine/store/storetest"
	"github.com/warp/leave-engine/timeoff"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return newTestStore(t)
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	// GIVEN: A file-backed database with one record
	// WHEN: The store is closed and reopened
	// THEN: Migration is idempotent and the record survives

	path := filepath.Join(t.TempDir(), "leave.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.InsertLeaveRecords(ctx, []timeoff.LeaveRecord{{
		ID:         "r1",
		Date:       generic.MustParseDate("2024-03-01"),
		Hours:      decimal.NewFromInt(8),
		EmployeeID: "emp-1",
		Submitter:  "emp-1",
		Category:   timeoff.CategoryPaidTimeOff,
		Status:     timeoff.StatusPending,
	}}))
	require.NoError(t, store.Close())

	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetLeaveRecord(ctx, "r1")
	require.NoError(t, err)
}
