package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/store/postgres"
	"github.com/warp/leave-engine/store/storetest"
)

// Runs only against a real database:
//
//	LEAVE_TEST_POSTGRES_DSN=postgres://localhost/leave_test go test ./store/postgres
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("LEAVE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEAVE_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) storetest.Store {
		ctx := context.Background()
		store, err := postgres.Connect(ctx, dsn)
		require.NoError(t, err)
		require.NoError(t, store.Reset(ctx))
		t.Cleanup(func() { store.Close() })
		return store
	})
}
