package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/expedition/internal/storage/postgres"
	"github.com/cory-johannsen/expedition/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// newTestPool starts a migrated PostgreSQL container shared by one test.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}

// newTestProfile creates a fresh profile for repositories that hang off one.
func newTestProfile(t *testing.T, pool *pgxpool.Pool) postgres.Profile {
	t.Helper()
	repo := postgres.NewProfileRepository(pool)
	profile, err := repo.Create(context.Background(), uniqueName("voyager"), "passphrase123")
	require.NoError(t, err)
	return profile
}
