package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/expedition/internal/game/expedition"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

// takeSnapshot starts a real expedition session and snapshots it, so the
// persisted document exercises the full state surface.
func takeSnapshot(t *testing.T, playerName string) expedition.Snapshot {
	t.Helper()
	manager := expedition.NewManager(expedition.Config{Logger: zaptest.NewLogger(t)})
	session, err := manager.Start(playerName, item.DifficultyMedium)
	require.NoError(t, err)
	return session.Snapshot()
}

func TestSaveRepository_PutAndGet(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	snap := takeSnapshot(t, "Rin")
	require.NoError(t, repo.Put(ctx, profile.ID, 1, snap))

	got, err := repo.Get(ctx, profile.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.SessionID)
	assert.Equal(t, snap.Difficulty, got.Difficulty)
	assert.Equal(t, snap.Position, got.Position)
	assert.Equal(t, snap.Player.Name, got.Player.Name)
	assert.Equal(t, snap.Player.Credits, got.Player.Credits)
	assert.Len(t, got.Hostiles, len(snap.Hostiles))
}

func TestSaveRepository_PutOverwritesSlot(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	first := takeSnapshot(t, "Rin")
	second := takeSnapshot(t, "Kael")
	require.NoError(t, repo.Put(ctx, profile.ID, 2, first))
	require.NoError(t, repo.Put(ctx, profile.ID, 2, second))

	got, err := repo.Get(ctx, profile.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Kael", got.Player.Name)

	infos, err := repo.List(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].Slot)
}

func TestSaveRepository_SlotBounds(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	snap := takeSnapshot(t, "Rin")
	assert.ErrorIs(t, repo.Put(ctx, profile.ID, 0, snap), postgres.ErrInvalidSlot)
	assert.ErrorIs(t, repo.Put(ctx, profile.ID, 6, snap), postgres.ErrInvalidSlot)

	_, err := repo.Get(ctx, profile.ID, 0)
	assert.ErrorIs(t, err, postgres.ErrInvalidSlot)
}

func TestSaveRepository_GetEmptySlot(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)

	_, err := repo.Get(context.Background(), profile.ID, 4)
	assert.ErrorIs(t, err, postgres.ErrSaveNotFound)
}

func TestSaveRepository_List(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, profile.ID, 3, takeSnapshot(t, "Rin")))
	require.NoError(t, repo.Put(ctx, profile.ID, 1, takeSnapshot(t, "Kael")))

	infos, err := repo.List(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 1, infos[0].Slot)
	assert.Equal(t, "Kael", infos[0].PlayerName)
	assert.Equal(t, 3, infos[1].Slot)
	assert.Equal(t, "Rin", infos[1].PlayerName)
}

func TestSaveRepository_Delete(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, profile.ID, 5, takeSnapshot(t, "Rin")))
	require.NoError(t, repo.Delete(ctx, profile.ID, 5))

	_, err := repo.Get(ctx, profile.ID, 5)
	assert.ErrorIs(t, err, postgres.ErrSaveNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, profile.ID, 5), postgres.ErrSaveNotFound)
}

func TestSaveRepository_RestoredSnapshotIsPlayable(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	manager := expedition.NewManager(expedition.Config{Logger: zaptest.NewLogger(t)})
	session, err := manager.Start("Rin", item.DifficultyEasy)
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, profile.ID, 1, session.Snapshot()))

	stored, err := repo.Get(ctx, profile.ID, 1)
	require.NoError(t, err)
	restored, err := manager.Restore(stored)
	require.NoError(t, err)
	assert.Equal(t, session.Position(), restored.Position())
	assert.Equal(t, session.Player.Inventory, restored.Player.Inventory)
}
