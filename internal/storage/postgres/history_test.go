package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

func victoryOutcome(hostile string, rounds int) battle.Outcome {
	return battle.Outcome{
		PlayerName:       "Rin",
		HostileID:        uuid.NewString(),
		HostileName:      hostile,
		HostileLevel:     2,
		Result:           battle.PlayerVictory,
		Rounds:           rounds,
		DamageDealt:      48,
		DamageTaken:      17,
		CreditsGained:    20,
		ExperienceGained: 85,
	}
}

func TestHistoryRepository_AppendAndList(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewHistoryRepository(pool)
	ctx := context.Background()
	sessionID := uuid.NewString()

	id, err := repo.Append(ctx, profile.ID, sessionID, victoryOutcome("Dire Wolf", 4))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := repo.ListByProfile(ctx, profile.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, profile.ID, records[0].ProfileID)
	assert.Equal(t, sessionID, records[0].SessionID)
	assert.Equal(t, "Dire Wolf", records[0].Outcome.HostileName)
	assert.Equal(t, battle.PlayerVictory, records[0].Outcome.Result)
	assert.Equal(t, 4, records[0].Outcome.Rounds)
	assert.False(t, records[0].At.IsZero())
}

func TestHistoryRepository_ListNewestFirstWithLimit(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewHistoryRepository(pool)
	ctx := context.Background()
	sessionID := uuid.NewString()

	for i := 1; i <= 5; i++ {
		_, err := repo.Append(ctx, profile.ID, sessionID, victoryOutcome("Dire Wolf", i))
		require.NoError(t, err)
	}

	records, err := repo.ListByProfile(ctx, profile.ID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].At.After(records[i-1].At), "records must be newest first")
	}
}

func TestHistoryRepository_ListScopedToProfile(t *testing.T) {
	pool := newTestPool(t)
	first := newTestProfile(t, pool)
	second := newTestProfile(t, pool)
	repo := postgres.NewHistoryRepository(pool)
	ctx := context.Background()

	_, err := repo.Append(ctx, first.ID, uuid.NewString(), victoryOutcome("Dire Wolf", 3))
	require.NoError(t, err)

	records, err := repo.ListByProfile(ctx, second.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryRepository_DefeatRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	profile := newTestProfile(t, pool)
	repo := postgres.NewHistoryRepository(pool)
	ctx := context.Background()

	outcome := battle.Outcome{
		PlayerName:  "Rin",
		HostileID:   uuid.NewString(),
		HostileName: "Gate Warden",
		Boss:        true,
		Result:      battle.PlayerDefeat,
		Rounds:      9,
		CreditsLost: 120,
	}
	_, err := repo.Append(ctx, profile.ID, uuid.NewString(), outcome)
	require.NoError(t, err)

	records, err := repo.ListByProfile(ctx, profile.ID, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, battle.PlayerDefeat, records[0].Outcome.Result)
	assert.True(t, records[0].Outcome.Boss)
	assert.Equal(t, 120, records[0].Outcome.CreditsLost)
}
