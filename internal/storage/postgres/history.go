package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/expedition/internal/game/battle"
)

// HistoryRecord is one appended battle outcome.
type HistoryRecord struct {
	ID        string
	ProfileID int64
	SessionID string
	At        time.Time
	Outcome   battle.Outcome
}

// HistoryRepository appends battle outcome records to the durable battle
// history. Records are immutable once written.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append writes one battle outcome and returns its record ID.
//
// Precondition: profileID must reference an existing profile; outcome must
// be terminal (Victory or Defeat).
// Postcondition: The record is durably stored, or a non-nil error is returned.
func (r *HistoryRepository) Append(ctx context.Context, profileID int64, sessionID string, outcome battle.Outcome) (string, error) {
	doc, err := json.Marshal(outcome)
	if err != nil {
		return "", fmt.Errorf("encoding outcome: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.Exec(ctx,
		`INSERT INTO battle_history (id, profile_id, session_id, result, rounds, hostile_name, outcome)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, profileID, sessionID, outcome.Result.String(), outcome.Rounds, outcome.HostileName, doc,
	)
	if err != nil {
		return "", fmt.Errorf("appending battle history: %w", err)
	}
	return id, nil
}

// ListByProfile returns the profile's most recent battle records, newest
// first, capped at limit.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *HistoryRepository) ListByProfile(ctx context.Context, profileID int64, limit int) ([]HistoryRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, profile_id, session_id, at, outcome
		 FROM battle_history WHERE profile_id = $1
		 ORDER BY at DESC LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle history: %w", err)
	}
	defer rows.Close()

	records := make([]HistoryRecord, 0)
	for rows.Next() {
		var rec HistoryRecord
		var doc []byte
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.SessionID, &rec.At, &doc); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if err := json.Unmarshal(doc, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("decoding history record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
