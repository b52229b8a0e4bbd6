package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/expedition/internal/game/expedition"
)

// Save slot bounds. Slots outside [MinSlot, MaxSlot] are rejected with
// ErrInvalidSlot, never silently clamped.
const (
	MinSlot = 1
	MaxSlot = 5
)

// ErrInvalidSlot is returned when a slot number is outside [MinSlot, MaxSlot].
var ErrInvalidSlot = errors.New("save slot out of range")

// ErrSaveNotFound is returned when a save slot is empty.
var ErrSaveNotFound = errors.New("save not found")

// SaveInfo summarizes one occupied save slot.
type SaveInfo struct {
	Slot        int
	PlayerName  string
	PlayerLevel int
	SavedAt     time.Time
}

// SaveRepository persists expedition snapshots into numbered slots per
// profile. The snapshot document is stored as JSONB; the item kind
// discriminator inside it is what lets a load rebuild concrete items.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// checkSlot validates a slot number.
func checkSlot(slot int) error {
	if slot < MinSlot || slot > MaxSlot {
		return fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}
	return nil
}

// Put writes a snapshot into the given slot, overwriting any previous save
// there.
//
// Precondition: profileID must reference an existing profile.
// Postcondition: The slot holds the snapshot, or ErrInvalidSlot is returned.
func (r *SaveRepository) Put(ctx context.Context, profileID int64, slot int, snap expedition.Snapshot) error {
	if err := checkSlot(slot); err != nil {
		return err
	}

	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO saves (profile_id, slot, player_name, player_level, snapshot, saved_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (profile_id, slot)
		 DO UPDATE SET player_name = $3, player_level = $4, snapshot = $5, saved_at = NOW()`,
		profileID, slot, snap.Player.Name, snap.Player.Level, doc,
	)
	if err != nil {
		return fmt.Errorf("writing save slot %d: %w", slot, err)
	}
	return nil
}

// Get reads the snapshot stored in the given slot.
//
// Postcondition: Returns the snapshot, ErrInvalidSlot, or ErrSaveNotFound.
func (r *SaveRepository) Get(ctx context.Context, profileID int64, slot int) (expedition.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return expedition.Snapshot{}, err
	}

	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM saves WHERE profile_id = $1 AND slot = $2`,
		profileID, slot,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expedition.Snapshot{}, fmt.Errorf("slot %d: %w", slot, ErrSaveNotFound)
		}
		return expedition.Snapshot{}, fmt.Errorf("reading save slot %d: %w", slot, err)
	}

	var snap expedition.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return expedition.Snapshot{}, fmt.Errorf("decoding save slot %d: %w", slot, err)
	}
	return snap, nil
}

// List returns a summary of every occupied slot for the profile, ordered
// by slot number.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SaveRepository) List(ctx context.Context, profileID int64) ([]SaveInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot, player_name, player_level, saved_at
		 FROM saves WHERE profile_id = $1 ORDER BY slot ASC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	infos := make([]SaveInfo, 0)
	for rows.Next() {
		var info SaveInfo
		if err := rows.Scan(&info.Slot, &info.PlayerName, &info.PlayerLevel, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete clears the given slot.
//
// Postcondition: Returns nil on success, ErrInvalidSlot, or ErrSaveNotFound
// if the slot was already empty.
func (r *SaveRepository) Delete(ctx context.Context, profileID int64, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM saves WHERE profile_id = $1 AND slot = $2`,
		profileID, slot,
	)
	if err != nil {
		return fmt.Errorf("deleting save slot %d: %w", slot, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("slot %d: %w", slot, ErrSaveNotFound)
	}
	return nil
}
