package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
)

// ErrSaveNotFound is returned when no save exists for a trainer id.
var ErrSaveNotFound = errors.New("save not found")

// SaveSummary describes one stored save without decoding its graph.
type SaveSummary struct {
	TrainerID   string
	TrainerName string
	Level       int
	UpdatedAt   time.Time
}

// SaveRepository stores each trainer's object graph and inventory as JSONB,
// one row per trainer.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the saves
// table migrated.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Save inserts or replaces the save for tr.
//
// Precondition: tr.ID must be a UUID.
// Postcondition: a subsequent Load(tr.ID) returns an equal trainer and inventory.
func (r *SaveRepository) Save(ctx context.Context, tr *trainer.Trainer, inv *inventory.Inventory) error {
	id, err := uuid.Parse(tr.ID)
	if err != nil {
		return fmt.Errorf("trainer id %q: %w", tr.ID, err)
	}
	trainerJSON, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("encoding trainer: %w", err)
	}
	invJSON, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO saves (trainer_id, trainer_name, level, trainer, inventory)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trainer_id) DO UPDATE
		SET trainer_name = EXCLUDED.trainer_name,
		    level        = EXCLUDED.level,
		    trainer      = EXCLUDED.trainer,
		    inventory    = EXCLUDED.inventory,
		    updated_at   = NOW()`,
		id, tr.Name, tr.Level, trainerJSON, invJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting save: %w", err)
	}
	return nil
}

// Load returns the saved trainer and inventory for trainerID.
//
// Postcondition: Returns ErrSaveNotFound when no row exists.
func (r *SaveRepository) Load(ctx context.Context, trainerID string) (*trainer.Trainer, *inventory.Inventory, error) {
	id, err := parseID(trainerID)
	if err != nil {
		return nil, nil, err
	}
	var trainerJSON, invJSON []byte
	err = r.db.QueryRow(ctx,
		`SELECT trainer, inventory FROM saves WHERE trainer_id = $1`,
		id,
	).Scan(&trainerJSON, &invJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSaveNotFound
		}
		return nil, nil, fmt.Errorf("querying save: %w", err)
	}

	var tr trainer.Trainer
	if err := json.Unmarshal(trainerJSON, &tr); err != nil {
		return nil, nil, fmt.Errorf("decoding trainer: %w", err)
	}
	var inv inventory.Inventory
	if err := json.Unmarshal(invJSON, &inv); err != nil {
		return nil, nil, fmt.Errorf("decoding inventory: %w", err)
	}
	return &tr, &inv, nil
}

// List returns every save, most recently updated first.
func (r *SaveRepository) List(ctx context.Context) ([]SaveSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT trainer_id::text, trainer_name, level, updated_at
		FROM saves ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	out := make([]SaveSummary, 0)
	for rows.Next() {
		var s SaveSummary
		if err := rows.Scan(&s.TrainerID, &s.TrainerName, &s.Level, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the save for trainerID.
//
// Postcondition: Returns ErrSaveNotFound when no row existed.
func (r *SaveRepository) Delete(ctx context.Context, trainerID string) error {
	id, err := parseID(trainerID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM saves WHERE trainer_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaveNotFound
	}
	return nil
}

// parseID maps a malformed trainer id to ErrSaveNotFound; no save can exist
// under it.
func parseID(trainerID string) (uuid.UUID, error) {
	id, err := uuid.Parse(trainerID)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: invalid trainer id %q", ErrSaveNotFound, trainerID)
	}
	return id, nil
}
