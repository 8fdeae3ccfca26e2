package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

type PGSnapshotRepository struct {
	db *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) SnapshotRepository {
	return &PGSnapshotRepository{db: db}
}

func (r *PGSnapshotRepository) Save(ctx context.Context, key string, snapshot domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO booking_snapshots (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, key, payload); err != nil {
		return fmt.Errorf("upsert snapshot %q: %w", key, err)
	}

	return tx.Commit(ctx)
}

func (r *PGSnapshotRepository) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT payload FROM booking_snapshots WHERE key=$1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %q: %w", key, err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return &snapshot, nil
}

func (r *PGSnapshotRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM booking_snapshots WHERE key=$1`, key)
	return err
}

var _ SnapshotRepository = (*PGSnapshotRepository)(nil)
