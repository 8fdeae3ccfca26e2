package repository

import (
	"context"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

// SnapshotRepository stores whole booking snapshots under a key.
// Load returns domain.ErrSnapshotNotFound when nothing is stored.
type SnapshotRepository interface {
	Save(ctx context.Context, key string, snapshot domain.Snapshot) error
	Load(ctx context.Context, key string) (*domain.Snapshot, error)
	Delete(ctx context.Context, key string) error
}
