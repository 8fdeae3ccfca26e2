package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/repository"
)

type StorageUseCase interface {
	Save(ctx context.Context) error
	Load(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Engine is the part of the booking service the storage layer drives.
type Engine interface {
	ExportSnapshot(ctx context.Context) domain.Snapshot
	ImportSnapshot(ctx context.Context, snapshot domain.Snapshot) error
	ClearAll(ctx context.Context)
}

type SnapshotCache interface {
	GetSnapshot(ctx context.Context, key string) (*domain.Snapshot, error)
	SetSnapshot(ctx context.Context, key string, snapshot domain.Snapshot) error
	DeleteSnapshot(ctx context.Context, key string) error
}

type StorageService struct {
	engine Engine
	repo   repository.SnapshotRepository
	cache  SnapshotCache
	key    string
	log    *zap.Logger
}

// NewStorageService wires the engine to a repository. cache may be nil.
func NewStorageService(engine Engine, repo repository.SnapshotRepository, cache SnapshotCache, key string, log *zap.Logger) *StorageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StorageService{engine: engine, repo: repo, cache: cache, key: key, log: log}
}

func (s *StorageService) Save(ctx context.Context) error {
	snapshot := s.engine.ExportSnapshot(ctx)
	if err := s.repo.Save(ctx, s.key, snapshot); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, s.key, snapshot); err != nil {
			s.log.Warn("snapshot cache update failed", zap.String("key", s.key), zap.Error(err))
		}
	}
	s.log.Info("snapshot saved",
		zap.String("key", s.key),
		zap.Int("bookings", len(snapshot.Bookings)),
		zap.Int("waiting", len(snapshot.WaitingList)))
	return nil
}

func (s *StorageService) Load(ctx context.Context) error {
	snapshot, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	if err := s.engine.ImportSnapshot(ctx, *snapshot); err != nil {
		return err
	}
	s.log.Info("snapshot loaded", zap.String("key", s.key))
	return nil
}

func (s *StorageService) fetch(ctx context.Context) (*domain.Snapshot, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSnapshot(ctx, s.key); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("snapshot cache read failed", zap.String("key", s.key), zap.Error(err))
		}
	}

	snapshot, err := s.repo.Load(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSnapshot(ctx, s.key, *snapshot)
	}
	return snapshot, nil
}

// Clear wipes the engine and the stored snapshot.
func (s *StorageService) Clear(ctx context.Context) error {
	s.engine.ClearAll(ctx)

	var errs []error
	if err := s.repo.Delete(ctx, s.key); err != nil {
		errs = append(errs, err)
	}
	if s.cache != nil {
		if err := s.cache.DeleteSnapshot(ctx, s.key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ StorageUseCase = (*StorageService)(nil)
