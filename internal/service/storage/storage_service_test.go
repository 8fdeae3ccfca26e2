package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) ExportSnapshot(ctx context.Context) domain.Snapshot {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot)
}

func (m *MockEngine) ImportSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockEngine) ClearAll(ctx context.Context) {
	m.Called(ctx)
}

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Save(ctx context.Context, key string, snapshot domain.Snapshot) error {
	args := m.Called(ctx, key, snapshot)
	return args.Error(0)
}

func (m *MockRepo) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockRepo) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSnapshot(ctx context.Context, key string) (*domain.Snapshot, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockCache) SetSnapshot(ctx context.Context, key string, snapshot domain.Snapshot) error {
	args := m.Called(ctx, key, snapshot)
	return args.Error(0)
}

func (m *MockCache) DeleteSnapshot(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Seats:          []bool{true, false},
		Bookings:       []domain.BookingEntry{},
		CancelledStack: []domain.CancelledTicket{},
		WaitingList:    []domain.Passenger{},
		NextTicketID:   1001,
	}
}

func TestStorageService_Save(t *testing.T) {
	ctx := context.Background()
	engine, repo, cache := new(MockEngine), new(MockRepo), new(MockCache)
	snap := testSnapshot()

	engine.On("ExportSnapshot", ctx).Return(snap)
	repo.On("Save", ctx, "train", snap).Return(nil)
	cache.On("SetSnapshot", ctx, "train", snap).Return(errors.New("redis down"))

	svc := NewStorageService(engine, repo, cache, "train", nil)
	require.NoError(t, svc.Save(ctx), "cache failures do not fail a save")

	engine.AssertExpectations(t)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestStorageService_SaveRepoError(t *testing.T) {
	ctx := context.Background()
	engine, repo, cache := new(MockEngine), new(MockRepo), new(MockCache)
	snap := testSnapshot()

	engine.On("ExportSnapshot", ctx).Return(snap)
	repo.On("Save", ctx, "train", snap).Return(errors.New("disk full"))

	svc := NewStorageService(engine, repo, cache, "train", nil)
	assert.EqualError(t, svc.Save(ctx), "disk full")
	cache.AssertNotCalled(t, "SetSnapshot", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorageService_LoadFromCache(t *testing.T) {
	ctx := context.Background()
	engine, repo, cache := new(MockEngine), new(MockRepo), new(MockCache)
	snap := testSnapshot()

	cache.On("GetSnapshot", ctx, "train").Return(&snap, nil)
	engine.On("ImportSnapshot", ctx, snap).Return(nil)

	svc := NewStorageService(engine, repo, cache, "train", nil)
	require.NoError(t, svc.Load(ctx))

	repo.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	engine.AssertExpectations(t)
}

func TestStorageService_LoadCacheMiss(t *testing.T) {
	ctx := context.Background()
	engine, repo, cache := new(MockEngine), new(MockRepo), new(MockCache)
	snap := testSnapshot()

	cache.On("GetSnapshot", ctx, "train").Return(nil, nil)
	repo.On("Load", ctx, "train").Return(&snap, nil)
	cache.On("SetSnapshot", ctx, "train", snap).Return(nil)
	engine.On("ImportSnapshot", ctx, snap).Return(nil)

	svc := NewStorageService(engine, repo, cache, "train", nil)
	require.NoError(t, svc.Load(ctx))

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestStorageService_LoadNotFound(t *testing.T) {
	ctx := context.Background()
	engine, repo := new(MockEngine), new(MockRepo)

	repo.On("Load", ctx, "train").Return(nil, domain.ErrSnapshotNotFound)

	svc := NewStorageService(engine, repo, nil, "train", nil)
	assert.ErrorIs(t, svc.Load(ctx), domain.ErrSnapshotNotFound)
	engine.AssertNotCalled(t, "ImportSnapshot", mock.Anything, mock.Anything)
}

func TestStorageService_LoadInvalid(t *testing.T) {
	ctx := context.Background()
	engine, repo := new(MockEngine), new(MockRepo)
	snap := testSnapshot()

	repo.On("Load", ctx, "train").Return(&snap, nil)
	engine.On("ImportSnapshot", ctx, snap).Return(domain.ErrInvalidSnapshot)

	svc := NewStorageService(engine, repo, nil, "train", nil)
	assert.ErrorIs(t, svc.Load(ctx), domain.ErrInvalidSnapshot)
}

func TestStorageService_Clear(t *testing.T) {
	ctx := context.Background()
	engine, repo, cache := new(MockEngine), new(MockRepo), new(MockCache)

	engine.On("ClearAll", ctx).Return()
	repo.On("Delete", ctx, "train").Return(nil)
	cache.On("DeleteSnapshot", ctx, "train").Return(errors.New("redis down"))

	svc := NewStorageService(engine, repo, cache, "train", nil)
	err := svc.Clear(ctx)
	assert.EqualError(t, err, "redis down")

	engine.AssertExpectations(t)
	repo.AssertExpectations(t)
}
