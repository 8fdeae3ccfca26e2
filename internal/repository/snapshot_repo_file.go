package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

// FileSnapshotRepository keeps one JSON document per key next to path.
// Writes go through a temp file and rename.
type FileSnapshotRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileSnapshotRepository(path string) *FileSnapshotRepository {
	return &FileSnapshotRepository{path: path}
}

func (r *FileSnapshotRepository) Save(ctx context.Context, key string, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.fileFor(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), target)
}

func (r *FileSnapshotRepository) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	payload, err := os.ReadFile(r.fileFor(key))
	r.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return &snapshot, nil
}

func (r *FileSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.fileFor(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// fileFor maps key to a file beside path: data/snap.json + "k" -> data/snap.k.json.
func (r *FileSnapshotRepository) fileFor(key string) string {
	if key == "" {
		return r.path
	}
	ext := filepath.Ext(r.path)
	base := strings.TrimSuffix(r.path, ext)
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return base + "." + safe + ext
}

var _ SnapshotRepository = (*FileSnapshotRepository)(nil)
