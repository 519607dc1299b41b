package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"storefront/config"
	"storefront/internal/redisclient"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Snapshotter persists the whole serialized state of one store
type Snapshotter interface {
	// Load returns the last saved snapshot, or nil when nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// ReadyCheck returns the readiness check for snap. Backends without a connection are always ready.
func ReadyCheck(snap Snapshotter) func() error {
	pinger, ok := snap.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pinger.Ping(ctx)
	}
}

// OpenSnapshotter builds the backend selected by cfg for the named store
func OpenSnapshotter(ctx context.Context, cfg *config.Config, name string) (Snapshotter, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		snap, err := NewFileSnapshotter(cfg.Store.FilePath(name))
		if err != nil {
			return nil, err
		}
		util.GetLogger().Info("Using file snapshot", zap.String("store", name), zap.String("path", snap.Path()))
		return snap, nil
	case config.BackendPostgres:
		return NewPostgresSnapshotter(ctx, cfg.Database.URL, name)
	case config.BackendRedis:
		client, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return client.Snapshotter(name), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// FileSnapshotter keeps the snapshot in a single JSON file replaced atomically on every save
type FileSnapshotter struct {
	path string
}

// NewFileSnapshotter creates the parent directory of path if needed
func NewFileSnapshotter(path string) (*FileSnapshotter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSnapshotter{path: path}, nil
}

// Path returns the snapshot file location
func (f *FileSnapshotter) Path() string {
	return f.path
}

func (f *FileSnapshotter) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory, syncs it and renames it over the old snapshot
func (f *FileSnapshotter) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (f *FileSnapshotter) Close() error {
	return nil
}
