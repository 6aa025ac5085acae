package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

type fileStore struct {
	dir string
}

// NewFileStore keeps one file per key under dir, the single-profile
// analogue of browser storage. The directory is created on first use.
func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

// keys may contain characters unsafe for filenames, so encode them
func (f *fileStore) path(key string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(key))+".json")
}

func (f *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedRead, err)
	}
	return data, nil
}

func (f *fileStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	// write-then-rename so a crash mid-write never leaves a torn record
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedWrite, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedWrite, err)
	}
	return nil
}

func (f *fileStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrFailedWrite, err)
	}
	return nil
}
