package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("storage record not found")
	ErrInvalidKey  = errors.New("invalid storage key")
	ErrFailedWrite = errors.New("failed to write storage record")
	ErrFailedRead  = errors.New("failed to read storage record")
)

// Store is the durable key-value boundary the session state lives behind.
// Implementations back it with memory, a file tree, or Postgres; callers
// treat it as a cache of the in-memory state, so read failures degrade to
// "no record" and write failures are logged rather than surfaced.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
