package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oxytoxin-be/internal/config"

	_ "github.com/lib/pq"
)

type postgresStore struct {
	db *sql.DB
}

// OpenPostgres connects with the configured DSN fields and pings before use.
func OpenPostgres(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// NewPostgresStore persists records in the storage_records table,
// one row per key.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (p *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	var value []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT value FROM storage_records WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedRead, err)
	}
	return value, nil
}

func (p *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO storage_records (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedWrite, err)
	}
	return nil
}

func (p *postgresStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	_, err := p.db.ExecContext(ctx, `
		DELETE FROM storage_records WHERE key = $1
	`, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedWrite, err)
	}
	return nil
}
