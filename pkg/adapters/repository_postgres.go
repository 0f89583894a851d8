package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const createGeneratedImagesTable = `
CREATE TABLE IF NOT EXISTS generated_images (
	id          BIGSERIAL PRIMARY KEY,
	prompt_hash TEXT NOT NULL UNIQUE,
	object_name TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository は generated_images テーブルを使う ImageRepository です。
type PostgresRepository struct {
	db *sql.DB
}

// OpenPostgres は DSN から接続し、疎通を確認します。
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &PostgresRepository{db: db}, nil
}

// EnsureSchema はテーブルが無ければ作成します。
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createGeneratedImagesTable); err != nil {
		return fmt.Errorf("failed to create generated_images table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByPromptHash(ctx context.Context, promptHash string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT object_name FROM generated_images WHERE prompt_hash = $1`,
		promptHash,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query generated image: %w", err)
	}
	return name, nil
}

func (r *PostgresRepository) Save(ctx context.Context, promptHash, objectName string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generated_images (prompt_hash, object_name) VALUES ($1, $2)
		 ON CONFLICT (prompt_hash) DO UPDATE SET object_name = EXCLUDED.object_name`,
		promptHash, objectName,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generated image: %w", err)
	}
	return nil
}
